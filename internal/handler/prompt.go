package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"prompthub/internal/httputil"
	"prompthub/internal/model"
	"prompthub/internal/service"
	"prompthub/internal/transport/http/middleware"
)

// PromptHandler serves the signed-in user's private prompt library.
type PromptHandler struct {
	promptService *service.PromptService
}

func NewPromptHandler(promptService *service.PromptService) *PromptHandler {
	return &PromptHandler{promptService: promptService}
}

// List handles GET /api/prompts
func (h *PromptHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	filter := model.PromptFilter{
		Search: r.URL.Query().Get("search"),
		Status: r.URL.Query().Get("status"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 10),
	}

	resp, err := h.promptService.List(r.Context(), userID, filter)
	if err != nil {
		log.Printf("[ERROR] List prompts handler: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to list prompts")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Create handles POST /api/prompts
func (h *PromptHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreatePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	prompt, err := h.promptService.Create(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTitleRequired):
			httputil.WriteBadRequest(w, "Title is required")
		case errors.Is(err, model.ErrTitleTooLong):
			httputil.WriteBadRequest(w, "Title too long")
		case errors.Is(err, model.ErrPromptContentRequired):
			httputil.WriteBadRequest(w, "Content is required")
		default:
			log.Printf("[ERROR] Create prompt handler: user=%s err=%v", userID, err)
			httputil.WriteInternalError(w, "Failed to create prompt")
		}
		return
	}
	httputil.WriteData(w, prompt)
}

// Get handles GET /api/prompts/{id}
func (h *PromptHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	promptID := chi.URLParam(r, "id")

	prompt, err := h.promptService.Get(r.Context(), promptID, userID)
	if err != nil {
		if errors.Is(err, model.ErrPromptNotFound) {
			httputil.WriteNotFound(w, "Prompt not found")
			return
		}
		log.Printf("[ERROR] Get prompt handler: user=%s prompt=%s err=%v", userID, promptID, err)
		httputil.WriteInternalError(w, "Failed to get prompt")
		return
	}
	httputil.WriteData(w, prompt)
}

// Update handles PATCH /api/prompts/{id}
func (h *PromptHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	promptID := chi.URLParam(r, "id")

	var req model.UpdatePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	prompt, err := h.promptService.Update(r.Context(), promptID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPromptNotFound):
			httputil.WriteNotFound(w, "Prompt not found")
		case errors.Is(err, model.ErrTitleRequired):
			httputil.WriteBadRequest(w, "Title is required")
		case errors.Is(err, model.ErrTitleTooLong):
			httputil.WriteBadRequest(w, "Title too long")
		case errors.Is(err, model.ErrPromptContentRequired):
			httputil.WriteBadRequest(w, "Content is required")
		default:
			log.Printf("[ERROR] Update prompt handler: user=%s prompt=%s err=%v", userID, promptID, err)
			httputil.WriteInternalError(w, "Failed to update prompt")
		}
		return
	}
	httputil.WriteData(w, prompt)
}

// Delete handles DELETE /api/prompts/{id}
func (h *PromptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	promptID := chi.URLParam(r, "id")

	if err := h.promptService.Delete(r.Context(), promptID, userID); err != nil {
		if errors.Is(err, model.ErrPromptNotFound) {
			httputil.WriteNotFound(w, "Prompt not found")
			return
		}
		log.Printf("[ERROR] Delete prompt handler: user=%s prompt=%s err=%v", userID, promptID, err)
		httputil.WriteInternalError(w, "Failed to delete prompt")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Prompt deleted successfully",
	})
}
