package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"prompthub/internal/httputil"
	"prompthub/internal/model"
	"prompthub/internal/service"
	"prompthub/internal/transport/http/middleware"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// List handles GET /api/posts
// Query params: search, tag, sort (latest|popular|most-forked), page, limit.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := middleware.GetUserIDFromContext(r.Context())

	filter := model.PostFilter{
		Search: r.URL.Query().Get("search"),
		Tag:    r.URL.Query().Get("tag"),
		Sort:   r.URL.Query().Get("sort"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 10),
	}

	resp, err := h.postService.List(r.Context(), filter, viewerID)
	if err != nil {
		log.Printf("[ERROR] List posts handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to list posts")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Create handles POST /api/posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTitleRequired):
			httputil.WriteBadRequest(w, "Title is required")
		case errors.Is(err, model.ErrTitleTooLong):
			httputil.WriteBadRequest(w, "Title too long")
		case errors.Is(err, model.ErrPostBodyRequired):
			httputil.WriteBadRequest(w, "Content is required")
		default:
			log.Printf("[ERROR] Create post handler: user=%s err=%v", userID, err)
			httputil.WriteInternalError(w, "Failed to create post")
		}
		return
	}

	httputil.WriteData(w, post)
}

// Get handles GET /api/posts/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := middleware.GetUserIDFromContext(r.Context())
	postID := chi.URLParam(r, "id")

	post, err := h.postService.Get(r.Context(), postID, viewerID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[ERROR] Get post handler: post=%s err=%v", postID, err)
		httputil.WriteInternalError(w, "Failed to get post")
		return
	}
	httputil.WriteData(w, post)
}

// Update handles PATCH /api/posts/{id}
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	postID := chi.URLParam(r, "id")

	var req model.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.Update(r.Context(), postID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrTitleRequired):
			httputil.WriteBadRequest(w, "Title is required")
		case errors.Is(err, model.ErrTitleTooLong):
			httputil.WriteBadRequest(w, "Title too long")
		case errors.Is(err, model.ErrPostBodyRequired):
			httputil.WriteBadRequest(w, "Content is required")
		case errors.Is(err, model.ErrInvalidStatus):
			httputil.WriteBadRequest(w, "Status must be active or hidden")
		default:
			log.Printf("[ERROR] Update post handler: user=%s post=%s err=%v", userID, postID, err)
			httputil.WriteInternalError(w, "Failed to update post")
		}
		return
	}
	httputil.WriteData(w, post)
}

// Delete handles DELETE /api/posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	postID := chi.URLParam(r, "id")

	if err := h.postService.Delete(r.Context(), postID, userID); err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[ERROR] Delete post handler: user=%s post=%s err=%v", userID, postID, err)
		httputil.WriteInternalError(w, "Failed to delete post")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Post deleted successfully",
	})
}

// Like handles POST /api/posts/{id}/like
// The body's action field selects increment (default) or decrement.
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	postID := chi.URLParam(r, "id")

	var req model.LikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// An empty or malformed body means a plain like.
		req.Action = model.LikeActionIncrement
	}
	// Anything other than an explicit decrement counts as an increment.
	action := model.LikeActionIncrement
	if req.Action == model.LikeActionDecrement {
		action = model.LikeActionDecrement
	}

	state, err := h.postService.Like(r.Context(), postID, userID, action)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[ERROR] Like post handler: user=%s post=%s err=%v", userID, postID, err)
		httputil.WriteInternalError(w, "Failed to update like")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model.LikeResponse{Data: state, Action: action})
}

// queryInt parses an integer query parameter with a fallback.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
