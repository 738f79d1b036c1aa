package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"prompthub/internal/httputil"
	"prompthub/internal/model"
	"prompthub/internal/service"
	"prompthub/internal/transport/http/middleware"
)

type MediaHandler struct {
	mediaService *service.MediaService
}

func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// PresignAvatar handles POST /api/upload/avatar/presign
// Returns a short-lived PUT URL so the client uploads avatar bytes
// straight to object storage instead of through this server.
func (h *MediaHandler) PresignAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	if h.mediaService == nil {
		httputil.WriteInternalError(w, "Avatar storage is not configured")
		return
	}

	var req model.PresignAvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	resp, err := h.mediaService.PresignAvatar(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteErrorCode(w, http.StatusRequestEntityTooLarge, model.CodeFileTooLarge, "Avatar exceeds the size limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type")
		default:
			log.Printf("[ERROR] PresignAvatar handler: user=%s err=%v", userID, err)
			httputil.WriteInternalError(w, "Failed to presign upload")
		}
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
