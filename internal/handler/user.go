package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"prompthub/internal/httputil"
	"prompthub/internal/model"
	"prompthub/internal/service"
	"prompthub/internal/transport/http/middleware"
)

type UserHandler struct {
	userService  *service.UserService
	postService  *service.PostService
	mediaService *service.MediaService

	// avatarURLPrefixes is the allowlist for PATCH'd avatar URLs; anything
	// outside these prefixes could point at arbitrary hosts and is refused.
	avatarURLPrefixes []string
}

func NewUserHandler(userService *service.UserService, postService *service.PostService, mediaService *service.MediaService, avatarURLPrefixes []string) *UserHandler {
	return &UserHandler{
		userService:       userService,
		postService:       postService,
		mediaService:      mediaService,
		avatarURLPrefixes: avatarURLPrefixes,
	}
}

// Me handles GET /api/user/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] Me handler: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to get profile")
		return
	}
	httputil.WriteData(w, user)
}

// UpdateAvatar handles PATCH /api/user/avatar
// The client uploaded the bytes through a presigned URL; here it saves the
// resulting public URL, which must fall under a configured prefix.
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.UpdateAvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AvatarURL == "" {
		httputil.WriteBadRequest(w, "Avatar URL is required")
		return
	}

	if !h.avatarURLAllowed(req.AvatarURL) {
		httputil.WriteBadRequest(w, "Avatar URL is not allowed")
		return
	}

	user, err := h.userService.UpdateAvatar(r.Context(), userID, req.AvatarURL)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] UpdateAvatar handler: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to update avatar")
		return
	}
	httputil.WriteData(w, user)
}

// UploadAvatar handles POST /api/user/avatar
// Direct multipart upload path for clients that cannot use presigned URLs.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	if h.mediaService == nil {
		httputil.WriteInternalError(w, "Avatar storage is not configured")
		return
	}

	if err := r.ParseMultipartForm(model.MaxAvatarSizeBytes); err != nil {
		httputil.WriteBadRequest(w, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		httputil.WriteBadRequest(w, "Avatar file is required")
		return
	}
	defer file.Close()

	result, err := h.mediaService.UploadAvatar(r.Context(), file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteErrorCode(w, http.StatusRequestEntityTooLarge, model.CodeFileTooLarge, "Avatar exceeds the size limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type")
		default:
			log.Printf("[ERROR] UploadAvatar handler: user=%s err=%v", userID, err)
			httputil.WriteInternalError(w, "Failed to upload avatar")
		}
		return
	}

	user, err := h.userService.UpdateAvatar(r.Context(), userID, result.URL)
	if err != nil {
		log.Printf("[ERROR] UploadAvatar handler: save failed user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to save avatar")
		return
	}
	httputil.WriteData(w, user)
}

// ListPosts handles GET /api/user/posts
// The signed-in user's own posts, hidden ones included.
func (h *UserHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	resp, err := h.postService.ListByAuthor(r.Context(), userID, queryInt(r, "page", 1), queryInt(r, "limit", 10))
	if err != nil {
		log.Printf("[ERROR] ListPosts handler: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to list posts")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// avatarURLAllowed checks the URL against the prefix allowlist. An empty
// allowlist disables the check.
func (h *UserHandler) avatarURLAllowed(url string) bool {
	if len(h.avatarURLPrefixes) == 0 {
		return true
	}
	for _, prefix := range h.avatarURLPrefixes {
		if prefix != "" && strings.HasPrefix(url, prefix) {
			return true
		}
	}
	return false
}
