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

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// List handles GET /api/posts/{id}/comments
// Returns only the post's top-level comments; clients expand each thread
// on demand through the replies endpoint.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	comments, err := h.commentService.ListTopLevel(r.Context(), postID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[ERROR] List comments handler: post=%s err=%v", postID, err)
		httputil.WriteInternalError(w, "Failed to list comments")
		return
	}
	httputil.WriteData(w, comments)
}

// ListReplies handles GET /api/posts/{id}/comments/{commentId}/replies
func (h *CommentHandler) ListReplies(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	commentID := chi.URLParam(r, "commentId")

	replies, err := h.commentService.ListReplies(r.Context(), postID, commentID)
	if err != nil {
		if errors.Is(err, model.ErrCommentNotFound) {
			httputil.WriteNotFound(w, "Comment not found")
			return
		}
		log.Printf("[ERROR] List replies handler: post=%s comment=%s err=%v", postID, commentID, err)
		httputil.WriteInternalError(w, "Failed to list replies")
		return
	}
	httputil.WriteData(w, replies)
}

// Create handles POST /api/posts/{id}/comments
// Creates a top-level comment or, when parentCommentId is set, a reply.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	postID := chi.URLParam(r, "id")

	var req model.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.commentService.Create(r.Context(), postID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Parent comment not found")
		case errors.Is(err, model.ErrContentRequired):
			httputil.WriteBadRequest(w, "Comment content is required")
		case errors.Is(err, model.ErrContentTooLong):
			httputil.WriteBadRequest(w, "Comment content too long")
		default:
			log.Printf("[ERROR] Create comment handler: user=%s post=%s err=%v", userID, postID, err)
			httputil.WriteInternalError(w, "Failed to create comment")
		}
		return
	}

	httputil.WriteData(w, comment)
}
