package repository

import (
	"context"
	"time"

	"prompthub/internal/cache"
	"prompthub/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	UpdateAvatar(ctx context.Context, userID, avatarURL string) error
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

type PromptRepository interface {
	Create(ctx context.Context, prompt *model.Prompt) error
	// GetByIDForAuthor returns the active prompt only when owned by authorID.
	GetByIDForAuthor(ctx context.Context, id, authorID string) (*model.Prompt, error)
	List(ctx context.Context, authorID string, filter model.PromptFilter) ([]model.Prompt, int, error)
	Update(ctx context.Context, prompt *model.Prompt) error
	SoftDelete(ctx context.Context, id, authorID string) error
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	// GetByID returns the active post with its author summary.
	GetByID(ctx context.Context, id string) (*model.Post, error)
	// GetByIDs returns active posts in the order of the input ids.
	GetByIDs(ctx context.Context, ids []string) ([]model.Post, error)
	List(ctx context.Context, filter model.PostFilter) ([]model.Post, int, error)
	ListByAuthor(ctx context.Context, authorID string, page, limit int) ([]model.Post, int, error)
	Update(ctx context.Context, post *model.Post) error
	SoftDelete(ctx context.Context, id, authorID string) error
	// Exists checks that the post is active (status active, not soft-deleted).
	Exists(ctx context.Context, id string) (bool, error)
	// CheckLikes reports which of the given posts the user has liked.
	CheckLikes(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
	// Like inserts the like row and bumps like_count in one transaction,
	// returning the new count. Returns model.ErrAlreadyLiked if a row exists.
	Like(ctx context.Context, postID, userID string) (int, error)
	// Unlike deletes the like row and decrements like_count in one
	// transaction, returning the new count. Returns model.ErrNotLiked if no
	// row exists.
	Unlike(ctx context.Context, postID, userID string) (int, error)
	// TopByLikes returns active posts ranked by like count for cache warming.
	TopByLikes(ctx context.Context, limit int) ([]cache.PostScore, error)
}

type CommentRepository interface {
	// Create inserts the comment, bumps the parent's reply_count (when parent
	// is non-nil) and the post's comment_count, all in one transaction.
	Create(ctx context.Context, postID, authorID, content string, parent *model.Comment) (*model.Comment, error)
	// GetActiveByID returns the comment if it is not soft-deleted.
	GetActiveByID(ctx context.Context, id string) (*model.Comment, error)
	// ListTopLevel returns active top-level comments of a post, newest first,
	// with author summaries and live reply counts.
	ListTopLevel(ctx context.Context, postID string) ([]model.Comment, error)
	// ListReplies returns active direct replies of a comment, oldest first,
	// with author summaries and cached reply counts.
	ListReplies(ctx context.Context, parentID string) ([]model.Comment, error)
}
