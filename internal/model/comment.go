package model

import (
	"errors"
	"time"
)

// Comment represents a comment on a post. Comments form a forest: a nil
// ParentCommentID marks a top-level comment; AncestorCommentID is the
// denormalized top-of-thread comment id (RootAncestorID for top-level
// comments) kept for flattened-thread queries.
type Comment struct {
	ID                string       `db:"id" json:"id"`
	PostID            string       `db:"post_id" json:"-"`
	AuthorID          string       `db:"author_id" json:"-"`
	ParentCommentID   *string      `db:"parent_comment_id" json:"parentCommentId,omitempty"`
	AncestorCommentID string       `db:"ancestor_comment_id" json:"-"`
	Content           string       `db:"content" json:"content"`
	LikeCount         int          `db:"like_count" json:"likeCount"`
	ReplyCount        int          `db:"reply_count" json:"replyCount"`
	DeletedAt         time.Time    `db:"deleted_at" json:"-"`
	CreatedAt         time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time    `db:"updated_at" json:"updatedAt"`
	Author            *UserSummary `json:"author,omitempty"` // Joined field
}

// CreateCommentRequest is the request body for creating a comment.
// ParentCommentID is nil for top-level comments.
type CreateCommentRequest struct {
	Content         string  `json:"content"`
	ParentCommentID *string `json:"parentCommentId,omitempty"`
}

// Comment constraints
const (
	MaxCommentLength = 1000

	// RootAncestorID is the ancestor_comment_id sentinel for top-level comments.
	RootAncestorID = "0"
)

// Comment errors
var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrContentRequired = errors.New("comment content is required")
	ErrContentTooLong  = errors.New("comment content too long")
)
