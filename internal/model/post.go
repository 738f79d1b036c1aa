package model

import (
	"errors"
	"time"
)

// Post represents a shared prompt post with its denormalized counters.
// Tags are normalized to a string slice at the repository boundary; the
// delimited storage format never leaks past it.
type Post struct {
	ID           string    `db:"id" json:"id"`
	AuthorID     string    `db:"author_id" json:"authorId"`
	Title        string    `db:"title" json:"title"`
	Description  *string   `db:"description" json:"description"`
	Content      string    `db:"content" json:"content"`
	Tags         []string  `json:"tags"`
	Status       string    `db:"status" json:"status"`
	LikeCount    int       `db:"like_count" json:"likeCount"`
	CommentCount int       `db:"comment_count" json:"commentCount"`
	ForkCount    int       `db:"fork_count" json:"forkCount"`
	DeletedAt    time.Time `db:"deleted_at" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`

	// Joined fields (not in posts table)
	Author  *UserSummary `json:"author,omitempty"`
	IsLiked bool         `json:"isLiked"`
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
}

// UpdatePostRequest is the request body for PATCH /api/posts/{id}.
// Nil fields are left unchanged.
type UpdatePostRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Content     *string  `json:"content"`
	Tags        []string `json:"tags"`
	Status      *string  `json:"status"`
}

// LikeRequest is the request body for POST /api/posts/{id}/like.
// Any action other than "decrement" is treated as "increment".
type LikeRequest struct {
	Action string `json:"action"`
}

// LikeState is the like endpoint payload: the post's current like count and
// whether the acting user has a like recorded.
type LikeState struct {
	LikeCount int  `json:"likeCount"`
	IsLiked   bool `json:"isLiked"`
}

// LikeResponse is the like endpoint envelope, echoing the applied action.
type LikeResponse struct {
	Data   *LikeState `json:"data"`
	Action string     `json:"action"`
}

// PostFilter captures the list-endpoint query parameters.
type PostFilter struct {
	Search string
	Tag    string
	Sort   string // SortLatest, SortPopular or SortMostForked
	Page   int
	Limit  int
}

// PostListResponse is the paginated post list envelope.
type PostListResponse struct {
	Data       []Post     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Post sort orders and statuses
const (
	SortLatest     = "latest"
	SortPopular    = "popular"
	SortMostForked = "most-forked"

	PostStatusActive = "active"
	PostStatusHidden = "hidden"

	LikeActionIncrement = "increment"
	LikeActionDecrement = "decrement"

	MaxPostTitleLength = 100
)

// Post errors
var (
	ErrPostNotFound     = errors.New("post not found")
	ErrTitleRequired    = errors.New("title is required")
	ErrTitleTooLong     = errors.New("title too long")
	ErrPostBodyRequired = errors.New("content is required")
	ErrAlreadyLiked     = errors.New("post already liked")
	ErrNotLiked         = errors.New("post not liked")
	ErrInvalidStatus    = errors.New("invalid status")
)
