package model

import (
	"errors"
	"time"
)

// Prompt is a private prompt owned by a single user. Unlike posts, prompts
// are never visible to other users; every query is scoped to the author.
type Prompt struct {
	ID          string    `db:"id" json:"id"`
	AuthorID    string    `db:"author_id" json:"authorId"`
	Title       string    `db:"title" json:"title"`
	Content     string    `db:"content" json:"content"`
	Description *string   `db:"description" json:"description"`
	Type        string    `db:"type" json:"type"`
	Status      string    `db:"status" json:"status"`
	DeletedAt   time.Time `db:"deleted_at" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// CreatePromptRequest is the request body for creating a prompt.
type CreatePromptRequest struct {
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	Description *string `json:"description"`
	Type        string  `json:"type"`
}

// UpdatePromptRequest is the request body for PATCH /api/prompts/{id}.
// Nil fields are left unchanged.
type UpdatePromptRequest struct {
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	Description *string `json:"description"`
	Type        *string `json:"type"`
	Status      *string `json:"status"`
}

// PromptFilter captures the list-endpoint query parameters.
type PromptFilter struct {
	Search string
	Status string
	Page   int
	Limit  int
}

// PromptListResponse is the paginated prompt list envelope.
type PromptListResponse struct {
	Data       []Prompt   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Prompt defaults and constraints
const (
	PromptTypeBackground = "BACKGROUND"

	PromptStatusDraft     = "draft"
	PromptStatusPublished = "published"

	MaxPromptTitleLength = 100
)

// Prompt errors. A prompt that exists but belongs to another user is
// reported as not found; owner-scoped queries never reveal foreign rows.
var (
	ErrPromptNotFound        = errors.New("prompt not found or no access")
	ErrPromptContentRequired = errors.New("prompt content is required")
)
