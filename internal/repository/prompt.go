package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"prompthub/internal/model"
)

type promptRepository struct {
	db *sqlx.DB
}

func NewPromptRepository(db *sqlx.DB) PromptRepository {
	return &promptRepository{db: db}
}

// Create inserts a new prompt for the author.
func (r *promptRepository) Create(ctx context.Context, p *model.Prompt) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Type == "" {
		p.Type = model.PromptTypeBackground
	}
	if p.Status == "" {
		p.Status = model.PromptStatusDraft
	}
	query := `
		INSERT INTO prompts (id, author_id, title, content, description, type, status, deleted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.AuthorID, p.Title, p.Content, p.Description,
		p.Type, p.Status, model.ActiveSentinel,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert prompt: %w", err)
	}
	p.DeletedAt = model.ActiveSentinel
	return nil
}

// GetByIDForAuthor retrieves an active prompt only if it belongs to the
// author. A prompt owned by someone else is indistinguishable from a
// missing one.
func (r *promptRepository) GetByIDForAuthor(ctx context.Context, id, authorID string) (*model.Prompt, error) {
	query := `
		SELECT id, author_id, title, content, description, type, status, deleted_at, created_at, updated_at
		FROM prompts
		WHERE id = $1 AND author_id = $2 AND deleted_at = $3
	`
	var prompt model.Prompt
	err := r.db.GetContext(ctx, &prompt, query, id, authorID, model.ActiveSentinel)
	if err == sql.ErrNoRows {
		return nil, model.ErrPromptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get prompt: %w", err)
	}
	return &prompt, nil
}

// List returns the author's active prompts matching the filter.
func (r *promptRepository) List(ctx context.Context, authorID string, filter model.PromptFilter) ([]model.Prompt, int, error) {
	conditions := []string{"author_id = $1", "deleted_at = $2"}
	args := []interface{}{authorID, model.ActiveSentinel}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern)
		n := len(args)
		conditions = append(conditions,
			fmt.Sprintf("(title ILIKE $%d OR content ILIKE $%d)", n, n))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM prompts WHERE "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count prompts: %w", err)
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf(`
		SELECT id, author_id, title, content, description, type, status, deleted_at, created_at, updated_at
		FROM prompts
		WHERE %s
		ORDER BY updated_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	prompts := []model.Prompt{}
	if err := r.db.SelectContext(ctx, &prompts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list prompts: %w", err)
	}
	return prompts, total, nil
}

// Update persists the mutable prompt fields, scoped to the author.
func (r *promptRepository) Update(ctx context.Context, p *model.Prompt) error {
	query := `
		UPDATE prompts
		SET title = $1, content = $2, description = $3, type = $4, status = $5, updated_at = NOW()
		WHERE id = $6 AND author_id = $7 AND deleted_at = $8
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		p.Title, p.Content, p.Description, p.Type, p.Status,
		p.ID, p.AuthorID, model.ActiveSentinel,
	).Scan(&p.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.ErrPromptNotFound
	}
	if err != nil {
		return fmt.Errorf("update prompt: %w", err)
	}
	return nil
}

// SoftDelete writes the real deletion time over the sentinel.
func (r *promptRepository) SoftDelete(ctx context.Context, id, authorID string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE prompts SET deleted_at = NOW()
		WHERE id = $1 AND author_id = $2 AND deleted_at = $3
	`, id, authorID, model.ActiveSentinel)
	if err != nil {
		return fmt.Errorf("delete prompt: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPromptNotFound
	}
	return nil
}
