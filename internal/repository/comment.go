package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"prompthub/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// commentRow scans a comment joined with its author.
type commentRow struct {
	ID              string    `db:"id"`
	PostID          string    `db:"post_id"`
	AuthorID        string    `db:"author_id"`
	ParentCommentID *string   `db:"parent_comment_id"`
	AncestorID      string    `db:"ancestor_comment_id"`
	Content         string    `db:"content"`
	LikeCount       int       `db:"like_count"`
	ReplyCount      int       `db:"reply_count"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
	AuthorName      string    `db:"author.name"`
	AuthorAvatar    *string   `db:"author.avatar"`
}

func (row commentRow) toComment() model.Comment {
	return model.Comment{
		ID:                row.ID,
		PostID:            row.PostID,
		AuthorID:          row.AuthorID,
		ParentCommentID:   row.ParentCommentID,
		AncestorCommentID: row.AncestorID,
		Content:           row.Content,
		LikeCount:         row.LikeCount,
		ReplyCount:        row.ReplyCount,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
		Author: &model.UserSummary{
			ID:     row.AuthorID,
			Name:   row.AuthorName,
			Avatar: row.AuthorAvatar,
		},
	}
}

// Create inserts the comment and performs the counter bookkeeping in a
// single transaction: the parent's reply_count (for replies) and the
// post's comment_count move together with the insert, so a failure at any
// step leaves all three untouched.
func (r *commentRepository) Create(ctx context.Context, postID, authorID, content string, parent *model.Comment) (*model.Comment, error) {
	// A reply to a top-level comment anchors to that comment; a reply
	// deeper in the tree inherits its parent's anchor, keeping the stored
	// tree at most two levels deep.
	ancestorID := model.RootAncestorID
	var parentID *string
	if parent != nil {
		parentID = &parent.ID
		if parent.AncestorCommentID == model.RootAncestorID {
			ancestorID = parent.ID
		} else {
			ancestorID = parent.AncestorCommentID
		}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	comment := &model.Comment{
		ID:                uuid.NewString(),
		PostID:            postID,
		AuthorID:          authorID,
		ParentCommentID:   parentID,
		AncestorCommentID: ancestorID,
		Content:           content,
	}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO comments (id, post_id, author_id, parent_comment_id, ancestor_comment_id, content, deleted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING like_count, reply_count, created_at, updated_at
	`, comment.ID, postID, authorID, parentID, ancestorID, content, model.ActiveSentinel,
	).Scan(&comment.LikeCount, &comment.ReplyCount, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	if parent != nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE comments SET reply_count = reply_count + 1, updated_at = NOW()
			WHERE id = $1 AND deleted_at = $2
		`, parent.ID, model.ActiveSentinel)
		if err != nil {
			return nil, fmt.Errorf("update parent reply count: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE posts SET comment_count = comment_count + 1, updated_at = NOW()
		WHERE id = $1 AND status = $2 AND deleted_at = $3
	`, postID, model.PostStatusActive, model.ActiveSentinel)
	if err != nil {
		return nil, fmt.Errorf("update post comment count: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		// Post vanished between the existence check and the insert.
		return nil, model.ErrPostNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	comment.DeletedAt = model.ActiveSentinel
	return comment, nil
}

// GetActiveByID returns a comment that has not been soft-deleted.
func (r *commentRepository) GetActiveByID(ctx context.Context, id string) (*model.Comment, error) {
	query := `
		SELECT id, post_id, author_id, parent_comment_id, ancestor_comment_id,
		       content, like_count, reply_count, deleted_at, created_at, updated_at
		FROM comments
		WHERE id = $1 AND deleted_at = $2
	`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, id, model.ActiveSentinel)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &comment, nil
}

// ListTopLevel returns a post's active top-level comments, newest first.
// Reply counts are computed live over active direct children, so deleted
// replies never inflate the badge readers use to decide whether to expand,
// and the badge always matches what the replies endpoint returns.
func (r *commentRepository) ListTopLevel(ctx context.Context, postID string) ([]model.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.author_id, c.parent_comment_id, c.ancestor_comment_id,
		       c.content, c.like_count, c.created_at, c.updated_at,
		       u.name AS "author.name", u.avatar AS "author.avatar",
		       (SELECT COUNT(*) FROM comments r
		        WHERE r.parent_comment_id = c.id AND r.deleted_at = $1) AS reply_count
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $2 AND c.ancestor_comment_id = $3 AND c.deleted_at = $1
		ORDER BY c.created_at DESC
	`
	var rows []commentRow
	err := r.db.SelectContext(ctx, &rows, query, model.ActiveSentinel, postID, model.RootAncestorID)
	if err != nil {
		return nil, fmt.Errorf("list top-level comments: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, row := range rows {
		comments[i] = row.toComment()
	}
	return comments, nil
}

// ListReplies returns the active direct replies of a comment, oldest
// first, carrying the stored reply_count of each reply.
func (r *commentRepository) ListReplies(ctx context.Context, parentID string) ([]model.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.author_id, c.parent_comment_id, c.ancestor_comment_id,
		       c.content, c.like_count, c.reply_count, c.created_at, c.updated_at,
		       u.name AS "author.name", u.avatar AS "author.avatar"
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.parent_comment_id = $1 AND c.deleted_at = $2
		ORDER BY c.created_at ASC
	`
	var rows []commentRow
	err := r.db.SelectContext(ctx, &rows, query, parentID, model.ActiveSentinel)
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, row := range rows {
		comments[i] = row.toComment()
	}
	return comments, nil
}
