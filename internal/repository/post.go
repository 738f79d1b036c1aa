package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"prompthub/internal/cache"
	"prompthub/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// postRow scans a post joined with its author.
type postRow struct {
	ID           string    `db:"id"`
	AuthorID     string    `db:"author_id"`
	Title        string    `db:"title"`
	Description  *string   `db:"description"`
	Content      string    `db:"content"`
	Tags         string    `db:"tags"`
	Status       string    `db:"status"`
	LikeCount    int       `db:"like_count"`
	CommentCount int       `db:"comment_count"`
	ForkCount    int       `db:"fork_count"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	AuthorName   string    `db:"author.name"`
	AuthorAvatar *string   `db:"author.avatar"`
}

func (row postRow) toPost() model.Post {
	return model.Post{
		ID:           row.ID,
		AuthorID:     row.AuthorID,
		Title:        row.Title,
		Description:  row.Description,
		Content:      row.Content,
		Tags:         splitTags(row.Tags),
		Status:       row.Status,
		LikeCount:    row.LikeCount,
		CommentCount: row.CommentCount,
		ForkCount:    row.ForkCount,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		Author: &model.UserSummary{
			ID:     row.AuthorID,
			Name:   row.AuthorName,
			Avatar: row.AuthorAvatar,
		},
	}
}

const postSelectColumns = `
	p.id, p.author_id, p.title, p.description, p.content, p.tags, p.status,
	p.like_count, p.comment_count, p.fork_count, p.created_at, p.updated_at,
	u.name AS "author.name", u.avatar AS "author.avatar"
`

// Create inserts a new post with zeroed counters.
func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = model.PostStatusActive
	}
	query := `
		INSERT INTO posts (id, author_id, title, description, content, tags, status, deleted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING like_count, comment_count, fork_count, created_at, updated_at
	`
	row := r.db.QueryRowxContext(ctx, query,
		p.ID,
		p.AuthorID,
		p.Title,
		p.Description,
		p.Content,
		joinTags(p.Tags),
		p.Status,
		model.ActiveSentinel,
	)
	err := row.Scan(&p.LikeCount, &p.CommentCount, &p.ForkCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	p.DeletedAt = model.ActiveSentinel
	p.Tags = splitTags(joinTags(p.Tags))
	return nil
}

// GetByID retrieves a single active post with its author.
// Hidden posts are still returned here; callers that only want the public
// listing go through List, which filters on status.
func (r *postRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	query := `
		SELECT ` + postSelectColumns + `
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1 AND p.deleted_at = $2
	`
	var row postRow
	err := r.db.GetContext(ctx, &row, query, id, model.ActiveSentinel)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	post := row.toPost()
	return &post, nil
}

// GetByIDs retrieves active posts re-ordered to match the input ids.
// Used for hydrating the popular listing from the trending cache.
func (r *postRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Post, error) {
	if len(ids) == 0 {
		return []model.Post{}, nil
	}

	query := `
		SELECT ` + postSelectColumns + `
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = ANY($1) AND p.deleted_at = $2 AND p.status = $3
	`
	var rows []postRow
	err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids), model.ActiveSentinel, model.PostStatusActive)
	if err != nil {
		return nil, fmt.Errorf("get posts by ids: %w", err)
	}

	byID := make(map[string]model.Post, len(rows))
	for _, row := range rows {
		byID[row.ID] = row.toPost()
	}
	ordered := make([]model.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// List returns active posts matching the filter plus the total match count.
func (r *postRepository) List(ctx context.Context, filter model.PostFilter) ([]model.Post, int, error) {
	conditions := []string{"p.deleted_at = $1", "p.status = $2"}
	args := []interface{}{model.ActiveSentinel, model.PostStatusActive}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern)
		n := len(args)
		conditions = append(conditions,
			fmt.Sprintf("(p.title ILIKE $%d OR p.description ILIKE $%d OR p.content ILIKE $%d)", n, n, n))
	}
	if filter.Tag != "" {
		args = append(args, "%"+filter.Tag+"%")
		conditions = append(conditions, fmt.Sprintf("p.tags LIKE $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	orderBy := "p.created_at DESC"
	switch filter.Sort {
	case model.SortPopular:
		orderBy = "p.like_count DESC, p.created_at DESC"
	case model.SortMostForked:
		orderBy = "p.fork_count DESC, p.created_at DESC"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM posts p WHERE " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, postSelectColumns, where, orderBy, len(args)-1, len(args))

	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}

	posts := make([]model.Post, len(rows))
	for i, row := range rows {
		posts[i] = row.toPost()
	}
	return posts, total, nil
}

// ListByAuthor returns the author's own active posts, newest update first.
// Unlike List it includes hidden posts: owners see everything they wrote.
func (r *postRepository) ListByAuthor(ctx context.Context, authorID string, page, limit int) ([]model.Post, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM posts WHERE author_id = $1 AND deleted_at = $2`,
		authorID, model.ActiveSentinel)
	if err != nil {
		return nil, 0, fmt.Errorf("count author posts: %w", err)
	}

	query := `
		SELECT ` + postSelectColumns + `
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.author_id = $1 AND p.deleted_at = $2
		ORDER BY p.updated_at DESC
		LIMIT $3 OFFSET $4
	`
	var rows []postRow
	err = r.db.SelectContext(ctx, &rows, query, authorID, model.ActiveSentinel, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list author posts: %w", err)
	}

	posts := make([]model.Post, len(rows))
	for i, row := range rows {
		posts[i] = row.toPost()
	}
	return posts, total, nil
}

// Update persists the mutable post fields. Ownership is enforced in the
// WHERE clause; a foreign post surfaces as not found.
func (r *postRepository) Update(ctx context.Context, p *model.Post) error {
	query := `
		UPDATE posts
		SET title = $1, description = $2, content = $3, tags = $4, status = $5, updated_at = NOW()
		WHERE id = $6 AND author_id = $7 AND deleted_at = $8
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		p.Title, p.Description, p.Content, joinTags(p.Tags), p.Status,
		p.ID, p.AuthorID, model.ActiveSentinel,
	).Scan(&p.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.ErrPostNotFound
	}
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// SoftDelete writes the real deletion time over the sentinel.
func (r *postRepository) SoftDelete(ctx context.Context, id, authorID string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE posts SET deleted_at = NOW()
		WHERE id = $1 AND author_id = $2 AND deleted_at = $3
	`, id, authorID, model.ActiveSentinel)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

// Exists checks if a post is active and visible.
func (r *postRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1 AND status = $2 AND deleted_at = $3)`,
		id, model.PostStatusActive, model.ActiveSentinel)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}

// CheckLikes checks which posts the user has liked.
// Returns a map of post id -> liked.
func (r *postRepository) CheckLikes(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		result[id] = false
	}
	if len(postIDs) == 0 {
		return result, nil
	}

	var likedIDs []string
	err := r.db.SelectContext(ctx, &likedIDs,
		`SELECT post_id FROM post_likes WHERE user_id = $1 AND post_id = ANY($2)`,
		userID, pq.Array(postIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("check likes: %w", err)
	}
	for _, id := range likedIDs {
		result[id] = true
	}
	return result, nil
}

// Like inserts the like row and bumps the counter in one transaction.
// The (post_id, user_id) unique constraint resolves concurrent double-likes:
// the loser gets ErrAlreadyLiked and no counter change.
func (r *postRepository) Like(ctx context.Context, postID, userID string) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`, postID, userID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return 0, model.ErrAlreadyLiked
		}
		return 0, fmt.Errorf("insert like: %w", err)
	}

	var count int
	err = tx.QueryRowxContext(ctx, `
		UPDATE posts SET like_count = like_count + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at = $2
		RETURNING like_count
	`, postID, model.ActiveSentinel).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, model.ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("update like count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return count, nil
}

// Unlike deletes the like row and decrements the counter in one transaction.
func (r *postRepository) Unlike(ctx context.Context, postID, userID string) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return 0, fmt.Errorf("delete like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return 0, model.ErrNotLiked
	}

	var count int
	err = tx.QueryRowxContext(ctx, `
		UPDATE posts SET like_count = GREATEST(like_count - 1, 0), updated_at = NOW()
		WHERE id = $1 AND deleted_at = $2
		RETURNING like_count
	`, postID, model.ActiveSentinel).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, model.ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("update like count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return count, nil
}

// TopByLikes returns the highest-liked active posts for trending cache warming.
func (r *postRepository) TopByLikes(ctx context.Context, limit int) ([]cache.PostScore, error) {
	type row struct {
		ID        string `db:"id"`
		LikeCount int    `db:"like_count"`
	}
	var rows []row
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, like_count
		FROM posts
		WHERE deleted_at = $1 AND status = $2
		ORDER BY like_count DESC, created_at DESC
		LIMIT $3
	`, model.ActiveSentinel, model.PostStatusActive, limit)
	if err != nil {
		return nil, fmt.Errorf("top posts by likes: %w", err)
	}

	scores := make([]cache.PostScore, len(rows))
	for i, r := range rows {
		scores[i] = cache.PostScore{PostID: r.ID, Score: float64(r.LikeCount)}
	}
	return scores, nil
}
