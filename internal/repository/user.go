package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"prompthub/internal/model"
)

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user. The id is generated application-side; the
// deleted_at sentinel marks the row active and keeps the compound unique
// index (email, deleted_at) satisfied.
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	query := `
		INSERT INTO users (id, email, password, name, phone, role, avatar, status, deleted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING role, status, created_at, updated_at
	`
	row := r.db.QueryRowxContext(ctx, query,
		u.ID,
		u.Email,
		u.Password,
		u.Name,
		u.Phone,
		model.RoleUser,
		u.Avatar,
		model.UserStatusActive,
		model.ActiveSentinel,
	)

	err := row.Scan(&u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	u.DeletedAt = model.ActiveSentinel

	return nil
}

// GetByID retrieves an active user by id
func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `
		SELECT id, email, password, name, phone, role, avatar, status, deleted_at, created_at, updated_at
		FROM users
		WHERE id = $1 AND deleted_at = $2
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id, model.ActiveSentinel)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &u, nil
}

// GetByEmail retrieves an active user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, email, password, name, phone, role, avatar, status, deleted_at, created_at, updated_at
		FROM users
		WHERE email = $1 AND deleted_at = $2
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, email, model.ActiveSentinel)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &u, nil
}

// ExistsByEmail checks if an active account already uses the email
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND deleted_at = $2)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, email, model.ActiveSentinel)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// ExistsByPhone checks if an active account already uses the phone number
func (r *userRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE phone = $1 AND deleted_at = $2)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, phone, model.ActiveSentinel)
	if err != nil {
		return false, fmt.Errorf("failed to check phone existence: %w", err)
	}

	return exists, nil
}

// UpdateAvatar sets the avatar URL on an active user
func (r *userRepository) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	query := `
		UPDATE users SET avatar = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at = $3
	`
	result, err := r.db.ExecContext(ctx, query, avatarURL, userID, model.ActiveSentinel)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}
	return nil
}
