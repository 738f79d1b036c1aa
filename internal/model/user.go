package model

import (
	"errors"
	"time"
)

// User represents a registered account.
type User struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password" json:"-"` // bcrypt hash, never serialized
	Name      string    `db:"name" json:"name"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Role      string    `db:"role" json:"role"`
	Avatar    *string   `db:"avatar" json:"avatar"`
	Status    string    `db:"status" json:"status"`
	DeletedAt time.Time `db:"deleted_at" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// UserSummary is the author shape embedded in posts and comments.
type UserSummary struct {
	ID     string  `db:"id" json:"id"`
	Name   string  `db:"name" json:"name"`
	Avatar *string `db:"avatar" json:"avatar"`
}

// Summary projects a user into the embeddable author shape.
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}

// RegisterRequest is the request body for POST /api/auth/register.
type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     string  `json:"name"`
	Phone    *string `json:"phone,omitempty"`
}

// LoginRequest is the request body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User roles and statuses
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"

	UserStatusActive = "active"
	UserStatusBanned = "banned"
)

// User errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already registered")
	ErrPhoneExists        = errors.New("phone already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidPassword    = errors.New("password must be at least 8 characters and contain both letters and digits")
	ErrInvalidPhone       = errors.New("invalid phone number")
)
