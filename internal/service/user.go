package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"prompthub/internal/model"
	"prompthub/internal/repository"
)

// Validation patterns for registration input.
var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	passwordCharset = regexp.MustCompile(`^[A-Za-z\d]{8,}$`)
	hasLetter       = regexp.MustCompile(`[A-Za-z]`)
	hasDigit        = regexp.MustCompile(`\d`)
	phonePattern    = regexp.MustCompile(`^1[3-9]\d{9}$`)
)

// UserService handles business logic for user operations
type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register creates a new user account.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if !emailPattern.MatchString(email) {
		return nil, model.ErrInvalidEmail
	}
	// Passwords are at least 8 characters of letters and digits only,
	// with at least one of each.
	if !passwordCharset.MatchString(req.Password) ||
		!hasLetter.MatchString(req.Password) ||
		!hasDigit.MatchString(req.Password) {
		return nil, model.ErrInvalidPassword
	}

	var phone *string
	if req.Phone != nil && *req.Phone != "" {
		p := strings.TrimSpace(*req.Phone)
		if !phonePattern.MatchString(p) {
			return nil, model.ErrInvalidPhone
		}
		phone = &p
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	if phone != nil {
		exists, err := s.repo.ExistsByPhone(ctx, *phone)
		if err != nil {
			return nil, fmt.Errorf("failed to check phone: %w", err)
		}
		if exists {
			return nil, model.ErrPhoneExists
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		// Fall back to the local part of the email.
		name = strings.SplitN(email, "@", 2)[0]
	}

	user := &model.User{
		Email:    email,
		Password: string(hashedPassword),
		Name:     name,
		Phone:    phone,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login authenticates a user with email and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		// Don't reveal whether the email exists.
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if user.Status == model.UserStatusBanned {
		return nil, model.ErrInvalidCredentials
	}
	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateAvatar persists a new avatar URL for the user.
func (s *UserService) UpdateAvatar(ctx context.Context, userID, avatarURL string) (*model.User, error) {
	if err := s.repo.UpdateAvatar(ctx, userID, avatarURL); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}
