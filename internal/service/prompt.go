package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"prompthub/internal/model"
	"prompthub/internal/repository"
)

// PromptService handles business logic for a user's private prompt library.
// Every operation is scoped to the acting user; foreign prompts are
// reported as not found.
type PromptService struct {
	repo repository.PromptRepository
}

func NewPromptService(repo repository.PromptRepository) *PromptService {
	return &PromptService{repo: repo}
}

// Create stores a new prompt for the author.
func (s *PromptService) Create(ctx context.Context, authorID string, req *model.CreatePromptRequest) (*model.Prompt, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, model.ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > model.MaxPromptTitleLength {
		return nil, model.ErrTitleTooLong
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, model.ErrPromptContentRequired
	}

	prompt := &model.Prompt{
		AuthorID:    authorID,
		Title:       title,
		Content:     req.Content,
		Description: req.Description,
		Type:        req.Type,
	}
	if err := s.repo.Create(ctx, prompt); err != nil {
		return nil, err
	}
	return prompt, nil
}

// Get retrieves one of the author's prompts.
func (s *PromptService) Get(ctx context.Context, id, authorID string) (*model.Prompt, error) {
	return s.repo.GetByIDForAuthor(ctx, id, authorID)
}

// List returns the author's prompts with pagination metadata.
func (s *PromptService) List(ctx context.Context, authorID string, filter model.PromptFilter) (*model.PromptListResponse, error) {
	normalizeFilterPage(&filter.Page, &filter.Limit)

	prompts, total, err := s.repo.List(ctx, authorID, filter)
	if err != nil {
		return nil, err
	}
	return &model.PromptListResponse{
		Data:       prompts,
		Pagination: model.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

// Update applies the non-nil fields of the request to the author's prompt.
func (s *PromptService) Update(ctx context.Context, id, authorID string, req *model.UpdatePromptRequest) (*model.Prompt, error) {
	prompt, err := s.repo.GetByIDForAuthor(ctx, id, authorID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, model.ErrTitleRequired
		}
		if utf8.RuneCountInString(title) > model.MaxPromptTitleLength {
			return nil, model.ErrTitleTooLong
		}
		prompt.Title = title
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, model.ErrPromptContentRequired
		}
		prompt.Content = *req.Content
	}
	if req.Description != nil {
		prompt.Description = req.Description
	}
	if req.Type != nil {
		prompt.Type = *req.Type
	}
	if req.Status != nil {
		prompt.Status = *req.Status
	}

	if err := s.repo.Update(ctx, prompt); err != nil {
		return nil, err
	}
	return prompt, nil
}

// Delete soft-deletes the author's prompt.
func (s *PromptService) Delete(ctx context.Context, id, authorID string) error {
	return s.repo.SoftDelete(ctx, id, authorID)
}
