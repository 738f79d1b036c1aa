package service

import (
	"context"
	"log"
	"strings"
	"unicode/utf8"

	"prompthub/internal/model"
	"prompthub/internal/repository"
)

// CommentService handles the comment tree of a post: top-level listing
// with reply badges, lazy reply expansion and nested creation.
type CommentService struct {
	repo     repository.CommentRepository
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

func NewCommentService(repo repository.CommentRepository, postRepo repository.PostRepository, userRepo repository.UserRepository) *CommentService {
	return &CommentService{
		repo:     repo,
		postRepo: postRepo,
		userRepo: userRepo,
	}
}

// Create validates and stores a comment on the post. For replies, the
// parent must be an active comment of the same post; a parent on another
// post is treated as missing rather than revealed.
func (s *CommentService) Create(ctx context.Context, postID, authorID string, req *model.CreateCommentRequest) (*model.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.ErrContentRequired
	}
	if utf8.RuneCountInString(content) > model.MaxCommentLength {
		return nil, model.ErrContentTooLong
	}

	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	var parent *model.Comment
	if req.ParentCommentID != nil {
		parent, err = s.repo.GetActiveByID(ctx, *req.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, model.ErrCommentNotFound
		}
	}

	comment, err := s.repo.Create(ctx, postID, authorID, content, parent)
	if err != nil {
		return nil, err
	}

	// Hydrate the author summary so the client can render the new comment
	// without refetching the thread.
	if author, err := s.userRepo.GetByID(ctx, authorID); err == nil {
		comment.Author = author.Summary()
	} else {
		log.Printf("[CommentService] author hydration failed for user %s: %v", authorID, err)
	}
	return comment, nil
}

// ListTopLevel returns the post's top-level comments, newest first, each
// carrying the number of active replies beneath it.
func (s *CommentService) ListTopLevel(ctx context.Context, postID string) ([]model.Comment, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}
	return s.repo.ListTopLevel(ctx, postID)
}

// ListReplies returns the direct replies of a comment on the post, oldest
// first. Used by clients to expand one thread at a time.
func (s *CommentService) ListReplies(ctx context.Context, postID, commentID string) ([]model.Comment, error) {
	parent, err := s.repo.GetActiveByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if parent.PostID != postID {
		return nil, model.ErrCommentNotFound
	}
	return s.repo.ListReplies(ctx, commentID)
}
