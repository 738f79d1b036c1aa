package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"prompthub/internal/model"
)

type mockCommentRepository struct {
	createFn        func(ctx context.Context, postID, authorID, content string, parent *model.Comment) (*model.Comment, error)
	getActiveByIDFn func(ctx context.Context, id string) (*model.Comment, error)
	listTopLevelFn  func(ctx context.Context, postID string) ([]model.Comment, error)
	listRepliesFn   func(ctx context.Context, parentID string) ([]model.Comment, error)

	createCalls []commentCreateCall
}

type commentCreateCall struct {
	PostID   string
	AuthorID string
	Content  string
	Parent   *model.Comment
}

func (m *mockCommentRepository) Create(ctx context.Context, postID, authorID, content string, parent *model.Comment) (*model.Comment, error) {
	m.createCalls = append(m.createCalls, commentCreateCall{postID, authorID, content, parent})
	if m.createFn != nil {
		return m.createFn(ctx, postID, authorID, content, parent)
	}
	return &model.Comment{ID: "comment-1", PostID: postID, AuthorID: authorID, Content: content}, nil
}

func (m *mockCommentRepository) GetActiveByID(ctx context.Context, id string) (*model.Comment, error) {
	if m.getActiveByIDFn != nil {
		return m.getActiveByIDFn(ctx, id)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) ListTopLevel(ctx context.Context, postID string) ([]model.Comment, error) {
	if m.listTopLevelFn != nil {
		return m.listTopLevelFn(ctx, postID)
	}
	return []model.Comment{}, nil
}

func (m *mockCommentRepository) ListReplies(ctx context.Context, parentID string) ([]model.Comment, error) {
	if m.listRepliesFn != nil {
		return m.listRepliesFn(ctx, parentID)
	}
	return []model.Comment{}, nil
}

func newCommentService(commentRepo *mockCommentRepository, postRepo *mockPostRepository, userRepo *mockUserRepository) *CommentService {
	if postRepo == nil {
		postRepo = &mockPostRepository{
			existsFn: func(ctx context.Context, id string) (bool, error) { return true, nil },
		}
	}
	if userRepo == nil {
		userRepo = &mockUserRepository{
			getByIDFn: func(ctx context.Context, id string) (*model.User, error) {
				return &model.User{ID: id, Name: "Alice"}, nil
			},
		}
	}
	return NewCommentService(commentRepo, postRepo, userRepo)
}

// =============================================================================
// CREATE TESTS
// =============================================================================

func TestCommentService_Create_TopLevel(t *testing.T) {
	commentRepo := &mockCommentRepository{}
	svc := newCommentService(commentRepo, nil, nil)

	comment, err := svc.Create(context.Background(), "post-1", "user-1", &model.CreateCommentRequest{
		Content: "  nice prompt  ",
	})
	if err != nil {
		t.Fatalf("Create() error = %v, want nil", err)
	}

	if len(commentRepo.createCalls) != 1 {
		t.Fatalf("Create called %d times, want 1", len(commentRepo.createCalls))
	}
	call := commentRepo.createCalls[0]
	if call.Content != "nice prompt" {
		t.Errorf("content = %q, want trimmed %q", call.Content, "nice prompt")
	}
	if call.Parent != nil {
		t.Errorf("parent = %v, want nil for top-level comment", call.Parent)
	}
	if comment.Author == nil || comment.Author.Name != "Alice" {
		t.Errorf("author = %v, want hydrated summary", comment.Author)
	}
}

func TestCommentService_Create_Reply(t *testing.T) {
	parent := &model.Comment{
		ID:                "parent-1",
		PostID:            "post-1",
		AncestorCommentID: model.RootAncestorID,
	}
	commentRepo := &mockCommentRepository{
		getActiveByIDFn: func(ctx context.Context, id string) (*model.Comment, error) {
			if id == "parent-1" {
				return parent, nil
			}
			return nil, model.ErrCommentNotFound
		},
	}
	svc := newCommentService(commentRepo, nil, nil)

	parentID := "parent-1"
	_, err := svc.Create(context.Background(), "post-1", "user-1", &model.CreateCommentRequest{
		Content:         "I agree",
		ParentCommentID: &parentID,
	})
	if err != nil {
		t.Fatalf("Create() error = %v, want nil", err)
	}

	call := commentRepo.createCalls[0]
	if call.Parent == nil || call.Parent.ID != "parent-1" {
		t.Errorf("parent = %v, want parent-1", call.Parent)
	}
}

func TestCommentService_Create_ParentOnOtherPost(t *testing.T) {
	commentRepo := &mockCommentRepository{
		getActiveByIDFn: func(ctx context.Context, id string) (*model.Comment, error) {
			return &model.Comment{ID: id, PostID: "other-post"}, nil
		},
	}
	svc := newCommentService(commentRepo, nil, nil)

	parentID := "parent-1"
	_, err := svc.Create(context.Background(), "post-1", "user-1", &model.CreateCommentRequest{
		Content:         "hello",
		ParentCommentID: &parentID,
	})
	if !errors.Is(err, model.ErrCommentNotFound) {
		t.Errorf("Create() error = %v, want ErrCommentNotFound", err)
	}
	if len(commentRepo.createCalls) != 0 {
		t.Error("Create called despite cross-post parent")
	}
}

func TestCommentService_Create_PostMissing(t *testing.T) {
	commentRepo := &mockCommentRepository{}
	postRepo := &mockPostRepository{
		existsFn: func(ctx context.Context, id string) (bool, error) { return false, nil },
	}
	svc := newCommentService(commentRepo, postRepo, nil)

	_, err := svc.Create(context.Background(), "missing-post", "user-1", &model.CreateCommentRequest{
		Content: "hello",
	})
	if !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("Create() error = %v, want ErrPostNotFound", err)
	}
}

func TestCommentService_Create_ContentValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "empty", content: "", wantErr: model.ErrContentRequired},
		{name: "whitespace only", content: "   \n\t ", wantErr: model.ErrContentRequired},
		{name: "too long", content: strings.Repeat("x", model.MaxCommentLength+1), wantErr: model.ErrContentTooLong},
		// Multi-byte runes count as one character each, not one per byte.
		{name: "multibyte at the limit", content: strings.Repeat("é", model.MaxCommentLength)},
		{name: "multibyte over the limit", content: strings.Repeat("é", model.MaxCommentLength+1), wantErr: model.ErrContentTooLong},
		{name: "at the limit", content: strings.Repeat("x", model.MaxCommentLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newCommentService(&mockCommentRepository{}, nil, nil)

			_, err := svc.Create(context.Background(), "post-1", "user-1", &model.CreateCommentRequest{
				Content: tt.content,
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// =============================================================================
// LISTING TESTS
// =============================================================================

func TestCommentService_ListTopLevel_PostMissing(t *testing.T) {
	postRepo := &mockPostRepository{
		existsFn: func(ctx context.Context, id string) (bool, error) { return false, nil },
	}
	svc := newCommentService(&mockCommentRepository{}, postRepo, nil)

	_, err := svc.ListTopLevel(context.Background(), "missing-post")
	if !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("ListTopLevel() error = %v, want ErrPostNotFound", err)
	}
}

func TestCommentService_ListReplies(t *testing.T) {
	commentRepo := &mockCommentRepository{
		getActiveByIDFn: func(ctx context.Context, id string) (*model.Comment, error) {
			return &model.Comment{ID: id, PostID: "post-1", AncestorCommentID: model.RootAncestorID}, nil
		},
		listRepliesFn: func(ctx context.Context, parentID string) ([]model.Comment, error) {
			return []model.Comment{{ID: "reply-1", ParentCommentID: &parentID}}, nil
		},
	}
	svc := newCommentService(commentRepo, nil, nil)

	replies, err := svc.ListReplies(context.Background(), "post-1", "parent-1")
	if err != nil {
		t.Fatalf("ListReplies() error = %v, want nil", err)
	}
	if len(replies) != 1 || replies[0].ID != "reply-1" {
		t.Errorf("replies = %v, want [reply-1]", replies)
	}
}

func TestCommentService_ListReplies_ParentOnOtherPost(t *testing.T) {
	commentRepo := &mockCommentRepository{
		getActiveByIDFn: func(ctx context.Context, id string) (*model.Comment, error) {
			return &model.Comment{ID: id, PostID: "other-post"}, nil
		},
	}
	svc := newCommentService(commentRepo, nil, nil)

	_, err := svc.ListReplies(context.Background(), "post-1", "parent-1")
	if !errors.Is(err, model.ErrCommentNotFound) {
		t.Errorf("ListReplies() error = %v, want ErrCommentNotFound", err)
	}
}
