package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"prompthub/internal/cache"
	"prompthub/internal/model"
)

type mockPostRepository struct {
	createFn       func(ctx context.Context, post *model.Post) error
	getByIDFn      func(ctx context.Context, id string) (*model.Post, error)
	getByIDsFn     func(ctx context.Context, ids []string) ([]model.Post, error)
	listFn         func(ctx context.Context, filter model.PostFilter) ([]model.Post, int, error)
	listByAuthorFn func(ctx context.Context, authorID string, page, limit int) ([]model.Post, int, error)
	updateFn       func(ctx context.Context, post *model.Post) error
	softDeleteFn   func(ctx context.Context, id, authorID string) error
	existsFn       func(ctx context.Context, id string) (bool, error)
	checkLikesFn   func(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
	likeFn         func(ctx context.Context, postID, userID string) (int, error)
	unlikeFn       func(ctx context.Context, postID, userID string) (int, error)
	topByLikesFn   func(ctx context.Context, limit int) ([]cache.PostScore, error)
}

func (m *mockPostRepository) Create(ctx context.Context, post *model.Post) error {
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	post.ID = "post-1"
	return nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Post, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return []model.Post{}, nil
}

func (m *mockPostRepository) List(ctx context.Context, filter model.PostFilter) ([]model.Post, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return []model.Post{}, 0, nil
}

func (m *mockPostRepository) ListByAuthor(ctx context.Context, authorID string, page, limit int) ([]model.Post, int, error) {
	if m.listByAuthorFn != nil {
		return m.listByAuthorFn(ctx, authorID, page, limit)
	}
	return []model.Post{}, 0, nil
}

func (m *mockPostRepository) Update(ctx context.Context, post *model.Post) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, post)
	}
	return nil
}

func (m *mockPostRepository) SoftDelete(ctx context.Context, id, authorID string) error {
	if m.softDeleteFn != nil {
		return m.softDeleteFn(ctx, id, authorID)
	}
	return nil
}

func (m *mockPostRepository) Exists(ctx context.Context, id string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return true, nil
}

func (m *mockPostRepository) CheckLikes(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	if m.checkLikesFn != nil {
		return m.checkLikesFn(ctx, userID, postIDs)
	}
	return map[string]bool{}, nil
}

func (m *mockPostRepository) Like(ctx context.Context, postID, userID string) (int, error) {
	if m.likeFn != nil {
		return m.likeFn(ctx, postID, userID)
	}
	return 1, nil
}

func (m *mockPostRepository) Unlike(ctx context.Context, postID, userID string) (int, error) {
	if m.unlikeFn != nil {
		return m.unlikeFn(ctx, postID, userID)
	}
	return 0, nil
}

func (m *mockPostRepository) TopByLikes(ctx context.Context, limit int) ([]cache.PostScore, error) {
	if m.topByLikesFn != nil {
		return m.topByLikesFn(ctx, limit)
	}
	return []cache.PostScore{}, nil
}

// mockTrendingCache is an in-memory stand-in for the Redis sorted set.
type mockTrendingCache struct {
	ids    []string
	scores map[string]float64
	warm   bool
}

func (m *mockTrendingCache) Top(ctx context.Context, offset, limit int) ([]string, error) {
	if offset >= len(m.ids) {
		return []string{}, nil
	}
	end := offset + limit
	if end > len(m.ids) {
		end = len(m.ids)
	}
	return m.ids[offset:end], nil
}

func (m *mockTrendingCache) Exists(ctx context.Context) (bool, error) { return m.warm, nil }

func (m *mockTrendingCache) Warm(ctx context.Context, posts []cache.PostScore) error {
	m.warm = true
	m.ids = m.ids[:0]
	for _, p := range posts {
		m.ids = append(m.ids, p.PostID)
	}
	return nil
}

func (m *mockTrendingCache) SetScore(ctx context.Context, postID string, score float64) error {
	if m.scores == nil {
		m.scores = map[string]float64{}
	}
	m.scores[postID] = score
	return nil
}

func (m *mockTrendingCache) Remove(ctx context.Context, postID string) error {
	for i, id := range m.ids {
		if id == postID {
			m.ids = append(m.ids[:i], m.ids[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockTrendingCache) Size(ctx context.Context) (int64, error) { return int64(len(m.ids)), nil }

// =============================================================================
// CREATE / UPDATE TESTS
// =============================================================================

func TestPostService_Create_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     *model.CreatePostRequest
		wantErr error
	}{
		{
			name:    "missing title",
			req:     &model.CreatePostRequest{Content: "body"},
			wantErr: model.ErrTitleRequired,
		},
		{
			name:    "whitespace title",
			req:     &model.CreatePostRequest{Title: "   ", Content: "body"},
			wantErr: model.ErrTitleRequired,
		},
		{
			name:    "title too long",
			req:     &model.CreatePostRequest{Title: strings.Repeat("x", model.MaxPostTitleLength+1), Content: "body"},
			wantErr: model.ErrTitleTooLong,
		},
		{
			name:    "missing content",
			req:     &model.CreatePostRequest{Title: "My prompt"},
			wantErr: model.ErrPostBodyRequired,
		},
		{
			name: "valid",
			req:  &model.CreatePostRequest{Title: "My prompt", Content: "body"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewPostService(&mockPostRepository{}, nil)

			_, err := svc.Create(context.Background(), "user-1", tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPostService_Update_ForeignPostLooksMissing(t *testing.T) {
	repo := &mockPostRepository{
		getByIDFn: func(ctx context.Context, id string) (*model.Post, error) {
			return &model.Post{ID: id, AuthorID: "someone-else", Title: "t", Content: "c"}, nil
		},
	}
	svc := NewPostService(repo, nil)

	title := "New title"
	_, err := svc.Update(context.Background(), "post-1", "user-1", &model.UpdatePostRequest{Title: &title})
	if !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("Update() error = %v, want ErrPostNotFound", err)
	}
}

// =============================================================================
// LIKE TESTS
// =============================================================================

func TestPostService_Like(t *testing.T) {
	post := &model.Post{ID: "post-1", AuthorID: "author-1", LikeCount: 5}

	tests := []struct {
		name      string
		action    string
		likeErr   error
		unlikeErr error
		wantCount int
		wantLiked bool
	}{
		{
			name:      "increment",
			action:    model.LikeActionIncrement,
			wantCount: 6,
			wantLiked: true,
		},
		{
			name:      "increment is idempotent",
			action:    model.LikeActionIncrement,
			likeErr:   model.ErrAlreadyLiked,
			wantCount: 5,
			wantLiked: true,
		},
		{
			name:      "decrement",
			action:    model.LikeActionDecrement,
			wantCount: 4,
			wantLiked: false,
		},
		{
			name:      "decrement is idempotent",
			action:    model.LikeActionDecrement,
			unlikeErr: model.ErrNotLiked,
			wantCount: 5,
			wantLiked: false,
		},
		{
			name:      "unknown action defaults to increment",
			action:    "whatever",
			wantCount: 6,
			wantLiked: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockPostRepository{
				getByIDFn: func(ctx context.Context, id string) (*model.Post, error) {
					copied := *post
					return &copied, nil
				},
				likeFn: func(ctx context.Context, postID, userID string) (int, error) {
					if tt.likeErr != nil {
						return 0, tt.likeErr
					}
					return 6, nil
				},
				unlikeFn: func(ctx context.Context, postID, userID string) (int, error) {
					if tt.unlikeErr != nil {
						return 0, tt.unlikeErr
					}
					return 4, nil
				},
			}
			svc := NewPostService(repo, nil)

			state, err := svc.Like(context.Background(), "post-1", "user-1", tt.action)
			if err != nil {
				t.Fatalf("Like() error = %v, want nil", err)
			}
			if state.LikeCount != tt.wantCount {
				t.Errorf("likeCount = %d, want %d", state.LikeCount, tt.wantCount)
			}
			if state.IsLiked != tt.wantLiked {
				t.Errorf("isLiked = %v, want %v", state.IsLiked, tt.wantLiked)
			}
		})
	}
}

func TestPostService_Like_UpdatesTrendingScore(t *testing.T) {
	repo := &mockPostRepository{
		getByIDFn: func(ctx context.Context, id string) (*model.Post, error) {
			return &model.Post{ID: id, LikeCount: 5}, nil
		},
		likeFn: func(ctx context.Context, postID, userID string) (int, error) {
			return 6, nil
		},
	}
	trending := &mockTrendingCache{warm: true}
	svc := NewPostService(repo, trending)

	if _, err := svc.Like(context.Background(), "post-1", "user-1", model.LikeActionIncrement); err != nil {
		t.Fatalf("Like() error = %v, want nil", err)
	}
	if trending.scores["post-1"] != 6 {
		t.Errorf("trending score = %v, want 6", trending.scores["post-1"])
	}
}

// =============================================================================
// LISTING TESTS
// =============================================================================

func TestPostService_List_PopularServedFromTrending(t *testing.T) {
	dbCalled := false
	repo := &mockPostRepository{
		listFn: func(ctx context.Context, filter model.PostFilter) ([]model.Post, int, error) {
			dbCalled = true
			return []model.Post{}, 0, nil
		},
		getByIDsFn: func(ctx context.Context, ids []string) ([]model.Post, error) {
			posts := make([]model.Post, len(ids))
			for i, id := range ids {
				posts[i] = model.Post{ID: id}
			}
			return posts, nil
		},
	}
	trending := &mockTrendingCache{
		warm: true,
		ids:  []string{"post-3", "post-1", "post-2"},
	}
	svc := NewPostService(repo, trending)

	resp, err := svc.List(context.Background(), model.PostFilter{Sort: model.SortPopular, Page: 1, Limit: 10}, "")
	if err != nil {
		t.Fatalf("List() error = %v, want nil", err)
	}
	if dbCalled {
		t.Error("popular listing hit the database despite a warm cache")
	}
	if len(resp.Data) != 3 || resp.Data[0].ID != "post-3" {
		t.Errorf("data = %v, want cache order starting with post-3", resp.Data)
	}
}

func TestPostService_List_FilteredPopularBypassesTrending(t *testing.T) {
	dbCalled := false
	repo := &mockPostRepository{
		listFn: func(ctx context.Context, filter model.PostFilter) ([]model.Post, int, error) {
			dbCalled = true
			return []model.Post{}, 0, nil
		},
	}
	trending := &mockTrendingCache{warm: true, ids: []string{"post-1"}}
	svc := NewPostService(repo, trending)

	_, err := svc.List(context.Background(), model.PostFilter{Sort: model.SortPopular, Search: "golang", Page: 1, Limit: 10}, "")
	if err != nil {
		t.Fatalf("List() error = %v, want nil", err)
	}
	if !dbCalled {
		t.Error("filtered listing should always query the database")
	}
}

func TestPostService_List_ColdCacheWarmsFromDB(t *testing.T) {
	repo := &mockPostRepository{
		topByLikesFn: func(ctx context.Context, limit int) ([]cache.PostScore, error) {
			return []cache.PostScore{
				{PostID: "post-1", Score: 10},
				{PostID: "post-2", Score: 3},
			}, nil
		},
		getByIDsFn: func(ctx context.Context, ids []string) ([]model.Post, error) {
			posts := make([]model.Post, len(ids))
			for i, id := range ids {
				posts[i] = model.Post{ID: id}
			}
			return posts, nil
		},
	}
	trending := &mockTrendingCache{}
	svc := NewPostService(repo, trending)

	resp, err := svc.List(context.Background(), model.PostFilter{Sort: model.SortPopular, Page: 1, Limit: 10}, "")
	if err != nil {
		t.Fatalf("List() error = %v, want nil", err)
	}
	if !trending.warm {
		t.Error("cache was not warmed on the first popular request")
	}
	if len(resp.Data) != 2 {
		t.Errorf("data = %v, want 2 posts", resp.Data)
	}
}

func TestPostService_Delete_DropsFromTrending(t *testing.T) {
	repo := &mockPostRepository{}
	trending := &mockTrendingCache{warm: true, ids: []string{"post-1", "post-2"}}
	svc := NewPostService(repo, trending)

	if err := svc.Delete(context.Background(), "post-1", "user-1"); err != nil {
		t.Fatalf("Delete() error = %v, want nil", err)
	}
	if len(trending.ids) != 1 || trending.ids[0] != "post-2" {
		t.Errorf("trending ids = %v, want [post-2]", trending.ids)
	}
}
