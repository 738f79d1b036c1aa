package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"unicode/utf8"

	"prompthub/internal/cache"
	"prompthub/internal/model"
	"prompthub/internal/repository"
)

// PostService handles business logic for published posts, likes and the
// trending listing.
type PostService struct {
	repo     repository.PostRepository
	trending cache.TrendingCache // nil when Redis is not configured
}

func NewPostService(repo repository.PostRepository, trending cache.TrendingCache) *PostService {
	return &PostService{
		repo:     repo,
		trending: trending,
	}
}

func validatePostTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", model.ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > model.MaxPostTitleLength {
		return "", model.ErrTitleTooLong
	}
	return title, nil
}

// Create publishes a new post.
func (s *PostService) Create(ctx context.Context, authorID string, req *model.CreatePostRequest) (*model.Post, error) {
	title, err := validatePostTitle(req.Title)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, model.ErrPostBodyRequired
	}

	post := &model.Post{
		AuthorID:    authorID,
		Title:       title,
		Description: req.Description,
		Content:     req.Content,
		Tags:        req.Tags,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Get retrieves a post, annotated with the viewer's like state when the
// viewer is signed in.
func (s *PostService) Get(ctx context.Context, id, viewerID string) (*model.Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewerID != "" {
		s.annotateLikes(ctx, viewerID, []*model.Post{post})
	}
	return post, nil
}

// List returns active posts matching the filter. The popular sort is served
// from the trending cache when warm; everything else, and any cache
// failure, goes straight to Postgres.
func (s *PostService) List(ctx context.Context, filter model.PostFilter, viewerID string) (*model.PostListResponse, error) {
	normalizeFilterPage(&filter.Page, &filter.Limit)

	if s.canServeFromTrending(filter) {
		if resp, ok := s.listFromTrending(ctx, filter); ok {
			s.annotateLikesInList(ctx, viewerID, resp.Data)
			return resp, nil
		}
	}

	posts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &model.PostListResponse{
		Data:       posts,
		Pagination: model.NewPagination(filter.Page, filter.Limit, total),
	}
	s.annotateLikesInList(ctx, viewerID, resp.Data)
	return resp, nil
}

// ListByAuthor returns the author's own posts, hidden ones included.
func (s *PostService) ListByAuthor(ctx context.Context, authorID string, page, limit int) (*model.PostListResponse, error) {
	normalizeFilterPage(&page, &limit)

	posts, total, err := s.repo.ListByAuthor(ctx, authorID, page, limit)
	if err != nil {
		return nil, err
	}
	s.annotateLikesInList(ctx, authorID, posts)
	return &model.PostListResponse{
		Data:       posts,
		Pagination: model.NewPagination(page, limit, total),
	}, nil
}

// Update applies the non-nil fields of the request to the author's post.
func (s *PostService) Update(ctx context.Context, id, authorID string, req *model.UpdatePostRequest) (*model.Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != authorID {
		// Owner-scoped: a foreign post looks missing, not forbidden.
		return nil, model.ErrPostNotFound
	}

	if req.Title != nil {
		title, err := validatePostTitle(*req.Title)
		if err != nil {
			return nil, err
		}
		post.Title = title
	}
	if req.Description != nil {
		post.Description = req.Description
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, model.ErrPostBodyRequired
		}
		post.Content = *req.Content
	}
	if req.Tags != nil {
		post.Tags = req.Tags
	}
	if req.Status != nil {
		if *req.Status != model.PostStatusActive && *req.Status != model.PostStatusHidden {
			return nil, model.ErrInvalidStatus
		}
		post.Status = *req.Status
	}

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}
	if post.Status != model.PostStatusActive {
		s.dropFromTrending(ctx, post.ID)
	}
	return post, nil
}

// Delete soft-deletes the author's post and drops it from trending.
func (s *PostService) Delete(ctx context.Context, id, authorID string) error {
	if err := s.repo.SoftDelete(ctx, id, authorID); err != nil {
		return err
	}
	s.dropFromTrending(ctx, id)
	return nil
}

// Like applies an increment or decrement like action for the user.
// Both directions are idempotent: liking an already-liked post or
// unliking a never-liked one is a no-op that reports the current state.
func (s *PostService) Like(ctx context.Context, postID, userID, action string) (*model.LikeState, error) {
	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if action == model.LikeActionDecrement {
		count, err := s.repo.Unlike(ctx, postID, userID)
		if errors.Is(err, model.ErrNotLiked) {
			return &model.LikeState{LikeCount: post.LikeCount, IsLiked: false}, nil
		}
		if err != nil {
			return nil, err
		}
		s.updateTrendingScore(ctx, postID, count)
		return &model.LikeState{LikeCount: count, IsLiked: false}, nil
	}

	count, err := s.repo.Like(ctx, postID, userID)
	if errors.Is(err, model.ErrAlreadyLiked) {
		return &model.LikeState{LikeCount: post.LikeCount, IsLiked: true}, nil
	}
	if err != nil {
		return nil, err
	}
	s.updateTrendingScore(ctx, postID, count)
	return &model.LikeState{LikeCount: count, IsLiked: true}, nil
}

func (s *PostService) canServeFromTrending(filter model.PostFilter) bool {
	return s.trending != nil &&
		filter.Sort == model.SortPopular &&
		filter.Search == "" &&
		filter.Tag == ""
}

// listFromTrending serves one page of the unfiltered popular listing from
// the cache. Returns ok=false whenever the caller should fall back to the
// database.
func (s *PostService) listFromTrending(ctx context.Context, filter model.PostFilter) (*model.PostListResponse, bool) {
	warm, err := s.trending.Exists(ctx)
	if err != nil {
		log.Printf("[PostService] trending cache check failed: %v", err)
		return nil, false
	}
	if !warm {
		if err := s.warmTrending(ctx); err != nil {
			log.Printf("[PostService] trending cache warm failed: %v", err)
			return nil, false
		}
	}

	size, err := s.trending.Size(ctx)
	if err != nil {
		return nil, false
	}
	offset := (filter.Page - 1) * filter.Limit
	if int64(offset) >= size && size > 0 {
		return &model.PostListResponse{
			Data:       []model.Post{},
			Pagination: model.NewPagination(filter.Page, filter.Limit, int(size)),
		}, true
	}

	ids, err := s.trending.Top(ctx, offset, filter.Limit)
	if err != nil {
		log.Printf("[PostService] trending cache read failed: %v", err)
		return nil, false
	}

	posts, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, false
	}
	return &model.PostListResponse{
		Data:       posts,
		Pagination: model.NewPagination(filter.Page, filter.Limit, int(size)),
	}, true
}

func (s *PostService) warmTrending(ctx context.Context) error {
	scores, err := s.repo.TopByLikes(ctx, cache.TrendingCap)
	if err != nil {
		return err
	}
	return s.trending.Warm(ctx, scores)
}

func (s *PostService) updateTrendingScore(ctx context.Context, postID string, likeCount int) {
	if s.trending == nil {
		return
	}
	if err := s.trending.SetScore(ctx, postID, float64(likeCount)); err != nil {
		log.Printf("[PostService] trending score update failed for post %s: %v", postID, err)
	}
}

func (s *PostService) dropFromTrending(ctx context.Context, postID string) {
	if s.trending == nil {
		return
	}
	if err := s.trending.Remove(ctx, postID); err != nil {
		log.Printf("[PostService] trending remove failed for post %s: %v", postID, err)
	}
}

// annotateLikes fills IsLiked on the given posts for the viewer.
// Failures only cost the annotation, never the listing.
func (s *PostService) annotateLikes(ctx context.Context, viewerID string, posts []*model.Post) {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	liked, err := s.repo.CheckLikes(ctx, viewerID, ids)
	if err != nil {
		log.Printf("[PostService] like annotation failed: %v", err)
		return
	}
	for _, p := range posts {
		p.IsLiked = liked[p.ID]
	}
}

func (s *PostService) annotateLikesInList(ctx context.Context, viewerID string, posts []model.Post) {
	if viewerID == "" || len(posts) == 0 {
		return
	}
	refs := make([]*model.Post, len(posts))
	for i := range posts {
		refs[i] = &posts[i]
	}
	s.annotateLikes(ctx, viewerID, refs)
}
