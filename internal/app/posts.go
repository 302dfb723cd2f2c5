package app

import (
	"context"
	"fmt"
	"time"

	"placefinder/internal/domain"
)

// PostQueryService serves the public blog read path with a cache-aside
// layer in front of the repository.
type PostQueryService struct {
	repo     domain.PostRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewPostQueryService(r domain.PostRepository, c domain.Cache, ttl time.Duration) *PostQueryService {
	return &PostQueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *PostQueryService) GetPost(ctx context.Context, slug string) (domain.Post, error) {
	key := "post:" + slug
	var p domain.Post
	if ok, _ := s.cache.Get(ctx, key, &p); ok {
		return p, nil
	}
	p, err := s.repo.GetPost(ctx, slug)
	if err != nil {
		return domain.Post{}, err
	}
	_ = s.cache.Set(ctx, key, p, int(s.cacheTTL.Seconds()))
	return p, nil
}

func (s *PostQueryService) ListPosts(ctx context.Context, limit int) (domain.PostsPage, error) {
	key := fmt.Sprintf("posts:%d", limit)
	var out domain.PostsPage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	page, err := s.repo.ListPosts(ctx, limit)
	if err != nil {
		return domain.PostsPage{}, err
	}

	// copy before caching so callers can't mutate the cached slice
	cp := domain.PostsPage{}
	if n := len(page.Items); n > 0 {
		cp.Items = make([]domain.Post, n)
		copy(cp.Items, page.Items)
	}
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	return cp, nil
}
