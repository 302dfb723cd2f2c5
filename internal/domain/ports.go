package domain

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// PlacesClient is the outbound port to the external places-search service.
// FetchDetails resolves one coarse candidate to a fully populated record;
// fields selects which provider fields to request.
type PlacesClient interface {
	TextSearch(ctx context.Context, term string) ([]RawCandidate, error)
	FindCandidates(ctx context.Context, term string) ([]RawCandidate, error)
	FetchDetails(ctx context.Context, placeID string, fields []string) (RawCandidate, error)

	// PhotoURL mints a fully qualified, key-bound photo fetch URL for a
	// photo reference. Empty input yields empty output.
	PhotoURL(ref string) string
}

type PostRepository interface {
	UpsertPost(ctx context.Context, p Post) error
	GetPost(ctx context.Context, slug string) (Post, error)
	ListPosts(ctx context.Context, limit int) (PostsPage, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
