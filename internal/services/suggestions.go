package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"autodrive-service/internal/adapters/cache"
	"autodrive-service/internal/domain"
	"autodrive-service/internal/platform/ratelimit"
	"autodrive-service/internal/ports"
)

// ErrRateLimited reports that the shared fetch budget denied a resolution.
// It is control flow, not a provider failure; callers may retry later.
var ErrRateLimited = errors.New("rate limit exceeded")

// SuggestionService backs the type-ahead search feature.
//
// It shares the remote-fetch rate limiter with the scene prefetch path and
// consults the coordinate cache before issuing geocode requests, so a place
// resolved once in a session never costs a second network call.
type SuggestionService struct {
	provider ports.GeocodeSearchProvider
	coords   *cache.CoordinateCache
	limiter  *ratelimit.SlidingWindow
}

func NewSuggestionService(
	provider ports.GeocodeSearchProvider,
	coords *cache.CoordinateCache,
	limiter *ratelimit.SlidingWindow,
) *SuggestionService {
	return &SuggestionService{
		provider: provider,
		coords:   coords,
		limiter:  limiter,
	}
}

// Suggest returns type-ahead candidates for a partial query.
// A denied admission drops the request: type-ahead results are transient,
// so the user simply sees no new candidates until the window frees up.
func (s *SuggestionService) Suggest(ctx context.Context, query string) ([]ports.Suggestion, error) {
	if s.limiter != nil && !s.limiter.TryAcquire() {
		log.Printf("suggest dropped: rate limited query=%q wait=%v", query, s.limiter.WaitTime())
		return []ports.Suggestion{}, nil
	}

	out, err := s.provider.Suggest(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("suggest %q: %w", query, err)
	}
	return out, nil
}

// Resolve geocodes a chosen suggestion, serving repeats from the cache.
// First successful resolutions are cached for the process lifetime.
func (s *SuggestionService) Resolve(ctx context.Context, title, subtitle string) (domain.Coordinates, error) {
	if s.coords != nil {
		if coord, ok := s.coords.Lookup(title, subtitle); ok {
			return coord, nil
		}
	}

	if s.limiter != nil && !s.limiter.TryAcquire() {
		return domain.Coordinates{}, ErrRateLimited
	}

	coord, err := s.provider.Resolve(ctx, title, subtitle)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("resolve %q / %q: %w", title, subtitle, err)
	}

	if s.coords != nil {
		s.coords.Store(coord, title, subtitle)
	}
	return coord, nil
}
