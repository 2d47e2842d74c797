package services

import (
	"context"
	"testing"
	"time"

	"autodrive-service/internal/adapters/cache"
	"autodrive-service/internal/adapters/geocode"
	"autodrive-service/internal/domain"
	"autodrive-service/internal/platform/ratelimit"
)

func TestResolveServesRepeatsFromCache(t *testing.T) {
	coord := domain.Coordinates{Lat: 48.8584, Lon: 2.2945}
	provider := geocode.NewMockSearchProvider([]geocode.MockPlace{
		{Title: "Eiffel Tower", Subtitle: "Paris", Coord: coord},
	})

	svc := NewSuggestionService(provider, cache.NewCoordinateCache(), ratelimit.NewSlidingWindow(100, time.Minute))

	got, err := svc.Resolve(context.Background(), "Eiffel Tower", "Paris")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != coord {
		t.Fatalf("resolve = %+v, want %+v", got, coord)
	}

	// Case/whitespace variants must hit the cache, not the provider.
	got, err = svc.Resolve(context.Background(), "eiffel tower", " paris ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != coord {
		t.Fatalf("cached resolve = %+v, want %+v", got, coord)
	}
	if provider.ResolveCalls != 1 {
		t.Fatalf("provider resolve calls = %d, want 1", provider.ResolveCalls)
	}
}

func TestResolveDeniedByRateLimiter(t *testing.T) {
	provider := geocode.NewMockSearchProvider(nil)
	limiter := ratelimit.NewSlidingWindow(1, time.Minute)
	limiter.TryAcquire() // exhaust the window

	svc := NewSuggestionService(provider, cache.NewCoordinateCache(), limiter)

	_, err := svc.Resolve(context.Background(), "Somewhere", "Else")
	if err != ErrRateLimited {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	if provider.ResolveCalls != 0 {
		t.Fatalf("provider called %d times while denied, want 0", provider.ResolveCalls)
	}
}

func TestSuggestDropsWhenDenied(t *testing.T) {
	provider := geocode.NewMockSearchProvider([]geocode.MockPlace{
		{Title: "Pike Place", Subtitle: "Seattle"},
	})
	limiter := ratelimit.NewSlidingWindow(1, time.Minute)
	limiter.TryAcquire()

	svc := NewSuggestionService(provider, cache.NewCoordinateCache(), limiter)

	out, err := svc.Suggest(context.Background(), "pike")
	if err != nil {
		t.Fatalf("denied suggest should drop, not error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("denied suggest returned %d results, want 0", len(out))
	}
	if provider.SuggestCalls != 0 {
		t.Fatalf("provider called %d times while denied, want 0", provider.SuggestCalls)
	}
}
