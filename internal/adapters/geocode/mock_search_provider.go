package geocode

import (
	"context"
	"fmt"
	"sync"

	"autodrive-service/internal/domain"
	"autodrive-service/internal/ports"
)

type MockPlace struct {
	Title    string
	Subtitle string
	Coord    domain.Coordinates
}

// MockSearchProvider serves a fixed set of places and counts provider calls
// so tests can assert cache and rate-limit behavior.
type MockSearchProvider struct {
	mu           sync.Mutex
	places       []MockPlace
	SuggestCalls int
	ResolveCalls int
}

func NewMockSearchProvider(places []MockPlace) *MockSearchProvider {
	return &MockSearchProvider{places: places}
}

func (m *MockSearchProvider) Suggest(ctx context.Context, query string) ([]ports.Suggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SuggestCalls++

	out := make([]ports.Suggestion, 0, len(m.places))
	for _, p := range m.places {
		out = append(out, ports.Suggestion{Title: p.Title, Subtitle: p.Subtitle})
	}
	return out, nil
}

func (m *MockSearchProvider) Resolve(ctx context.Context, title, subtitle string) (domain.Coordinates, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResolveCalls++

	for _, p := range m.places {
		if p.Title == title && p.Subtitle == subtitle {
			return p.Coord, nil
		}
	}
	return domain.Coordinates{}, fmt.Errorf("missing place %q / %q", title, subtitle)
}
