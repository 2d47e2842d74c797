package ports

import (
	"context"

	"autodrive-service/internal/domain"
)

// A single type-ahead search result.
type Suggestion struct {
	Title    string
	Subtitle string
}

// Contract for the type-ahead search feature.
// Suggest returns candidate places for a partial query; Resolve geocodes a
// chosen suggestion into coordinates.
type GeocodeSearchProvider interface {
	Suggest(ctx context.Context, query string) ([]Suggestion, error)
	Resolve(ctx context.Context, title string, subtitle string) (domain.Coordinates, error)
}
