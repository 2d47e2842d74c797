package ports

import (
	"context"
	"errors"

	"autodrive-service/internal/domain"
)

// ErrSceneUnavailable reports that the provider has no panorama at or near
// the requested location. Callers treat it as a terminal per-point outcome.
var ErrSceneUnavailable = errors.New("no scene available at this location")

// Contract for retrieving a street-level scene for a coordinate.
// Implementations resolve the nearest available panorama; transient network
// failures and ErrSceneUnavailable are both terminal for a given request —
// retry policy belongs to the caller, not the provider.
type SceneProvider interface {
	FetchScene(ctx context.Context, position domain.Coordinates) (domain.SceneHandle, error)
}
