package domain

// SceneHandle identifies a fetched street-level panorama.
// It carries enough metadata for the presentation layer to render the scene
// without another provider round-trip.
type SceneHandle struct {
	PanoID   string
	ImageURL string
	Location Coordinates
}

// FetchOutcome tracks the lifecycle of a scene fetch for one route point.
// Outcomes are mutually exclusive; Succeeded and Failed are terminal.
type FetchOutcome int

const (
	FetchUnresolved FetchOutcome = iota
	FetchLoading
	FetchSucceeded
	FetchFailed
)

func (o FetchOutcome) String() string {
	switch o {
	case FetchUnresolved:
		return "unresolved"
	case FetchLoading:
		return "loading"
	case FetchSucceeded:
		return "succeeded"
	case FetchFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the outcome will never change again.
func (o FetchOutcome) Terminal() bool {
	return o == FetchSucceeded || o == FetchFailed
}
