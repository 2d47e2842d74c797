package domain

// RoutePoint is one sampled location along a calculated route.
// The position is immutable; Scene and Outcome are written exactly once per
// terminal outcome by the prefetch scheduler. Points are addressed by index
// in their containing slice, never by pointer identity.
type RoutePoint struct {
	Position Coordinates
	Scene    *SceneHandle
	Outcome  FetchOutcome
}

// Route is the calculated route geometry handed to the engine.
// The polyline is the raw geometry from the routing service; the engine
// resamples it at a fixed arc-length interval before driving.
type Route struct {
	Polyline []Coordinates
}
