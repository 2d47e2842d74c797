package autodrive

import (
	"context"
	"testing"
	"time"

	"autodrive-service/internal/adapters/scene"
	"autodrive-service/internal/domain"
	"autodrive-service/internal/services"
)

func testConfig() Config {
	return Config{
		Speed:                domain.SpeedFast,
		SampleIntervalMeters: 50,
		InitialFetchCount:    2,
		RetryBatchSize:       3,
		PrefetchLookahead:    5,
		PrefetchInterval:     time.Hour, // keep background passes out of unit tests
		FetchConcurrency:     2,
	}
}

// makePoints builds a point sequence with distinct positions and the given
// outcomes. Succeeded points get a scene handle to satisfy the invariant.
func makePoints(outcomes ...domain.FetchOutcome) []domain.RoutePoint {
	points := make([]domain.RoutePoint, len(outcomes))
	for i, o := range outcomes {
		p := domain.RoutePoint{
			Position: domain.Coordinates{Lat: 10 + float64(i)*0.001, Lon: 20},
			Outcome:  o,
		}
		if o == domain.FetchSucceeded {
			p.Scene = &domain.SceneHandle{PanoID: "pano", Location: p.Position}
		}
		points[i] = p
	}
	return points
}

// testEngine returns an engine mid-session with the given points, bypassing
// Start so tick behavior can be exercised in isolation.
func testEngine(points []domain.RoutePoint, phase domain.DrivePhase) *Engine {
	e := NewEngine(scene.NewMockSceneProvider(), nil, testConfig())
	e.session = 1
	e.points = points
	e.state = domain.DriveState{Phase: phase}
	return e
}

func TestTickSkipsFailedPoints(t *testing.T) {
	e := testEngine(makePoints(
		domain.FetchSucceeded,
		domain.FetchFailed,
		domain.FetchFailed,
		domain.FetchSucceeded,
	), domain.PhasePlaying)

	e.tickSession(1)

	snap := e.Snapshot()
	if snap.CurrentIndex != 3 {
		t.Fatalf("current index = %d, want 3", snap.CurrentIndex)
	}
	if snap.State.Phase != domain.PhasePlaying {
		t.Fatalf("phase = %s, want playing", snap.State.Phase)
	}
}

func TestTickEntersBufferingOnLoadingPoint(t *testing.T) {
	e := testEngine(makePoints(
		domain.FetchSucceeded,
		domain.FetchLoading,
	), domain.PhasePlaying)

	e.tickSession(1)

	snap := e.Snapshot()
	if snap.State.Phase != domain.PhaseBuffering {
		t.Fatalf("phase = %s, want buffering", snap.State.Phase)
	}
	if snap.CurrentIndex != 0 {
		t.Fatalf("current index = %d, want 0", snap.CurrentIndex)
	}
}

func TestTickResumesFromBuffering(t *testing.T) {
	points := makePoints(domain.FetchSucceeded, domain.FetchLoading)
	e := testEngine(points, domain.PhaseBuffering)

	// The pending fetch settles between ticks.
	e.mu.Lock()
	e.points[1].Outcome = domain.FetchSucceeded
	e.points[1].Scene = &domain.SceneHandle{PanoID: "late", Location: points[1].Position}
	e.mu.Unlock()

	e.tickSession(1)

	snap := e.Snapshot()
	if snap.State.Phase != domain.PhasePlaying {
		t.Fatalf("phase = %s, want playing", snap.State.Phase)
	}
	if snap.CurrentIndex != 1 {
		t.Fatalf("current index = %d, want 1", snap.CurrentIndex)
	}
}

func TestTickCompletesAtEndOfRoute(t *testing.T) {
	e := testEngine(makePoints(domain.FetchSucceeded), domain.PhasePlaying)
	e.mu.Lock()
	e.startClockLocked(1)
	e.mu.Unlock()

	e.tickSession(1)

	snap := e.Snapshot()
	if snap.State.Phase != domain.PhaseCompleted {
		t.Fatalf("phase = %s, want completed", snap.State.Phase)
	}
	e.mu.Lock()
	stopped := e.clock == nil
	e.mu.Unlock()
	if !stopped {
		t.Fatal("clock should be stopped on completion")
	}
	if snap.ProgressRatio != 1 {
		t.Fatalf("progress = %v, want 1", snap.ProgressRatio)
	}
}

func TestTickSuppressedDuringInteraction(t *testing.T) {
	e := testEngine(makePoints(
		domain.FetchSucceeded,
		domain.FetchSucceeded,
	), domain.PhasePlaying)
	e.SetUserInteracting(true)

	e.tickSession(1)

	if snap := e.Snapshot(); snap.CurrentIndex != 0 {
		t.Fatalf("current index = %d, want 0 while interacting", snap.CurrentIndex)
	}

	e.SetUserInteracting(false)
	e.tickSession(1)

	if snap := e.Snapshot(); snap.CurrentIndex != 1 {
		t.Fatalf("current index = %d, want 1 after interaction ends", snap.CurrentIndex)
	}
}

func TestTickIgnoresStaleSession(t *testing.T) {
	e := testEngine(makePoints(
		domain.FetchSucceeded,
		domain.FetchSucceeded,
	), domain.PhasePlaying)

	e.tickSession(0) // a clock from a previous session

	if snap := e.Snapshot(); snap.CurrentIndex != 0 {
		t.Fatalf("current index = %d, want 0 after stale tick", snap.CurrentIndex)
	}
}

// testRoute is ~500m of straight road, enough for 11 samples at 50m.
func testRoute() domain.Route {
	return domain.Route{Polyline: []domain.Coordinates{
		{Lat: 40.0, Lon: -105.0},
		{Lat: 40.0045, Lon: -105.0},
	}}
}

func sampledPositions(t *testing.T, route domain.Route, interval float64) []domain.Coordinates {
	t.Helper()
	points, err := services.SampleRoute(route.Polyline, interval)
	if err != nil {
		t.Fatalf("sample route: %v", err)
	}
	out := make([]domain.Coordinates, len(points))
	for i, p := range points {
		out[i] = p.Position
	}
	return out
}

func TestStartSeedsAndPlays(t *testing.T) {
	provider := scene.NewMockSceneProvider()
	e := NewEngine(provider, nil, testConfig())
	defer e.Stop()

	if err := e.Start(context.Background(), testRoute()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := e.Snapshot()
	if snap.State.Phase != domain.PhasePlaying {
		t.Fatalf("phase = %s, want playing", snap.State.Phase)
	}
	if snap.TotalPoints < 10 {
		t.Fatalf("total points = %d, want at least 10", snap.TotalPoints)
	}
	if snap.CurrentScene == nil {
		t.Fatal("expected a scene at the starting point")
	}
}

func TestStartRecoversViaRetryBatch(t *testing.T) {
	route := testRoute()
	positions := sampledPositions(t, route, 50)

	provider := scene.NewMockSceneProvider()
	// The whole initial batch fails; the retry batch finds one scene.
	provider.Script(positions[0], scene.MockError)
	provider.Script(positions[1], scene.MockUnavailable)
	provider.Script(positions[2], scene.MockUnavailable)
	provider.Script(positions[4], scene.MockUnavailable)

	e := NewEngine(provider, nil, testConfig())
	defer e.Stop()

	if err := e.Start(context.Background(), route); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := e.Snapshot()
	if snap.State.Phase != domain.PhasePlaying {
		t.Fatalf("phase = %s, want playing after retry batch", snap.State.Phase)
	}
}

func TestStartFailsWhenNoScenesResolve(t *testing.T) {
	route := testRoute()
	provider := scene.NewMockSceneProvider()
	for _, pos := range sampledPositions(t, route, 50) {
		provider.Script(pos, scene.MockUnavailable)
	}

	e := NewEngine(provider, nil, testConfig())

	err := e.Start(context.Background(), route)
	if err == nil {
		t.Fatal("expected error when no scenes resolve")
	}

	snap := e.Snapshot()
	if snap.State.Phase != domain.PhaseFailed {
		t.Fatalf("phase = %s, want failed", snap.State.Phase)
	}
	if snap.State.Message != "no scenes available" {
		t.Fatalf("failure message = %q", snap.State.Message)
	}
}

func TestStopDiscardsInFlightResults(t *testing.T) {
	provider := scene.NewMockSceneProvider()
	provider.Block()

	e := NewEngine(provider, nil, testConfig())

	started := make(chan error, 1)
	go func() { started <- e.Start(context.Background(), testRoute()) }()

	// Wait until at least one fetch is in flight.
	deadline := time.After(2 * time.Second)
	for len(provider.Calls()) == 0 {
		select {
		case <-deadline:
			t.Fatal("no fetch issued before deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}

	e.Stop()
	provider.Unblock()

	if err := <-started; err != nil {
		t.Fatalf("start after stop should return quietly, got %v", err)
	}

	snap := e.Snapshot()
	if snap.State.Phase != domain.PhaseIdle {
		t.Fatalf("phase = %s, want idle", snap.State.Phase)
	}
	if snap.TotalPoints != 0 {
		t.Fatalf("total points = %d, want 0 after stop", snap.TotalPoints)
	}
}

func TestSeekClampsToRange(t *testing.T) {
	e := testEngine(makePoints(
		domain.FetchSucceeded,
		domain.FetchSucceeded,
		domain.FetchSucceeded,
	), domain.PhasePaused)

	if err := e.Seek(99); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap := e.Snapshot(); snap.CurrentIndex != 2 {
		t.Fatalf("current index = %d, want 2", snap.CurrentIndex)
	}

	if err := e.Seek(-5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap := e.Snapshot(); snap.CurrentIndex != 0 {
		t.Fatalf("current index = %d, want 0", snap.CurrentIndex)
	}

	// Seeking never changes the state machine.
	if snap := e.Snapshot(); snap.State.Phase != domain.PhasePaused {
		t.Fatalf("phase = %s, want paused", snap.State.Phase)
	}
}

func TestPauseResumeTransitions(t *testing.T) {
	e := testEngine(makePoints(
		domain.FetchSucceeded,
		domain.FetchSucceeded,
	), domain.PhasePlaying)
	e.mu.Lock()
	e.startClockLocked(1)
	e.mu.Unlock()
	defer e.Stop()

	if err := e.Pause(); err != nil {
		t.Fatalf("pause from playing: %v", err)
	}
	if snap := e.Snapshot(); snap.State.Phase != domain.PhasePaused {
		t.Fatalf("phase = %s, want paused", snap.State.Phase)
	}

	if err := e.Resume(); err != nil {
		t.Fatalf("resume from paused: %v", err)
	}
	if snap := e.Snapshot(); snap.State.Phase != domain.PhasePlaying {
		t.Fatalf("phase = %s, want playing", snap.State.Phase)
	}
}

func TestPauseInvalidFromIdle(t *testing.T) {
	e := NewEngine(scene.NewMockSceneProvider(), nil, testConfig())
	if err := e.Pause(); err == nil {
		t.Fatal("expected error pausing an idle engine")
	}
}
