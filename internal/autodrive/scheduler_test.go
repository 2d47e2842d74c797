package autodrive

import (
	"context"
	"testing"
	"time"

	"autodrive-service/internal/adapters/scene"
	"autodrive-service/internal/domain"
	"autodrive-service/internal/platform/ratelimit"
)

func unresolvedPoints(n int) []domain.RoutePoint {
	outcomes := make([]domain.FetchOutcome, n)
	return makePoints(outcomes...)
}

func TestPrefetchPassFillsLookaheadWindow(t *testing.T) {
	provider := scene.NewMockSceneProvider()
	e := NewEngine(provider, nil, testConfig())
	e.session = 1
	e.points = unresolvedPoints(20)
	e.state = domain.DriveState{Phase: domain.PhasePlaying}

	e.prefetchPass(context.Background(), 1)

	e.mu.Lock()
	defer e.mu.Unlock()
	for i := 0; i < 5; i++ {
		if !e.points[i].Outcome.Terminal() {
			t.Fatalf("point %d outcome = %v, want terminal", i, e.points[i].Outcome)
		}
	}
	if e.points[5].Outcome != domain.FetchUnresolved {
		t.Fatalf("point 5 outcome = %v, want unresolved (outside window)", e.points[5].Outcome)
	}
	if e.lastPrefetched != 4 {
		t.Fatalf("lastPrefetched = %d, want 4", e.lastPrefetched)
	}
}

func TestLastPrefetchedMonotonicAcrossPasses(t *testing.T) {
	provider := scene.NewMockSceneProvider()
	e := NewEngine(provider, nil, testConfig())
	e.session = 1
	e.points = unresolvedPoints(30)
	e.state = domain.DriveState{Phase: domain.PhasePlaying}

	// Sprinkle failures through the route; they must not move the cursor back.
	for i := 2; i < 30; i += 3 {
		provider.Script(e.points[i].Position, scene.MockUnavailable)
	}

	prev := -1
	for pass := 0; pass < 6; pass++ {
		e.prefetchPass(context.Background(), 1)

		e.mu.Lock()
		got := e.lastPrefetched
		e.current = min(e.current+4, len(e.points)-1)
		e.mu.Unlock()

		if got < prev {
			t.Fatalf("pass %d: lastPrefetched decreased %d -> %d", pass, prev, got)
		}
		prev = got
	}
}

func TestPrefetchPassSkipsSettledPoints(t *testing.T) {
	provider := scene.NewMockSceneProvider()
	e := NewEngine(provider, nil, testConfig())
	e.session = 1
	points := unresolvedPoints(10)
	points[1].Outcome = domain.FetchSucceeded
	points[1].Scene = &domain.SceneHandle{PanoID: "seeded", Location: points[1].Position}
	points[2].Outcome = domain.FetchFailed
	e.points = points
	e.state = domain.DriveState{Phase: domain.PhasePlaying}

	e.prefetchPass(context.Background(), 1)

	// Window is 5 wide with 2 points already settled: only 3 fetches issued.
	if got := len(provider.Calls()); got != 3 {
		t.Fatalf("issued %d fetches, want 3", got)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.points[1].Scene == nil || e.points[1].Scene.PanoID != "seeded" {
		t.Fatal("settled point was re-fetched")
	}
}

func TestPrefetchDenialDefersToNextPass(t *testing.T) {
	provider := scene.NewMockSceneProvider()
	limiter := ratelimit.NewSlidingWindow(2, 10*time.Millisecond)
	e := NewEngine(provider, limiter, testConfig())
	e.session = 1
	e.points = unresolvedPoints(10)
	e.state = domain.DriveState{Phase: domain.PhasePlaying}

	e.prefetchPass(context.Background(), 1)

	e.mu.Lock()
	if e.points[2].Outcome != domain.FetchUnresolved {
		t.Fatalf("denied point outcome = %v, want unresolved", e.points[2].Outcome)
	}
	if e.lastPrefetched != 1 {
		t.Fatalf("lastPrefetched = %d, want 1 after denial", e.lastPrefetched)
	}
	e.mu.Unlock()

	// Once the window frees up, the deferred point is fetched.
	time.Sleep(50 * time.Millisecond)
	e.prefetchPass(context.Background(), 1)

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.points[2].Outcome.Terminal() {
		t.Fatalf("deferred point outcome = %v, want terminal after retry", e.points[2].Outcome)
	}
}

func TestPrefetchPassIgnoresStaleSession(t *testing.T) {
	provider := scene.NewMockSceneProvider()
	e := NewEngine(provider, nil, testConfig())
	e.session = 2
	e.points = unresolvedPoints(10)
	e.state = domain.DriveState{Phase: domain.PhasePlaying}

	e.prefetchPass(context.Background(), 1)

	if got := len(provider.Calls()); got != 0 {
		t.Fatalf("stale pass issued %d fetches, want 0", got)
	}
}
