package autodrive

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"autodrive-service/internal/domain"
	"autodrive-service/internal/platform/ratelimit"
	"autodrive-service/internal/ports"
	"autodrive-service/internal/services"
)

// Config carries the per-session policy knobs of an automated drive.
// Zero fields are replaced with defaults at engine construction.
type Config struct {
	// Playback cadence.
	Speed domain.DriveSpeed
	// Arc-length spacing of route samples, in meters.
	SampleIntervalMeters float64
	// Minimum points that must resolve before playback may start.
	InitialFetchCount int
	// Extra points attempted once when the initial batch yields nothing.
	RetryBatchSize int
	// Points ahead of the camera kept resolved or in flight.
	PrefetchLookahead int
	// Delay between prefetch passes.
	PrefetchInterval time.Duration
	// Concurrent scene fetches per batch.
	FetchConcurrency int
}

func DefaultConfig() Config {
	return Config{
		Speed:                domain.SpeedNormal,
		SampleIntervalMeters: 50,
		InitialFetchCount:    5,
		RetryBatchSize:       3,
		PrefetchLookahead:    10,
		PrefetchInterval:     500 * time.Millisecond,
		FetchConcurrency:     4,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SampleIntervalMeters <= 0 {
		c.SampleIntervalMeters = d.SampleIntervalMeters
	}
	if c.InitialFetchCount <= 0 {
		c.InitialFetchCount = d.InitialFetchCount
	}
	if c.RetryBatchSize <= 0 {
		c.RetryBatchSize = d.RetryBatchSize
	}
	if c.PrefetchLookahead <= 0 {
		c.PrefetchLookahead = d.PrefetchLookahead
	}
	if c.PrefetchInterval <= 0 {
		c.PrefetchInterval = d.PrefetchInterval
	}
	if c.FetchConcurrency <= 0 {
		c.FetchConcurrency = d.FetchConcurrency
	}
	return c
}

// Snapshot is the engine's read-only observable state for the presentation
// layer. CurrentScene is a copy; mutating it does not touch engine state.
type Snapshot struct {
	State         domain.DriveState
	CurrentIndex  int
	TotalPoints   int
	ProgressRatio float64
	CurrentScene  *domain.SceneHandle
}

// Engine orchestrates an automated drive: it owns the sampled point
// sequence, the playback clock, and the prefetch loop, and funnels every
// state mutation through one mutex so fetch completions, clock ticks, and
// control calls never race.
//
// Stale work is fenced by a session counter: Stop and Start bump it, and
// any fetch or tick carrying an old session is discarded on arrival.
type Engine struct {
	mu       sync.Mutex
	cfg      Config
	provider ports.SceneProvider
	limiter  *ratelimit.SlidingWindow

	session        uint64
	points         []domain.RoutePoint
	current        int
	lastPrefetched int
	state          domain.DriveState
	interacting    bool

	clock          *playbackClock
	prefetchCancel context.CancelFunc
}

func NewEngine(provider ports.SceneProvider, limiter *ratelimit.SlidingWindow, cfg Config) *Engine {
	return &Engine{
		cfg:            cfg.withDefaults(),
		provider:       provider,
		limiter:        limiter,
		lastPrefetched: -1,
		state:          domain.DriveState{Phase: domain.PhaseIdle},
	}
}

// Start samples the route, resolves an initial batch of scenes, and begins
// playback. Any drive already in progress is stopped first. Playback starts
// as soon as at least one point resolves; if the initial batch and one
// bounded retry over the remainder both yield nothing, the engine lands in
// the failed state and Start reports the reason.
func (e *Engine) Start(ctx context.Context, route domain.Route) error {
	points, err := services.SampleRoute(route.Polyline, e.cfg.SampleIntervalMeters)
	if err != nil {
		return fmt.Errorf("start drive: %w", err)
	}

	e.mu.Lock()
	e.stopLocked()
	e.session++
	session := e.session
	e.points = points
	e.current = 0
	e.lastPrefetched = -1
	required := min(e.cfg.InitialFetchCount, len(points))
	e.state = domain.DriveState{Phase: domain.PhaseInitializing, Required: required}
	e.mu.Unlock()

	succeeded := e.fetchBatch(ctx, session, 0, required)
	if succeeded == 0 {
		// One smaller batch from the remainder before giving up: routes can
		// begin in a tunnel or off-network and recover a few samples later.
		retryEnd := min(required+e.cfg.RetryBatchSize, len(points))
		if retryEnd > required {
			succeeded = e.fetchBatch(ctx, session, required, retryEnd)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != session {
		// Stopped while initializing; the session is already idle.
		return nil
	}

	if succeeded == 0 {
		e.state = domain.DriveState{Phase: domain.PhaseFailed, Message: "no scenes available"}
		return errors.New("start drive: no scenes available")
	}

	e.state = domain.DriveState{Phase: domain.PhasePlaying}
	e.startClockLocked(session)

	pctx, cancel := context.WithCancel(context.Background())
	e.prefetchCancel = cancel
	go e.prefetchLoop(pctx, session)

	log.Printf("drive started points=%d resolved=%d speed=%s", len(points), succeeded, e.cfg.Speed)
	return nil
}

// Stop cancels the prefetch loop and clock and discards the session.
// Safe from any state; in-flight fetches run to completion and their
// results are discarded by the session fence.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

// Caller holds mu.
func (e *Engine) stopLocked() {
	e.session++
	if e.prefetchCancel != nil {
		e.prefetchCancel()
		e.prefetchCancel = nil
	}
	e.stopClockLocked()
	e.points = nil
	e.current = 0
	e.lastPrefetched = -1
	e.interacting = false
	e.state = domain.DriveState{Phase: domain.PhaseIdle}
}

// Pause stops the clock without touching fetch state. Prefetching keeps
// running so resuming has a warm window.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state.Phase {
	case domain.PhasePaused:
		return nil
	case domain.PhasePlaying:
		e.stopClockLocked()
		e.state = domain.DriveState{Phase: domain.PhasePaused}
		return nil
	default:
		return fmt.Errorf("pause: invalid from state %s", e.state.Phase)
	}
}

// Resume restarts the clock after a pause.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state.Phase {
	case domain.PhasePlaying:
		return nil
	case domain.PhasePaused:
		e.state = domain.DriveState{Phase: domain.PhasePlaying}
		e.startClockLocked(e.session)
		return nil
	default:
		return fmt.Errorf("resume: invalid from state %s", e.state.Phase)
	}
}

// Seek moves the camera to index, clamped to the point range. The state
// machine is untouched: seeking while paused stays paused.
func (e *Engine) Seek(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.points) == 0 {
		return errors.New("seek: no active drive")
	}

	if index < 0 {
		index = 0
	}
	if index >= len(e.points) {
		index = len(e.points) - 1
	}
	e.current = index
	return nil
}

// SetSpeed changes the playback cadence, restarting a running clock with
// the new interval without skipping the current point.
func (e *Engine) SetSpeed(speed domain.DriveSpeed) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cfg.Speed = speed

	if e.clock != nil {
		e.stopClockLocked()
		e.startClockLocked(e.session)
	}
}

// SetUserInteracting flags that the user is manipulating the view (e.g.
// panning the map). While set, clock ticks are suppressed; fetching is not.
func (e *Engine) SetUserInteracting(active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interacting = active
}

// Snapshot returns the observable state for the presentation layer.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		State:        e.state,
		CurrentIndex: e.current,
		TotalPoints:  len(e.points),
	}

	if len(e.points) > 1 {
		snap.ProgressRatio = float64(e.current) / float64(len(e.points)-1)
	} else if e.state.Phase == domain.PhaseCompleted {
		snap.ProgressRatio = 1
	}

	if e.current < len(e.points) {
		if s := e.points[e.current].Scene; s != nil {
			h := *s
			snap.CurrentScene = &h
		}
	}

	return snap
}

// Caller holds mu.
func (e *Engine) startClockLocked(session uint64) {
	e.clock = newPlaybackClock(e.cfg.Speed.TickInterval(), func() {
		e.tickSession(session)
	})
}

// Caller holds mu.
func (e *Engine) stopClockLocked() {
	if e.clock != nil {
		e.clock.Stop()
		e.clock = nil
	}
}

// tickSession drops ticks from clocks belonging to a finished session.
func (e *Engine) tickSession(session uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != session {
		return
	}
	e.tickLocked()
}

// tickLocked advances the camera by one tick. Caller holds mu.
//
// The scan walks forward from the current point: failed points are skipped
// permanently, the first succeeded point becomes current, and an unresolved
// or still-loading point parks playback in buffering until a later tick
// finds it settled. Exhausting the sequence completes the drive.
func (e *Engine) tickLocked() {
	if e.state.Phase != domain.PhasePlaying && e.state.Phase != domain.PhaseBuffering {
		return
	}
	if e.interacting {
		return
	}

	for j := e.current + 1; j < len(e.points); j++ {
		switch e.points[j].Outcome {
		case domain.FetchFailed:
			continue
		case domain.FetchSucceeded:
			e.current = j
			if e.state.Phase == domain.PhaseBuffering {
				e.state = domain.DriveState{Phase: domain.PhasePlaying}
			}
			return
		default:
			e.state = domain.DriveState{Phase: domain.PhaseBuffering}
			return
		}
	}

	e.stopClockLocked()
	e.state = domain.DriveState{Phase: domain.PhaseCompleted}
	log.Printf("drive completed points=%d", len(e.points))
}
