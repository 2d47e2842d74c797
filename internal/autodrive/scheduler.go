package autodrive

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"autodrive-service/internal/domain"
	"autodrive-service/internal/ports"
)

// The prefetch side of the engine: keep the window
// [current, current+lookahead) free of unresolved points without ever
// re-issuing work for a point that is loading or already terminal.
//
// Admission goes through the shared rate limiter. A denied point is left
// unresolved and picked up by a later pass; denial also ends the current
// pass, since every later point in the batch would hit the same full
// window. lastPrefetched only advances over points whose fetch actually
// completed, and never decreases.

// prefetchLoop runs for the lifetime of one drive session. It keeps going
// while the drive is paused so that resuming has a warm window; it stops
// only when the session's context is cancelled.
func (e *Engine) prefetchLoop(ctx context.Context, session uint64) {
	ticker := time.NewTicker(e.cfg.PrefetchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		e.prefetchPass(ctx, session)
	}
}

// prefetchPass fills the lookahead window once, waiting for the batch to
// settle before returning. Playback never waits on a pass: ticks run on
// the clock goroutine and only share the engine mutex.
func (e *Engine) prefetchPass(ctx context.Context, session uint64) {
	e.mu.Lock()
	if e.session != session {
		e.mu.Unlock()
		return
	}
	start := max(e.lastPrefetched+1, e.current)
	end := min(e.current+e.cfg.PrefetchLookahead, len(e.points))
	e.mu.Unlock()

	if start >= end {
		return
	}

	g := new(errgroup.Group)
	g.SetLimit(e.cfg.FetchConcurrency)

	for idx := start; idx < end; idx++ {
		pos, proceed, denied := e.admitAndMark(session, idx)
		if denied {
			log.Printf("prefetch deferred idx=%d wait=%v", idx, e.limiter.WaitTime())
			break
		}
		if !proceed {
			continue
		}

		idx := idx
		g.Go(func() error {
			e.fetchPoint(ctx, session, idx, pos)
			return nil
		})
	}

	_ = g.Wait()
}

// fetchBatch resolves points [start, end) concurrently and reports how many
// succeeded. Used for initial seeding, where the engine awaits the whole
// batch before leaving the initializing state.
func (e *Engine) fetchBatch(ctx context.Context, session uint64, start, end int) int {
	g := new(errgroup.Group)
	g.SetLimit(e.cfg.FetchConcurrency)

	results := make(chan bool, end-start)

	for idx := start; idx < end; idx++ {
		pos, proceed, denied := e.admitAndMark(session, idx)
		if denied {
			break
		}
		if !proceed {
			continue
		}

		idx := idx
		g.Go(func() error {
			results <- e.fetchPoint(ctx, session, idx, pos)
			return nil
		})
	}

	_ = g.Wait()
	close(results)

	succeeded := 0
	for ok := range results {
		if ok {
			succeeded++
		}
	}
	return succeeded
}

// admitAndMark decides whether a fetch for idx should be issued. It skips
// points that are loading or terminal, asks the rate limiter for admission,
// and on success marks the point loading before any goroutine runs, so no
// point is ever fetched twice.
func (e *Engine) admitAndMark(session uint64, idx int) (pos domain.Coordinates, proceed bool, denied bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != session || idx >= len(e.points) {
		return domain.Coordinates{}, false, false
	}
	if e.points[idx].Outcome != domain.FetchUnresolved {
		return domain.Coordinates{}, false, false
	}
	if e.limiter != nil && !e.limiter.TryAcquire() {
		return domain.Coordinates{}, false, true
	}

	e.points[idx].Outcome = domain.FetchLoading
	return e.points[idx].Position, true, false
}

// fetchPoint performs one scene fetch and applies its terminal outcome.
// Results arriving after the session has moved on are discarded untouched.
// Failures — unavailable locations and transient errors alike — are
// terminal for the point and are never retried within a session.
func (e *Engine) fetchPoint(ctx context.Context, session uint64, idx int, pos domain.Coordinates) bool {
	handle, err := e.provider.FetchScene(ctx, pos)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != session || idx >= len(e.points) {
		return false
	}

	if idx > e.lastPrefetched {
		e.lastPrefetched = idx
	}

	if err != nil {
		if !errors.Is(err, ports.ErrSceneUnavailable) && !errors.Is(err, context.Canceled) {
			log.Printf("scene fetch failed idx=%d err=%v", idx, err)
		}
		e.points[idx].Scene = nil
		e.points[idx].Outcome = domain.FetchFailed
		return false
	}

	h := handle
	e.points[idx].Scene = &h
	e.points[idx].Outcome = domain.FetchSucceeded

	if e.state.Phase == domain.PhaseInitializing {
		e.state.Fetched++
	}
	return true
}
