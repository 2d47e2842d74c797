package autodrive

import (
	"sync"
	"time"
)

// playbackClock drives camera advancement on a fixed cadence.
//
// Ticks are delivered from a single goroutine, so one tick always finishes
// before the next is processed. The clock never outlives its engine session:
// onTick carries the session it was started for and the engine discards
// ticks from stale sessions.
type playbackClock struct {
	stop chan struct{}
	once sync.Once
}

func newPlaybackClock(interval time.Duration, onTick func()) *playbackClock {
	c := &playbackClock{stop: make(chan struct{})}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
				onTick()
			}
		}
	}()

	return c
}

// Stop cancels the clock. Safe to call more than once and never blocks, so
// it can run while the engine holds its own lock.
func (c *playbackClock) Stop() {
	c.once.Do(func() { close(c.stop) })
}
