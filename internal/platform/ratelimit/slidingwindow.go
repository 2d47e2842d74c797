// Package ratelimit provides sliding-window admission control for the
// remote-fetch quota shared by the scene prefetch and search paths.
package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindow admits at most maxRequests within any trailing window.
// Denied callers get no queue position; they decide themselves whether to
// retry later. Safe for concurrent use from multiple paths.
type SlidingWindow struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	admitted    []time.Time
	now         func() time.Time
}

func NewSlidingWindow(maxRequests int, window time.Duration) *SlidingWindow {
	if maxRequests < 1 {
		maxRequests = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &SlidingWindow{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// TryAcquire records and admits one request if the trailing window has room.
// It returns false with no side effect when the window is full.
func (l *SlidingWindow) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	if len(l.admitted) >= l.maxRequests {
		return false
	}

	l.admitted = append(l.admitted, now)
	return true
}

// WaitTime reports how long until the oldest admitted request leaves the
// window. Advisory only: the answer can be stale the moment it is returned.
func (l *SlidingWindow) WaitTime() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	if len(l.admitted) < l.maxRequests {
		return 0
	}

	return l.admitted[0].Add(l.window).Sub(now)
}

// prune drops timestamps older than the trailing window. Caller holds mu.
func (l *SlidingWindow) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.admitted) && !l.admitted[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.admitted = append(l.admitted[:0], l.admitted[i:]...)
	}
}
