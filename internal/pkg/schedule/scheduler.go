// Package schedule runs delayed callbacks that can all be cancelled at once.
package schedule

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Scheduler owns a set of one-shot timers. Close stops every pending timer and
// waits for callbacks already running.
type Scheduler struct {
	clock clock.Clock

	mu     sync.Mutex
	timers map[*clock.Timer]struct{}
	closed bool
	wg     sync.WaitGroup
}

// New creates a Scheduler on clk. A nil clk means the wall clock.
func New(clk clock.Clock) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{clock: clk, timers: make(map[*clock.Timer]struct{})}
}

// Clock returns the clock the scheduler runs on.
func (s *Scheduler) Clock() clock.Clock {
	return s.clock
}

// After runs fn once d has elapsed. It reports false when the scheduler is closed.
func (s *Scheduler) After(d time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	var t *clock.Timer
	t = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		if _, ok := s.timers[t]; !ok || s.closed {
			s.mu.Unlock()
			return
		}
		delete(s.timers, t)
		s.wg.Add(1)
		s.mu.Unlock()

		defer s.wg.Done()
		fn()
	})
	s.timers[t] = struct{}{}
	return true
}

// Pending returns the number of timers that have not fired yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Close cancels all pending callbacks. It must not be called from inside a callback.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for t := range s.timers {
		t.Stop()
	}
	s.timers = nil
	s.mu.Unlock()

	s.wg.Wait()
}
