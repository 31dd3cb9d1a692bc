// Package debounce runs the last of a burst of triggers after a quiet period.
package debounce

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Task is the debounced work. ctx is cancelled as soon as a newer trigger arrives,
// and seq identifies the trigger so results can be checked with IsCurrent.
type Task func(ctx context.Context, seq uint64)

// Debouncer schedules a Task after a delay, superseding any task that has not
// finished yet. The zero value is not usable; use New.
type Debouncer struct {
	clock clock.Clock
	delay time.Duration

	mu     sync.Mutex
	seq    uint64
	timer  *clock.Timer
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// New creates a Debouncer that waits delay on clk before running a task.
func New(clk clock.Clock, delay time.Duration) *Debouncer {
	if clk == nil {
		clk = clock.New()
	}
	return &Debouncer{clock: clk, delay: delay}
}

// Trigger supersedes the pending or running task and schedules task.
// It returns the sequence number assigned to this trigger, or 0 after Stop.
func (d *Debouncer) Trigger(task Task) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0
	}
	d.supersedeLocked()

	seq := d.seq
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.closed || d.seq != seq {
			d.mu.Unlock()
			return
		}
		d.wg.Add(1)
		d.mu.Unlock()

		defer d.wg.Done()
		task(ctx, seq)
	})
	return seq
}

// Cancel drops the pending or running task without scheduling a new one and
// returns the new sequence number.
func (d *Debouncer) Cancel() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return d.seq
	}
	d.supersedeLocked()
	return d.seq
}

// IsCurrent reports whether seq is still the latest trigger.
func (d *Debouncer) IsCurrent(seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.closed && seq == d.seq
}

// Sequence returns the latest sequence number.
func (d *Debouncer) Sequence() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq
}

// Stop cancels any pending or running task and waits for a running one to return.
// Later calls to Trigger are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.supersedeLocked()
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
}

// supersedeLocked must be called with d.mu held.
func (d *Debouncer) supersedeLocked() {
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
