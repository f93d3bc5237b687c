package debounce

import (
	"sync"
	"time"
)

// DefaultInterval is the quiet period used when none is configured.
const DefaultInterval = 300 * time.Millisecond

// Debouncer runs at most one pending callback after a quiet interval.
// Scheduling again cancels the pending callback and restarts the interval.
type Debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	timer    *time.Timer
	pending  func()
	gen      uint64
}

// New constructs a Debouncer. A non-positive interval uses DefaultInterval.
func New(interval time.Duration) *Debouncer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Debouncer{interval: interval}
}

// Interval returns the quiet period.
func (d *Debouncer) Interval() time.Duration {
	return d.interval
}

// Schedule replaces any pending callback with fn.
func (d *Debouncer) Schedule(fn func()) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = fn
	d.timer = time.AfterFunc(d.interval, func() {
		d.fire(gen)
	})
}

// Cancel drops the pending callback, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.gen++
}

// Pending reports whether a callback is waiting to fire.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Flush runs the pending callback now on the calling goroutine.
// It reports whether a callback ran.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.pending
	if fn == nil {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.gen++
	d.mu.Unlock()
	fn()
	return true
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()
	fn()
}
