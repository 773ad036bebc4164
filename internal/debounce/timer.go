// Package debounce provides a cancellable timer that coalesces bursts of
// updates into one deferred callback.
package debounce

import (
	"sync"
	"time"
)

// Timer runs the most recently armed callback once the delay elapses without
// another Arm. It is safe for concurrent use.
type Timer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	fn      func()
	gen     uint64
	pending bool
	stopped bool
}

// New creates a disarmed Timer
func New(delay time.Duration) *Timer {
	return &Timer{delay: delay}
}

// Arm replaces any pending callback with fn and restarts the delay
func (t *Timer) Arm(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}

	if t.timer != nil {
		t.timer.Stop()
	}

	t.gen++
	gen := t.gen
	t.fn = fn
	t.pending = true
	t.timer = time.AfterFunc(t.delay, func() { t.fire(gen) })
}

// Disarm drops the pending callback without running it
func (t *Timer) Disarm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disarmLocked()
}

// Flush runs the pending callback now, on the caller's goroutine.
// It reports whether a callback ran.
func (t *Timer) Flush() bool {
	t.mu.Lock()
	if !t.pending {
		t.mu.Unlock()
		return false
	}
	fn := t.fn
	t.disarmLocked()
	t.mu.Unlock()

	fn()
	return true
}

// Stop disarms the timer for good; later Arm calls are ignored
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disarmLocked()
	t.stopped = true
}

// Pending reports whether a callback is armed
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

func (t *Timer) fire(gen uint64) {
	t.mu.Lock()
	// A stale AfterFunc may still fire after Stop returned false.
	if !t.pending || gen != t.gen {
		t.mu.Unlock()
		return
	}
	fn := t.fn
	t.pending = false
	t.fn = nil
	t.timer = nil
	t.mu.Unlock()

	fn()
}

func (t *Timer) disarmLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.fn = nil
	t.pending = false
	t.gen++
}
