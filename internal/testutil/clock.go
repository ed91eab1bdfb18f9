package testutil

import "sync"

// Clock is a thread-safe, manually-controlled wall clock for tests.
//
// Unlike audit.SystemClock it never advances on its own, so tests can
// pin timestamps (tie-break scenarios) or step them deterministically.
type Clock struct {
	mu  sync.Mutex
	now int64
}

// NewClockAt creates a clock frozen at the given epoch seconds.
func NewClockAt(start int64) *Clock {
	return &Clock{now: start}
}

// Now returns the current frozen time.
func (c *Clock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock by delta seconds. Negative deltas are allowed:
// the trail tolerates wall-clock regression and tests exercise it.
func (c *Clock) Advance(delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += delta
}

// Set pins the clock to an absolute time.
func (c *Clock) Set(ts int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = ts
}
