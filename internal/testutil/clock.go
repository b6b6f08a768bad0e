package testutil

import (
	"sync"
	"time"
)

// Clock is a settable time source for collectors that read "now".
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a Clock reading 2025-01-01 12:30:00 UTC, or at if given.
func NewClock(at ...time.Time) *Clock {
	t := time.Date(2025, 1, 1, 12, 30, 0, 0, time.UTC)
	if len(at) > 0 {
		t = at[0]
	}
	return &Clock{now: t}
}

// Now returns the clock's current time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
