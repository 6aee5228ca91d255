// Package testutil provides deterministic stand-ins for the runner's
// collaborators: a manual clock, a scripted device stream, and a fixed
// session token generator.
package testutil

import (
	"sync"
	"time"
)

// ManualClock is a virtual wall clock for tests.
//
// Now returns the current virtual time; Sleep advances it by the full
// duration instead of waiting, so a polling loop driven by this clock
// runs through hours of virtual time in microseconds.
//
// Thread-safety: all methods are safe for concurrent use via an internal
// mutex, though the runner's single-writer design means tests rarely
// need it.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a clock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current virtual time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep advances virtual time by d and returns immediately.
func (c *ManualClock) Sleep(d time.Duration) {
	c.Advance(d)
}

// Advance moves virtual time forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
