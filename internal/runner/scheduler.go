package runner

import "time"

// Scheduler decides when accumulated votes should be pushed upstream.
//
// The remote channel enforces a hard floor on write frequency, so pushes
// are batched: an upload is due only when the floor interval has elapsed
// since the last successful push AND unsynced votes exist. There is no
// backoff on failure; the floor itself bounds the retry cadence, which
// prevents hot-looping against a failing remote.
type Scheduler struct {
	clock    Clock
	interval time.Duration
	last     time.Time
}

// NewScheduler creates a scheduler with the given minimum inter-upload
// interval. The last-upload mark starts at the current time, so the first
// push waits out a full interval from process start.
func NewScheduler(clock Clock, interval time.Duration) *Scheduler {
	return &Scheduler{
		clock:    clock,
		interval: interval,
		last:     clock.Now(),
	}
}

// Due reports whether an upload should be attempted now. pending is the
// count of votes accumulated since the last successful push.
func (s *Scheduler) Due(pending int) bool {
	return pending > 0 && s.clock.Now().Sub(s.last) >= s.interval
}

// MarkUploaded records a successful push. Failed pushes must not call
// this: leaving the mark untouched lets the next poll retry as soon as
// the floor allows.
func (s *Scheduler) MarkUploaded() {
	s.last = s.clock.Now()
}

// LastUpload returns the time of the last successful push, or the
// scheduler's start time if none has succeeded yet.
func (s *Scheduler) LastUpload() time.Time {
	return s.last
}
