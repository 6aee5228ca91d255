package runner

import "time"

// Clock abstracts wall time so the scheduling tick can be tested without
// real waiting. The runner only ever asks "what time is it" and "yield
// briefly"; tests inject a manual clock that advances virtually.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock returns the real wall clock.
func SystemClock() Clock {
	return systemClock{}
}
