package runner

import "time"

// Timer provides monotonic readings for duration measurement. The runner
// brackets each timed evaluation with two readings; the difference is the
// sample's duration.
//
// The indirection exists so tests can measure with a deterministic timer
// instead of the host clock.
type Timer interface {
	Now() time.Duration
}

// WallTimer reads the process monotonic clock. time.Since uses the
// monotonic reading carried by the base time.Time, so wall-clock
// adjustments during a run do not distort samples.
type WallTimer struct {
	base time.Time
}

// NewWallTimer creates a timer anchored at the current instant.
func NewWallTimer() *WallTimer {
	return &WallTimer{base: time.Now()}
}

// Now returns the elapsed monotonic time since the timer was created.
func (t *WallTimer) Now() time.Duration {
	return time.Since(t.base)
}
