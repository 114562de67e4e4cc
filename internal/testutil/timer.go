package testutil

import (
	"sync"
	"time"
)

// StepTimer is a deterministic monotonic timer for tests. Every call to Now
// advances the reading by a fixed step, so the durations a runner measures
// are exactly predictable regardless of host load.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type StepTimer struct {
	mu   sync.Mutex
	now  time.Duration
	step time.Duration
}

// NewStepTimer creates a timer that starts at zero and advances by step on
// every reading.
func NewStepTimer(step time.Duration) *StepTimer {
	return &StepTimer{step: step}
}

// Now returns the current reading, then advances by the step.
//
// A runner that brackets an operation with two readings therefore measures
// exactly one step per sample.
func (t *StepTimer) Now() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	reading := t.now
	t.now += t.step
	return reading
}

// Advance moves the timer forward by d without producing a reading.
// Used to simulate time passing outside measured sections.
func (t *StepTimer) Advance(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now += d
}

// Reset returns the timer to zero for test reuse.
func (t *StepTimer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = 0
}
