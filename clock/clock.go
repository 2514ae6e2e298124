// Package clock abstracts the wall-clock reading of a SCRU128
// generator so that tests can substitute deterministic time sources.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current wall-clock time. Reading it never blocks.
type Clock func() time.Time

// SystemClock returns a Clock backed by the system time.
func SystemClock() Clock { return time.Now }

// FrozenClock returns a Clock that always reports t.
func FrozenClock(t time.Time) Clock { return func() time.Time { return t } }

// Manual is a hand-driven clock for tests. It reports a fixed instant
// until moved with Advance or Set. Manual is safe for concurrent use.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual creates a manual clock initially reporting start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Clock returns a Clock reading from m.
func (m *Manual) Clock() Clock { return m.Now }

// Now returns the instant the clock currently reports.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock by d, which may be negative.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Set moves the clock to the instant t.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}
