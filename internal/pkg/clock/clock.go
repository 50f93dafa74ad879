package clock

import (
	"sync"
	"time"
)

// Clock supplies the time used for all duration math. Client devices may
// drift, so services must never call time.Now directly; they take a Clock
// and the server keeps it synchronized.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the host time unchanged.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// OffsetClock applies a stored delta to the host time. The delta is
// recomputed whenever a trusted reference time is observed.
type OffsetClock struct {
	mu     sync.RWMutex
	offset time.Duration
}

func NewOffsetClock() *OffsetClock {
	return &OffsetClock{}
}

func (c *OffsetClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Now().UTC().Add(c.offset)
}

// SyncOffset records the difference between a reference time and the host
// clock at the moment of observation.
func (c *OffsetClock) SyncOffset(reference time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = reference.UTC().Sub(time.Now().UTC())
}

// Offset returns the currently applied delta.
func (c *OffsetClock) Offset() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset
}

// Fixed is a Clock pinned to a single instant, for tests.
type Fixed struct {
	mu sync.Mutex
	t  time.Time
}

func NewFixed(t time.Time) *Fixed {
	return &Fixed{t: t}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

// Advance moves the fixed instant forward.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

// Set pins the fixed instant.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = t
}
