package platform

import (
	"sync/atomic"
	"time"
)

// Millis is a wrapping monotonic millisecond reading.
// Differences between two readings are taken with unsigned subtraction,
// which stays correct across a single wraparound.
type Millis uint32

// Since returns the milliseconds elapsed from earlier to m.
func (m Millis) Since(earlier Millis) uint32 {
	return uint32(m - earlier)
}

// DurationToMillis converts d to whole milliseconds, saturating at the Millis range.
func DurationToMillis(d time.Duration) uint32 {
	ms := d.Milliseconds()

	switch {
	case ms <= 0:
		return 0
	case ms > int64(^uint32(0)):
		return ^uint32(0)
	default:
		return uint32(ms)
	}
}

// Clock is the monotonic millisecond source read once per loop iteration.
type Clock interface {
	Now() Millis
}

// SystemClock reads the Go monotonic clock relative to its creation.
type SystemClock struct {
	// start anchors every reading.
	start time.Time
}

// NewSystemClock returns a clock that reads zero now.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now returns milliseconds since the clock was created, wrapping every ~49.7 days.
func (c *SystemClock) Now() Millis {
	//nolint:gosec // Truncation is the wraparound contract.
	return Millis(uint32(time.Since(c.start).Milliseconds()))
}

// ManualClock is a Clock whose reading is set explicitly.
// It is safe for concurrent use.
type ManualClock struct {
	now atomic.Uint32
}

// NewManualClock returns a ManualClock reading start.
func NewManualClock(start Millis) *ManualClock {
	c := new(ManualClock)
	c.now.Store(uint32(start))

	return c
}

// Now returns the current reading.
func (c *ManualClock) Now() Millis {
	return Millis(c.now.Load())
}

// Set replaces the current reading.
func (c *ManualClock) Set(now Millis) {
	c.now.Store(uint32(now))
}

// Advance moves the reading forward by ms, wrapping like a hardware counter.
func (c *ManualClock) Advance(ms uint32) Millis {
	return Millis(c.now.Add(ms))
}
