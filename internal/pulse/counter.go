// Package pulse counts RF falling edges between drains.
package pulse

import "sync/atomic"

// Counter is incremented by the edge handler and drained by the sampling loop.
// The zero value is ready to use.
type Counter struct {
	count atomic.Uint32
}

// OnEdge records one edge. It never blocks and wraps at the uint32 modulus,
// so it is safe to call from an edge callback goroutine.
func (c *Counter) OnEdge() {
	c.count.Add(1)
}

// DrainAndReset returns the edges recorded since the previous drain and
// zeroes the counter in a single exchange, so a concurrent OnEdge lands
// either in this drain or in the next one.
func (c *Counter) DrainAndReset() uint32 {
	return c.count.Swap(0)
}

// Peek returns the current count without resetting it.
func (c *Counter) Peek() uint32 {
	return c.count.Load()
}
