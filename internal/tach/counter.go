package tach

import (
	"sync/atomic"
	"time"
)

// DefaultDebounce is the minimum spacing between accepted tachometer edges.
// A 2200 RPM fan emitting two pulses per revolution spaces true edges about
// 13.6 ms apart, so anything faster than 5 ms is electrical bounce.
const DefaultDebounce = 5 * time.Millisecond

// Counter accumulates tachometer edges between control ticks. OnEdge runs in
// the edge-event context and Drain in the control loop; the count is handed
// over with a single atomic swap so neither side ever blocks the other and
// no pulse is lost or double-counted.
type Counter struct {
	count          atomic.Uint32
	debounceMicros uint32

	// Edge-context state. Only OnEdge touches these.
	lastEdgeMicros uint32
	haveEdge       bool

	lastDrain time.Time
}

// NewCounter creates a counter whose first Drain measures elapsed time from
// now.
func NewCounter(debounce time.Duration, now time.Time) *Counter {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Counter{
		debounceMicros: uint32(debounce / time.Microsecond),
		lastDrain:      now,
	}
}

// OnEdge records one falling edge of the tachometer signal. Edges closer
// together than the debounce window are coalesced. Timestamps are in the
// microsecond domain and may wrap; unsigned subtraction keeps the delta
// correct across the wrap.
func (c *Counter) OnEdge(nowMicros uint32) {
	if c.haveEdge && nowMicros-c.lastEdgeMicros < c.debounceMicros {
		return
	}

	c.lastEdgeMicros = nowMicros
	c.haveEdge = true
	c.count.Add(1)
}

// Drain atomically reads and zeroes the accumulated count and returns the
// wall-clock interval since the previous drain. The interval reflects actual
// elapsed time so rate computation stays correct when the tick jitters.
func (c *Counter) Drain(now time.Time) (count uint32, elapsed time.Duration) {
	count = c.count.Swap(0)
	elapsed = now.Sub(c.lastDrain)
	c.lastDrain = now

	return count, elapsed
}
