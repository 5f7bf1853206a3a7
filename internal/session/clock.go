package session

import "sync/atomic"

// Clock is the session's logical clock. Every published change takes the
// next value; wall time is never used for ordering.
//
// Thread-safety: Clock is safe for concurrent use. Only the writer calls
// Next, but Current may be read from any goroutine.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at start. Used when a session
// continues a stored history.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next increments the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current value without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
