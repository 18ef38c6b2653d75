package watom

import "sync/atomic"

// Counter is a lock-free monotonic/bidirectional int64 counter. No
// other package in this module uses it: the Server keeps no counters
// of its own, and connection counts are recorded by the monitor
// package's Prometheus metrics.
type Counter struct {
	n int64
}

func (c *Counter) Add(delta int64) int64 {
	return atomic.AddInt64(&c.n, delta)
}

func (c *Counter) Inc() int64 { return c.Add(1) }

func (c *Counter) Dec() int64 { return c.Add(-1) }

func (c *Counter) Load() int64 {
	return atomic.LoadInt64(&c.n)
}
