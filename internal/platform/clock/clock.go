// Package clock supplies logical timestamps. The registry records a
// monotonically non-decreasing value with each claim; where that value comes
// from is a deployment concern behind the Clock interface.
package clock

import (
	"sync/atomic"
	"time"

	"claimd/pkg/domain"
)

// Clock yields the current logical timestamp. Implementations must be
// monotonically non-decreasing across calls.
type Clock interface {
	Now() domain.LogicalTimestamp
}

// Interval derives a logical height from wall time: the number of whole
// intervals elapsed since epoch. This is the block-height analogue for
// deployments without an external chain.
type Interval struct {
	epoch    time.Time
	interval time.Duration
}

var _ Clock = (*Interval)(nil)

func NewInterval(epoch time.Time, interval time.Duration) *Interval {
	if interval <= 0 {
		interval = time.Second
	}
	return &Interval{epoch: epoch, interval: interval}
}

func (c *Interval) Now() domain.LogicalTimestamp {
	elapsed := time.Since(c.epoch)
	if elapsed < 0 {
		return 0
	}
	return domain.LogicalTimestamp(elapsed / c.interval)
}

// Manual is the deterministic test clock: it returns a fixed height until
// advanced.
type Manual struct {
	now atomic.Uint64
}

var _ Clock = (*Manual)(nil)

func NewManual(start domain.LogicalTimestamp) *Manual {
	c := &Manual{}
	c.now.Store(uint64(start))
	return c
}

func (c *Manual) Now() domain.LogicalTimestamp {
	return domain.LogicalTimestamp(c.now.Load())
}

// Set moves the clock to a specific height. Heights never go backwards in
// production; tests own the consequences if they do.
func (c *Manual) Set(ts domain.LogicalTimestamp) {
	c.now.Store(uint64(ts))
}

// Advance moves the clock forward by delta heights.
func (c *Manual) Advance(delta uint64) {
	c.now.Add(delta)
}
