// Package demand provides lock-free bookkeeping for outstanding stream demand.
//
// Demand is the number of items a subscriber has requested but not yet
// received. It accumulates across Request calls and is consumed as items are
// emitted. The package uses int64 credits as the canonical demand format.
//
// Saturation Semantics:
//   - Demand saturates at math.MaxInt64 rather than overflowing
//   - A saturated counter means "effectively unbounded": it no longer
//     decreases as items are produced
//
// Usage Examples:
//
//	var c demand.Counter
//
//	// Credit demand from Request(n)
//	c.Add(16)
//
//	// Drain loop: emit up to the outstanding credit, then settle
//	r := c.Get()
//	for e := int64(0); e < r && more(); e++ {
//	    emit()
//	}
//	c.Produced(emitted)
package demand

import (
	"math"
	"sync/atomic"
)

// Counter tracks outstanding demand with atomic saturating arithmetic.
// The zero value is a valid counter with no outstanding demand.
type Counter struct {
	n atomic.Int64
}

// Add credits the counter by n and returns the new total. The total
// saturates at math.MaxInt64 instead of overflowing. Amounts less than
// one are ignored; validating demand is the caller's responsibility.
func (c *Counter) Add(n int64) int64 {
	if n <= 0 {
		return c.n.Load()
	}
	for {
		current := c.n.Load()
		if current == math.MaxInt64 {
			return current
		}
		next := current + n
		if next < 0 {
			next = math.MaxInt64
		}
		if c.n.CompareAndSwap(current, next) {
			return next
		}
	}
}

// Produced consumes n credits after items have been emitted and returns
// the remaining total. A saturated counter stays saturated. Consuming
// more than the outstanding credit floors the counter at zero.
func (c *Counter) Produced(n int64) int64 {
	if n <= 0 {
		return c.n.Load()
	}
	for {
		current := c.n.Load()
		if current == math.MaxInt64 {
			return current
		}
		next := current - n
		if next < 0 {
			next = 0
		}
		if c.n.CompareAndSwap(current, next) {
			return next
		}
	}
}

// TryTake consumes a single credit. It returns false when no demand is
// outstanding. A saturated counter always has a credit available.
func (c *Counter) TryTake() bool {
	for {
		current := c.n.Load()
		if current == 0 {
			return false
		}
		if current == math.MaxInt64 {
			return true
		}
		if c.n.CompareAndSwap(current, current-1) {
			return true
		}
	}
}

// Get returns the outstanding demand.
func (c *Counter) Get() int64 {
	return c.n.Load()
}

// Saturated reports whether the counter has reached math.MaxInt64 and
// behaves as unbounded demand.
func (c *Counter) Saturated() bool {
	return c.n.Load() == math.MaxInt64
}
