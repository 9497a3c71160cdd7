package buffer

import (
	"sync"

	"github.com/c360/rstream/errors"
)

// ring is a thread-safe ring buffer with configurable overflow policies.
// Writes never block: the policy decides what happens at capacity.
type ring[T any] struct {
	mu       sync.RWMutex
	items    []T
	capacity int
	size     int
	head     int         // Points to the next write position
	tail     int         // Points to the next read position
	stats    *Statistics // Always initialized for observability
	metrics  *ringMetrics
	opts     *bufferOptions[T]
	closed   bool
}

// newRing creates a new ring buffer instance.
// Returns an error if metrics registration fails when requested.
func newRing[T any](capacity int, opts *bufferOptions[T]) (*ring[T], error) {
	if capacity <= 0 {
		capacity = 1 // Minimum capacity
	}

	// Stats are always initialized - observability is not optional
	stats := NewStatistics()

	var metrics *ringMetrics
	// Optionally expose stats as Prometheus metrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		var err error
		metrics, err = newRingMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.Wrap(err, "buffer", "newRing", "metrics registration")
		}
	}

	return &ring[T]{
		items:    make([]T, capacity),
		capacity: capacity,
		stats:    stats,
		metrics:  metrics,
		opts:     opts,
	}, nil
}

// Write adds an item to the buffer according to the overflow policy.
func (r *ring[T]) Write(item T) error {
	r.mu.Lock()

	if r.closed {
		r.mu.Unlock()
		return errors.Wrap(ErrClosed, "buffer", "Write", "accept item")
	}

	// dropped holds any item evicted by the overflow policy; its callback
	// runs after the lock is released so the callback may touch the buffer.
	var dropped T
	var hasDropped bool

	// Handle overflow policies when the buffer is full
	if r.size == r.capacity {
		switch r.opts.overflowPolicy {
		case Reject:
			r.stats.Overflow()
			if r.metrics != nil {
				r.metrics.recordOverflow()
			}
			r.mu.Unlock()
			return errors.WrapProducer(ErrFull, "buffer", "Write", "accept item")

		case DropOldest:
			// Remove the oldest item to make room
			dropped = r.items[r.tail]
			hasDropped = true
			r.tail = (r.tail + 1) % r.capacity
			r.size--

			r.stats.Overflow()
			r.stats.Drop()
			if r.metrics != nil {
				r.metrics.recordOverflow()
				r.metrics.recordDrop()
			}

		case DropNewest:
			// Drop the new item
			r.stats.Overflow()
			r.stats.Drop()
			if r.metrics != nil {
				r.metrics.recordOverflow()
				r.metrics.recordDrop()
			}
			r.mu.Unlock()

			if r.opts.dropCallback != nil {
				r.opts.dropCallback(item)
			}
			return nil
		}
	}

	// Add the item
	r.items[r.head] = item
	r.head = (r.head + 1) % r.capacity
	r.size++

	r.stats.Write()
	r.stats.UpdateSize(int64(r.size))
	if r.metrics != nil {
		r.metrics.recordWrite(r.size, r.capacity)
	}
	r.mu.Unlock()

	if hasDropped && r.opts.dropCallback != nil {
		r.opts.dropCallback(dropped)
	}
	return nil
}

// Read retrieves and removes one item from the buffer.
func (r *ring[T]) Read() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T

	if r.size == 0 {
		return zero, false
	}

	item := r.items[r.tail]
	r.items[r.tail] = zero // Clear for GC
	r.tail = (r.tail + 1) % r.capacity
	r.size--

	r.stats.Read()
	r.stats.UpdateSize(int64(r.size))
	if r.metrics != nil {
		r.metrics.recordRead(r.size, r.capacity)
	}

	return item, true
}

// ReadBatch retrieves and removes up to max items from the buffer.
func (r *ring[T]) ReadBatch(max int) []T {
	if max <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size == 0 {
		return nil
	}

	readCount := max
	if readCount > r.size {
		readCount = r.size
	}

	result := make([]T, readCount)
	var zero T

	for i := 0; i < readCount; i++ {
		result[i] = r.items[r.tail]
		r.items[r.tail] = zero // Clear for GC
		r.tail = (r.tail + 1) % r.capacity
		r.size--

		r.stats.Read()
	}

	r.stats.UpdateSize(int64(r.size))
	if r.metrics != nil {
		// Use final state after all reads
		r.metrics.updateSize(r.size, r.capacity)
	}

	return result
}

// Peek retrieves one item without removing it from the buffer.
func (r *ring[T]) Peek() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var zero T

	if r.size == 0 {
		return zero, false
	}

	item := r.items[r.tail]

	r.stats.Peek()
	if r.metrics != nil {
		r.metrics.recordPeek()
	}

	return item, true
}

// Size returns the current number of items in the buffer.
func (r *ring[T]) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Capacity returns the maximum number of items the buffer can hold.
func (r *ring[T]) Capacity() int {
	return r.capacity // Immutable, no lock needed
}

// IsFull returns true if the buffer is at maximum capacity.
func (r *ring[T]) IsFull() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size == r.capacity
}

// IsEmpty returns true if the buffer contains no items.
func (r *ring[T]) IsEmpty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size == 0
}

// Clear removes all items from the buffer.
func (r *ring[T]) Clear() {
	r.mu.Lock()

	var zero T

	// Report cleared items as drops if a callback is set. The callbacks run
	// after the lock is released so they may touch the buffer.
	var itemsToDrop []T
	if r.opts.dropCallback != nil && r.size > 0 {
		itemsToDrop = make([]T, r.size)
		for i := 0; i < r.size; i++ {
			idx := (r.tail + i) % r.capacity
			itemsToDrop[i] = r.items[idx]
		}
	}

	for i := 0; i < r.capacity; i++ {
		r.items[i] = zero
	}

	r.head = 0
	r.tail = 0
	r.size = 0

	r.stats.UpdateSize(0)
	if r.metrics != nil {
		r.metrics.updateSize(0, r.capacity)
	}
	r.mu.Unlock()

	for _, item := range itemsToDrop {
		r.opts.dropCallback(item)
	}
}

// Stats returns buffer statistics (always available for observability).
func (r *ring[T]) Stats() *Statistics {
	return r.stats
}

// Close shuts down the buffer. Pending items remain readable.
func (r *ring[T]) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	return nil
}
