// Package worker provides a generic worker pool for concurrent task processing.
//
// # Overview
//
// The worker package implements a bounded, type-safe worker pool built on a
// buffered channel. Work items are submitted without blocking; a fixed set of
// worker goroutines processes them with a shared processor function. The pool
// backs stages that move expensive work off the signal path, most notably
// asynchronous subscribers.
//
// # Core Concepts
//
// A pool is parameterized by its work type and configured at construction:
//
//	pool, err := worker.NewPool(4, 1024, func(ctx context.Context, job Job) error {
//	    return handle(ctx, job)
//	})
//	if err != nil {
//	    return err
//	}
//
//	if err := pool.Start(ctx); err != nil {
//	    return err
//	}
//	defer pool.Stop(5 * time.Second)
//
//	if err := pool.Submit(job); err != nil {
//	    // ErrQueueFull, ErrPoolNotStarted or ErrPoolStopped
//	}
//
// Submit never blocks. When the queue is at capacity the item is dropped and
// ErrQueueFull returned; the caller decides whether that is fatal.
//
// A single-worker pool preserves submission order, which is what ordered
// signal delivery requires:
//
//	pool, err := worker.NewPool(1, 256, consumeSignal)
//
// # Architecture Decisions
//
// The pool makes three deliberate trade-offs:
//
//   - Non-blocking submission: a full queue is reported, never waited on.
//     Callers that must not lose items size the queue to their demand.
//   - Shared processor function: one function per pool, not per item. This
//     keeps the hot path monomorphic and the API small.
//   - Panic on nil processor: a pool without a processor cannot do anything;
//     constructing one is a programming error surfaced immediately.
//
// # Lifecycle
//
// Start launches the workers; Stop closes the queue, lets in-flight and queued
// work finish, and waits up to the given timeout. Cancelling the context
// passed to Start aborts workers without draining the queue. Stop returns
// ErrStopTimeout when workers are stuck in the processor.
//
// # Observability
//
// Statistics are always collected and available through Stats():
//
//	stats := pool.Stats()
//	log.Printf("submitted=%d processed=%d failed=%d dropped=%d",
//	    stats.Submitted, stats.Processed, stats.Failed, stats.Dropped)
//
// Prometheus metrics are optional via WithMetrics:
//
//	pool, err := worker.NewPool(1, 256, consume,
//	    worker.WithMetrics[Signal](registry, "subscriber.async"))
//
// # Thread Safety
//
// Submit, Start, Stop and Stats are safe for concurrent use. Lifecycle
// transitions are serialized by a mutex; statistics use atomic counters.
//
// # Known Limitations
//
//   - Work items queued at Stop time are processed, but items submitted
//     concurrently with Stop may be rejected with ErrPoolStopped.
//   - A pool cannot be restarted; create a new one instead.
package worker
