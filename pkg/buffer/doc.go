// Package buffer provides generic, thread-safe bounded buffers with
// configurable overflow policies for stream stages.
//
// # Overview
//
// The buffer package implements a fixed-capacity ring buffer parameterized by
// item type. It backs stages that must absorb a rate mismatch between a
// producer and its consumer while keeping memory bounded.
//
// # Quick Start
//
// Create a buffer with capacity and options:
//
//	buf, err := buffer.NewRing[int](64)
//	if err != nil {
//	    return err
//	}
//	defer buf.Close()
//
//	if err := buf.Write(42); err != nil {
//	    // full under Reject policy, or closed
//	}
//
//	if item, ok := buf.Read(); ok {
//	    process(item)
//	}
//
// # Overflow Policies
//
// When the buffer is at capacity, the overflow policy decides the outcome of
// the next Write:
//
//   - Reject (default): the write fails with ErrFull; no accepted item is
//     ever lost
//   - DropOldest: the oldest buffered item is discarded to make room
//   - DropNewest: the incoming item is discarded
//
// Writes never block. Stages that cannot tolerate loss use Reject and turn
// ErrFull into a stream error; stages that prefer freshness over completeness
// use DropOldest.
//
// # Observability Architecture
//
// Buffers use a dual tracking pattern:
//
//  1. Statistics are always collected using atomic counters. They are cheap,
//     allocation-free, and available through Stats() without any setup.
//  2. Prometheus metrics are optional. When enabled via WithMetrics(), the
//     same events are additionally recorded in registered collectors.
//
// This keeps the common path fast while letting operators opt into full
// Prometheus exposition per stage:
//
//	registry := metric.NewRegistry()
//	buf, err := buffer.NewRing[Event](256,
//	    buffer.WithOverflowPolicy[Event](buffer.DropOldest),
//	    buffer.WithMetrics[Event](registry, "processor.unicast"),
//	)
//
// # Thread Safety
//
// All operations are safe for concurrent use. Reads and writes share one
// mutex; Peek, Size, IsFull and IsEmpty take a read lock. Drop callbacks run
// after the lock is released, so a callback may safely touch the buffer.
//
// # Common Use Cases
//
// Absorbing bursts in front of a slow consumer:
//
//	buf, _ := buffer.NewRing[Item](1024)
//	// producer side
//	if err := buf.Write(item); err != nil {
//	    signalOverflow(err)
//	}
//	// consumer side
//	for _, item := range buf.ReadBatch(32) {
//	    handle(item)
//	}
//
// Keeping only the latest readings from a sensor-style source:
//
//	buf, _ := buffer.NewRing[Reading](16,
//	    buffer.WithOverflowPolicy[Reading](buffer.DropOldest),
//	    buffer.WithDropCallback[Reading](func(r Reading) {
//	        staleReadings.Inc()
//	    }),
//	)
//
// # Testing
//
// Statistics make buffer behavior observable in tests without Prometheus:
//
//	stats := buf.Stats()
//	if stats.Drops() != expectedDrops {
//	    t.Errorf("expected %d drops, got %d", expectedDrops, stats.Drops())
//	}
package buffer
