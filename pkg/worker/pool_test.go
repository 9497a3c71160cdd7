package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Work item used across pool tests
type testWork struct {
	id    int
	delay time.Duration
	fail  bool
}

func TestNewPool(t *testing.T) {
	processor := func(ctx context.Context, _ testWork) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}

	// Test with valid parameters
	pool, err := NewPool(5, 100, processor)
	if err != nil {
		t.Fatalf("Failed to create pool: %v", err)
	}
	if pool.workers != 5 {
		t.Errorf("Expected 5 workers, got %d", pool.workers)
	}
	if pool.queueSize != 100 {
		t.Errorf("Expected queue size 100, got %d", pool.queueSize)
	}

	// Test with zero workers (should default)
	pool, err = NewPool(0, 100, processor)
	if err != nil {
		t.Fatalf("Failed to create pool: %v", err)
	}
	if pool.workers != 1 {
		t.Errorf("Expected default 1 worker, got %d", pool.workers)
	}

	// Test with zero queue size (should default)
	pool, err = NewPool(5, 0, processor)
	if err != nil {
		t.Fatalf("Failed to create pool: %v", err)
	}
	if pool.queueSize != 256 {
		t.Errorf("Expected default queue size 256, got %d", pool.queueSize)
	}
}

func TestNewPool_NilProcessor(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic for nil processor")
		}
	}()
	_, _ = NewPool[testWork](5, 100, nil)
}

func TestPool_StartStop(t *testing.T) {
	var processedCount int64
	processor := func(_ context.Context, _ testWork) error {
		atomic.AddInt64(&processedCount, 1)
		return nil
	}

	pool, err := NewPool(2, 10, processor)
	if err != nil {
		t.Fatalf("Failed to create pool: %v", err)
	}

	ctx := context.Background()
	if err := pool.Start(ctx); err != nil {
		t.Fatalf("Failed to start pool: %v", err)
	}

	// Submit some work
	for i := 0; i < 5; i++ {
		if err := pool.Submit(testWork{id: i}); err != nil {
			t.Errorf("Failed to submit work %d: %v", i, err)
		}
	}

	// Stop drains queued work before returning
	if err := pool.Stop(5 * time.Second); err != nil {
		t.Fatalf("Failed to stop pool: %v", err)
	}

	processed := atomic.LoadInt64(&processedCount)
	if processed != 5 {
		t.Errorf("Expected 5 processed items, got %d", processed)
	}

	// Submitting after stop fails
	if err := pool.Submit(testWork{id: 999}); err == nil {
		t.Error("Expected error when submitting to stopped pool")
	}
}

func TestPool_QueueFull(t *testing.T) {
	block := make(chan struct{})
	processor := func(_ context.Context, _ testWork) error {
		<-block
		return nil
	}

	pool, err := NewPool(1, 2, processor) // Small queue
	if err != nil {
		t.Fatalf("Failed to create pool: %v", err)
	}

	ctx := context.Background()
	if err := pool.Start(ctx); err != nil {
		t.Fatalf("Failed to start pool: %v", err)
	}

	// First submission is picked up by the worker; the queue then holds two
	// items. Keep submitting until the queue refuses.
	var full bool
	for i := 0; i < 10; i++ {
		if err := pool.Submit(testWork{id: i}); err != nil {
			if !errors.Is(err, ErrQueueFull) {
				t.Fatalf("Expected ErrQueueFull, got %v", err)
			}
			full = true
			break
		}
	}
	if !full {
		t.Error("Expected the queue to fill up")
	}

	stats := pool.Stats()
	if stats.Dropped == 0 {
		t.Error("Expected dropped count to increase")
	}

	close(block)
	if err := pool.Stop(5 * time.Second); err != nil {
		t.Fatalf("Failed to stop pool: %v", err)
	}
}

func TestPool_ProcessorErrors(t *testing.T) {
	processor := func(_ context.Context, work testWork) error {
		if work.fail {
			return fmt.Errorf("work %d failed", work.id)
		}
		return nil
	}

	pool, err := NewPool(2, 10, processor)
	if err != nil {
		t.Fatalf("Failed to create pool: %v", err)
	}

	ctx := context.Background()
	if err := pool.Start(ctx); err != nil {
		t.Fatalf("Failed to start pool: %v", err)
	}

	for i := 0; i < 6; i++ {
		if err := pool.Submit(testWork{id: i, fail: i%2 == 0}); err != nil {
			t.Fatalf("Failed to submit work: %v", err)
		}
	}

	if err := pool.Stop(5 * time.Second); err != nil {
		t.Fatalf("Failed to stop pool: %v", err)
	}

	stats := pool.Stats()
	if stats.Processed != 6 {
		t.Errorf("Expected 6 processed, got %d", stats.Processed)
	}
	if stats.Failed != 3 {
		t.Errorf("Expected 3 failed, got %d", stats.Failed)
	}
}

func TestPool_SingleWorkerPreservesOrder(t *testing.T) {
	var mu sync.Mutex
	var order []int

	processor := func(_ context.Context, work testWork) error {
		mu.Lock()
		order = append(order, work.id)
		mu.Unlock()
		return nil
	}

	pool, err := NewPool(1, 100, processor)
	if err != nil {
		t.Fatalf("Failed to create pool: %v", err)
	}

	ctx := context.Background()
	if err := pool.Start(ctx); err != nil {
		t.Fatalf("Failed to start pool: %v", err)
	}

	const n = 50
	for i := 0; i < n; i++ {
		if err := pool.Submit(testWork{id: i}); err != nil {
			t.Fatalf("Failed to submit work %d: %v", i, err)
		}
	}

	if err := pool.Stop(5 * time.Second); err != nil {
		t.Fatalf("Failed to stop pool: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != n {
		t.Fatalf("Expected %d processed items, got %d", n, len(order))
	}
	for i, id := range order {
		if id != i {
			t.Fatalf("Order violated at position %d: got %d", i, id)
		}
	}
}

func TestPool_ContextCancellation(t *testing.T) {
	started := make(chan struct{}, 1)
	processor := func(ctx context.Context, _ testWork) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return ctx.Err()
	}

	pool, err := NewPool(1, 10, processor)
	if err != nil {
		t.Fatalf("Failed to create pool: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := pool.Start(ctx); err != nil {
		t.Fatalf("Failed to start pool: %v", err)
	}

	if err := pool.Submit(testWork{id: 1}); err != nil {
		t.Fatalf("Failed to submit work: %v", err)
	}

	// Wait for the worker to pick up the item, then cancel
	<-started
	cancel()

	if err := pool.Stop(2 * time.Second); err != nil {
		t.Fatalf("Expected clean stop after cancellation, got %v", err)
	}
}

func TestPool_StopTimeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	processor := func(_ context.Context, _ testWork) error {
		<-block
		return nil
	}

	pool, err := NewPool(1, 10, processor)
	if err != nil {
		t.Fatalf("Failed to create pool: %v", err)
	}

	ctx := context.Background()
	if err := pool.Start(ctx); err != nil {
		t.Fatalf("Failed to start pool: %v", err)
	}

	if err := pool.Submit(testWork{id: 1}); err != nil {
		t.Fatalf("Failed to submit work: %v", err)
	}

	// Worker is stuck in the processor; Stop should time out
	err = pool.Stop(50 * time.Millisecond)
	if !errors.Is(err, ErrStopTimeout) {
		t.Errorf("Expected ErrStopTimeout, got %v", err)
	}
}

func TestPool_Stats(t *testing.T) {
	processor := func(_ context.Context, _ testWork) error {
		return nil
	}

	pool, err := NewPool(2, 10, processor)
	if err != nil {
		t.Fatalf("Failed to create pool: %v", err)
	}

	stats := pool.Stats()
	if stats.Workers != 2 {
		t.Errorf("Expected 2 workers, got %d", stats.Workers)
	}
	if stats.QueueSize != 10 {
		t.Errorf("Expected queue size 10, got %d", stats.QueueSize)
	}
	if stats.Submitted != 0 || stats.Processed != 0 {
		t.Error("Expected zero counters before any work")
	}
}
