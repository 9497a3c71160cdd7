package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/c360/rstream/metric"
)

// TestPool_SentinelErrors verifies that the correct sentinel errors are returned
func TestPool_SentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{
			name: "ErrPoolNotStarted when submitting before start",
			test: func(t *testing.T) {
				processor := func(_ context.Context, _ testWork) error {
					return nil
				}
				pool, err := NewPool(2, 10, processor)
				if err != nil {
					t.Fatalf("Failed to create pool: %v", err)
				}

				err = pool.Submit(testWork{id: 1})
				if !errors.Is(err, ErrPoolNotStarted) {
					t.Errorf("Expected ErrPoolNotStarted, got %v", err)
				}
			},
		},
		{
			name: "ErrPoolAlreadyStarted when starting twice",
			test: func(t *testing.T) {
				processor := func(_ context.Context, _ testWork) error {
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
				defer func() {
					_ = pool.Stop(5 * time.Second)
				}()

				err = pool.Start(ctx)
				if !errors.Is(err, ErrPoolAlreadyStarted) {
					t.Errorf("Expected ErrPoolAlreadyStarted, got %v", err)
				}
			},
		},
		{
			name: "ErrPoolStopped when submitting after stop",
			test: func(t *testing.T) {
				processor := func(_ context.Context, _ testWork) error {
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
				if err := pool.Stop(5 * time.Second); err != nil {
					t.Fatalf("Failed to stop pool: %v", err)
				}

				err = pool.Submit(testWork{id: 1})
				if !errors.Is(err, ErrPoolStopped) {
					t.Errorf("Expected ErrPoolStopped, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func TestPool_MetricsRegistration(t *testing.T) {
	registry := metric.NewRegistry()
	processor := func(_ context.Context, _ testWork) error {
		return nil
	}

	pool, err := NewPool(1, 10, processor, WithMetrics[testWork](registry, "subscriber.async"))
	if err != nil {
		t.Fatalf("Failed to create pool with metrics: %v", err)
	}

	ctx := context.Background()
	if err := pool.Start(ctx); err != nil {
		t.Fatalf("Failed to start pool: %v", err)
	}
	if err := pool.Submit(testWork{id: 1}); err != nil {
		t.Fatalf("Failed to submit work: %v", err)
	}
	if err := pool.Stop(5 * time.Second); err != nil {
		t.Fatalf("Failed to stop pool: %v", err)
	}

	families, err := registry.PrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range families {
		if mf.GetName() == "rstream_worker_submitted_total" {
			found = true
			break
		}
	}
	if !found {
		t.Error("Expected worker metrics to be registered")
	}

	// Duplicate prefix must fail construction
	if _, err := NewPool(1, 10, processor, WithMetrics[testWork](registry, "subscriber.async")); err == nil {
		t.Error("Expected duplicate metrics registration to fail")
	}
}
