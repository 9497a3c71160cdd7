// Package metric provides Prometheus-based metrics collection and an HTTP
// server for rstream observability.
//
// The package offers a centralized metrics registry managing both core stream
// metrics (subscriptions, demand, signal flow, violations) and custom
// stage-specific metrics. It includes an HTTP server exposing metrics in
// Prometheus format for monitoring system integration.
//
// # Architecture
//
// The package follows a three-layer design:
//
//  1. Core Metrics: Stream-level metrics automatically registered (Metrics type)
//  2. Stage Registry: Extensible registration for stage-specific metrics (Registrar interface)
//  3. HTTP Server: Metrics endpoint with health checks (Server type)
//
// This architecture separates protocol concerns (core metrics) from
// application concerns (stage-specific metrics) while providing a unified
// metrics endpoint for monitoring systems.
//
// # Basic Usage
//
// Setting up metrics collection and the HTTP server:
//
//	registry := metric.NewRegistry()
//	server := metric.NewServer(9090, "/metrics", registry)
//
//	go func() {
//	    if err := server.Start(); err != nil {
//	        log.Printf("metrics server error: %v", err)
//	    }
//	}()
//
//	// Record core stream metrics
//	core := registry.CoreMetrics()
//	core.RecordSubscription("publisher.range")
//	core.RecordItemsEmitted("publisher.range", 128)
//	core.RecordTermination("publisher.range", "complete")
//
// # Core Metrics
//
// Core metrics are registered automatically and labeled by stage:
//
//   - rstream_streams_subscriptions_total: subscriptions accepted
//   - rstream_streams_active: streams between onSubscribe and a terminal event
//   - rstream_streams_terminations_total: terminations by outcome (complete|error|cancel)
//   - rstream_signals_items_emitted_total: onNext signals delivered
//   - rstream_signals_drain_duration_seconds: time per drain pass
//   - rstream_demand_requests_total: Request calls received
//   - rstream_violations_total: contract violations by rule
//
// # Stage-Specific Metrics
//
// Pipeline stages register their own metrics through the Registrar interface.
// The registry detects duplicate registrations at both its own level and the
// underlying Prometheus level:
//
//	counter := prometheus.NewCounter(prometheus.CounterOpts{
//	    Namespace: "rstream",
//	    Subsystem: "buffer",
//	    Name:      "drops_total",
//	    Help:      "Items dropped by overflow policy",
//	})
//	if err := registry.RegisterCounter("processor.unicast", "buffer_drops", counter); err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// All registry operations are protected by a mutex and safe for concurrent
// use. Recording on core metrics delegates to Prometheus collectors, which
// are themselves thread-safe.
//
// # Error Handling
//
// Registration errors are wrapped with stage and operation context but carry
// no stream classification: they indicate wiring mistakes, not protocol
// events. Duplicate registrations are reported rather than silently ignored.
//
// # Architecture Integration
//
// The metric package integrates with other rstream components:
//
//   - publisher: producers expose per-stage counters via WithMetrics options
//   - pkg/buffer: buffers export size, utilization and drop counters
//   - validate: violation reporters feed RecordViolation
//   - verify: the harness can serve a metrics endpoint during long runs
package metric
