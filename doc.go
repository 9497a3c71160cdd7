// Package rstream provides a demand-driven streaming core: publishers,
// processors and subscribers exchanging an ordered signal sequence under
// explicit backpressure, plus a validation layer that detects contract
// violations in third-party implementations.
//
// # The Contract
//
// Every stream follows one signal grammar per subscriber:
//
//	OnSubscribe (OnNext)* (OnError | OnComplete)?
//
// Elements flow only inside demand the subscriber has requested through
// its Subscription. Demand accumulates across requests, saturates at
// stream.Unbounded and never goes negative; requesting a non-positive
// amount fails the stream with errors.ErrNonPositiveDemand. Cancellation
// is cooperative and idempotent: after Cancel the producer stops at the
// next emission boundary, and an element already committed may still
// arrive. Signals are never delivered concurrently to one subscriber.
//
// # Architecture
//
//	┌───────────┐  OnNext / terminal  ┌───────────┐  OnNext / terminal  ┌────────────┐
//	│ publisher │ ──────────────────→ │ processor │ ──────────────────→ │ subscriber │
//	└───────────┘ ←────────────────── └───────────┘ ←────────────────── └────────────┘
//	               Request / Cancel                   Request / Cancel
//
// Each Subscribe call creates an isolated subscription with its own
// demand counter, cancellation flag and drain loop. Backpressure
// propagates hop by hop: a processor relays downstream demand upstream
// and never holds more elements than its stage allows.
//
// # Packages
//
// Contract:
//   - stream: Publisher, Subscriber, Subscription, Processor interfaces;
//     Signal values; funcs-based adapters
//   - errors: classified stream errors (violation, producer, consumer)
//
// Reference runtime:
//   - publisher: FromSlice, Range, FromChannel, Empty, Fail over a shared
//     producer state machine
//   - processor: Map pull-through stage, Unicast hot stage with bounded
//     buffering
//   - subscriber: Base embeddable core, Async consumer with a dedicated
//     delivery goroutine
//
// Validation:
//   - validate: wrapping validators that report rule violations to an
//     injected Reporter
//   - verify: behavioral scenarios for any publisher implementation,
//     YAML-tunable
//
// Infrastructure:
//   - metric: Prometheus registry and core stream metrics
//   - pkg/demand: saturating atomic demand counter
//   - pkg/buffer: bounded ring with overflow policies
//   - pkg/worker: bounded worker pool (single-worker pools serialize)
//   - testutil: recording probes, scriptable publishers, test loggers
//
// # Usage Patterns
//
// Consuming a source with inline callbacks:
//
//	done := make(chan struct{})
//	publisher.FromSlice([]int{1, 2, 3}).Subscribe(stream.SubscriberFuncs[int]{
//		Next:     func(v int) { fmt.Println(v) },
//		Complete: func() { close(done) },
//	}.Build())
//	<-done
//
// Consuming off the producer's goroutine with one element in flight:
//
//	sink, err := subscriber.NewAsync(func(v int) error {
//		return store(v)
//	})
//	if err != nil {
//		return err
//	}
//	defer sink.Close(time.Second)
//	source.Subscribe(sink)
//
// Watching a third-party publisher for contract violations:
//
//	collector := validate.NewCollector(0)
//	checked := validate.NewPublisher[int](thirdParty, validate.WithReporter(collector))
//	checked.Subscribe(mySubscriber)
//	// collector.Violations() lists every breach with rule, goroutine and
//	// subscription diagnostics; the stream itself keeps working.
//
// Verifying a publisher implementation end to end:
//
//	v, err := verify.NewPublisherVerifier(
//		func(els []int) stream.Publisher[int] { return publisher.FromSlice(els) },
//		testutil.Ints,
//		verify.DefaultEnvironment(),
//	)
//	if err != nil {
//		return err
//	}
//	return v.Verify(ctx)
//
// The same harness ships as a binary:
//
//	rstream-verify --publisher=all --env=verify.yaml
//
// # Design Principles
//
// Demand before data:
//   - No element moves without prior demand
//   - Accounting is per subscription, atomic, saturating
//
// Serialized signals:
//   - One logical emission stream per subscription, enforced with a
//     work-in-progress drain loop rather than locks held during delivery
//   - Reentrant Request from OnNext folds into the running drain
//
// Violations are observations:
//   - The validator reports breaches to a Reporter instead of injecting
//     failures into the stream
//   - Only signals that would corrupt the subscriber's view are swallowed
//
// Isolation:
//   - Subscriptions share nothing; loggers, metrics and reporters are
//     injected, never global
//
// # Version
//
// Current: v0.1.0
package rstream
