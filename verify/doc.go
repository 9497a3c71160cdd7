// Package verify checks publisher implementations against the behavioral
// contract of the streaming protocol.
//
// # Overview
//
// A publisher can deliver the right elements and still be wrong: it can
// outrun demand, ignore cancellation, double the handshake or append
// signals after the terminal. PublisherVerifier drives a publisher
// through scenarios that catch exactly those failures, watching every
// stream through the validate wrappers so breaches surface as scenario
// errors.
//
//	v, err := verify.NewPublisherVerifier(
//	    func(els []int) stream.Publisher[int] { return publisher.FromSlice(els) },
//	    testutil.Ints,
//	    verify.DefaultEnvironment(),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := v.Verify(ctx); err != nil {
//	    return err
//	}
//
// Each scenario is also callable on its own, which keeps failures
// readable when a test wants to pin down one behavior.
//
// # Scenarios
//
//   - stepwise sequence: one element of demand at a time, full ordered
//     delivery, completion, no overdelivery.
//   - unbounded sequence: everything up front, same delivery checks.
//   - non-positive demand: request(-1) in the handshake must fail the
//     stream with ErrNonPositiveDemand before any element.
//   - cancel stops delivery: cancel inside the first delivery must quiet
//     the stream without a terminal and without exhausting the sequence.
//   - demand accounting: many goroutines requesting concurrently must be
//     accounted exactly, with ordered delivery and no overlap.
//
// # Environment
//
// Timeouts and scenario sizes come from an Environment, either
// DefaultEnvironment or a YAML file via LoadEnvironment. Files carry
// durations in time.ParseDuration syntax:
//
//	default_timeout: 2s
//	no_signal_timeout: 100ms
//	sequence_length: 5
//	requesters: 16
//	requests_per_requester: 100
//
// # Scope
//
// The harness verifies publishers from the outside. Subscriber-side
// discipline is what the validate wrappers are for; wire a
// validate.Subscriber around the consumer under test instead.
package verify
