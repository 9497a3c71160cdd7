// Package subscriber provides ready-made consumers for the receiving end
// of a stream.
//
// # Overview
//
// Two consumers cover the common ground:
//
//   - Base is an embeddable core that handles the subscription handshake.
//     Embed it, override the callbacks you need, and call Request from
//     wherever your pacing logic lives.
//   - Async runs a handler function on its own goroutine, one element in
//     flight, so blocking work never stalls the producer.
//
// For one-off inline consumers built from plain functions, use
// stream.SubscriberFuncs instead; this package is for consumers with
// behavior worth naming.
//
// # Pacing
//
// Base leaves demand entirely to the embedder: nothing is requested until
// the embedder calls Request. Async paces itself: it requests one element
// on subscribe and one more after each handler return, so the producer
// can never get more than one element ahead of the handler plus whatever
// small queue slack the consumer was built with.
//
// # Failure Semantics
//
// An Async handler that returns an error or panics terminates the
// consumer: the upstream subscription is cancelled and the error callback
// fires with a consumer-classified error. A producer that emits past the
// paced demand eventually overruns the signal queue; that latches a
// producer-classified overflow error which cancels the upstream and
// preempts any signals still queued.
//
// After a terminal signal the consumer discards everything else it
// receives.
//
// # Thread Safety
//
// Base may be shared across goroutines. Async's handler and callbacks run
// on a single delivery goroutine, never concurrently, in signal order.
// The producer-facing callbacks only enqueue and are safe to call from
// any goroutine.
//
// # Known Limitations
//
// Async owns the demand. The handler has no way to request in larger
// batches; a consumer that wants windowed demand should embed Base and
// manage requests itself.
//
// Async holds a goroutine from NewAsync until Close. Dropping the
// consumer without calling Close leaks it.
//
// # See Also
//
//   - Package publisher for the producers these consumers attach to.
//   - Package processor for stages that sit between the two.
package subscriber
