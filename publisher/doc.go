// Package publisher provides the reference publisher runtime: cold sources
// backed by per-subscription iterators, a hot channel bridge, and the
// serialized drain machinery that turns demand into deliveries.
//
// # Overview
//
// A publisher here is a factory: every Subscribe call creates an independent
// subscription with its own iterator, demand counter, and lifecycle state.
// Nothing is shared between subscribers except the Source value itself and
// its activity statistics.
//
// Available sources:
//
//   - FromSlice: fixed sequence, then complete
//   - Range: consecutive integers, then complete
//   - Generate: pull elements from a function until it says stop or fails
//   - Empty: complete immediately after OnSubscribe
//   - Fail: error immediately after OnSubscribe
//   - FromChannel: hot bridge from a Go channel, single subscriber
//
// # Demand Lifecycle
//
// Subscribers receive the Subscription in OnSubscribe and call Request(n) to
// credit demand. The producer emits at most as many elements as credited,
// pausing when the counter hits zero and resuming on the next Request.
// Demand saturates at stream.Unbounded instead of overflowing. Requesting a
// zero or negative amount is a contract violation: the stream terminates
// with exactly one OnError carrying a violation-classified error.
//
// Cancel is idempotent and can be called from any goroutine, including from
// inside OnNext. Production stops once the producer observes the flag; an
// element already being delivered may still arrive.
//
// # Serialized Drain
//
// Cold sources emit from a trampoline drain loop. The first caller to find
// the work-in-progress counter at zero becomes the drain owner and delivers
// signals; concurrent Request or Cancel calls bump the counter and return,
// folding their work into the running loop. A subscriber that calls
// Request from inside OnNext therefore extends the current drain instead of
// growing the call stack, and no two signals ever overlap.
//
// The channel source cannot emit on its callers' goroutines, because element
// arrival is asynchronous and a Request must never block on the channel.
// It serializes delivery on a dedicated pump goroutine instead: Request and
// Cancel just poke the pump awake. The pump receives one element per
// outstanding credit, which makes the channel's own buffer the backpressure
// boundary for senders.
//
// # Failure Semantics
//
// A source fault (Generate returning an error or panicking) is converted
// into exactly one OnError and the subscription moves to errored; nothing
// follows. Subscriber callbacks are a different matter: a panic inside
// OnNext is the subscriber's own to contain, the runtime does not catch it.
//
// # Observability
//
// Every source carries always-on atomic Statistics (subscriptions, active,
// emitted, requests, outcomes) readable via Stats. Prometheus export is
// opt-in:
//
//	registry := metric.NewRegistry()
//	src := publisher.FromSlice(items,
//	    publisher.WithMetrics(registry, "ingest"),
//	    publisher.WithLogger(logger),
//	)
//
// Lifecycle events log at debug level, contract violations at warn.
//
// # Known Limitations
//
//  1. FromChannel observes channel closure only on a credited receive; a
//     stream with zero outstanding demand learns about it on the next
//     Request.
//  2. Cancelling a channel subscription leaves unread elements in the
//     channel; they belong to the caller.
//  3. A subscriber that panics inside OnNext wedges its own subscription;
//     the drain owner unwinds and no terminal signal is delivered.
package publisher
