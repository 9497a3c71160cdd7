package stream

import "math"

// Unbounded is the demand threshold treated as "effectively unbounded".
// A subscription whose outstanding demand reaches this value stops counting
// individual elements down; the producer may emit freely until a terminal
// signal or cancellation.
const Unbounded int64 = math.MaxInt64

// Publisher is a provider of a potentially unbounded number of sequenced
// elements, published according to the demand received from its Subscriber.
//
// Subscribe is a factory call: each invocation starts an independent
// Subscription with fresh producer state. Publishers must not share mutable
// per-subscription state between calls. Subscribe panics if s is nil; there
// is no subscription to deliver an error through at that point.
type Publisher[T any] interface {
	Subscribe(s Subscriber[T])
}

// Subscriber receives OnSubscribe exactly once, then at most as many OnNext
// calls as it has requested, terminated by at most one OnError or OnComplete.
// No two calls into the same Subscriber ever overlap in time.
type Subscriber[T any] interface {
	// OnSubscribe hands over the Subscription. It is the first signal and
	// arrives exactly once. Requesting from within OnSubscribe is allowed
	// and is the usual way to start the flow.
	OnSubscribe(s Subscription)

	// OnNext delivers one element. Never called before OnSubscribe, after a
	// terminal signal, or beyond the requested demand.
	OnNext(v T)

	// OnError terminates the stream with a non-nil error. No signal follows.
	OnError(err error)

	// OnComplete terminates the stream successfully. No signal follows.
	OnComplete()
}

// Subscription mediates demand and cancellation between one Publisher-side
// producer and one Subscriber. It is single-use: it belongs to the Subscriber
// it was created for and must not be handed to another.
type Subscription interface {
	// Request adds n to the outstanding demand. n must be positive; a zero
	// or negative request terminates the stream with
	// errors.ErrNonPositiveDemand. Calls after cancellation or a terminal
	// signal are no-ops.
	Request(n int64)

	// Cancel asks the producer to stop. It is idempotent and safe to call
	// at any time; elements already committed for delivery may still
	// arrive, but no new emission starts once the producer observes the
	// cancellation.
	Cancel()
}

// Processor is a pipeline stage: a Subscriber toward its upstream and a
// Publisher toward its downstream, with the two lifecycles coupled. Upstream
// termination propagates downstream, downstream cancellation propagates
// upstream.
type Processor[T, R any] interface {
	Subscriber[T]
	Publisher[R]
}
