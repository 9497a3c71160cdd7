// Package stream defines the Reactive Streams contract: four small
// interfaces through which a producer and a consumer exchange a sequence of
// elements under explicit, consumer-controlled demand.
//
// # The Contract
//
// A Publisher produces elements. A Subscriber consumes them. Each call to
// Publisher.Subscribe creates one Subscription, the private channel through
// which exactly one Subscriber signals demand (Request) and disinterest
// (Cancel) to exactly one producer. A Processor is both at once and is the
// composition point for pipeline stages.
//
// Signals always flow in the order
//
//	OnSubscribe (OnNext)* (OnError | OnComplete)?
//
// and are never delivered concurrently to the same Subscriber. A Publisher
// may send at most as many OnNext signals as the Subscriber has requested,
// and after a terminal signal (OnError or OnComplete) it may send nothing at
// all. Request and Cancel are safe to call from any goroutine at any time,
// including from inside OnNext.
//
// # Demand
//
// Demand is cumulative: Request(3) followed by Request(2) entitles the
// producer to five elements. Any request at or above Unbounded switches the
// subscription to effectively-unbounded mode, the classic "push" regime.
// A request for zero or a negative amount is a contract violation and
// terminates the stream with an error rather than being silently ignored.
//
// # Implementations
//
// This package holds declarations plus small adapters for building
// Subscribers and Subscriptions from plain functions. The reference runtime
// lives in the publisher and processor packages; contract checking for
// third-party implementations lives in validate and verify.
package stream
