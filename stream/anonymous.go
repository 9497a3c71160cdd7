package stream

import "log/slog"

// SubscriberFuncs assembles a Subscriber from plain functions, for callers
// that do not want to declare a type. Nil fields are filled with safe
// defaults by Build; an unhandled error is logged rather than dropped.
type SubscriberFuncs[T any] struct {
	Subscribe func(Subscription)
	Next      func(T)
	Error     func(error)
	Complete  func()
}

// Build fills in any nil callbacks and returns the assembled Subscriber.
func (f SubscriberFuncs[T]) Build() Subscriber[T] {
	if f.Subscribe == nil {
		f.Subscribe = func(s Subscription) { s.Request(Unbounded) }
	}
	if f.Next == nil {
		f.Next = func(T) {}
	}
	if f.Error == nil {
		f.Error = func(err error) {
			slog.Error("unhandled stream error", "error", err)
		}
	}
	if f.Complete == nil {
		f.Complete = func() {}
	}
	return &assembledSubscriber[T]{f}
}

type assembledSubscriber[T any] struct {
	f SubscriberFuncs[T]
}

func (a *assembledSubscriber[T]) OnSubscribe(s Subscription) { a.f.Subscribe(s) }
func (a *assembledSubscriber[T]) OnNext(v T)                 { a.f.Next(v) }
func (a *assembledSubscriber[T]) OnError(err error)          { a.f.Error(err) }
func (a *assembledSubscriber[T]) OnComplete()                { a.f.Complete() }

// SubscriptionFuncs assembles a Subscription from plain functions. Nil
// fields become no-ops.
type SubscriptionFuncs struct {
	Request func(int64)
	Cancel  func()
}

// Build returns the assembled Subscription.
func (f SubscriptionFuncs) Build() Subscription {
	if f.Request == nil {
		f.Request = func(int64) {}
	}
	if f.Cancel == nil {
		f.Cancel = func() {}
	}
	return &assembledSubscription{f}
}

type assembledSubscription struct {
	f SubscriptionFuncs
}

func (a *assembledSubscription) Request(n int64) { a.f.Request(n) }
func (a *assembledSubscription) Cancel()         { a.f.Cancel() }

// PublisherFunc adapts a subscribe function into a Publisher.
type PublisherFunc[T any] func(Subscriber[T])

// Subscribe invokes the wrapped function.
func (f PublisherFunc[T]) Subscribe(s Subscriber[T]) { f(s) }
