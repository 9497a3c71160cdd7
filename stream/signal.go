package stream

import "fmt"

// SignalType identifies one of the four protocol signals.
type SignalType int

const (
	// SignalSubscribe is the OnSubscribe signal.
	SignalSubscribe SignalType = iota
	// SignalNext is an OnNext signal carrying one element.
	SignalNext
	// SignalError is the failing terminal signal.
	SignalError
	// SignalComplete is the successful terminal signal.
	SignalComplete
)

// String returns the conventional lower-case signal name.
func (t SignalType) String() string {
	switch t {
	case SignalSubscribe:
		return "onSubscribe"
	case SignalNext:
		return "onNext"
	case SignalError:
		return "onError"
	case SignalComplete:
		return "onComplete"
	default:
		return "unknown"
	}
}

// Signal is a materialized protocol signal: a tagged variant over
// {Subscribe, Next, Error, Complete}. At most one terminal variant is ever
// delivered per subscription, and it is always the last.
//
// Signals are what recording subscribers and queueing stages pass around
// when a stream has to be reified as data.
type Signal[T any] struct {
	Type SignalType

	// Item carries the element of a SignalNext and is the zero value
	// otherwise.
	Item T

	// Err carries the error of a SignalError and is nil otherwise.
	Err error

	// Subscription carries the subscription of a SignalSubscribe and is nil
	// otherwise.
	Subscription Subscription
}

// Subscribed builds an OnSubscribe signal.
func Subscribed[T any](s Subscription) Signal[T] {
	return Signal[T]{Type: SignalSubscribe, Subscription: s}
}

// Next builds an OnNext signal carrying v.
func Next[T any](v T) Signal[T] {
	return Signal[T]{Type: SignalNext, Item: v}
}

// Error builds an OnError signal carrying err.
func Error[T any](err error) Signal[T] {
	return Signal[T]{Type: SignalError, Err: err}
}

// Complete builds an OnComplete signal.
func Complete[T any]() Signal[T] {
	return Signal[T]{Type: SignalComplete}
}

// IsTerminal reports whether the signal ends the subscription.
func (s Signal[T]) IsTerminal() bool {
	return s.Type == SignalError || s.Type == SignalComplete
}

// String renders the signal for diagnostics.
func (s Signal[T]) String() string {
	switch s.Type {
	case SignalNext:
		return fmt.Sprintf("onNext(%v)", s.Item)
	case SignalError:
		return fmt.Sprintf("onError(%v)", s.Err)
	default:
		return s.Type.String()
	}
}

// Deliver replays the signal into sub. OnSubscribe signals forward the
// carried Subscription.
func (s Signal[T]) Deliver(sub Subscriber[T]) {
	switch s.Type {
	case SignalSubscribe:
		sub.OnSubscribe(s.Subscription)
	case SignalNext:
		sub.OnNext(s.Item)
	case SignalError:
		sub.OnError(s.Err)
	case SignalComplete:
		sub.OnComplete()
	}
}
