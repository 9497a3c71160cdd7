package publisher

import (
	"github.com/c360/rstream/errors"
	"github.com/c360/rstream/stream"
)

// Source is a cold publisher. Every Subscribe call builds a fresh iterator
// and a fresh subscription, so subscribers never share producer state and
// each one sees the sequence from the beginning.
type Source[T any] struct {
	newIterator func() iterator[T]
	preloadErr  error
	opts        sourceOptions
	stats       *Statistics
}

var _ stream.Publisher[int] = (*Source[int])(nil)

func newSource[T any](kind string, newIterator func() iterator[T], opts []Option) *Source[T] {
	return &Source[T]{
		newIterator: newIterator,
		opts:        applyOptions(kind, opts),
		stats:       &Statistics{},
	}
}

// Subscribe starts an independent subscription for sub. OnSubscribe is
// delivered first; an empty or failed source then terminates without waiting
// for demand. Subscribe panics on a nil subscriber, there is no subscription
// yet to carry an error.
func (s *Source[T]) Subscribe(sub stream.Subscriber[T]) {
	if sub == nil {
		panic("publisher: Subscribe called with nil subscriber")
	}

	p := newProducer(sub, s.newIterator(), s.stats, s.opts)
	if s.preloadErr != nil {
		p.fail(s.preloadErr)
	}

	s.stats.recordSubscription()
	if s.opts.metrics != nil {
		s.opts.metrics.RecordSubscription(s.opts.stage)
	}
	s.opts.logger.Debug("subscription created",
		"stage", s.opts.stage, "subscription_id", p.id)

	sub.OnSubscribe(p)

	// Kick the drain once so sources with nothing to emit terminate even if
	// the subscriber never requests.
	p.drain()
}

// Stats returns a snapshot of the source's activity across all its
// subscriptions.
func (s *Source[T]) Stats() SourceStats {
	return s.stats.Snapshot()
}

// FromSlice publishes the elements of items in order, then completes. The
// slice is copied once at construction; later mutation of items by the
// caller does not reach subscribers.
func FromSlice[T any](items []T, opts ...Option) *Source[T] {
	copied := make([]T, len(items))
	copy(copied, items)

	return newSource("slice", func() iterator[T] {
		return &sliceIterator[T]{items: copied}
	}, opts)
}

// Range publishes count consecutive integers starting at start, then
// completes. A non-positive count completes immediately.
func Range(start, count int64, opts ...Option) *Source[int64] {
	if count < 0 {
		count = 0
	}
	return newSource("range", func() iterator[int64] {
		return &rangeIterator{next: start, remaining: count}
	}, opts)
}

// Generate publishes elements pulled from fn, called with the element index
// starting at zero. fn returns ok=false to complete the stream and a non-nil
// error to fail it; a panic inside fn is contained and surfaced as a source
// fault through OnError.
func Generate[T any](fn func(i int64) (T, bool, error), opts ...Option) *Source[T] {
	return newSource("generate", func() iterator[T] {
		return &generateIterator[T]{fn: fn}
	}, opts)
}

// Empty publishes no elements and completes as soon as OnSubscribe has been
// delivered, without waiting for demand.
func Empty[T any](opts ...Option) *Source[T] {
	return newSource("empty", func() iterator[T] {
		return &sliceIterator[T]{}
	}, opts)
}

// Fail publishes no elements and delivers err through OnError right after
// OnSubscribe, without waiting for demand. A nil err is itself an error and
// is reported as one.
func Fail[T any](err error, opts ...Option) *Source[T] {
	if err == nil {
		err = errors.WrapViolation(errors.ErrNilError,
			"publisher", "Fail", "construct failed source")
	}
	s := newSource("fail", func() iterator[T] {
		return &sliceIterator[T]{}
	}, opts)
	s.preloadErr = err
	return s
}

// refuse rejects a subscriber that cannot be served, honouring the rule that
// OnSubscribe precedes every other signal. The one-off subscription it hands
// out ignores all demand.
func refuse[T any](sub stream.Subscriber[T], err error) {
	if sub == nil {
		panic("publisher: Subscribe called with nil subscriber")
	}
	sub.OnSubscribe(stream.SubscriptionFuncs{}.Build())
	sub.OnError(err)
}
