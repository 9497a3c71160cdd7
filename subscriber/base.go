package subscriber

import (
	"log/slog"
	"sync"

	"github.com/c360/rstream/stream"
)

// Base is an embeddable subscriber core that owns the subscription
// handshake. It stores the first subscription it is handed, cancels any
// later one, and forwards Request and Cancel to whatever is bound.
//
// Embed it and override the callbacks you care about:
//
//	type printer struct {
//	    subscriber.Base[string]
//	}
//
//	func (p *printer) OnSubscribe(s stream.Subscription) {
//	    p.Base.OnSubscribe(s)
//	    p.Request(1)
//	}
//
//	func (p *printer) OnNext(v string) {
//	    fmt.Println(v)
//	    p.Request(1)
//	}
//
// The zero value is ready to use.
type Base[T any] struct {
	mu  sync.Mutex
	sub stream.Subscription
}

var _ stream.Subscriber[int] = (*Base[int])(nil)

// OnSubscribe binds the subscription. A second call cancels the newcomer
// and keeps the original binding.
func (b *Base[T]) OnSubscribe(s stream.Subscription) {
	if s == nil {
		panic("subscriber: OnSubscribe called with nil subscription")
	}
	b.mu.Lock()
	if b.sub != nil {
		b.mu.Unlock()
		s.Cancel()
		return
	}
	b.sub = s
	b.mu.Unlock()
}

// OnNext discards the element. Override it to consume the stream.
func (b *Base[T]) OnNext(T) {}

// OnError logs the failure. Override it to handle errors yourself.
func (b *Base[T]) OnError(err error) {
	slog.Error("unhandled stream error", "error", err)
}

// OnComplete does nothing. Override it to observe completion.
func (b *Base[T]) OnComplete() {}

// Request asks the bound producer for n more elements. Before the
// handshake it is a no-op.
func (b *Base[T]) Request(n int64) {
	if s := b.Subscription(); s != nil {
		s.Request(n)
	}
}

// Cancel cancels the bound subscription, if any.
func (b *Base[T]) Cancel() {
	if s := b.Subscription(); s != nil {
		s.Cancel()
	}
}

// Subscription returns the bound subscription, or nil before OnSubscribe.
func (b *Base[T]) Subscription() stream.Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sub
}
