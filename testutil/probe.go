package testutil

import (
	"sync"
	"time"

	"github.com/c360/rstream/stream"
)

// awaitPoll is the interval at which Await helpers re-check their condition.
const awaitPoll = time.Millisecond

// Probe is a recording Subscriber. It captures every signal in arrival order
// and exposes Await helpers so tests can block until the stream reaches an
// expected state.
//
// The probe records whatever it is given, including protocol violations such
// as a duplicate OnSubscribe or a signal after a terminal. Asserting on the
// recording is the test's job; the probe never rejects anything.
type Probe[T any] struct {
	mu      sync.Mutex
	signals []stream.Signal[T]
	sub     stream.Subscription

	// initialRequest is issued from inside the first OnSubscribe when
	// requestOnSubscribe is set.
	initialRequest     int64
	requestOnSubscribe bool

	// NextFunc, when set, runs inside OnNext after recording. Tests use it
	// to request more demand or cancel mid-stream.
	NextFunc func(v T, sub stream.Subscription)
}

// ProbeOption configures a Probe.
type ProbeOption[T any] func(*Probe[T])

// WithInitialRequest makes the probe request n from inside its first
// OnSubscribe. The default probe requests nothing and leaves demand to the
// test. Zero and negative amounts are forwarded as-is so tests can provoke
// demand violations.
func WithInitialRequest[T any](n int64) ProbeOption[T] {
	return func(p *Probe[T]) {
		p.initialRequest = n
		p.requestOnSubscribe = true
	}
}

// WithNextFunc installs a hook that runs inside OnNext after the element is
// recorded.
func WithNextFunc[T any](fn func(v T, sub stream.Subscription)) ProbeOption[T] {
	return func(p *Probe[T]) {
		p.NextFunc = fn
	}
}

// NewProbe creates a probe that issues no demand on its own.
func NewProbe[T any](opts ...ProbeOption[T]) *Probe[T] {
	p := &Probe[T]{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewUnboundedProbe creates a probe that requests unbounded demand from
// inside OnSubscribe, for tests that only care about the delivered sequence.
func NewUnboundedProbe[T any]() *Probe[T] {
	return NewProbe(WithInitialRequest[T](stream.Unbounded))
}

// OnSubscribe records the signal and issues the configured initial request.
// Only the first subscription is retained for Request and Cancel forwarding.
func (p *Probe[T]) OnSubscribe(s stream.Subscription) {
	p.mu.Lock()
	first := p.sub == nil
	if first {
		p.sub = s
	}
	p.signals = append(p.signals, stream.Subscribed[T](s))
	request := p.requestOnSubscribe
	n := p.initialRequest
	p.mu.Unlock()

	if first && request && s != nil {
		s.Request(n)
	}
}

// OnNext records the element and runs NextFunc if set.
func (p *Probe[T]) OnNext(v T) {
	p.mu.Lock()
	p.signals = append(p.signals, stream.Next[T](v))
	fn := p.NextFunc
	sub := p.sub
	p.mu.Unlock()

	if fn != nil {
		fn(v, sub)
	}
}

// OnError records the failing terminal.
func (p *Probe[T]) OnError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signals = append(p.signals, stream.Error[T](err))
}

// OnComplete records the successful terminal.
func (p *Probe[T]) OnComplete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signals = append(p.signals, stream.Complete[T]())
}

// Request forwards to the captured subscription. It is a no-op before
// OnSubscribe.
func (p *Probe[T]) Request(n int64) {
	p.mu.Lock()
	sub := p.sub
	p.mu.Unlock()

	if sub != nil {
		sub.Request(n)
	}
}

// Cancel forwards to the captured subscription. It is a no-op before
// OnSubscribe.
func (p *Probe[T]) Cancel() {
	p.mu.Lock()
	sub := p.sub
	p.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
}

// Subscription returns the subscription captured by the first OnSubscribe,
// or nil if none arrived yet.
func (p *Probe[T]) Subscription() stream.Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sub
}

// Signals returns a copy of every recorded signal in arrival order.
func (p *Probe[T]) Signals() []stream.Signal[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]stream.Signal[T], len(p.signals))
	copy(out, p.signals)
	return out
}

// Items returns the recorded OnNext elements in arrival order.
func (p *Probe[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []T
	for _, s := range p.signals {
		if s.Type == stream.SignalNext {
			out = append(out, s.Item)
		}
	}
	return out
}

// Err returns the first recorded OnError error, or nil.
func (p *Probe[T]) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, s := range p.signals {
		if s.Type == stream.SignalError {
			return s.Err
		}
	}
	return nil
}

// SubscribeCount returns how many OnSubscribe signals arrived.
func (p *Probe[T]) SubscribeCount() int { return p.count(stream.SignalSubscribe) }

// ItemCount returns how many OnNext signals arrived.
func (p *Probe[T]) ItemCount() int { return p.count(stream.SignalNext) }

// ErrorCount returns how many OnError signals arrived.
func (p *Probe[T]) ErrorCount() int { return p.count(stream.SignalError) }

// CompleteCount returns how many OnComplete signals arrived.
func (p *Probe[T]) CompleteCount() int { return p.count(stream.SignalComplete) }

func (p *Probe[T]) count(t stream.SignalType) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, s := range p.signals {
		if s.Type == t {
			n++
		}
	}
	return n
}

// Completed reports whether an OnComplete arrived.
func (p *Probe[T]) Completed() bool { return p.CompleteCount() > 0 }

// Terminated reports whether any terminal signal arrived.
func (p *Probe[T]) Terminated() bool {
	return p.ErrorCount() > 0 || p.CompleteCount() > 0
}

// AwaitItems blocks until at least n elements were recorded or the timeout
// elapses. It reports whether the condition was met.
func (p *Probe[T]) AwaitItems(n int, timeout time.Duration) bool {
	return p.await(timeout, func() bool { return p.count(stream.SignalNext) >= n })
}

// AwaitTerminal blocks until a terminal signal was recorded or the timeout
// elapses. It reports whether the condition was met.
func (p *Probe[T]) AwaitTerminal(timeout time.Duration) bool {
	return p.await(timeout, p.Terminated)
}

// AwaitSubscribed blocks until an OnSubscribe was recorded or the timeout
// elapses. It reports whether the condition was met.
func (p *Probe[T]) AwaitSubscribed(timeout time.Duration) bool {
	return p.await(timeout, func() bool { return p.count(stream.SignalSubscribe) >= 1 })
}

func (p *Probe[T]) await(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return true
		}
		if time.Now().After(deadline) {
			return cond()
		}
		time.Sleep(awaitPoll)
	}
}
