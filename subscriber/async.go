package subscriber

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/rstream/errors"
	"github.com/c360/rstream/pkg/worker"
	"github.com/c360/rstream/stream"
)

// Async consumes a stream on a dedicated goroutine so a slow or blocking
// handler never runs inside the producer's emission loop. Signals are
// queued in arrival order and delivered one at a time; demand is paced to
// one element in flight, with the next element requested only after the
// handler returns.
//
// The handler may block, do IO, or take as long as it likes. If it returns
// an error or panics, the upstream subscription is cancelled and the error
// callback fires. A producer that keeps emitting past the paced demand
// eventually overruns the signal queue, which also fails the stream.
//
// Close releases the delivery goroutine; call it when done with the
// consumer.
type Async[T any] struct {
	onNext     func(T) error
	onError    func(error)
	onComplete func()
	opts       asyncOptions

	pool *worker.Pool[stream.Signal[T]]

	mu  sync.Mutex
	sub stream.Subscription

	// overflow latches the failure raised when the signal queue overruns.
	// The delivery goroutine checks it before every signal, so the failure
	// preempts whatever is still queued.
	overflow atomic.Pointer[error]

	// done is owned by the delivery goroutine. Once set, remaining queued
	// signals are discarded.
	done bool
}

var _ stream.Subscriber[int] = (*Async[int])(nil)

// NewAsync builds an async consumer around the given element handler and
// starts its delivery goroutine. The handler runs once per element, in
// order, never concurrently. A nil handler panics.
func NewAsync[T any](onNext func(T) error, opts ...AsyncOption) (*Async[T], error) {
	if onNext == nil {
		panic("subscriber: NewAsync called with nil handler")
	}
	o := applyAsyncOptions(opts)
	a := &Async[T]{
		onNext:     onNext,
		onError:    o.onError,
		onComplete: o.onComplete,
		opts:       o,
	}

	var poolOpts []worker.Option[stream.Signal[T]]
	if o.registry != nil {
		poolOpts = append(poolOpts, worker.WithMetrics[stream.Signal[T]](o.registry, o.stage))
	}
	// A single worker keeps signal delivery serialized.
	pool, err := worker.NewPool(1, o.queueSize, a.dispatch, poolOpts...)
	if err != nil {
		return nil, err
	}
	if err := pool.Start(context.Background()); err != nil {
		return nil, err
	}
	a.pool = pool
	return a, nil
}

// OnSubscribe queues the handshake. The subscription is bound on the
// delivery goroutine, which then requests the first element.
func (a *Async[T]) OnSubscribe(s stream.Subscription) {
	if s == nil {
		panic("subscriber: OnSubscribe called with nil subscription")
	}
	a.submit(stream.Subscribed[T](s))
}

// OnNext queues one element for the handler.
func (a *Async[T]) OnNext(v T) {
	a.submit(stream.Next(v))
}

// OnError queues the failing terminal. A nil error is a contract violation
// and is delivered as one.
func (a *Async[T]) OnError(err error) {
	if err == nil {
		err = errors.WrapViolation(errors.ErrNilError,
			"subscriber", "OnError", "terminate async consumer")
	}
	a.submit(stream.Error[T](err))
}

// OnComplete queues the successful terminal.
func (a *Async[T]) OnComplete() {
	a.submit(stream.Complete[T]())
}

// Cancel cancels the upstream subscription. Signals already queued are
// still discarded by the delivery goroutine.
func (a *Async[T]) Cancel() {
	a.cancelUpstream()
}

// Close cancels any upstream subscription and tears down the delivery
// goroutine, draining queued signals first. It returns ErrStopTimeout if
// the handler does not come back within the timeout.
func (a *Async[T]) Close(timeout time.Duration) error {
	a.cancelUpstream()
	return a.pool.Stop(timeout)
}

// Stats reports the delivery queue counters.
func (a *Async[T]) Stats() worker.PoolStats {
	return a.pool.Stats()
}

// submit hands a signal to the delivery queue. A full queue means the
// producer is emitting far beyond the paced demand, which fails the
// stream; a stopped queue means the consumer was closed and the signal is
// dropped.
func (a *Async[T]) submit(sig stream.Signal[T]) {
	err := a.pool.Submit(sig)
	if err == nil {
		return
	}
	if stderrors.Is(err, worker.ErrQueueFull) {
		a.overflowFail(sig)
		return
	}
	a.opts.logger.Debug("signal dropped after close",
		"stage", a.opts.stage,
		"signal", sig.String())
}

// overflowFail latches the overflow error, cancels the upstream and makes
// sure the delivery goroutine has a signal to trip over.
func (a *Async[T]) overflowFail(sig stream.Signal[T]) {
	fail := errors.WrapProducer(errors.ErrBufferOverflow,
		"subscriber", "OnNext",
		fmt.Sprintf("queue signal beyond capacity %d", a.opts.queueSize))
	if !a.overflow.CompareAndSwap(nil, &fail) {
		return
	}
	a.opts.logger.Warn("async consumer overrun",
		"stage", a.opts.stage,
		"signal", sig.String(),
		"capacity", a.opts.queueSize)
	a.cancelUpstream()
	// The queue was full an instant ago, so the delivery goroutine has
	// signals left to process and will see the latched failure on the next
	// one. If it drained everything in the meantime, this nudge is what it
	// sees instead.
	_ = a.pool.Submit(stream.Error[T](fail))
}

// dispatch runs on the single delivery goroutine and applies one queued
// signal.
func (a *Async[T]) dispatch(_ context.Context, sig stream.Signal[T]) error {
	if a.done {
		a.discard(sig)
		return nil
	}
	if p := a.overflow.Load(); p != nil {
		a.done = true
		a.discard(sig)
		a.onError(*p)
		return nil
	}

	switch sig.Type {
	case stream.SignalSubscribe:
		a.handleSubscribe(sig.Subscription)
	case stream.SignalNext:
		return a.handleNext(sig.Item)
	case stream.SignalError:
		a.done = true
		a.onError(sig.Err)
	case stream.SignalComplete:
		a.done = true
		a.onComplete()
	}
	return nil
}

// handleSubscribe binds the subscription and requests the first element. A
// second handshake cancels the newcomer and keeps the original binding.
func (a *Async[T]) handleSubscribe(s stream.Subscription) {
	a.mu.Lock()
	if a.sub != nil {
		a.mu.Unlock()
		s.Cancel()
		return
	}
	a.sub = s
	a.mu.Unlock()
	s.Request(1)
}

// handleNext feeds one element to the handler and requests the next. A
// handler failure cancels the upstream and terminates the consumer.
func (a *Async[T]) handleNext(v T) error {
	if err := a.consume(v); err != nil {
		a.done = true
		a.cancelUpstream()
		a.onError(err)
		return err
	}
	if s := a.subscription(); s != nil {
		s.Request(1)
	}
	return nil
}

// consume invokes the handler with panic containment.
func (a *Async[T]) consume(v T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.WrapConsumer(
				fmt.Errorf("%w: %v", errors.ErrHandlerPanic, r),
				"subscriber", "Async", "consume element")
		}
	}()
	if herr := a.onNext(v); herr != nil {
		return errors.WrapConsumer(herr, "subscriber", "Async", "consume element")
	}
	return nil
}

// discard drops a signal that arrived after the consumer finished. A
// carried subscription still gets cancelled so its producer is not left
// waiting on demand that will never come.
func (a *Async[T]) discard(sig stream.Signal[T]) {
	if sig.Type == stream.SignalSubscribe && sig.Subscription != nil {
		sig.Subscription.Cancel()
	}
}

func (a *Async[T]) subscription() stream.Subscription {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sub
}

func (a *Async[T]) cancelUpstream() {
	if s := a.subscription(); s != nil {
		s.Cancel()
	}
}
