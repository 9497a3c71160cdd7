package processor

import (
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/c360/rstream/errors"
	"github.com/c360/rstream/pkg/buffer"
	"github.com/c360/rstream/pkg/demand"
	"github.com/c360/rstream/stream"
)

// Unicast is a buffering stage that decouples a producer from one
// subscriber. Elements arrive either from an upstream subscription or
// through direct Emit/Fail/Complete calls, park in a bounded ring buffer,
// and leave strictly according to downstream demand.
//
// When subscribed to an upstream, the stage runs credit-based flow control:
// it requests the buffer capacity up front and one replacement credit per
// element it delivers or drops, so the upstream can never legally overrun
// the buffer. Direct Emit callers get backpressure through the overflow
// policy instead: under Reject an Emit into a full buffer fails the stream
// with ErrBufferOverflow, under the drop policies it sacrifices an element
// and keeps going.
//
// A producer terminal is held back until every buffered element has been
// delivered. Contract violations and overflow do not wait: they preempt
// buffered elements and terminate the stream immediately.
type Unicast[T any] struct {
	id       string
	buf      buffer.Buffer[T]
	capacity int
	opts     unicastOptions

	downstream stream.Subscriber[T]
	hasDown    atomic.Bool
	attached   atomic.Bool

	upMu     sync.Mutex
	upstream stream.Subscription

	demand  demand.Counter
	wip     atomic.Int64
	state   atomic.Int32
	errSlot atomic.Pointer[error]
	term    atomic.Pointer[unicastTerminal]
}

// unicastTerminal records the producer-side terminal. A nil err means
// completion.
type unicastTerminal struct {
	err error
}

var _ stream.Processor[int, int] = (*Unicast[int])(nil)

// NewUnicast builds a stage holding at most capacity elements. Capacities
// below one are raised to one. The error is non-nil only when metrics
// registration was requested and failed.
func NewUnicast[T any](capacity int, opts ...UnicastOption) (*Unicast[T], error) {
	o := applyUnicastOptions(opts)

	u := &Unicast[T]{
		id:   uuid.New().String(),
		opts: o,
	}

	bufOpts := []buffer.Option[T]{
		buffer.WithOverflowPolicy[T](o.policy),
		// Dropped elements are gone for the downstream but their credit is
		// not: hand it back so the upstream window keeps moving.
		buffer.WithDropCallback[T](func(T) { u.replenish(1) }),
	}
	if o.registry != nil {
		bufOpts = append(bufOpts, buffer.WithMetrics[T](o.registry, o.stage))
	}

	buf, err := buffer.NewRing(capacity, bufOpts...)
	if err != nil {
		return nil, err
	}
	u.buf = buf
	u.capacity = buf.Capacity()
	return u, nil
}

// Emit queues one element for delivery. It never blocks. The returned error
// reports an element that will not reach the subscriber: the stream ended,
// or the buffer was full under the Reject policy. An overflow also fails the
// stream itself.
func (u *Unicast[T]) Emit(v T) error {
	if u.term.Load() != nil {
		return errors.WrapViolation(errors.ErrSignalAfterTerminal,
			"processor", "Emit", "queue element")
	}
	if u.state.Load() != stateActive {
		return errors.WrapProducer(errors.ErrCancelled,
			"processor", "Emit", "queue element")
	}

	err := u.buf.Write(v)
	switch {
	case err == nil:
		u.drain()
		return nil
	case stderrors.Is(err, buffer.ErrFull):
		overflow := errors.WrapProducer(errors.ErrBufferOverflow,
			"processor", "Emit", fmt.Sprintf("queue element beyond capacity %d", u.capacity))
		u.opts.logger.Warn("buffer overflow",
			"stage", u.opts.stage, "subscription_id", u.id, "capacity", u.capacity)
		u.fail(overflow)
		u.drain()
		return overflow
	case stderrors.Is(err, buffer.ErrClosed):
		return errors.WrapProducer(errors.ErrCancelled,
			"processor", "Emit", "queue element")
	default:
		return err
	}
}

// Complete marks the producer side finished. Buffered elements still flow
// out; OnComplete follows the last one. Later terminals are ignored.
func (u *Unicast[T]) Complete() {
	if u.term.CompareAndSwap(nil, &unicastTerminal{}) {
		u.drain()
	}
}

// Fail marks the producer side failed. Buffered elements still flow out;
// OnError follows the last one. A nil err is itself a contract breach and
// is delivered as one.
func (u *Unicast[T]) Fail(err error) {
	if err == nil {
		err = errors.WrapViolation(errors.ErrNilError,
			"processor", "Fail", "terminate unicast stage")
	}
	if u.term.CompareAndSwap(nil, &unicastTerminal{err: err}) {
		u.drain()
	}
}

// OnSubscribe accepts the upstream subscription and opens the flow-control
// window by requesting the buffer capacity. A second upstream is cancelled.
func (u *Unicast[T]) OnSubscribe(s stream.Subscription) {
	if s == nil {
		panic("processor: OnSubscribe called with nil subscription")
	}

	u.upMu.Lock()
	if u.upstream != nil {
		u.upMu.Unlock()
		s.Cancel()
		return
	}
	u.upstream = s
	u.upMu.Unlock()

	if u.state.Load() != stateActive || u.term.Load() != nil {
		s.Cancel()
		return
	}
	s.Request(int64(u.capacity))
}

// OnNext queues one upstream element. A compliant upstream stays inside the
// credit window, so a failed Emit here means the stream is done with this
// upstream either way.
func (u *Unicast[T]) OnNext(v T) {
	if err := u.Emit(v); err != nil {
		u.cancelUpstream()
	}
}

// OnError adopts the upstream failure as this stage's terminal.
func (u *Unicast[T]) OnError(err error) {
	u.Fail(err)
	u.dropUpstream()
}

// OnComplete adopts the upstream completion as this stage's terminal.
func (u *Unicast[T]) OnComplete() {
	u.Complete()
	u.dropUpstream()
}

// Subscribe attaches the single downstream subscriber and starts delivery of
// anything already buffered. A second subscriber is refused with
// ErrAlreadySubscribed.
func (u *Unicast[T]) Subscribe(sub stream.Subscriber[T]) {
	if sub == nil {
		panic("processor: Subscribe called with nil subscriber")
	}
	if !u.hasDown.CompareAndSwap(false, true) {
		refuse(sub, errors.WrapProducer(errors.ErrAlreadySubscribed,
			"processor", "Subscribe", "attach second subscriber to unicast stage"))
		return
	}
	u.downstream = sub

	if u.opts.metrics != nil {
		u.opts.metrics.RecordSubscription(u.opts.stage)
	}
	u.opts.logger.Debug("subscription created",
		"stage", u.opts.stage, "subscription_id", u.id)

	sub.OnSubscribe(&unicastSubscription[T]{u: u})

	// The drain stays parked until OnSubscribe has returned so no element
	// can get ahead of it.
	u.attached.Store(true)
	u.drain()
}

// BufferStats returns the live counters of the stage's ring buffer.
func (u *Unicast[T]) BufferStats() *buffer.Statistics {
	return u.buf.Stats()
}

// fail parks err for serialized delivery. The first pending error wins.
func (u *Unicast[T]) fail(err error) {
	u.errSlot.CompareAndSwap(nil, &err)
}

// request credits downstream demand. Non-positive demand fails the stream.
func (u *Unicast[T]) request(n int64) {
	if u.state.Load() != stateActive {
		return
	}
	if u.opts.metrics != nil {
		u.opts.metrics.RecordRequest(u.opts.stage)
	}

	if n <= 0 {
		u.opts.logger.Warn("non-positive demand requested",
			"stage", u.opts.stage, "subscription_id", u.id, "n", n)
		u.fail(errors.WrapViolation(errors.ErrNonPositiveDemand,
			"processor", "Request", fmt.Sprintf("credit demand of %d", n)))
		u.drain()
		return
	}

	u.demand.Add(n)
	u.drain()
}

// cancel stops the stage on behalf of the downstream: the upstream is
// cancelled and buffered elements are discarded. Idempotent.
func (u *Unicast[T]) cancel() {
	if !u.state.CompareAndSwap(stateActive, stateCancelled) {
		return
	}
	if u.opts.metrics != nil {
		u.opts.metrics.RecordTermination(u.opts.stage, "cancel")
	}
	u.opts.logger.Debug("stream cancelled",
		"stage", u.opts.stage, "subscription_id", u.id)
	u.cancelUpstream()
	u.drain()
}

// cancelUpstream detaches and cancels the upstream subscription, if any.
func (u *Unicast[T]) cancelUpstream() {
	u.upMu.Lock()
	up := u.upstream
	u.upstream = nil
	u.upMu.Unlock()
	if up != nil {
		up.Cancel()
	}
}

// dropUpstream detaches the upstream after it terminated on its own.
func (u *Unicast[T]) dropUpstream() {
	u.upMu.Lock()
	u.upstream = nil
	u.upMu.Unlock()
}

// replenish hands n credits back to the upstream to refill the flow-control
// window. No-op once the stage left the active state.
func (u *Unicast[T]) replenish(n int64) {
	if u.state.Load() != stateActive {
		return
	}
	u.upMu.Lock()
	up := u.upstream
	u.upMu.Unlock()
	if up != nil {
		up.Request(n)
	}
}

// drain is the trampoline entry. Whoever moves wip from 0 owns the loop and
// keeps running passes until no concurrent caller has signalled more work.
func (u *Unicast[T]) drain() {
	if u.wip.Add(1) != 1 {
		return
	}
	for missed := int64(1); missed != 0; missed = u.wip.Add(-missed) {
		u.drainPass()
	}
}

// drainPass moves buffered elements downstream until demand or the buffer
// runs out, then settles terminals. Runs only on the drain owner, and only
// once a downstream is fully attached.
func (u *Unicast[T]) drainPass() {
	if !u.attached.Load() {
		return
	}

	start := time.Now()
	down := u.downstream
	var delivered int64

	for {
		st := u.state.Load()
		if st == stateCancelled {
			u.discard()
			break
		}
		if st != stateActive {
			break
		}

		// Violations and overflow preempt buffered elements.
		if p := u.errSlot.Load(); p != nil {
			if u.state.CompareAndSwap(stateActive, stateErrored) {
				u.cancelUpstream()
				u.discard()
				if u.opts.metrics != nil {
					u.opts.metrics.RecordTermination(u.opts.stage, "error")
				}
				u.opts.logger.Debug("stream errored",
					"stage", u.opts.stage, "subscription_id", u.id, "error", *p)
				down.OnError(*p)
			}
			break
		}

		if u.buf.IsEmpty() {
			if t := u.term.Load(); t != nil {
				u.terminate(down, t)
			}
			break
		}
		if !u.demand.TryTake() {
			break
		}

		v, ok := u.buf.Read()
		if !ok {
			u.demand.Add(1)
			break
		}
		down.OnNext(v)
		delivered++
	}

	if u.opts.metrics != nil {
		u.opts.metrics.RecordItemsEmitted(u.opts.stage, delivered)
		u.opts.metrics.RecordDrainDuration(u.opts.stage, time.Since(start))
	}
	if delivered > 0 {
		u.replenish(delivered)
	}
}

// terminate settles the producer terminal after the buffer drained empty.
func (u *Unicast[T]) terminate(down stream.Subscriber[T], t *unicastTerminal) {
	if t.err != nil {
		if !u.state.CompareAndSwap(stateActive, stateErrored) {
			return
		}
		u.buf.Close()
		if u.opts.metrics != nil {
			u.opts.metrics.RecordTermination(u.opts.stage, "error")
		}
		u.opts.logger.Debug("stream errored",
			"stage", u.opts.stage, "subscription_id", u.id, "error", t.err)
		down.OnError(t.err)
		return
	}

	if !u.state.CompareAndSwap(stateActive, stateCompleted) {
		return
	}
	u.buf.Close()
	if u.opts.metrics != nil {
		u.opts.metrics.RecordTermination(u.opts.stage, "complete")
	}
	u.opts.logger.Debug("stream completed",
		"stage", u.opts.stage, "subscription_id", u.id)
	down.OnComplete()
}

// discard shuts the buffer and drops whatever it still holds.
func (u *Unicast[T]) discard() {
	u.buf.Close()
	u.buf.Clear()
}

// unicastSubscription is the demand conduit handed to the downstream
// subscriber.
type unicastSubscription[T any] struct {
	u *Unicast[T]
}

func (s *unicastSubscription[T]) Request(n int64) { s.u.request(n) }
func (s *unicastSubscription[T]) Cancel()         { s.u.cancel() }
