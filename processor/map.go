package processor

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/c360/rstream/errors"
	"github.com/c360/rstream/stream"
)

// Map is a processing stage that applies a transform to every element on its
// way downstream. It subscribes to one upstream, serves one downstream, and
// relays demand through untouched: the stage itself never buffers, so one
// downstream request becomes exactly one upstream request.
//
// The two lifecycles are coupled. Upstream termination is forwarded
// downstream, downstream cancellation is forwarded upstream, and a transform
// failure terminates both sides: one OnError goes downstream and the
// upstream subscription is cancelled.
//
// Demand requested before the stage is fully wired accumulates and is
// replayed once both the upstream subscription and the downstream subscriber
// are in place, so the order in which the pipeline is assembled does not
// matter and no element can flow before the downstream is ready for it.
type Map[T, R any] struct {
	fn func(T) (R, error)

	mu         sync.Mutex
	upstream   stream.Subscription
	downstream stream.Subscriber[R]
	hasDown    bool
	pending    int64
	termErr    error

	// emitMu serializes downstream delivery so a terminal signal can never
	// overlap an element in flight.
	emitMu        sync.Mutex
	termDelivered bool

	state atomic.Int32
}

var _ stream.Processor[int, string] = (*Map[int, string])(nil)

// NewMap builds a stage around fn. fn returns the transformed element or an
// error; returning an error (or panicking) fails the stream for both sides.
// NewMap panics on a nil fn.
func NewMap[T, R any](fn func(T) (R, error)) *Map[T, R] {
	if fn == nil {
		panic("processor: NewMap called with nil transform")
	}
	return &Map[T, R]{fn: fn}
}

// Subscribe attaches the single downstream subscriber. A second subscriber
// is refused with ErrAlreadySubscribed. If the upstream already terminated,
// the stored terminal signal is replayed right after OnSubscribe.
func (m *Map[T, R]) Subscribe(down stream.Subscriber[R]) {
	if down == nil {
		panic("processor: Subscribe called with nil subscriber")
	}

	m.mu.Lock()
	if m.hasDown {
		m.mu.Unlock()
		refuse(down, errors.WrapProducer(errors.ErrAlreadySubscribed,
			"processor", "Subscribe", "attach second subscriber to map stage"))
		return
	}
	m.hasDown = true
	m.mu.Unlock()

	down.OnSubscribe(&mapSubscription[T, R]{m: m})

	// Publish the subscriber only after OnSubscribe has returned so no other
	// signal can get ahead of it, then release whatever arrived early: a
	// stored terminal, or demand the subscriber issued during OnSubscribe.
	m.mu.Lock()
	m.downstream = down
	st := m.state.Load()
	termErr := m.termErr
	up := m.upstream
	var replay int64
	if up != nil {
		replay = m.pending
		m.pending = 0
	}
	m.mu.Unlock()

	switch st {
	case stateErrored:
		m.deliverError(termErr)
		return
	case stateCompleted:
		m.deliverComplete()
		return
	}
	if replay > 0 {
		up.Request(replay)
	}
}

// OnSubscribe accepts the upstream subscription and replays any demand the
// downstream requested before the stage was wired. A second upstream is
// cancelled, the first one stays in charge.
func (m *Map[T, R]) OnSubscribe(s stream.Subscription) {
	if s == nil {
		panic("processor: OnSubscribe called with nil subscription")
	}

	m.mu.Lock()
	if m.upstream != nil {
		m.mu.Unlock()
		s.Cancel()
		return
	}
	m.upstream = s
	var replay int64
	if m.downstream != nil {
		replay = m.pending
		m.pending = 0
	}
	m.mu.Unlock()

	if m.state.Load() != stateActive {
		s.Cancel()
		return
	}
	if replay > 0 {
		s.Request(replay)
	}
}

// OnNext transforms one element and passes it on. A transform error or panic
// turns into a single OnError downstream followed by a Cancel upstream.
func (m *Map[T, R]) OnNext(v T) {
	if m.state.Load() != stateActive {
		return
	}

	out, err := m.transform(v)
	if err != nil {
		m.abort(err)
		return
	}

	m.emitMu.Lock()
	if m.state.Load() == stateActive {
		if down := m.downstreamRef(); down != nil {
			down.OnNext(out)
		}
	}
	m.emitMu.Unlock()
}

// OnError forwards the upstream failure downstream. A nil error is itself a
// contract breach and is forwarded as one.
func (m *Map[T, R]) OnError(err error) {
	if err == nil {
		err = errors.WrapViolation(errors.ErrNilError,
			"processor", "OnError", "terminate map stage")
	}
	if m.decideError(err) {
		m.deliverError(err)
	}
	m.dropUpstream()
}

// OnComplete forwards the upstream completion downstream.
func (m *Map[T, R]) OnComplete() {
	if m.decideComplete() {
		m.deliverComplete()
	}
	m.dropUpstream()
}

// transform runs fn with panic containment. Both failure paths come back as
// consumer-classified errors carrying the stage context.
func (m *Map[T, R]) transform(v T) (out R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.WrapConsumer(fmt.Errorf("%w: %v", errors.ErrHandlerPanic, r),
				"processor", "Map", "transform element")
		}
	}()

	out, err = m.fn(v)
	if err != nil {
		err = errors.WrapConsumer(err, "processor", "Map", "transform element")
	}
	return out, err
}

// abort fails both sides after a transform fault: OnError downstream first,
// then Cancel upstream.
func (m *Map[T, R]) abort(err error) {
	if m.decideError(err) {
		m.deliverError(err)
	}
	m.cancelUpstream()
}

// decideError claims the errored terminal state and stores its error for
// replay. Only the winning caller may deliver.
func (m *Map[T, R]) decideError(err error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.CompareAndSwap(stateActive, stateErrored) {
		return false
	}
	m.termErr = err
	return true
}

// decideComplete claims the completed terminal state.
func (m *Map[T, R]) decideComplete() bool {
	return m.state.CompareAndSwap(stateActive, stateCompleted)
}

// deliverError hands the terminal error to the downstream exactly once. With
// no downstream attached yet the error stays stored and Subscribe replays it.
func (m *Map[T, R]) deliverError(err error) {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()
	if m.termDelivered {
		return
	}
	down := m.downstreamRef()
	if down == nil {
		return
	}
	m.termDelivered = true
	down.OnError(err)
}

// deliverComplete hands the completion to the downstream exactly once.
func (m *Map[T, R]) deliverComplete() {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()
	if m.termDelivered {
		return
	}
	down := m.downstreamRef()
	if down == nil {
		return
	}
	m.termDelivered = true
	down.OnComplete()
}

func (m *Map[T, R]) downstreamRef() stream.Subscriber[R] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.downstream
}

// cancelUpstream detaches and cancels the upstream subscription, if any.
func (m *Map[T, R]) cancelUpstream() {
	m.mu.Lock()
	up := m.upstream
	m.upstream = nil
	m.mu.Unlock()
	if up != nil {
		up.Cancel()
	}
}

// dropUpstream detaches the upstream after it terminated on its own; there
// is nothing left to cancel.
func (m *Map[T, R]) dropUpstream() {
	m.mu.Lock()
	m.upstream = nil
	m.mu.Unlock()
}

// request relays downstream demand to the upstream, or parks it until both
// ends of the stage are wired. Parking while the downstream is still inside
// OnSubscribe keeps a synchronous upstream from draining before the stage can
// deliver. Non-positive demand fails the stream and releases the upstream.
func (m *Map[T, R]) request(n int64) {
	if m.state.Load() != stateActive {
		return
	}
	if n <= 0 {
		err := errors.WrapViolation(errors.ErrNonPositiveDemand,
			"processor", "Request", fmt.Sprintf("credit demand of %d", n))
		if m.decideError(err) {
			m.deliverError(err)
		}
		m.cancelUpstream()
		return
	}

	m.mu.Lock()
	up := m.upstream
	if up == nil || m.downstream == nil {
		m.pending += n
		if m.pending < 0 {
			m.pending = stream.Unbounded
		}
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	up.Request(n)
}

// cancel propagates a downstream cancellation to the upstream. Idempotent.
func (m *Map[T, R]) cancel() {
	if !m.state.CompareAndSwap(stateActive, stateCancelled) {
		return
	}
	m.cancelUpstream()
}

// mapSubscription is the demand conduit handed to the downstream subscriber.
type mapSubscription[T, R any] struct {
	m *Map[T, R]
}

func (s *mapSubscription[T, R]) Request(n int64) { s.m.request(n) }
func (s *mapSubscription[T, R]) Cancel()         { s.m.cancel() }
