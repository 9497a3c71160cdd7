package validate

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/petermattis/goid"

	"github.com/c360/rstream/errors"
	"github.com/c360/rstream/stream"
)

// Wrapped subscriber states.
const (
	stateUnsubscribed int32 = iota
	stateActive
	stateTerminated
)

// Subscriber watches every signal on its way into an inner subscriber and
// reports contract breaches to the configured Reporter. Legitimate signals
// pass through untouched; breaches that would corrupt the inner
// subscriber's view of the stream (a second handshake, anything after a
// terminal) are reported and swallowed instead of forwarded.
//
// The wrapper never turns a breach into an OnError: a violation usually
// means the peer is broken, not the stream, and conflating the two would
// hide exactly the bugs the wrapper exists to find.
type Subscriber[T any] struct {
	inner    stream.Subscriber[T]
	reporter Reporter
	stage    string
	id       string

	state atomic.Int32

	// delivering holds the goroutine id of the signal currently being
	// delivered, zero when idle.
	delivering atomic.Int64
}

var _ stream.Subscriber[int] = (*Subscriber[int])(nil)

// NewSubscriber wraps inner with contract checking. A nil inner panics.
func NewSubscriber[T any](inner stream.Subscriber[T], opts ...Option) *Subscriber[T] {
	if inner == nil {
		panic("validate: NewSubscriber called with nil subscriber")
	}
	return newSubscriberWith(inner, applyOptions(opts))
}

func newSubscriberWith[T any](inner stream.Subscriber[T], o options) *Subscriber[T] {
	return &Subscriber[T]{
		inner:    inner,
		reporter: o.reporter,
		stage:    o.stage,
		id:       uuid.New().String(),
	}
}

// ID returns the identifier carried by this wrapper's reports.
func (s *Subscriber[T]) ID() string {
	return s.id
}

// OnSubscribe forwards the handshake, wrapping the subscription so demand
// is checked too. A second handshake is reported and the newcomer
// cancelled so its producer does not sit waiting on demand.
func (s *Subscriber[T]) OnSubscribe(sub stream.Subscription) {
	if sub == nil {
		panic("validate: OnSubscribe called with nil subscription")
	}
	switch {
	case s.state.CompareAndSwap(stateUnsubscribed, stateActive):
		owner := s.enter("onSubscribe")
		s.inner.OnSubscribe(&checkedSubscription[T]{sub: sub, v: s})
		s.exit(owner)
	case s.state.Load() == stateTerminated:
		s.report(RuleNoSignalAfterTerminal, "onSubscribe",
			"handshake after the stream terminated", 0)
		sub.Cancel()
	default:
		s.report(RuleDuplicateOnSubscribe, "onSubscribe",
			"second subscription handed to one subscriber", 0)
		sub.Cancel()
	}
}

// OnNext forwards one element. Elements before the handshake or after a
// terminal are reported and swallowed.
func (s *Subscriber[T]) OnNext(v T) {
	switch s.state.Load() {
	case stateUnsubscribed:
		s.report(RuleOnSubscribeFirst, "onNext",
			"element delivered before the handshake", 0)
		return
	case stateTerminated:
		s.report(RuleNoSignalAfterTerminal, "onNext",
			"element delivered after the stream terminated", 0)
		return
	}
	owner := s.enter("onNext")
	s.inner.OnNext(v)
	s.exit(owner)
}

// OnError forwards the failing terminal. A nil error is reported and
// replaced with a violation error so the inner subscriber still
// terminates with a populated failure.
func (s *Subscriber[T]) OnError(err error) {
	if err == nil {
		s.report(RuleNilError, "onError", "terminal failure carried no error", 0)
		err = errors.WrapViolation(errors.ErrNilError,
			"validate", "OnError", "terminate stream")
	}
	if s.state.CompareAndSwap(stateActive, stateTerminated) {
		owner := s.enter("onError")
		s.inner.OnError(err)
		s.exit(owner)
		return
	}
	if s.state.Load() == stateTerminated {
		s.report(RuleNoSignalAfterTerminal, "onError",
			"failure delivered after the stream terminated", 0)
	} else {
		s.report(RuleOnSubscribeFirst, "onError",
			"failure delivered before the handshake", 0)
	}
}

// OnComplete forwards the successful terminal, subject to the same
// ordering checks as OnError.
func (s *Subscriber[T]) OnComplete() {
	if s.state.CompareAndSwap(stateActive, stateTerminated) {
		owner := s.enter("onComplete")
		s.inner.OnComplete()
		s.exit(owner)
		return
	}
	if s.state.Load() == stateTerminated {
		s.report(RuleNoSignalAfterTerminal, "onComplete",
			"completion delivered after the stream terminated", 0)
	} else {
		s.report(RuleOnSubscribeFirst, "onComplete",
			"completion delivered before the handshake", 0)
	}
}

// enter marks this goroutine as the in-flight delivery. If another
// goroutine is already mid-delivery the overlap is reported; zero is
// returned either way so exit leaves the real owner's mark alone.
// Reentrant delivery on the owning goroutine is not an overlap: a
// subscriber that requests from inside OnSubscribe gets its elements
// synchronously, nested in the handshake, and the call stack serializes
// those deliveries by itself.
func (s *Subscriber[T]) enter(signal string) int64 {
	self := goid.Get()
	if !s.delivering.CompareAndSwap(0, self) {
		if other := s.delivering.Load(); other != self {
			s.report(RuleNoOverlap, signal,
				"delivery started while another goroutine was mid-delivery", other)
		}
		return 0
	}
	return self
}

// exit clears the in-flight mark if this goroutine owns it.
func (s *Subscriber[T]) exit(owner int64) {
	if owner != 0 {
		s.delivering.CompareAndSwap(owner, 0)
	}
}

func (s *Subscriber[T]) report(rule Rule, signal, detail string, other int64) {
	s.reporter.Report(Violation{
		Rule:           rule,
		Stage:          s.stage,
		Signal:         signal,
		Detail:         detail,
		SubscriptionID: s.id,
		Goroutine:      goid.Get(),
		OtherGoroutine: other,
		At:             time.Now(),
	})
}

// checkedSubscription watches the demand side of the contract on its way
// back upstream. Non-positive demand is reported and still forwarded; the
// producer owns the resulting stream failure.
type checkedSubscription[T any] struct {
	sub stream.Subscription
	v   *Subscriber[T]
}

func (c *checkedSubscription[T]) Request(n int64) {
	if n <= 0 {
		c.v.report(RuleNonPositiveRequest, "request",
			fmt.Sprintf("demand of %d requested", n), 0)
	}
	c.sub.Request(n)
}

func (c *checkedSubscription[T]) Cancel() {
	c.sub.Cancel()
}
