package testutil

import (
	"sync"
	"time"

	"github.com/c360/rstream/stream"
)

// ManualSubscription is a Subscription that records every Request and Cancel
// call for later assertion. It drives nothing on its own.
type ManualSubscription struct {
	mu       sync.Mutex
	requests []int64
	cancels  int

	// RequestFunc, when set, runs after a Request call is recorded.
	RequestFunc func(n int64)

	// CancelFunc, when set, runs after a Cancel call is recorded.
	CancelFunc func()
}

// NewManualSubscription creates a subscription with default no-op hooks.
func NewManualSubscription() *ManualSubscription {
	return &ManualSubscription{}
}

// Request records n and runs RequestFunc if set.
func (s *ManualSubscription) Request(n int64) {
	s.mu.Lock()
	s.requests = append(s.requests, n)
	fn := s.RequestFunc
	s.mu.Unlock()

	if fn != nil {
		fn(n)
	}
}

// Cancel records the call and runs CancelFunc if set.
func (s *ManualSubscription) Cancel() {
	s.mu.Lock()
	s.cancels++
	fn := s.CancelFunc
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Requests returns a copy of the recorded request amounts in call order.
func (s *ManualSubscription) Requests() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]int64, len(s.requests))
	copy(out, s.requests)
	return out
}

// TotalRequested returns the sum of all recorded request amounts.
func (s *ManualSubscription) TotalRequested() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, n := range s.requests {
		total += n
	}
	return total
}

// Cancelled reports whether Cancel was called at least once.
func (s *ManualSubscription) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancels > 0
}

// CancelCount returns how many times Cancel was called.
func (s *ManualSubscription) CancelCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancels
}

// AwaitRequested blocks until the total requested demand reaches min or the
// timeout elapses. It reports whether the condition was met.
func (s *ManualSubscription) AwaitRequested(min int64, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if s.TotalRequested() >= min {
			return true
		}
		if time.Now().After(deadline) {
			return s.TotalRequested() >= min
		}
		time.Sleep(awaitPoll)
	}
}

// ManualPublisher is a Publisher driven entirely by the test. Subscribe hands
// each subscriber a fresh ManualSubscription; the test then pushes signals
// with Emit, Fail, and Complete.
//
// Signals go to the most recent subscriber. The publisher performs no demand
// accounting, so tests can deliberately overrun requested demand to exercise
// violation handling.
type ManualPublisher[T any] struct {
	mu   sync.Mutex
	subs []stream.Subscriber[T]
	last *ManualSubscription
}

// NewManualPublisher creates an idle publisher with no subscribers.
func NewManualPublisher[T any]() *ManualPublisher[T] {
	return &ManualPublisher[T]{}
}

// Subscribe records s, creates a ManualSubscription for it, and delivers
// OnSubscribe.
func (p *ManualPublisher[T]) Subscribe(s stream.Subscriber[T]) {
	sub := NewManualSubscription()

	p.mu.Lock()
	p.subs = append(p.subs, s)
	p.last = sub
	p.mu.Unlock()

	s.OnSubscribe(sub)
}

// Emit delivers the values as OnNext signals to the current subscriber.
func (p *ManualPublisher[T]) Emit(values ...T) {
	s := p.current()
	if s == nil {
		return
	}
	for _, v := range values {
		s.OnNext(v)
	}
}

// Fail delivers OnError to the current subscriber.
func (p *ManualPublisher[T]) Fail(err error) {
	if s := p.current(); s != nil {
		s.OnError(err)
	}
}

// Complete delivers OnComplete to the current subscriber.
func (p *ManualPublisher[T]) Complete() {
	if s := p.current(); s != nil {
		s.OnComplete()
	}
}

// Subscription returns the ManualSubscription handed to the most recent
// subscriber, or nil if nobody subscribed yet.
func (p *ManualPublisher[T]) Subscription() *ManualSubscription {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// SubscribeCount returns how many subscribers arrived.
func (p *ManualPublisher[T]) SubscribeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

func (p *ManualPublisher[T]) current() stream.Subscriber[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.subs) == 0 {
		return nil
	}
	return p.subs[len(p.subs)-1]
}
