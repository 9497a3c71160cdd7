package publisher

import (
	"sync/atomic"

	"github.com/c360/rstream/errors"
	"github.com/c360/rstream/stream"
)

// ChannelSource bridges a Go channel into a publisher. It is hot and
// single-subscription: elements are consumed from the channel exactly once,
// so a second Subscribe is refused rather than silently competing for them.
//
// The pump only receives while the subscriber has outstanding demand, which
// makes the channel's own buffer the backpressure boundary: senders block
// (or select) once the subscriber falls behind. Channel closure completes
// the stream; it is observed on the next credited receive, so a stream with
// zero demand learns about closure only after the subscriber requests again.
// Cancel releases the pump goroutine without draining the channel.
type ChannelSource[T any] struct {
	ch         <-chan T
	opts       sourceOptions
	stats      *Statistics
	subscribed atomic.Bool
}

// FromChannel publishes the elements received from ch until ch is closed.
func FromChannel[T any](ch <-chan T, opts ...Option) *ChannelSource[T] {
	return &ChannelSource[T]{
		ch:    ch,
		opts:  applyOptions("channel", opts),
		stats: &Statistics{},
	}
}

// Subscribe attaches the single subscriber and starts the pump. Later calls
// are refused with an already-subscribed error after a conforming
// OnSubscribe. Subscribe panics on a nil subscriber.
func (s *ChannelSource[T]) Subscribe(sub stream.Subscriber[T]) {
	if sub == nil {
		panic("publisher: Subscribe called with nil subscriber")
	}
	if !s.subscribed.CompareAndSwap(false, true) {
		refuse(sub, errors.WrapProducer(errors.ErrAlreadySubscribed,
			"publisher", "Subscribe", "attach second subscriber to channel source"))
		return
	}

	p := &channelProducer[T]{
		core: newCore(sub, s.stats, s.opts),
		ch:   s.ch,
		wake: make(chan struct{}, 1),
	}

	s.stats.recordSubscription()
	if s.opts.metrics != nil {
		s.opts.metrics.RecordSubscription(s.opts.stage)
	}
	s.opts.logger.Debug("subscription created",
		"stage", s.opts.stage, "subscription_id", p.id)

	sub.OnSubscribe(p)
	go p.run()
}

// Stats returns a snapshot of the source's activity.
func (s *ChannelSource[T]) Stats() SourceStats {
	return s.stats.Snapshot()
}

// channelProducer serializes delivery on a dedicated pump goroutine instead
// of a caller-side trampoline: element availability is asynchronous, and
// blocking inside a subscriber's Request call is not acceptable. Request and
// Cancel only poke the pump awake.
type channelProducer[T any] struct {
	core[T]
	ch   <-chan T
	wake chan struct{}
}

var _ stream.Subscription = (*channelProducer[int])(nil)

// Request credits demand and wakes the pump. Non-positive demand parks a
// violation error that the pump delivers in order.
func (p *channelProducer[T]) Request(n int64) {
	if p.creditDemand(n) {
		p.poke()
	}
}

// Cancel stops the pump. Idempotent; an element already being delivered may
// still arrive.
func (p *channelProducer[T]) Cancel() {
	if p.markCancelled() {
		p.poke()
	}
}

func (p *channelProducer[T]) poke() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// run is the pump loop: park until demand exists, receive one element per
// credit, deliver it, repeat until the channel closes or the subscription
// leaves the active state.
func (p *channelProducer[T]) run() {
	for {
		if err := p.pendingError(); err != nil {
			p.terminalError(err)
			return
		}
		if p.state.Load() != stateActive {
			return
		}
		if p.demand.Get() == 0 {
			<-p.wake
			continue
		}

		select {
		case v, ok := <-p.ch:
			if !ok {
				p.terminalComplete()
				return
			}
			p.sub.OnNext(v)
			p.demand.Produced(1)
			p.stats.recordEmitted(1)
			if p.metrics != nil {
				p.metrics.RecordItemsEmitted(p.stage, 1)
			}
		case <-p.wake:
			// re-check state and demand
		}
	}
}
