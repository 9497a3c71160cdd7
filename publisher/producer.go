package publisher

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/c360/rstream/errors"
	"github.com/c360/rstream/metric"
	"github.com/c360/rstream/pkg/demand"
	"github.com/c360/rstream/stream"
)

// Subscription lifecycle states. Terminal states are sticky: once a
// subscription leaves stateActive it never re-enters it.
const (
	stateActive int32 = iota
	stateCancelled
	stateCompleted
	stateErrored
)

// core holds the per-subscription state shared by the pull producer and the
// channel pump: identity, demand accounting, lifecycle state, the pending
// error slot, and observability sinks.
type core[T any] struct {
	id    string
	stage string
	sub   stream.Subscriber[T]

	demand  demand.Counter
	state   atomic.Int32
	errSlot atomic.Pointer[error]

	stats   *Statistics
	metrics *metric.Metrics
	logger  *slog.Logger
}

func newCore[T any](sub stream.Subscriber[T], stats *Statistics, opts sourceOptions) core[T] {
	return core[T]{
		id:      uuid.New().String(),
		stage:   opts.stage,
		sub:     sub,
		stats:   stats,
		metrics: opts.metrics,
		logger:  opts.logger,
	}
}

// active reports whether the subscription may still emit.
func (c *core[T]) active() bool {
	return c.state.Load() == stateActive
}

// fail parks err for serialized delivery. The first pending error wins;
// later ones are dropped because only one terminal signal may ever go out.
func (c *core[T]) fail(err error) {
	c.errSlot.CompareAndSwap(nil, &err)
}

// pendingError returns the parked error, or nil.
func (c *core[T]) pendingError() error {
	if p := c.errSlot.Load(); p != nil {
		return *p
	}
	return nil
}

// creditDemand validates and accounts one Request call. It returns true when
// the drain should run: either new demand was credited or a violation was
// parked for delivery.
func (c *core[T]) creditDemand(n int64) bool {
	if !c.active() {
		return false
	}

	c.stats.recordRequest()
	if c.metrics != nil {
		c.metrics.RecordRequest(c.stage)
	}

	if n <= 0 {
		c.logger.Warn("non-positive demand requested",
			"stage", c.stage, "subscription_id", c.id, "n", n)
		c.fail(errors.WrapViolation(errors.ErrNonPositiveDemand,
			"publisher", "Request", fmt.Sprintf("credit demand of %d", n)))
		return true
	}

	c.demand.Add(n)
	return true
}

// terminalError moves the subscription to errored and delivers OnError.
// Returns false if another terminal got there first.
func (c *core[T]) terminalError(err error) bool {
	if !c.state.CompareAndSwap(stateActive, stateErrored) {
		return false
	}
	c.stats.recordErrored()
	if c.metrics != nil {
		c.metrics.RecordTermination(c.stage, "error")
	}
	c.logger.Debug("stream errored",
		"stage", c.stage, "subscription_id", c.id, "error", err)
	c.sub.OnError(err)
	return true
}

// terminalComplete moves the subscription to completed and delivers
// OnComplete. Returns false if another terminal got there first.
func (c *core[T]) terminalComplete() bool {
	if !c.state.CompareAndSwap(stateActive, stateCompleted) {
		return false
	}
	c.stats.recordCompleted()
	if c.metrics != nil {
		c.metrics.RecordTermination(c.stage, "complete")
	}
	c.logger.Debug("stream completed",
		"stage", c.stage, "subscription_id", c.id)
	c.sub.OnComplete()
	return true
}

// markCancelled flips the subscription to cancelled. Returns true for the
// winning call; every later Cancel is a no-op.
func (c *core[T]) markCancelled() bool {
	if !c.state.CompareAndSwap(stateActive, stateCancelled) {
		return false
	}
	c.stats.recordCancelled()
	if c.metrics != nil {
		c.metrics.RecordTermination(c.stage, "cancel")
	}
	c.logger.Debug("stream cancelled",
		"stage", c.stage, "subscription_id", c.id)
	return true
}

// producer is the reference pull-based subscription: one iterator drained by
// a single logical emission loop.
//
// The loop is a trampoline around a work-in-progress counter. The first
// caller of drain becomes the owner and runs passes; concurrent callers bump
// the counter and leave, folding their work into the running loop. Reentrant
// Request calls from inside OnNext therefore never recurse.
type producer[T any] struct {
	core[T]
	it  iterator[T]
	wip atomic.Int64
}

var _ stream.Subscription = (*producer[int])(nil)

func newProducer[T any](sub stream.Subscriber[T], it iterator[T], stats *Statistics, opts sourceOptions) *producer[T] {
	return &producer[T]{
		core: newCore(sub, stats, opts),
		it:   it,
	}
}

// Request credits demand. A non-positive n is a contract violation and
// terminates the stream with an error instead of crediting anything.
func (p *producer[T]) Request(n int64) {
	if p.creditDemand(n) {
		p.drain()
	}
}

// Cancel stops production. Idempotent; an emission already in flight may
// still be delivered, but no new one starts once the flag is observed.
func (p *producer[T]) Cancel() {
	if p.markCancelled() {
		p.drain()
	}
}

// drain is the trampoline entry. Whoever moves wip from 0 owns the loop and
// keeps running passes until no concurrent caller has signalled more work.
func (p *producer[T]) drain() {
	if p.wip.Add(1) != 1 {
		return
	}
	for missed := int64(1); missed != 0; missed = p.wip.Add(-missed) {
		p.drainPass()
	}
}

// drainPass delivers signals until demand runs out, the source runs dry, or
// the subscription leaves the active state. Runs only on the drain owner.
func (p *producer[T]) drainPass() {
	start := time.Now()
	var emitted int64

	for {
		if p.state.Load() != stateActive {
			break
		}
		if err := p.pendingError(); err != nil {
			p.terminalError(err)
			break
		}
		if !p.it.HasNext() {
			p.terminalComplete()
			break
		}
		if !p.demand.TryTake() {
			break
		}

		v, err := p.it.Next()
		if err != nil {
			p.terminalError(err)
			break
		}
		p.sub.OnNext(v)
		emitted++
	}

	p.stats.recordEmitted(emitted)
	if p.metrics != nil {
		p.metrics.RecordItemsEmitted(p.stage, emitted)
		p.metrics.RecordDrainDuration(p.stage, time.Since(start))
	}
}
