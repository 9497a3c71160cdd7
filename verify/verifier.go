package verify

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"

	"github.com/c360/rstream/errors"
	"github.com/c360/rstream/stream"
	"github.com/c360/rstream/testutil"
	"github.com/c360/rstream/validate"
)

// PublisherVerifier drives a publisher implementation through the
// behavioral scenarios of the streaming contract: ordered delivery under
// stepwise and unbounded demand, rejection of non-positive demand,
// cooperative cancellation, and demand accounting under concurrent
// requests. Every scenario runs against a fresh publisher from the
// factory and watches the stream through a validating wrapper, so
// contract breaches surface even when the delivered elements look right.
type PublisherVerifier[T any] struct {
	factory func([]T) stream.Publisher[T]
	sample  func(int) []T
	env     Environment
	logger  *slog.Logger
}

// NewPublisherVerifier builds a verifier around a publisher factory. The
// factory must return a fresh publisher that emits exactly the given
// elements in order; sample must produce n distinct elements. Elements are
// compared with go-cmp, so T should be a comparable-by-value type. Nil
// functions panic; a bad environment is an error.
func NewPublisherVerifier[T any](
	factory func([]T) stream.Publisher[T],
	sample func(int) []T,
	env Environment,
	opts ...Option,
) (*PublisherVerifier[T], error) {
	if factory == nil {
		panic("verify: NewPublisherVerifier called with nil factory")
	}
	if sample == nil {
		panic("verify: NewPublisherVerifier called with nil sample")
	}
	if (env == Environment{}) {
		env = DefaultEnvironment()
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	o := applyOptions(opts)
	return &PublisherVerifier[T]{
		factory: factory,
		sample:  sample,
		env:     env,
		logger:  o.logger,
	}, nil
}

// Verify runs every scenario concurrently, each against its own fresh
// publisher, and returns the first failure.
func (v *PublisherVerifier[T]) Verify(ctx context.Context) error {
	scenarios := []struct {
		name string
		run  func(context.Context) error
	}{
		{"stepwise sequence", v.VerifyStepwiseSequence},
		{"unbounded sequence", v.VerifyUnboundedSequence},
		{"non-positive demand", v.VerifyNonPositiveDemandFails},
		{"cancel stops delivery", v.VerifyCancelStopsDelivery},
		{"demand accounting", v.VerifyDemandAccounting},
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, sc := range scenarios {
		sc := sc
		g.Go(func() error {
			if err := sc.run(ctx); err != nil {
				return fmt.Errorf("%s: %w", sc.name, err)
			}
			v.logger.Debug("scenario passed", "scenario", sc.name)
			return nil
		})
	}
	return g.Wait()
}

// VerifyStepwiseSequence drives the configured sequence with one element
// of demand at a time: request(1) on subscribe, request(1) inside each
// delivery. The stream must deliver every element in order, complete, and
// never outrun demand.
func (v *PublisherVerifier[T]) VerifyStepwiseSequence(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	want := v.sample(v.env.SequenceLength)
	c := validate.NewCollector(0)
	probe := testutil.NewProbe(
		testutil.WithInitialRequest[T](1),
		testutil.WithNextFunc[T](func(_ T, sub stream.Subscription) { sub.Request(1) }),
	)
	acct := &accountant[T]{inner: probe}
	v.factory(want).Subscribe(validate.NewSubscriber[T](acct,
		validate.WithReporter(c), validate.WithStage("stepwise")))

	if !probe.AwaitTerminal(v.env.DefaultTimeout) {
		return fmt.Errorf("no terminal within %s", v.env.DefaultTimeout)
	}
	if !probe.Completed() {
		return fmt.Errorf("stream failed instead of completing: %v", probe.Err())
	}
	if diff := cmp.Diff(want, probe.Items()); diff != "" {
		return fmt.Errorf("delivered elements differ (-want +got):\n%s", diff)
	}
	if acct.overdrawn() {
		return stderrors.New("delivery outran requested demand")
	}
	if err := checkSignalDiscipline(probe.Signals()); err != nil {
		return err
	}
	return checkViolations(c)
}

// VerifyUnboundedSequence drives the configured sequence with unbounded
// demand granted up front.
func (v *PublisherVerifier[T]) VerifyUnboundedSequence(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	want := v.sample(v.env.SequenceLength)
	c := validate.NewCollector(0)
	probe := testutil.NewProbe(testutil.WithInitialRequest[T](stream.Unbounded))
	v.factory(want).Subscribe(validate.NewSubscriber[T](probe,
		validate.WithReporter(c), validate.WithStage("unbounded")))

	if !probe.AwaitTerminal(v.env.DefaultTimeout) {
		return fmt.Errorf("no terminal within %s", v.env.DefaultTimeout)
	}
	if !probe.Completed() {
		return fmt.Errorf("stream failed instead of completing: %v", probe.Err())
	}
	if diff := cmp.Diff(want, probe.Items()); diff != "" {
		return fmt.Errorf("delivered elements differ (-want +got):\n%s", diff)
	}
	if err := checkSignalDiscipline(probe.Signals()); err != nil {
		return err
	}
	return checkViolations(c)
}

// VerifyNonPositiveDemandFails requests -1 from inside the handshake. The
// stream must fail with ErrNonPositiveDemand before delivering anything.
func (v *PublisherVerifier[T]) VerifyNonPositiveDemandFails(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	want := v.sample(v.env.SequenceLength)
	c := validate.NewCollector(0)
	probe := testutil.NewProbe(testutil.WithInitialRequest[T](-1))
	v.factory(want).Subscribe(validate.NewSubscriber[T](probe,
		validate.WithReporter(c), validate.WithStage("non-positive")))

	if !probe.AwaitTerminal(v.env.DefaultTimeout) {
		return fmt.Errorf("no terminal within %s", v.env.DefaultTimeout)
	}
	if n := probe.ItemCount(); n != 0 {
		return fmt.Errorf("%d elements delivered on invalid demand", n)
	}
	if probe.Completed() {
		return stderrors.New("stream completed instead of failing")
	}
	if err := probe.Err(); !stderrors.Is(err, errors.ErrNonPositiveDemand) {
		return fmt.Errorf("terminal error %v, want ErrNonPositiveDemand", err)
	}
	if !c.Has(validate.RuleNonPositiveRequest) {
		return stderrors.New("validator did not observe the invalid request")
	}
	return nil
}

// VerifyCancelStopsDelivery cancels from inside the first delivery with
// unbounded demand outstanding. Delivery must go quiet without a terminal
// and without running the sequence to completion.
func (v *PublisherVerifier[T]) VerifyCancelStopsDelivery(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Two extra elements so stopping short is distinguishable from
	// exhaustion even at the minimum sequence length.
	want := v.sample(v.env.SequenceLength + 2)
	c := validate.NewCollector(0)
	var once sync.Once
	probe := testutil.NewProbe(
		testutil.WithInitialRequest[T](stream.Unbounded),
		testutil.WithNextFunc[T](func(_ T, sub stream.Subscription) {
			once.Do(sub.Cancel)
		}),
	)
	v.factory(want).Subscribe(validate.NewSubscriber[T](probe,
		validate.WithReporter(c), validate.WithStage("cancel")))

	// Cancellation is cooperative: wait for delivery to go quiet, then
	// hold it to that.
	deadline := time.Now().Add(v.env.DefaultTimeout)
	last := -1
	for {
		count := probe.ItemCount()
		if count == last {
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("delivery did not settle after cancel within %s", v.env.DefaultTimeout)
		}
		last = count
		time.Sleep(v.env.NoSignalTimeout)
	}

	count := probe.ItemCount()
	if count == 0 {
		return stderrors.New("no element delivered before cancel")
	}
	if count >= len(want) {
		return fmt.Errorf("all %d elements delivered despite cancel", count)
	}
	if probe.Terminated() {
		return fmt.Errorf("terminal %s delivered after cancel", probe.Signals()[len(probe.Signals())-1])
	}
	if diff := cmp.Diff(want[:count], probe.Items()); diff != "" {
		return fmt.Errorf("delivered prefix differs (-want +got):\n%s", diff)
	}
	if err := checkSignalDiscipline(probe.Signals()); err != nil {
		return err
	}
	return checkViolations(c)
}

// VerifyDemandAccounting issues Request(1) from many goroutines at once
// and checks the producer honors exactly the accumulated demand: every
// requested element arrives, in order, with no overlap and no
// overdelivery.
func (v *PublisherVerifier[T]) VerifyDemandAccounting(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	total := v.env.Requesters * v.env.RequestsPerRequester
	want := v.sample(total)
	c := validate.NewCollector(0)
	probe := testutil.NewProbe[T]()
	acct := &accountant[T]{inner: probe}
	v.factory(want).Subscribe(validate.NewSubscriber[T](acct,
		validate.WithReporter(c), validate.WithStage("accounting")))

	if !probe.AwaitSubscribed(v.env.DefaultTimeout) {
		return fmt.Errorf("no handshake within %s", v.env.DefaultTimeout)
	}

	var wg sync.WaitGroup
	for i := 0; i < v.env.Requesters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < v.env.RequestsPerRequester; j++ {
				probe.Request(1)
			}
		}()
	}
	wg.Wait()

	if !probe.AwaitItems(total, v.env.DefaultTimeout) {
		return fmt.Errorf("delivered %d of %d requested elements", probe.ItemCount(), total)
	}
	if !probe.AwaitTerminal(v.env.DefaultTimeout) {
		return fmt.Errorf("no terminal within %s", v.env.DefaultTimeout)
	}
	if acct.overdrawn() {
		return stderrors.New("delivery outran requested demand")
	}
	if n := probe.ItemCount(); n != total {
		return fmt.Errorf("delivered %d elements for %d of demand", n, total)
	}
	if diff := cmp.Diff(want, probe.Items()); diff != "" {
		return fmt.Errorf("delivered elements differ (-want +got):\n%s", diff)
	}
	if err := checkSignalDiscipline(probe.Signals()); err != nil {
		return err
	}
	return checkViolations(c)
}

// accountant sits between the validator and the probe, tracking that
// delivery never outruns cumulative demand.
type accountant[T any] struct {
	inner     stream.Subscriber[T]
	requested atomic.Int64
	delivered atomic.Int64
	overdraft atomic.Bool
}

func (a *accountant[T]) OnSubscribe(s stream.Subscription) {
	a.inner.OnSubscribe(&accountedSubscription[T]{sub: s, acct: a})
}

func (a *accountant[T]) OnNext(v T) {
	if a.delivered.Add(1) > a.requested.Load() {
		a.overdraft.Store(true)
	}
	a.inner.OnNext(v)
}

func (a *accountant[T]) OnError(err error) { a.inner.OnError(err) }
func (a *accountant[T]) OnComplete()       { a.inner.OnComplete() }

func (a *accountant[T]) overdrawn() bool { return a.overdraft.Load() }

type accountedSubscription[T any] struct {
	sub  stream.Subscription
	acct *accountant[T]
}

// Request counts the demand before forwarding it, so the producer can
// never deliver against demand the accountant has not seen.
func (s *accountedSubscription[T]) Request(n int64) {
	if n > 0 && s.acct.requested.Add(n) < 0 {
		s.acct.requested.Store(stream.Unbounded)
	}
	s.sub.Request(n)
}

func (s *accountedSubscription[T]) Cancel() { s.sub.Cancel() }

// checkSignalDiscipline verifies the handshake arrived exactly once and
// first, and that at most one terminal arrived, last.
func checkSignalDiscipline[T any](signals []stream.Signal[T]) error {
	if len(signals) == 0 {
		return stderrors.New("no signals delivered")
	}
	if signals[0].Type != stream.SignalSubscribe {
		return fmt.Errorf("first signal was %s, want onSubscribe", signals[0])
	}
	handshakes := 0
	terminals := 0
	for i, sig := range signals {
		if sig.Type == stream.SignalSubscribe {
			handshakes++
		}
		if sig.IsTerminal() {
			terminals++
			if i != len(signals)-1 {
				return fmt.Errorf("signal %s followed the terminal %s", signals[i+1], sig)
			}
		}
	}
	if handshakes != 1 {
		return fmt.Errorf("onSubscribe delivered %d times", handshakes)
	}
	if terminals > 1 {
		return fmt.Errorf("%d terminal signals delivered", terminals)
	}
	return nil
}

// checkViolations fails if the validator observed anything.
func checkViolations(c *validate.Collector) error {
	if n := c.Count(); n > 0 {
		return fmt.Errorf("validator reported %d violations, first: %s", n, c.Violations()[0])
	}
	return nil
}
