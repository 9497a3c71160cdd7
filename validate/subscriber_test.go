package validate

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/c360/rstream/errors"
	"github.com/c360/rstream/publisher"
	"github.com/c360/rstream/stream"
	tu "github.com/c360/rstream/testutil"
)

func TestValidatorPassesCleanStream(t *testing.T) {
	c := NewCollector(0)
	probe := tu.NewProbe(tu.WithInitialRequest[int](3))

	publisher.FromSlice([]int{1, 2, 3}).Subscribe(NewSubscriber(probe, WithReporter(c)))

	require.True(t, probe.AwaitTerminal(time.Second))
	assert.Equal(t, []int{1, 2, 3}, probe.Items())
	assert.True(t, probe.Completed())
	assert.Zero(t, c.Count(), "a clean stream must not produce reports")
}

func TestValidatorReportsElementBeforeHandshake(t *testing.T) {
	c := NewCollector(0)
	probe := tu.NewProbe[int]()
	v := NewSubscriber(probe, WithReporter(c))

	v.OnNext(1)

	require.True(t, c.Has(RuleOnSubscribeFirst))
	assert.Zero(t, probe.ItemCount(), "the stray element must be swallowed")
}

func TestValidatorReportsTerminalBeforeHandshake(t *testing.T) {
	c := NewCollector(0)
	probe := tu.NewProbe[int]()
	v := NewSubscriber(probe, WithReporter(c))

	v.OnError(tu.ErrSourceFailed)
	v.OnComplete()

	violations := c.Violations()
	require.Len(t, violations, 2)
	for _, viol := range violations {
		assert.Equal(t, RuleOnSubscribeFirst, viol.Rule)
	}
	assert.False(t, probe.Terminated())
}

func TestValidatorReportsDuplicateHandshake(t *testing.T) {
	c := NewCollector(0)
	probe := tu.NewProbe[int]()
	v := NewSubscriber(probe, WithReporter(c))

	first := tu.NewManualSubscription()
	second := tu.NewManualSubscription()
	v.OnSubscribe(first)
	v.OnSubscribe(second)

	require.True(t, c.Has(RuleDuplicateOnSubscribe))
	assert.True(t, second.Cancelled(), "the duplicate must be cancelled")
	assert.False(t, first.Cancelled())
	assert.Equal(t, 1, probe.SubscribeCount(), "the inner subscriber sees one handshake")
}

func TestValidatorReportsSignalsAfterTerminal(t *testing.T) {
	c := NewCollector(0)
	probe := tu.NewProbe[int]()
	v := NewSubscriber(probe, WithReporter(c))

	v.OnSubscribe(tu.NewManualSubscription())
	v.OnComplete()

	v.OnNext(1)
	v.OnError(tu.ErrSourceFailed)
	v.OnComplete()

	violations := c.Violations()
	require.Len(t, violations, 3)
	for _, viol := range violations {
		assert.Equal(t, RuleNoSignalAfterTerminal, viol.Rule)
		assert.Equal(t, v.ID(), viol.SubscriptionID)
	}
	assert.Zero(t, probe.ItemCount())
	assert.Equal(t, 1, probe.CompleteCount())
	assert.Zero(t, probe.ErrorCount())
}

func TestValidatorReportsLateHandshakeAfterTerminal(t *testing.T) {
	c := NewCollector(0)
	probe := tu.NewProbe[int]()
	v := NewSubscriber(probe, WithReporter(c))

	v.OnSubscribe(tu.NewManualSubscription())
	v.OnComplete()

	late := tu.NewManualSubscription()
	v.OnSubscribe(late)

	require.True(t, c.Has(RuleNoSignalAfterTerminal))
	assert.True(t, late.Cancelled())
}

func TestValidatorReportsNonPositiveRequest(t *testing.T) {
	c := NewCollector(0)
	probe := tu.NewProbe[int]()
	v := NewSubscriber(probe, WithReporter(c))

	ms := tu.NewManualSubscription()
	v.OnSubscribe(ms)
	probe.Request(-1)

	require.True(t, c.Has(RuleNonPositiveRequest))
	assert.Equal(t, []int64{-1}, ms.Requests(),
		"the demand still reaches the producer, which owns the failure")
}

func TestValidatorReportsNilError(t *testing.T) {
	c := NewCollector(0)
	probe := tu.NewProbe[int]()
	v := NewSubscriber(probe, WithReporter(c))

	v.OnSubscribe(tu.NewManualSubscription())
	v.OnError(nil)

	require.True(t, c.Has(RuleNilError))
	err := probe.Err()
	require.Error(t, err, "the inner subscriber still terminates with a populated failure")
	assert.ErrorIs(t, err, cerrors.ErrNilError)
	assert.True(t, cerrors.IsViolation(err))
}

func TestValidatorReportsOverlappingDelivery(t *testing.T) {
	c := NewCollector(0)
	entered := make(chan struct{})
	release := make(chan struct{})

	inner := stream.SubscriberFuncs[int]{
		Next: func(v int) {
			if v == 1 {
				close(entered)
				<-release
			}
		},
	}.Build()
	v := NewSubscriber(inner, WithReporter(c))
	v.OnSubscribe(tu.NewManualSubscription())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		v.OnNext(1)
	}()
	<-entered

	// The first delivery is parked inside the consumer; a second delivery
	// now is exactly the overlap the rule exists for.
	v.OnNext(2)
	close(release)
	wg.Wait()

	require.True(t, c.Has(RuleNoOverlap))
	for _, viol := range c.Violations() {
		if viol.Rule != RuleNoOverlap {
			continue
		}
		assert.NotZero(t, viol.Goroutine)
		assert.NotZero(t, viol.OtherGoroutine)
		assert.NotEqual(t, viol.Goroutine, viol.OtherGoroutine)
	}
}

func TestValidatorSequentialDeliveryDoesNotOverlap(t *testing.T) {
	c := NewCollector(0)
	probe := tu.NewProbe(tu.WithInitialRequest[int64](stream.Unbounded))

	publisher.Range(0, 200).Subscribe(NewSubscriber(probe, WithReporter(c)))

	require.True(t, probe.AwaitTerminal(time.Second))
	assert.Equal(t, 200, probe.ItemCount())
	assert.False(t, c.Has(RuleNoOverlap))
}

func TestValidatorIDsAreDistinct(t *testing.T) {
	a := NewSubscriber[int](tu.NewProbe[int]())
	b := NewSubscriber[int](tu.NewProbe[int]())

	assert.NotEmpty(t, a.ID())
	assert.NotEmpty(t, b.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestValidatorNilSubscriberPanics(t *testing.T) {
	require.Panics(t, func() { NewSubscriber[int](nil) })
}

func TestValidatorNilSubscriptionPanics(t *testing.T) {
	v := NewSubscriber[int](tu.NewProbe[int]())
	require.Panics(t, func() { v.OnSubscribe(nil) })
}
