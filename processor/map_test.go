package processor

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/c360/rstream/errors"
	"github.com/c360/rstream/publisher"
	"github.com/c360/rstream/stream"
	tu "github.com/c360/rstream/testutil"
)

func double(v int) (int, error) { return v * 2, nil }

func TestMapTransformsSequence(t *testing.T) {
	probe := tu.NewProbe(tu.WithInitialRequest[int](3))

	m := NewMap(double)
	m.Subscribe(probe)
	publisher.FromSlice([]int{1, 2, 3}).Subscribe(m)

	require.True(t, probe.AwaitTerminal(time.Second))
	assert.Equal(t, []int{2, 4, 6}, probe.Items())
	assert.True(t, probe.Completed())
	assert.Equal(t, 0, probe.ErrorCount())
}

func TestMapChangesElementType(t *testing.T) {
	probe := tu.NewUnboundedProbe[string]()

	m := NewMap(func(v int) (string, error) {
		return fmt.Sprintf("value-%d", v), nil
	})
	m.Subscribe(probe)
	publisher.FromSlice([]int{7, 8}).Subscribe(m)

	require.True(t, probe.AwaitTerminal(time.Second))
	assert.Equal(t, []string{"value-7", "value-8"}, probe.Items())
}

func TestMapRelaysDemandOneToOne(t *testing.T) {
	up := tu.NewManualPublisher[int]()
	probe := tu.NewProbe[int]()

	m := NewMap(double)
	up.Subscribe(m)
	m.Subscribe(probe)

	sub := up.Subscription()
	require.NotNil(t, sub)
	assert.Empty(t, sub.Requests())

	probe.Request(2)
	assert.Equal(t, []int64{2}, sub.Requests())

	up.Emit(10, 20)
	assert.Equal(t, []int{20, 40}, probe.Items())

	probe.Request(1)
	assert.Equal(t, []int64{2, 1}, sub.Requests())
}

func TestMapParksDemandUntilUpstreamArrives(t *testing.T) {
	probe := tu.NewProbe[int]()
	m := NewMap(double)

	// Downstream is wired first and requests before any upstream exists.
	m.Subscribe(probe)
	probe.Request(2)
	probe.Request(3)

	up := tu.NewManualPublisher[int]()
	up.Subscribe(m)

	// The parked demand is replayed as one coalesced request.
	assert.Equal(t, []int64{5}, up.Subscription().Requests())
}

func TestMapTransformErrorFailsBothSides(t *testing.T) {
	up := tu.NewManualPublisher[int]()
	probe := tu.NewUnboundedProbe[int]()

	m := NewMap(func(v int) (int, error) {
		if v == 2 {
			return 0, tu.ErrHandlerFailed
		}
		return v, nil
	})
	up.Subscribe(m)
	m.Subscribe(probe)

	up.Emit(1, 2)

	err := probe.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, tu.ErrHandlerFailed)
	assert.True(t, cerrors.IsConsumer(err))
	assert.Equal(t, []int{1}, probe.Items())
	assert.True(t, up.Subscription().Cancelled())

	// The stage is dead for both sides now.
	up.Emit(3)
	assert.Equal(t, []int{1}, probe.Items())
	assert.Equal(t, 1, probe.ErrorCount())
}

func TestMapTransformPanicContained(t *testing.T) {
	up := tu.NewManualPublisher[int]()
	probe := tu.NewUnboundedProbe[int]()

	m := NewMap(func(v int) (int, error) {
		panic("transform blew up")
	})
	up.Subscribe(m)
	m.Subscribe(probe)

	up.Emit(1)

	err := probe.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, cerrors.ErrHandlerPanic)
	assert.True(t, cerrors.IsConsumer(err))
	assert.Contains(t, err.Error(), "transform blew up")
	assert.True(t, up.Subscription().Cancelled())
}

func TestMapSecondSubscriberRefused(t *testing.T) {
	first := tu.NewUnboundedProbe[int]()
	second := tu.NewProbe[int]()

	m := NewMap(double)
	m.Subscribe(first)
	m.Subscribe(second)

	require.True(t, second.AwaitTerminal(time.Second))
	err := second.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, cerrors.ErrAlreadySubscribed)
	assert.True(t, cerrors.IsProducer(err))
	assert.Equal(t, 1, second.SubscribeCount())

	// The first subscriber keeps working.
	up := tu.NewManualPublisher[int]()
	up.Subscribe(m)
	up.Emit(5)
	assert.Equal(t, []int{10}, first.Items())
}

func TestMapDuplicateUpstreamCancelled(t *testing.T) {
	m := NewMap(double)

	first := tu.NewManualSubscription()
	second := tu.NewManualSubscription()

	m.OnSubscribe(first)
	m.OnSubscribe(second)

	assert.False(t, first.Cancelled())
	assert.True(t, second.Cancelled())
}

func TestMapCancelPropagatesUpstream(t *testing.T) {
	up := tu.NewManualPublisher[int]()
	probe := tu.NewProbe(
		tu.WithInitialRequest[int](stream.Unbounded),
		tu.WithNextFunc(func(v int, s stream.Subscription) {
			s.Cancel()
		}),
	)

	m := NewMap(double)
	up.Subscribe(m)
	m.Subscribe(probe)

	up.Emit(1)
	assert.Equal(t, []int{2}, probe.Items())
	assert.True(t, up.Subscription().Cancelled())

	// Post-cancel elements are dropped, and cancel is not a terminal.
	up.Emit(2, 3)
	assert.Equal(t, []int{2}, probe.Items())
	assert.False(t, probe.Terminated())
}

func TestMapNonPositiveRequestFailsStream(t *testing.T) {
	up := tu.NewManualPublisher[int]()
	probe := tu.NewProbe(tu.WithInitialRequest[int](-1))

	m := NewMap(double)
	up.Subscribe(m)
	m.Subscribe(probe)

	require.True(t, probe.AwaitTerminal(time.Second))
	err := probe.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, cerrors.ErrNonPositiveDemand)
	assert.True(t, cerrors.IsViolation(err))
	assert.True(t, up.Subscription().Cancelled())
}

func TestMapForwardsUpstreamError(t *testing.T) {
	up := tu.NewManualPublisher[int]()
	probe := tu.NewUnboundedProbe[int]()

	m := NewMap(double)
	up.Subscribe(m)
	m.Subscribe(probe)

	up.Emit(4)
	up.Fail(tu.ErrSourceFailed)

	require.True(t, probe.AwaitTerminal(time.Second))
	assert.Equal(t, []int{8}, probe.Items())
	assert.ErrorIs(t, probe.Err(), tu.ErrSourceFailed)
}

func TestMapForwardsUpstreamCompletion(t *testing.T) {
	up := tu.NewManualPublisher[int]()
	probe := tu.NewUnboundedProbe[int]()

	m := NewMap(double)
	up.Subscribe(m)
	m.Subscribe(probe)

	up.Complete()

	require.True(t, probe.AwaitTerminal(time.Second))
	assert.True(t, probe.Completed())
	assert.Equal(t, 0, probe.ItemCount())
}

func TestMapNilUpstreamErrorIsViolation(t *testing.T) {
	up := tu.NewManualPublisher[int]()
	probe := tu.NewUnboundedProbe[int]()

	m := NewMap(double)
	up.Subscribe(m)
	m.Subscribe(probe)

	up.Fail(nil)

	require.True(t, probe.AwaitTerminal(time.Second))
	err := probe.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, cerrors.ErrNilError)
	assert.True(t, cerrors.IsViolation(err))
}

func TestMapReplaysTerminalToLateSubscriber(t *testing.T) {
	t.Run("completion", func(t *testing.T) {
		up := tu.NewManualPublisher[int]()
		m := NewMap(double)
		up.Subscribe(m)
		up.Complete()

		probe := tu.NewUnboundedProbe[int]()
		m.Subscribe(probe)

		require.True(t, probe.AwaitTerminal(time.Second))
		assert.Equal(t, 1, probe.SubscribeCount())
		assert.True(t, probe.Completed())
	})

	t.Run("error", func(t *testing.T) {
		up := tu.NewManualPublisher[int]()
		m := NewMap(double)
		up.Subscribe(m)
		up.Fail(tu.ErrSourceFailed)

		probe := tu.NewUnboundedProbe[int]()
		m.Subscribe(probe)

		require.True(t, probe.AwaitTerminal(time.Second))
		assert.Equal(t, 1, probe.SubscribeCount())
		assert.ErrorIs(t, probe.Err(), tu.ErrSourceFailed)
	})
}

func TestMapChainedStages(t *testing.T) {
	probe := tu.NewUnboundedProbe[string]()

	doubled := NewMap(double)
	rendered := NewMap(func(v int) (string, error) {
		return fmt.Sprintf("%d", v), nil
	})

	rendered.Subscribe(probe)
	doubled.Subscribe(rendered)
	publisher.FromSlice([]int{1, 2, 3}).Subscribe(doubled)

	require.True(t, probe.AwaitTerminal(time.Second))
	assert.Equal(t, []string{"2", "4", "6"}, probe.Items())
	assert.True(t, probe.Completed())
}

func TestMapStepwiseDemandThroughStage(t *testing.T) {
	probe := tu.NewProbe(
		tu.WithInitialRequest[int](1),
		tu.WithNextFunc(func(_ int, s stream.Subscription) { s.Request(1) }),
	)

	m := NewMap(double)
	m.Subscribe(probe)
	publisher.FromSlice([]int{1, 2, 3}).Subscribe(m)

	require.True(t, probe.AwaitTerminal(time.Second))

	signals := probe.Signals()
	require.Len(t, signals, 5)
	assert.Equal(t, stream.SignalSubscribe, signals[0].Type)
	for i, want := range []int{2, 4, 6} {
		assert.Equal(t, stream.SignalNext, signals[i+1].Type)
		assert.Equal(t, want, signals[i+1].Item)
	}
	assert.Equal(t, stream.SignalComplete, signals[4].Type)
}

func TestMapNilTransformPanics(t *testing.T) {
	require.Panics(t, func() {
		NewMap[int, int](nil)
	})
}

func TestMapNilSubscriberPanics(t *testing.T) {
	m := NewMap(double)
	require.Panics(t, func() {
		m.Subscribe(nil)
	})
}

func TestMapNilSubscriptionPanics(t *testing.T) {
	m := NewMap(double)
	require.Panics(t, func() {
		m.OnSubscribe(nil)
	})
}
