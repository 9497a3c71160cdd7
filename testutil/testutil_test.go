package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/rstream/stream"
)

func TestProbeRecordsSignalsInOrder(t *testing.T) {
	pub := NewManualPublisher[int]()
	probe := NewUnboundedProbe[int]()

	pub.Subscribe(probe)
	pub.Emit(1, 2, 3)
	pub.Complete()

	require.True(t, probe.AwaitTerminal(time.Second))

	signals := probe.Signals()
	require.Len(t, signals, 5)
	assert.Equal(t, stream.SignalSubscribe, signals[0].Type)
	assert.Equal(t, stream.SignalNext, signals[1].Type)
	assert.Equal(t, stream.SignalComplete, signals[4].Type)

	assert.Equal(t, []int{1, 2, 3}, probe.Items())
	assert.True(t, probe.Completed())
	assert.Nil(t, probe.Err())
}

func TestProbeInitialRequest(t *testing.T) {
	pub := NewManualPublisher[string]()
	probe := NewProbe(WithInitialRequest[string](4))

	pub.Subscribe(probe)

	sub := pub.Subscription()
	require.NotNil(t, sub)
	assert.Equal(t, []int64{4}, sub.Requests())
}

func TestProbeDefaultRequestsNothing(t *testing.T) {
	pub := NewManualPublisher[string]()
	probe := NewProbe[string]()

	pub.Subscribe(probe)

	sub := pub.Subscription()
	require.NotNil(t, sub)
	assert.Empty(t, sub.Requests())
	assert.Equal(t, int64(0), sub.TotalRequested())
}

func TestProbeRecordsError(t *testing.T) {
	pub := NewManualPublisher[int]()
	probe := NewUnboundedProbe[int]()

	pub.Subscribe(probe)
	pub.Emit(7)
	pub.Fail(ErrSourceFailed)

	require.True(t, probe.AwaitTerminal(time.Second))
	assert.Equal(t, 1, probe.ErrorCount())
	assert.ErrorIs(t, probe.Err(), ErrSourceFailed)
	assert.False(t, probe.Completed())
}

func TestProbeRecordsDuplicateSubscribe(t *testing.T) {
	probe := NewProbe[int]()

	first := NewManualSubscription()
	second := NewManualSubscription()
	probe.OnSubscribe(first)
	probe.OnSubscribe(second)

	// The probe keeps recording but only forwards to the first subscription.
	assert.Equal(t, 2, probe.SubscribeCount())
	probe.Request(3)
	assert.Equal(t, int64(3), first.TotalRequested())
	assert.Equal(t, int64(0), second.TotalRequested())
}

func TestProbeNextFuncDrivesDemand(t *testing.T) {
	pub := NewManualPublisher[int]()
	probe := NewProbe(
		WithInitialRequest[int](1),
		WithNextFunc(func(_ int, s stream.Subscription) { s.Request(1) }),
	)

	pub.Subscribe(probe)
	pub.Emit(10, 20)

	sub := pub.Subscription()
	// Initial request plus one per delivered element.
	assert.Equal(t, []int64{1, 1, 1}, sub.Requests())
}

func TestProbeCancelForwarding(t *testing.T) {
	pub := NewManualPublisher[int]()
	probe := NewProbe[int]()

	// Cancel before subscribe is a no-op.
	probe.Cancel()

	pub.Subscribe(probe)
	probe.Cancel()
	probe.Cancel()

	sub := pub.Subscription()
	assert.True(t, sub.Cancelled())
	assert.Equal(t, 2, sub.CancelCount())
}

func TestManualSubscriptionHooks(t *testing.T) {
	var requested []int64
	cancelled := false

	sub := NewManualSubscription()
	sub.RequestFunc = func(n int64) { requested = append(requested, n) }
	sub.CancelFunc = func() { cancelled = true }

	sub.Request(2)
	sub.Request(5)
	sub.Cancel()

	assert.Equal(t, []int64{2, 5}, requested)
	assert.True(t, cancelled)
	assert.Equal(t, int64(7), sub.TotalRequested())
}

func TestManualSubscriptionAwaitRequested(t *testing.T) {
	sub := NewManualSubscription()

	go func() {
		time.Sleep(10 * time.Millisecond)
		sub.Request(3)
	}()

	assert.True(t, sub.AwaitRequested(3, time.Second))
	assert.False(t, sub.AwaitRequested(4, 20*time.Millisecond))
}

func TestManualPublisherTargetsLatestSubscriber(t *testing.T) {
	pub := NewManualPublisher[int]()
	first := NewUnboundedProbe[int]()
	second := NewUnboundedProbe[int]()

	pub.Subscribe(first)
	pub.Subscribe(second)
	pub.Emit(42)

	assert.Equal(t, 2, pub.SubscribeCount())
	assert.Empty(t, first.Items())
	assert.Equal(t, []int{42}, second.Items())
}

func TestManualPublisherNoSubscriber(t *testing.T) {
	pub := NewManualPublisher[int]()

	// Emitting with no subscriber must not panic.
	pub.Emit(1)
	pub.Fail(ErrSourceFailed)
	pub.Complete()

	assert.Equal(t, 0, pub.SubscribeCount())
}

func TestDataGenerators(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2, 3}, Ints(4))
	assert.Empty(t, Ints(0))

	s := Strings(2)
	assert.Equal(t, []string{"item-0", "item-1"}, s)

	assert.Len(t, Words, 5)
}

func TestLoggers(t *testing.T) {
	require.NotNil(t, NewLogger(0))
	logger := DiscardLogger()
	require.NotNil(t, logger)
	logger.Info("dropped")
}
