package verify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/rstream/publisher"
	"github.com/c360/rstream/stream"
	tu "github.com/c360/rstream/testutil"
)

func sliceFactory(els []int) stream.Publisher[int] {
	return publisher.FromSlice(els)
}

func quickEnvironment() Environment {
	env := DefaultEnvironment()
	env.Requesters = 4
	env.RequestsPerRequester = 25
	return env
}

func TestVerifierPassesCompliantPublisher(t *testing.T) {
	v, err := NewPublisherVerifier(sliceFactory, tu.Ints, quickEnvironment(),
		WithLogger(tu.DiscardLogger()))
	require.NoError(t, err)

	assert.NoError(t, v.Verify(context.Background()))
}

func TestVerifierScenariosIndividually(t *testing.T) {
	v, err := NewPublisherVerifier(sliceFactory, tu.Ints, quickEnvironment(),
		WithLogger(tu.DiscardLogger()))
	require.NoError(t, err)

	ctx := context.Background()
	scenarios := map[string]func(context.Context) error{
		"stepwise":            v.VerifyStepwiseSequence,
		"unbounded":           v.VerifyUnboundedSequence,
		"non-positive demand": v.VerifyNonPositiveDemandFails,
		"cancel":              v.VerifyCancelStopsDelivery,
		"accounting":          v.VerifyDemandAccounting,
	}
	for name, run := range scenarios {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, run(ctx))
		})
	}
}

// pushAll ignores demand and cancellation entirely: it hands out an inert
// subscription, pushes the whole sequence and completes.
func pushAll(els []int) stream.Publisher[int] {
	return stream.PublisherFunc[int](func(s stream.Subscriber[int]) {
		s.OnSubscribe(tu.NewManualSubscription())
		for _, e := range els {
			s.OnNext(e)
		}
		s.OnComplete()
	})
}

func TestVerifierCatchesIgnoredCancel(t *testing.T) {
	v, err := NewPublisherVerifier(pushAll, tu.Ints, quickEnvironment(),
		WithLogger(tu.DiscardLogger()))
	require.NoError(t, err)

	err = v.VerifyCancelStopsDelivery(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "despite cancel")
}

func TestVerifierCatchesOverdelivery(t *testing.T) {
	v, err := NewPublisherVerifier(pushAll, tu.Ints, quickEnvironment(),
		WithLogger(tu.DiscardLogger()))
	require.NoError(t, err)

	err = v.VerifyDemandAccounting(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outran requested demand")
}

func TestVerifierCatchesMissingTerminal(t *testing.T) {
	silent := func([]int) stream.Publisher[int] {
		return stream.PublisherFunc[int](func(s stream.Subscriber[int]) {
			s.OnSubscribe(tu.NewManualSubscription())
		})
	}
	env := quickEnvironment()
	env.DefaultTimeout = 100 * time.Millisecond
	v, err := NewPublisherVerifier(silent, tu.Ints, env,
		WithLogger(tu.DiscardLogger()))
	require.NoError(t, err)

	err = v.VerifyStepwiseSequence(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no terminal")
}

func TestVerifierFullRunReportsScenario(t *testing.T) {
	env := quickEnvironment()
	env.DefaultTimeout = 200 * time.Millisecond
	v, err := NewPublisherVerifier(pushAll, tu.Ints, env,
		WithLogger(tu.DiscardLogger()))
	require.NoError(t, err)

	err = v.Verify(context.Background())
	require.Error(t, err, "a non-compliant publisher must fail the run")
}

func TestVerifierHonorsContext(t *testing.T) {
	v, err := NewPublisherVerifier(sliceFactory, tu.Ints, quickEnvironment())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, v.VerifyStepwiseSequence(ctx), context.Canceled)
}

func TestVerifierRejectsBadEnvironment(t *testing.T) {
	env := DefaultEnvironment()
	env.SequenceLength = -1
	_, err := NewPublisherVerifier(sliceFactory, tu.Ints, env)
	require.Error(t, err)
}

func TestVerifierZeroEnvironmentGetsDefaults(t *testing.T) {
	v, err := NewPublisherVerifier(sliceFactory, tu.Ints, Environment{},
		WithLogger(tu.DiscardLogger()))
	require.NoError(t, err)
	assert.NoError(t, v.VerifyUnboundedSequence(context.Background()))
}

func TestVerifierNilFactoryPanics(t *testing.T) {
	require.Panics(t, func() {
		_, _ = NewPublisherVerifier[int](nil, tu.Ints, Environment{})
	})
}

func TestVerifierNilSamplePanics(t *testing.T) {
	require.Panics(t, func() {
		_, _ = NewPublisherVerifier(sliceFactory, nil, Environment{})
	})
}
