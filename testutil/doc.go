// Package testutil provides test doubles for exercising stream pipelines.
//
// # Overview
//
// The testutil package contains a recording Subscriber, a scriptable
// Publisher, deterministic test data, and logger helpers. The doubles make
// no protocol judgements of their own: a Probe records whatever arrives,
// and a ManualPublisher emits whatever the test tells it to, including
// deliberate violations. Assertions belong in the test; enforcement belongs
// in the validate package.
//
// # Core Components
//
// Probe - recording Subscriber:
//   - Captures every signal in arrival order
//   - Optional initial demand issued from inside OnSubscribe
//   - Await helpers to block until elements or a terminal arrive
//   - Request/Cancel forwarding to the captured subscription
//
// ManualPublisher - scriptable upstream:
//   - Hands each subscriber a fresh ManualSubscription
//   - Emit/Fail/Complete push signals on the test's schedule
//   - No demand accounting, so tests can overrun requested demand on purpose
//
// ManualSubscription - recording Subscription:
//   - Records every Request amount and Cancel call
//   - Optional RequestFunc/CancelFunc hooks for scripted reactions
//
// # Usage Examples
//
// Probe against a real publisher:
//
//	func TestSequence(t *testing.T) {
//	    p := testutil.NewUnboundedProbe[int]()
//	    publisher.FromSlice([]int{1, 2, 3}).Subscribe(p)
//
//	    if !p.AwaitTerminal(time.Second) {
//	        t.Fatal("stream did not terminate")
//	    }
//	    assert.Equal(t, []int{1, 2, 3}, p.Items())
//	    assert.True(t, p.Completed())
//	}
//
// ManualPublisher driving a subscriber under test:
//
//	func TestBackpressure(t *testing.T) {
//	    pub := testutil.NewManualPublisher[string]()
//	    pub.Subscribe(subscriberUnderTest)
//
//	    // The subscriber's OnSubscribe demand is now recorded.
//	    sub := pub.Subscription()
//	    require.Equal(t, int64(8), sub.TotalRequested())
//
//	    pub.Emit("a", "b")
//	    pub.Complete()
//	}
//
// Stepwise demand with the NextFunc hook:
//
//	p := testutil.NewProbe(testutil.WithNextFunc(func(_ int, s stream.Subscription) {
//	    s.Request(1)
//	}))
//
// # Thread Safety
//
// All doubles guard their state with a mutex and release it before invoking
// callbacks or forwarding signals, so reentrant protocol calls (requesting
// from inside OnSubscribe, cancelling from inside OnNext) do not deadlock.
//
// Await helpers poll at millisecond intervals. Each wait adds at most one
// interval of latency after the condition becomes true; prefer direct
// assertions when the code under test is synchronous.
//
// # Known Limitations
//
//  1. ManualPublisher delivers signals on the caller's goroutine only
//  2. Probe retains every signal for the life of the test, unbounded
//  3. Await helpers poll rather than block on a condition variable
//
// These are deliberate trade-offs favouring simple, inspectable doubles.
//
// # See Also
//
//   - stream: the Publisher/Subscriber/Subscription contracts
//   - validate: contract enforcement wrappers
//   - verify: end-to-end conformance scenarios
package testutil
