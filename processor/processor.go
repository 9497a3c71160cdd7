package processor

import (
	"github.com/c360/rstream/stream"
)

// Stage lifecycle states. Terminal states are sticky: once a stage leaves
// stateActive it never re-enters it.
const (
	stateActive int32 = iota
	stateCancelled
	stateCompleted
	stateErrored
)

// refuse rejects a subscriber that cannot be served, honouring the rule that
// OnSubscribe precedes every other signal. The one-off subscription it hands
// out ignores all demand.
func refuse[T any](sub stream.Subscriber[T], err error) {
	sub.OnSubscribe(stream.SubscriptionFuncs{}.Build())
	sub.OnError(err)
}
