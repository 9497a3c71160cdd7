package validate

import (
	"fmt"
	"time"
)

// Rule identifies one checkable clause of the streaming contract. Rule
// values appear in violation reports, logs and metrics labels.
type Rule string

const (
	// RuleOnSubscribeFirst fires when an element or terminal arrives before
	// the handshake.
	RuleOnSubscribeFirst Rule = "onsubscribe-first"

	// RuleDuplicateOnSubscribe fires when a subscriber is handed a second
	// subscription.
	RuleDuplicateOnSubscribe Rule = "duplicate-onsubscribe"

	// RuleNoSignalAfterTerminal fires when any signal follows OnError or
	// OnComplete.
	RuleNoSignalAfterTerminal Rule = "signal-after-terminal"

	// RuleNonPositiveRequest fires when Request is called with n <= 0.
	RuleNonPositiveRequest Rule = "non-positive-request"

	// RuleNoOverlap fires when two goroutines deliver signals at the same
	// time. Reentrant delivery nested on one goroutine is serialized by
	// the call stack and does not trip this rule.
	RuleNoOverlap Rule = "overlapping-signals"

	// RuleNilError fires when OnError is handed a nil error.
	RuleNilError Rule = "nil-error"
)

// Violation describes one observed breach of the streaming contract. It is
// a diagnostic, not an error value: violations travel through a Reporter,
// never through the stream's own OnError channel, because the breach may
// come from a misbehaving peer rather than a failing stream.
type Violation struct {
	// Rule is the contract clause that was breached.
	Rule Rule

	// Stage is the label of the validator that observed the breach.
	Stage string

	// Signal is the callback the breach was observed in, in protocol
	// spelling ("onNext", "request", ...).
	Signal string

	// Detail narrates the specific breach.
	Detail string

	// SubscriptionID correlates reports from one wrapped subscriber.
	SubscriptionID string

	// Goroutine is the goroutine that delivered the offending signal.
	Goroutine int64

	// OtherGoroutine is the goroutine that was already mid-delivery when an
	// overlap was observed. Zero for every other rule.
	OtherGoroutine int64

	// At is when the breach was observed.
	At time.Time
}

// String renders the violation for diagnostics.
func (v Violation) String() string {
	s := fmt.Sprintf("violation %s in %s (stage %s, subscription %s, goroutine %d)",
		v.Rule, v.Signal, v.Stage, v.SubscriptionID, v.Goroutine)
	if v.OtherGoroutine != 0 {
		s += fmt.Sprintf(" overlapping goroutine %d", v.OtherGoroutine)
	}
	if v.Detail != "" {
		s += ": " + v.Detail
	}
	return s
}
