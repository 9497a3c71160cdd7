// Package validate wraps stream endpoints with contract checking.
//
// # Overview
//
// The streaming contract is easy to break and the breakage is usually
// silent: a stray signal after completion gets dropped somewhere, demand
// goes negative, two goroutines deliver at once and the consumer
// corrupts. The wrappers in this package sit between a producer and a
// consumer and turn those silent breaches into Violation reports.
//
//	probe := validate.NewSubscriber(mySubscriber,
//	    validate.WithReporter(reporter),
//	    validate.WithStage("ingest"))
//	somePublisher.Subscribe(probe)
//
// NewPublisher does the same from the other side, wrapping every
// subscriber a publisher accepts.
//
// # Rules
//
// Six rules are checked: the handshake must come first and happen once,
// nothing may follow a terminal signal, demand must be positive, OnError
// must carry an error, and no two deliveries may overlap in time. Each
// carries a Rule identifier that appears in reports, logs and metric
// labels.
//
// # Reports Are Not Errors
//
// Violations travel through a Reporter, never through the stream's
// OnError channel. A violation usually means a peer is broken, not that
// the stream failed; sending it down OnError would terminate a stream
// that may be able to continue and would hide the diagnosis inside
// application error handling. The wrapped subscriber keeps working for
// legitimate signals. Breaches that would corrupt its view of the stream
// (a second handshake, signals after a terminal) are reported and
// swallowed.
//
// Reporters compose: LogReporter for rate-limited log output,
// Collector for tests, MetricsReporter for counters, MultiReporter to
// fan out to several at once.
//
// # Cost
//
// Per signal the wrapper adds a state load, one compare-and-swap pair for
// overlap tracking and a goroutine id lookup. That is cheap enough to
// leave on in integration environments, which is where misbehaving peers
// actually show up.
//
// # See Also
//
//   - Package verify drives publishers through contract scenarios using
//     these wrappers.
package validate
