// Package errors provides standardized error handling patterns for rstream components.
//
// # Overview
//
// The errors package implements a three-class error classification system designed
// for reactive stream pipelines: Violation (the streaming contract was breached),
// Producer (the producing side failed), and Consumer (consumer-supplied code failed).
//
// This classification enables informed handling decisions throughout rstream.
// Violations indicate programming errors in a Publisher, Subscriber or Subscription
// implementation and are surfaced to validators and reporters rather than retried.
// Producer errors travel downstream through onError and terminate the stream.
// Consumer errors mark failures in handler or transform code supplied by the
// application.
//
// The classification system integrates with Go's standard error handling patterns,
// supporting errors.Is(), errors.As(), and error wrapping chains.
//
// # Error Classification
//
// Errors fall into one of three classes:
//
//   - Violation: Contract breaches such as non-positive demand, duplicate
//     onSubscribe, or signals after a terminal event (fix the implementation)
//   - Producer: Source failures, buffer overflow, single-subscriber refusal
//     (terminates the stream through onError)
//   - Consumer: Panics or failures in application handlers and transforms
//     (terminates the stream, attributed to the consuming side)
//
// # Quick Start
//
// Use standard error variables for known conditions:
//
//	// Second subscriber on a unicast publisher
//	if !p.claim() {
//	    refuse(sub, errors.ErrAlreadySubscribed)
//	    return
//	}
//
//	// Demand validation inside a Subscription
//	if n <= 0 {
//	    s.fail(errors.ErrNonPositiveDemand)
//	    return
//	}
//
// Check classifications when deciding how to react:
//
//	if errors.IsViolation(err) {
//	    // report to the validator's reporter, never retry
//	}
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"stage.method: action failed: %w"
//
// This format enables consistent log parsing and debugging across a pipeline.
// The Wrap family of functions applies the pattern while attaching classification:
//
//	errors.WrapViolation(err, "publisher", "Request", "validate demand")
//	errors.WrapProducer(err, "publisher", "drain", "emit item")
//	errors.WrapConsumer(err, "processor.map", "OnNext", "apply transform")
//
// The generic Wrap() adds context without classifying:
//
//	errors.Wrap(err, "verify", "Run", "execute scenario")
//
// # Standard Error Variables
//
// The package provides pre-defined error variables organized by category:
//
//   - Subscription setup: ErrNilSubscriber, ErrNilSubscription, ErrDuplicateOnSubscribe
//   - Signal ordering: ErrSignalBeforeSubscribe, ErrSignalAfterTerminal,
//     ErrOverlappingSignals, ErrNilError
//   - Demand: ErrNonPositiveDemand
//   - Producer side: ErrAlreadySubscribed, ErrBufferOverflow, ErrSourcePanic,
//     ErrCancelled
//   - Consumer side: ErrHandlerPanic
//
// Use these variables instead of creating custom error messages for consistency:
//
//	// Good - uses standard variable
//	if n <= 0 {
//	    return errors.ErrNonPositiveDemand
//	}
//
//	// Avoid - custom error message
//	if n <= 0 {
//	    return errors.New("bad request amount")
//	}
//
// # Integration with errors.As/Is
//
// ClassifiedError supports the standard unwrapping chain, so sentinel checks
// work through any number of Wrap layers:
//
//	err := errors.WrapViolation(errors.ErrNonPositiveDemand, "publisher", "Request", "validate demand")
//	errors.Is(err, errors.ErrNonPositiveDemand) // true
//
//	var ce *errors.ClassifiedError
//	errors.As(err, &ce) // true, ce.Stage == "publisher"
//
// # Thread Safety
//
// All classification and wrapping operations are thread-safe. Error variables
// are immutable and safe for concurrent access. The ClassifiedError type is
// safe to share across goroutines after creation.
//
// # Architecture Integration
//
// The errors package integrates with other rstream components:
//
//   - publisher: Subscriptions terminate streams with classified demand errors
//   - processor: Transform panics become ErrHandlerPanic consumer failures
//   - validate: Rule breaches carry violation sentinels through reporters
//   - verify: Scenario failures wrap underlying expectation errors with context
//
// # Design Philosophy
//
// The errors package follows these design principles:
//
//   - Classification over string matching: Errors are classified by sentinel
//     identity and type, never by message content
//   - Wrapping over replacement: Preserve original errors, add context via wrapping
//   - Standards over invention: Use Go's error handling idioms (Is/As/Unwrap)
//   - Simplicity over completeness: Three classes cover the protocol's needs
package errors
