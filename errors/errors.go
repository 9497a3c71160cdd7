package errors

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorViolation represents breaches of the streaming contract by a
	// publisher, subscriber or subscription implementation
	ErrorViolation ErrorClass = iota
	// ErrorProducer represents failures on the producing side of a stream,
	// including errors that travel downstream through onError
	ErrorProducer
	// ErrorConsumer represents failures in consumer-supplied code such as
	// handlers and transform functions
	ErrorConsumer
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorViolation:
		return "violation"
	case ErrorProducer:
		return "producer"
	case ErrorConsumer:
		return "consumer"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Contract violations around subscription setup
	ErrNilSubscriber        = errors.New("subscriber must not be nil")
	ErrNilSubscription      = errors.New("subscription must not be nil")
	ErrDuplicateOnSubscribe = errors.New("onSubscribe delivered more than once")

	// Contract violations around signal ordering
	ErrSignalBeforeSubscribe = errors.New("signal delivered before onSubscribe")
	ErrSignalAfterTerminal   = errors.New("signal delivered after a terminal event")
	ErrOverlappingSignals    = errors.New("overlapping signal delivery detected")
	ErrNilError              = errors.New("onError delivered a nil error")

	// Contract violations around demand
	ErrNonPositiveDemand = errors.New("requested demand must be positive")

	// Producer-side failures
	ErrAlreadySubscribed = errors.New("publisher accepts a single subscriber")
	ErrBufferOverflow    = errors.New("buffer overflow: downstream demand too slow")
	ErrSourcePanic       = errors.New("source panicked while producing")
	ErrCancelled         = errors.New("subscription already cancelled")

	// Consumer-side failures
	ErrHandlerPanic = errors.New("handler panicked while consuming")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Stage     string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsViolation checks if an error is a breach of the streaming contract
func IsViolation(err error) bool {
	if err == nil {
		return false
	}

	// Check for classified error
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorViolation
	}

	// Check for known violation errors
	return errors.Is(err, ErrNilSubscriber) ||
		errors.Is(err, ErrNilSubscription) ||
		errors.Is(err, ErrDuplicateOnSubscribe) ||
		errors.Is(err, ErrSignalBeforeSubscribe) ||
		errors.Is(err, ErrSignalAfterTerminal) ||
		errors.Is(err, ErrOverlappingSignals) ||
		errors.Is(err, ErrNilError) ||
		errors.Is(err, ErrNonPositiveDemand)
}

// IsProducer checks if an error originates on the producing side of a stream
func IsProducer(err error) bool {
	if err == nil {
		return false
	}

	// Check for classified error
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorProducer
	}

	// Check for known producer errors
	return errors.Is(err, ErrAlreadySubscribed) ||
		errors.Is(err, ErrBufferOverflow) ||
		errors.Is(err, ErrSourcePanic) ||
		errors.Is(err, ErrCancelled)
}

// IsConsumer checks if an error originates in consumer-supplied code
func IsConsumer(err error) bool {
	if err == nil {
		return false
	}

	// Check for classified error
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorConsumer
	}

	// Check for known consumer errors
	return errors.Is(err, ErrHandlerPanic)
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorProducer // Default for nil
	}

	if IsViolation(err) {
		return ErrorViolation
	}
	if IsConsumer(err) {
		return ErrorConsumer
	}

	// Unknown errors surfacing in a stream travelled through onError,
	// which makes them producer failures from the receiver's point of view.
	return ErrorProducer
}

// newClassified creates a new classified error
// This is an internal helper - use WrapViolation(), WrapProducer(), or WrapConsumer() instead.
func newClassified(class ErrorClass, err error, stage, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Stage:     stage,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "stage.method: action failed: %w"
func Wrap(err error, stage, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", stage, method, action, err)
}

// WrapViolation wraps an error as a contract violation with context
func WrapViolation(err error, stage, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, stage, method, action)
	return newClassified(ErrorViolation, wrappedErr, stage, method, wrappedErr.Error())
}

// WrapProducer wraps an error as a producer failure with context
func WrapProducer(err error, stage, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, stage, method, action)
	return newClassified(ErrorProducer, wrappedErr, stage, method, wrappedErr.Error())
}

// WrapConsumer wraps an error as a consumer failure with context
func WrapConsumer(err error, stage, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, stage, method, action)
	return newClassified(ErrorConsumer, wrappedErr, stage, method, wrappedErr.Error())
}
