package subscriber

import (
	"log/slog"

	"github.com/c360/rstream/metric"
)

const defaultQueueSize = 16

// AsyncOption configures an async consumer.
type AsyncOption func(*asyncOptions)

// asyncOptions holds the configuration for an async consumer.
type asyncOptions struct {
	queueSize  int
	logger     *slog.Logger
	registry   *metric.Registry
	stage      string
	onError    func(error)
	onComplete func()
}

// WithQueueSize bounds the signal queue between the producer and the
// delivery goroutine. With the one-element-in-flight pacing the queue stays
// nearly empty; headroom only matters for producers that ignore demand.
// Values below one fall back to the default.
func WithQueueSize(n int) AsyncOption {
	return func(o *asyncOptions) {
		if n > 0 {
			o.queueSize = n
		}
	}
}

// WithLogger attaches a logger for consumer lifecycle events.
func WithLogger(logger *slog.Logger) AsyncOption {
	return func(o *asyncOptions) {
		o.logger = logger
	}
}

// WithMetrics exports the consumer's delivery queue metrics through the
// given registry under the stage prefix.
func WithMetrics(registry *metric.Registry, stage string) AsyncOption {
	return func(o *asyncOptions) {
		if registry != nil {
			o.registry = registry
		}
		if stage != "" {
			o.stage = stage
		}
	}
}

// WithOnError installs the terminal error callback. It runs on the delivery
// goroutine, at most once. The default logs the error.
func WithOnError(fn func(error)) AsyncOption {
	return func(o *asyncOptions) {
		o.onError = fn
	}
}

// WithOnComplete installs the completion callback. It runs on the delivery
// goroutine, at most once.
func WithOnComplete(fn func()) AsyncOption {
	return func(o *asyncOptions) {
		o.onComplete = fn
	}
}

// applyAsyncOptions resolves options against the consumer defaults.
func applyAsyncOptions(opts []AsyncOption) asyncOptions {
	options := asyncOptions{
		queueSize: defaultQueueSize,
		logger:    slog.Default(),
		stage:     "async",
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	if options.onError == nil {
		logger := options.logger
		options.onError = func(err error) {
			logger.Error("unhandled stream error", "error", err)
		}
	}
	if options.onComplete == nil {
		options.onComplete = func() {}
	}
	return options
}
