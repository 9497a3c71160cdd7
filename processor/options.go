package processor

import (
	"log/slog"

	"github.com/c360/rstream/metric"
	"github.com/c360/rstream/pkg/buffer"
)

// UnicastOption configures a unicast stage.
type UnicastOption func(*unicastOptions)

// unicastOptions holds the configuration for a unicast stage.
type unicastOptions struct {
	policy   buffer.OverflowPolicy
	logger   *slog.Logger
	metrics  *metric.Metrics
	registry *metric.Registry
	stage    string
}

// WithOverflow sets what happens when an element arrives while the stage's
// buffer is full. Reject fails the stream with ErrBufferOverflow; the drop
// policies trade completeness for liveness and keep the stream running.
func WithOverflow(policy buffer.OverflowPolicy) UnicastOption {
	return func(o *unicastOptions) {
		o.policy = policy
	}
}

// WithLogger attaches a logger for stage lifecycle events. Lifecycle is
// logged at debug level, contract violations at warn.
func WithLogger(logger *slog.Logger) UnicastOption {
	return func(o *unicastOptions) {
		o.logger = logger
	}
}

// WithMetrics exports the stage's stream metrics and its buffer metrics
// through the given registry under the stage label.
func WithMetrics(registry *metric.Registry, stage string) UnicastOption {
	return func(o *unicastOptions) {
		if registry != nil {
			o.registry = registry
			o.metrics = registry.CoreMetrics()
		}
		if stage != "" {
			o.stage = stage
		}
	}
}

// applyUnicastOptions resolves options against the stage defaults.
func applyUnicastOptions(opts []UnicastOption) unicastOptions {
	options := unicastOptions{
		policy: buffer.Reject,
		logger: slog.Default(),
		stage:  "unicast",
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	return options
}
