package publisher

import (
	"log/slog"

	"github.com/c360/rstream/metric"
)

// Option configures a source.
type Option func(*sourceOptions)

// sourceOptions holds the configuration shared by all source kinds.
type sourceOptions struct {
	logger  *slog.Logger
	metrics *metric.Metrics
	stage   string
}

// WithLogger attaches a logger for subscription lifecycle events. Lifecycle
// is logged at debug level, contract violations at warn.
func WithLogger(logger *slog.Logger) Option {
	return func(o *sourceOptions) {
		o.logger = logger
	}
}

// WithMetrics exports the source's core stream metrics through the given
// registry under the stage label. The always-on Statistics keep counting
// either way.
func WithMetrics(registry *metric.Registry, stage string) Option {
	return func(o *sourceOptions) {
		if registry != nil {
			o.metrics = registry.CoreMetrics()
		}
		if stage != "" {
			o.stage = stage
		}
	}
}

// applyOptions resolves options against the defaults for a source kind.
func applyOptions(kind string, opts []Option) sourceOptions {
	options := sourceOptions{
		logger: slog.Default(),
		stage:  kind,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	return options
}
