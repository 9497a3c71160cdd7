package verify

import "log/slog"

// Option configures a verifier.
type Option func(*options)

// options holds the verifier configuration.
type options struct {
	logger *slog.Logger
}

// WithLogger attaches a logger; passed scenarios are logged at debug
// level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// applyOptions resolves options against the defaults.
func applyOptions(opts []Option) options {
	options := options{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	return options
}
