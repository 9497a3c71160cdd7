package validate

import "log/slog"

// Option configures a validating wrapper.
type Option func(*options)

// options holds the configuration shared by the wrappers.
type options struct {
	reporter Reporter
	stage    string
}

// WithReporter injects the sink for violation reports. Without it,
// violations go to a rate-limited log reporter on the default logger.
func WithReporter(r Reporter) Option {
	return func(o *options) {
		if r != nil {
			o.reporter = r
		}
	}
}

// WithStage labels the wrapper's reports, so violations from different
// pipeline positions can be told apart.
func WithStage(stage string) Option {
	return func(o *options) {
		if stage != "" {
			o.stage = stage
		}
	}
}

// applyOptions resolves options against the wrapper defaults.
func applyOptions(opts []Option) options {
	options := options{
		stage: "validate",
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.reporter == nil {
		options.reporter = NewLogReporter(slog.Default())
	}
	return options
}
