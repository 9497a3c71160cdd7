package validate

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/c360/rstream/metric"
)

// Reporter receives violation reports. Implementations must tolerate
// concurrent calls; a misbehaving peer can produce violations from several
// goroutines at once.
type Reporter interface {
	Report(Violation)
}

// ReporterFunc adapts a plain function to the Reporter interface.
type ReporterFunc func(Violation)

// Report calls f.
func (f ReporterFunc) Report(v Violation) { f(v) }

// LogReporter writes violations to a logger at warn level. A rate limiter
// keeps a misbehaving peer from flooding the log; reports shed while
// throttled are counted and surfaced on the next report that gets through.
type LogReporter struct {
	logger     *slog.Logger
	limiter    *rate.Limiter
	suppressed atomic.Int64
}

// NewLogReporter builds a reporter over the given logger, allowing a
// steady ten reports a second with burst headroom. A nil logger falls back
// to slog.Default.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(10), 50),
	}
}

// Report logs the violation, or counts it if the limiter is throttling.
func (r *LogReporter) Report(v Violation) {
	if !r.limiter.Allow() {
		r.suppressed.Add(1)
		return
	}
	attrs := []any{
		"rule", string(v.Rule),
		"signal", v.Signal,
		"stage", v.Stage,
		"subscription", v.SubscriptionID,
		"goroutine", v.Goroutine,
	}
	if v.OtherGoroutine != 0 {
		attrs = append(attrs, "other_goroutine", v.OtherGoroutine)
	}
	if v.Detail != "" {
		attrs = append(attrs, "detail", v.Detail)
	}
	if n := r.suppressed.Swap(0); n > 0 {
		attrs = append(attrs, "suppressed", n)
	}
	r.logger.Warn("stream contract violation", attrs...)
}

// Suppressed returns how many reports the limiter has shed since the last
// one that was logged.
func (r *LogReporter) Suppressed() int64 {
	return r.suppressed.Load()
}

const defaultCollectorLimit = 256

// Collector accumulates violations in memory, up to a bound. It is meant
// for tests and for the verification harness; reports past the bound are
// counted but not kept.
type Collector struct {
	mu         sync.Mutex
	violations []Violation
	limit      int
	dropped    int64
}

// NewCollector builds a collector keeping at most limit violations.
// Non-positive limits fall back to the default bound.
func NewCollector(limit int) *Collector {
	if limit <= 0 {
		limit = defaultCollectorLimit
	}
	return &Collector{limit: limit}
}

// Report stores the violation if the bound allows.
func (c *Collector) Report(v Violation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.violations) >= c.limit {
		c.dropped++
		return
	}
	c.violations = append(c.violations, v)
}

// Violations returns a copy of the collected reports in arrival order.
func (c *Collector) Violations() []Violation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Violation, len(c.violations))
	copy(out, c.violations)
	return out
}

// Count returns how many reports are held.
func (c *Collector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.violations)
}

// Dropped returns how many reports arrived past the bound.
func (c *Collector) Dropped() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Has reports whether any collected violation matches the rule.
func (c *Collector) Has(rule Rule) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.violations {
		if v.Rule == rule {
			return true
		}
	}
	return false
}

// Clear discards everything collected so far.
func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.violations = nil
	c.dropped = 0
}

// MetricsReporter counts violations in the stream metrics, labeled by
// stage and rule.
type MetricsReporter struct {
	metrics *metric.Metrics
}

// NewMetricsReporter builds a reporter over the registry's core metrics.
func NewMetricsReporter(registry *metric.Registry) *MetricsReporter {
	return &MetricsReporter{metrics: registry.CoreMetrics()}
}

// Report increments the violation counter for the rule.
func (r *MetricsReporter) Report(v Violation) {
	r.metrics.RecordViolation(v.Stage, string(v.Rule))
}

// MultiReporter fans each report out to several reporters.
func MultiReporter(reporters ...Reporter) Reporter {
	return ReporterFunc(func(v Violation) {
		for _, r := range reporters {
			if r != nil {
				r.Report(v)
			}
		}
	})
}
