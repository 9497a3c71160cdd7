package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all stream-level metrics (not application-specific)
type Metrics struct {
	// Subscription lifecycle
	SubscriptionsTotal *prometheus.CounterVec
	StreamsActive      *prometheus.GaugeVec
	TerminationsTotal  *prometheus.CounterVec

	// Signal flow
	ItemsEmitted  *prometheus.CounterVec
	RequestsTotal *prometheus.CounterVec
	DrainDuration *prometheus.HistogramVec

	// Contract violations
	ViolationsTotal *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all stream metrics
func NewMetrics() *Metrics {
	return &Metrics{
		SubscriptionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rstream",
				Subsystem: "streams",
				Name:      "subscriptions_total",
				Help:      "Total number of subscriptions accepted",
			},
			[]string{"stage"},
		),

		StreamsActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "rstream",
				Subsystem: "streams",
				Name:      "active",
				Help:      "Number of streams currently between onSubscribe and a terminal event",
			},
			[]string{"stage"},
		),

		TerminationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rstream",
				Subsystem: "streams",
				Name:      "terminations_total",
				Help:      "Total number of stream terminations (outcome=complete|error|cancel)",
			},
			[]string{"stage", "outcome"},
		),

		ItemsEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rstream",
				Subsystem: "signals",
				Name:      "items_emitted_total",
				Help:      "Total number of onNext signals delivered",
			},
			[]string{"stage"},
		),

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rstream",
				Subsystem: "demand",
				Name:      "requests_total",
				Help:      "Total number of Request calls received",
			},
			[]string{"stage"},
		),

		DrainDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "rstream",
				Subsystem: "signals",
				Name:      "drain_duration_seconds",
				Help:      "Time spent inside a single drain pass delivering signals",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),

		ViolationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rstream",
				Subsystem: "violations",
				Name:      "total",
				Help:      "Total number of contract violations observed",
			},
			[]string{"stage", "rule"},
		),
	}
}

// RecordSubscription increments the subscription counter and marks the stream active
func (c *Metrics) RecordSubscription(stage string) {
	c.SubscriptionsTotal.WithLabelValues(stage).Inc()
	c.StreamsActive.WithLabelValues(stage).Inc()
}

// RecordTermination increments the termination counter and marks the stream inactive
func (c *Metrics) RecordTermination(stage, outcome string) {
	c.TerminationsTotal.WithLabelValues(stage, outcome).Inc()
	c.StreamsActive.WithLabelValues(stage).Dec()
}

// RecordItemsEmitted adds delivered onNext signals to the item counter
func (c *Metrics) RecordItemsEmitted(stage string, n int64) {
	if n <= 0 {
		return
	}
	c.ItemsEmitted.WithLabelValues(stage).Add(float64(n))
}

// RecordRequest increments the demand request counter
func (c *Metrics) RecordRequest(stage string) {
	c.RequestsTotal.WithLabelValues(stage).Inc()
}

// RecordDrainDuration records the duration of one drain pass
func (c *Metrics) RecordDrainDuration(stage string, duration time.Duration) {
	c.DrainDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordViolation increments the violation counter for a rule
func (c *Metrics) RecordViolation(stage, rule string) {
	c.ViolationsTotal.WithLabelValues(stage, rule).Inc()
}
