package metric

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/c360/rstream/errors"
)

// Registrar defines the interface for registering stage-specific metrics
type Registrar interface {
	RegisterCounter(stage, metricName string, counter prometheus.Counter) error
	RegisterGauge(stage, metricName string, gauge prometheus.Gauge) error
	RegisterHistogram(stage, metricName string, histogram prometheus.Histogram) error
	RegisterCounterVec(stage, metricName string, counterVec *prometheus.CounterVec) error
	RegisterGaugeVec(stage, metricName string, gaugeVec *prometheus.GaugeVec) error
	RegisterHistogramVec(stage, metricName string, histogramVec *prometheus.HistogramVec) error
	Unregister(stage, metricName string) bool
}

// Registry manages the registration and lifecycle of metrics
type Registry struct {
	prometheusRegistry *prometheus.Registry
	Metrics            *Metrics
	registeredMetrics  map[string]prometheus.Collector
	mu                 sync.RWMutex
}

// NewRegistry creates a new metrics registry with core stream metrics
func NewRegistry() *Registry {
	prometheusRegistry := prometheus.NewRegistry()

	registry := &Registry{
		prometheusRegistry: prometheusRegistry,
		registeredMetrics:  make(map[string]prometheus.Collector),
	}

	// Initialize and register core metrics
	registry.Metrics = NewMetrics()
	registry.registerMetrics()

	// Add Go runtime metrics
	registry.prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return registry
}

// PrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// CoreMetrics returns the core stream metrics
func (r *Registry) CoreMetrics() *Metrics {
	return r.Metrics
}

// register is the shared path behind the typed Register* methods. Metric
// registration errors carry no stream classification; they get context only.
func (r *Registry) register(stage, metricName, method string, collector prometheus.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", stage, metricName)

	if _, exists := r.registeredMetrics[key]; exists {
		return errors.Wrap(
			fmt.Errorf("metric %s already registered for stage %s", metricName, stage),
			"Registry", method, "duplicate metric registration")
	}

	if err := r.prometheusRegistry.Register(collector); err != nil {
		// Distinguish a duplicate registration inside Prometheus itself
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if stderrors.As(err, &alreadyRegErr) {
			return errors.Wrap(err, "Registry", method,
				fmt.Sprintf("prometheus conflict for metric %s", metricName))
		}
		return errors.Wrap(err, "Registry", method, "register collector with prometheus")
	}

	r.registeredMetrics[key] = collector
	return nil
}

// RegisterCounter registers a counter metric for a stage
func (r *Registry) RegisterCounter(stage, metricName string, counter prometheus.Counter) error {
	return r.register(stage, metricName, "RegisterCounter", counter)
}

// RegisterGauge registers a gauge metric for a stage
func (r *Registry) RegisterGauge(stage, metricName string, gauge prometheus.Gauge) error {
	return r.register(stage, metricName, "RegisterGauge", gauge)
}

// RegisterHistogram registers a histogram metric for a stage
func (r *Registry) RegisterHistogram(stage, metricName string, histogram prometheus.Histogram) error {
	return r.register(stage, metricName, "RegisterHistogram", histogram)
}

// RegisterCounterVec registers a counter vector metric for a stage
func (r *Registry) RegisterCounterVec(stage, metricName string, counterVec *prometheus.CounterVec) error {
	return r.register(stage, metricName, "RegisterCounterVec", counterVec)
}

// RegisterGaugeVec registers a gauge vector metric for a stage
func (r *Registry) RegisterGaugeVec(stage, metricName string, gaugeVec *prometheus.GaugeVec) error {
	return r.register(stage, metricName, "RegisterGaugeVec", gaugeVec)
}

// RegisterHistogramVec registers a histogram vector metric for a stage
func (r *Registry) RegisterHistogramVec(stage, metricName string, histogramVec *prometheus.HistogramVec) error {
	return r.register(stage, metricName, "RegisterHistogramVec", histogramVec)
}

// Unregister removes a metric from the registry
func (r *Registry) Unregister(stage, metricName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", stage, metricName)

	collector, exists := r.registeredMetrics[key]
	if !exists {
		return false
	}

	success := r.prometheusRegistry.Unregister(collector)
	if success {
		delete(r.registeredMetrics, key)
	}

	return success
}

// registerMetrics registers all core stream metrics
func (r *Registry) registerMetrics() {
	r.prometheusRegistry.MustRegister(
		r.Metrics.SubscriptionsTotal,
		r.Metrics.StreamsActive,
		r.Metrics.ItemsEmitted,
		r.Metrics.RequestsTotal,
		r.Metrics.TerminationsTotal,
		r.Metrics.ViolationsTotal,
		r.Metrics.DrainDuration,
	)
}
