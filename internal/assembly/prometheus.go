package assembly

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder exports build outcomes, event counters, and the
// cumulative expression-parse count to a prometheus registry.
type PrometheusMetricsRecorder struct {
	durations *prometheus.HistogramVec
	results   *prometheus.CounterVec
	events    *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder constructs a recorder and registers its
// collectors with reg. A nil registerer uses the default registry.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	rec := &PrometheusMetricsRecorder{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assembly_operation_duration_seconds",
			Help:    "Duration of assembly service operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assembly_operation_results_total",
			Help: "Assembly service operation outcomes by status.",
		}, []string{"operation", "status"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assembly_events_total",
			Help: "Assembly service events (cache hits, misses, ...).",
		}, []string{"event"}),
	}
	parses := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "assembly_expression_parses_total",
		Help: "Cumulative operator expressions parsed.",
	}, func() float64 { return float64(ExpressionParses()) })

	for _, c := range []prometheus.Collector{rec.durations, rec.results, rec.events, parses} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// Observe records a service operation outcome.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
	r.results.WithLabelValues(operation, status).Inc()
}

// IncCounter increments a named event counter.
func (r *PrometheusMetricsRecorder) IncCounter(name string) {
	if name == "" {
		return
	}
	r.events.WithLabelValues(name).Inc()
}
