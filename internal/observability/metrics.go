package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the monitoring
// service.
type Metrics struct {
	FetchAttempts    *prometheus.CounterVec // labels: provider, outcome={success,error}
	AnalysesTotal    *prometheus.CounterVec // labels: mode, outcome={success,error}
	AnalysisDuration prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.FetchAttempts, m.AnalysesTotal, m.AnalysisDuration)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sierravision",
			Name:      "fetch_attempts_total",
			Help:      "Imagery fetch attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sierravision",
			Name:      "analyses_total",
			Help:      "Change analyses run by mode and outcome.",
		}, []string{"mode", "outcome"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sierravision",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a complete fetch-detect-render cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}
}
