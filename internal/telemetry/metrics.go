package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	Questions        *prometheus.CounterVec
	RetrievalErrors  prometheus.Counter
	GenerationErrors prometheus.Counter
	RetrievalLatency prometheus.Histogram
}

// Question outcomes recorded on the Questions counter.
const (
	OutcomeAnswered  = "answered"
	OutcomeNoResults = "no_results"
	OutcomeError     = "error"
)

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Questions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_total",
			Help:      "Questions processed by outcome.",
		}, []string{"outcome"}),
		RetrievalErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_errors_total",
			Help:      "Vector store query failures degraded to empty result sets.",
		}),
		GenerationErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_errors_total",
			Help:      "Chat-completion failures surfaced as answer text.",
		}),
		RetrievalLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_latency_seconds",
			Help:      "Latency of nearest-neighbor searches against the dialogue store.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

func (m *Metrics) ObserveRetrieval(d time.Duration) {
	if m == nil {
		return
	}
	m.RetrievalLatency.Observe(d.Seconds())
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
