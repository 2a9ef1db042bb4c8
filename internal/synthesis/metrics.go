package synthesis

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records synthesis call outcomes.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the synthesis collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stratum",
			Subsystem: "synthesis",
			Name:      "requests_total",
			Help:      "Synthesis calls by operation, provider and outcome.",
		}, []string{"op", "provider", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stratum",
			Subsystem: "synthesis",
			Name:      "duration_seconds",
			Help:      "Synthesis call latency.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"op", "provider"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *Metrics) observe(op, provider, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op, provider, outcome).Inc()
	m.duration.WithLabelValues(op, provider).Observe(elapsed.Seconds())
}
