package emotion

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the gateway's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	analyses       *prometheus.CounterVec
	fallbacks      *prometheus.CounterVec
	remoteDuration prometheus.Histogram
}

// NewMetrics registers collectors with reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		analyses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentio_emotion_analyses_total",
				Help: "Total number of emotion analyses by resolution path",
			},
			[]string{"path"},
		),
		fallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentio_emotion_fallbacks_total",
				Help: "Total number of analyses served by the local classifier, by cause",
			},
			[]string{"reason"},
		),
		remoteDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sentio_emotion_remote_duration_seconds",
				Help:    "Latency of remote emotion inference calls",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
			},
		),
	}
}

func (m *Metrics) recordPath(path string) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(path).Inc()
}

func (m *Metrics) recordFallback(reason string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(reason).Inc()
}

func (m *Metrics) observeRemote(seconds float64) {
	if m == nil {
		return
	}
	m.remoteDuration.Observe(seconds)
}
