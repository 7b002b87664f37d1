package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the intelligence module.
type Metrics struct {
	// Advisories emitted by rule name (budget_risk, security_packet, fallback)
	AdvisoriesEmitted *prometheus.CounterVec

	// Envelopes rejected at the validation boundary
	EnvelopesRejected prometheus.Counter

	// Time spent deriving advisories for one envelope
	ProcessLatency prometheus.Histogram
}

// New registers the intelligence metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AdvisoriesEmitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "salesintel_advisories_emitted_total",
			Help: "Total advisories emitted by rule",
		}, []string{"rule"}),

		EnvelopesRejected: f.NewCounter(prometheus.CounterOpts{
			Name: "salesintel_envelopes_rejected_total",
			Help: "Total event envelopes rejected by validation",
		}),

		ProcessLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "salesintel_process_duration_seconds",
			Help:    "Duration of advisory derivation for a single envelope",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
		}),
	}
}

// IncrementAdvisory records one emitted advisory.
func (m *Metrics) IncrementAdvisory(rule string) {
	if m != nil {
		m.AdvisoriesEmitted.WithLabelValues(rule).Inc()
	}
}

// IncrementRejected records one rejected envelope.
func (m *Metrics) IncrementRejected() {
	if m != nil {
		m.EnvelopesRejected.Inc()
	}
}

// ObserveProcessLatency records the derivation duration.
func (m *Metrics) ObserveProcessLatency(d time.Duration) {
	if m != nil {
		m.ProcessLatency.Observe(d.Seconds())
	}
}
