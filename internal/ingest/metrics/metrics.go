package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingest outcomes.
const (
	OutcomeAccepted    = "accepted"
	OutcomeDuplicate   = "duplicate"
	OutcomeRejected    = "rejected"
	OutcomeUnavailable = "unavailable"
)

// Worker outcomes.
const (
	WorkerProcessed = "processed"
	WorkerSkipped   = "skipped"
)

// Metrics provides observability for the ingestion gateway and event worker.
type Metrics struct {
	IngestOutcomes *prometheus.CounterVec
	WorkerRecords  *prometheus.CounterVec
}

// New registers the ingest metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		IngestOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "salesintel_ingest_events_total",
			Help: "Events received by the ingestion gateway by outcome",
		}, []string{"outcome"}),

		WorkerRecords: f.NewCounterVec(prometheus.CounterOpts{
			Name: "salesintel_worker_records_total",
			Help: "Records consumed by the event worker by outcome",
		}, []string{"outcome"}),
	}
}

// IncrementOutcome records one ingest outcome.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.IngestOutcomes.WithLabelValues(outcome).Inc()
	}
}

// IncrementWorker records one consumed record.
func (m *Metrics) IncrementWorker(outcome string) {
	if m != nil {
		m.WorkerRecords.WithLabelValues(outcome).Inc()
	}
}
