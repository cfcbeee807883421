package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks webhook reconciliation outcomes.
type Metrics struct {
	Processed          *prometheus.CounterVec
	RegistrationsAdded prometheus.Counter
	InvalidSignatures  prometheus.Counter
}

// New creates and registers webhook metrics.
func New() *Metrics {
	return &Metrics{
		Processed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aakar_webhooks_processed_total",
			Help: "Webhook deliveries by outcome (captured, failed, duplicate, capacity_rejected, error)",
		}, []string{"outcome"}),
		RegistrationsAdded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aakar_registrations_added_total",
			Help: "Registrations appended by the reconciler",
		}),
		InvalidSignatures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aakar_webhook_invalid_signatures_total",
			Help: "Webhook deliveries rejected for a bad signature",
		}),
	}
}

// IncProcessed records one webhook delivery outcome.
func (m *Metrics) IncProcessed(outcome string) {
	if m == nil {
		return
	}
	m.Processed.WithLabelValues(outcome).Inc()
}

// AddRegistrations records appended registrations.
func (m *Metrics) AddRegistrations(n int) {
	if m == nil {
		return
	}
	m.RegistrationsAdded.Add(float64(n))
}

// IncInvalidSignature records a rejected delivery.
func (m *Metrics) IncInvalidSignature() {
	if m == nil {
		return
	}
	m.InvalidSignatures.Inc()
}
