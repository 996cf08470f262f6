// Package observability holds the Prometheus collectors for the billing
// network. Collectors are registered on the default registry at init and
// exposed by the API's /metrics endpoint.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/prr-network/prr/internal/domain"
)

// ═══════════════════════════════════════════════════════════════════════════
// Communication Metrics
// ═══════════════════════════════════════════════════════════════════════════

// CommunicationsSettled counts settled communications by type.
var CommunicationsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "prr",
	Subsystem: "communications",
	Name:      "settled_total",
	Help:      "Total communications settled, by type.",
}, []string{"type"})

// CommunicationCost tracks the distribution of settled costs in cents.
var CommunicationCost = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "prr",
	Subsystem: "communications",
	Name:      "cost_cents",
	Help:      "Cost of settled communications in cents.",
	Buckets:   []float64{0, 1, 2, 4, 5, 6, 8, 12, 15},
}, []string{"type"})

// SMSUndelivered counts text messages that were not delivered.
var SMSUndelivered = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "prr",
	Subsystem: "sms",
	Name:      "undelivered_total",
	Help:      "Total SMS not delivered, by recipient mode.",
}, []string{"reason"})

// ActiveCalls tracks voice calls in progress.
var ActiveCalls = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "prr",
	Subsystem: "voice",
	Name:      "active_calls",
	Help:      "Number of voice calls currently in progress.",
})

// ─── Account Metrics ────────────────────────────────────────────────────────

// PaymentsCents sums accepted payments.
var PaymentsCents = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "prr",
	Subsystem: "payments",
	Name:      "cents_total",
	Help:      "Total cents paid into terminal accounts.",
})

// OperationsRejected counts operations refused by the domain, by
// operation and failure class.
var OperationsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "prr",
	Subsystem: "operations",
	Name:      "rejected_total",
	Help:      "Total operations rejected, by operation and error kind.",
}, []string{"op", "kind"})

// ─── Recording Helpers ──────────────────────────────────────────────────────

// ObserveSettlement records one settled communication.
func ObserveSettlement(s domain.Settlement) {
	typ := s.Type.String()
	CommunicationsSettled.WithLabelValues(typ).Inc()
	CommunicationCost.WithLabelValues(typ).Observe(float64(s.Cost))
}

// ObserveUndelivered records an SMS refused by a recipient in mode.
func ObserveUndelivered(mode domain.TerminalMode) {
	SMSUndelivered.WithLabelValues(mode.String()).Inc()
}

// ObservePayment records an accepted payment.
func ObservePayment(amount domain.Cents) {
	PaymentsCents.Add(float64(amount))
}

// ObserveRejected records a refused operation.
func ObserveRejected(op string, err error) {
	kind := domain.ErrorKind(err)
	if kind == "" {
		kind = "other"
	}
	OperationsRejected.WithLabelValues(op, kind).Inc()
}
