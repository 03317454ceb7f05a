package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	PaymentsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "payments_started_total", Help: "Total gateway payments created"},
	)
	PaymentsPaid = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "payments_paid_total", Help: "Total payments transitioned to paid"},
	)
	PaymentsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "payments_failed_total", Help: "Total payments transitioned to failed"},
	)
	ReconcileAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "payment_reconcile_attempts_total", Help: "Total reconciliation attempts"},
	)
	WebhooksReceived = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "payment_webhooks_received_total", Help: "Total gateway webhook notifications received"},
	)
	WebhooksUnresolvable = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "payment_webhooks_unresolvable_total", Help: "Total webhook notifications that could not be mapped to a registration"},
	)
)

// Register registers all counters with the default prometheus registry.
// Call once at startup.
func Register() {
	prometheus.MustRegister(
		PaymentsStarted, PaymentsPaid, PaymentsFailed,
		ReconcileAttempts, WebhooksReceived, WebhooksUnresolvable,
	)
}
