// Package metrics holds the Prometheus collectors for the money path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var WebhookNotifications = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "benerin",
	Name:      "webhook_notifications_total",
	Help:      "Payment gateway notifications by processing outcome.",
}, []string{"outcome"})

var PayoutRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "benerin",
	Name:      "payout_requests_total",
	Help:      "Technician payout requests by result.",
}, []string{"result"})

var PayoutsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "benerin",
	Name:      "payouts_processed_total",
	Help:      "Admin payout decisions.",
}, []string{"decision"})

var LedgerEntries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "benerin",
	Name:      "ledger_entries_total",
	Help:      "Ledger entries posted by type.",
}, []string{"type"})

var PaymentsExpired = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "benerin",
	Name:      "payments_expired_total",
	Help:      "Pending payments cancelled by the expiry job.",
})
