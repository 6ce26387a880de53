package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Payment-flow collectors. Label values are fixed enums so cardinality stays
// bounded; addresses and pledge IDs are never used as labels.
var (
	// InvoiceRequests counts resolve-and-request calls by outcome
	// (ok, invalid_address, amount_out_of_range, upstream_unavailable, ...).
	InvoiceRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lnurl_invoice_requests_total",
			Help: "LNURL-pay invoice requests by outcome.",
		},
		[]string{"outcome"},
	)

	// InvoiceDuration observes the full two-step exchange.
	InvoiceDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lnurl_invoice_duration_seconds",
			Help:    "Duration of the LNURL-pay exchange in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// Notifications counts notification requests by result (queued, duplicate, failed).
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notification requests by result.",
		},
		[]string{"result"},
	)

	// DedupEntries is the size of the notification dedup cache after the last record.
	DedupEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_dedup_entries",
			Help: "Entries currently held by the notification dedup cache.",
		},
	)

	// PollSessionsActive gauges running pledge tracking sessions.
	PollSessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pledge_poll_sessions_active",
			Help: "Pledge settlement tracking sessions currently running.",
		},
	)

	// PollSessions counts finished sessions by stop reason (terminal, timeout, cancelled).
	PollSessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pledge_poll_sessions_total",
			Help: "Finished pledge tracking sessions by stop reason.",
		},
		[]string{"reason"},
	)

	// PollFetches counts status fetches by result (ok, error).
	PollFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pledge_poll_fetches_total",
			Help: "Pledge status fetches by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		InvoiceRequests, InvoiceDuration,
		Notifications, DedupEntries,
		PollSessionsActive, PollSessions, PollFetches,
	)
}
