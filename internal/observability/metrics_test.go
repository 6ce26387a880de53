package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetricsRegistered(t *testing.T) {
	InvoiceRequests.WithLabelValues("ok").Inc()
	Notifications.WithLabelValues("duplicate").Inc()
	PollSessions.WithLabelValues("terminal").Inc()
	PollFetches.WithLabelValues("ok").Inc()

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	want := map[string]bool{
		"lnurl_invoice_requests_total": false,
		"notifications_total":          false,
		"pledge_poll_sessions_total":   false,
		"pledge_poll_fetches_total":    false,
		"notification_dedup_entries":   false,
		"pledge_poll_sessions_active":  false,
	}
	for _, mf := range mfs {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("metric %s not registered", name)
		}
	}
}
