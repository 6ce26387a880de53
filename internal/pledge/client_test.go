package pledge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStatusClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pledges/pl_1/status":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"settled","amountSats":2100,"settledAt":"2024-05-01T12:03:40Z"}`))
		case "/pledges/pl_down/status":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewStatusClient(srv.URL+"/", nil)
	snap, err := c.Fetch(context.Background(), "pl_1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	want := time.Date(2024, 5, 1, 12, 3, 40, 0, time.UTC)
	if snap.Status != StatusSettled || snap.AmountSats != 2100 || snap.SettledAt == nil || !snap.SettledAt.Equal(want) {
		t.Fatalf("snapshot = %+v", snap)
	}

	if _, err := c.Fetch(context.Background(), "pl_down"); err == nil {
		t.Fatalf("expected error for 503")
	}
}

func TestStatusClient_DrivesPoller(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		status := "pending"
		if calls >= 3 {
			status = "settled"
		}
		_, _ = w.Write([]byte(`{"status":"` + status + `","amountSats":10}`))
	}))
	defer srv.Close()

	s := NewPoller(DefaultSchedule, newStepClock()).Track(context.Background(), "pl_9", NewStatusClient(srv.URL, nil).FetchFunc())
	events := drain(t, s)
	if len(events) != 3 || s.Reason() != StopTerminal {
		t.Fatalf("events=%d reason=%q", len(events), s.Reason())
	}
}
