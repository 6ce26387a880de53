package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/domain"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/lnurl"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/pledge"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/repo"
)

func TestPledgeService_CreateAndStatus(t *testing.T) {
	db := newTestDB(t)
	invoices := &InvoiceService{Resolver: &fakeResolver{inv: &lnurl.Invoice{PaymentRequest: "lnbc1"}}}
	svc := &PledgeService{DB: db, Invoices: invoices}
	ctx := context.Background()

	p, inv, err := svc.Create(ctx, "alice@example.com", 2100)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == "" || p.Status != "pending" || p.Invoice != "lnbc1" || inv.AmountSats != 2100 {
		t.Fatalf("unexpected pledge %+v invoice %+v", p, inv)
	}

	snap, err := svc.Status(ctx, p.ID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if snap.Status != pledge.StatusPending || snap.AmountSats != 2100 || snap.SettledAt != nil {
		t.Fatalf("snapshot %+v", snap)
	}
}

func TestPledgeService_CreateResolverError(t *testing.T) {
	db := newTestDB(t)
	want := &lnurl.Error{Kind: lnurl.ErrInvalidAddress}
	svc := &PledgeService{DB: db, Invoices: &InvoiceService{Resolver: &fakeResolver{err: want}}}

	if _, _, err := svc.Create(context.Background(), "nope", 10); !errors.Is(err, lnurl.ErrInvalidAddress) {
		t.Fatalf("want ErrInvalidAddress, got %v", err)
	}
	var n int64
	db.Model(&domain.Pledge{}).Count(&n)
	if n != 0 {
		t.Fatalf("no pledge should be stored, got %d", n)
	}
}

func TestPledgeService_StatusErrors(t *testing.T) {
	svc := &PledgeService{DB: newTestDB(t)}
	ctx := context.Background()

	if _, err := svc.Status(ctx, "missing"); !errors.Is(err, ErrPledgeNotFound) {
		t.Fatalf("want ErrPledgeNotFound, got %v", err)
	}
	for _, id := range []string{"", "  ", "a/b", strings.Repeat("x", 65)} {
		if _, err := svc.Status(ctx, id); !errors.Is(err, ErrInvalidPledgeID) {
			t.Errorf("id %q: want ErrInvalidPledgeID, got %v", id, err)
		}
	}
}

func TestPledgeService_TrackLocalSettles(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	if err := repo.CreatePledge(ctx, db, &domain.Pledge{ID: "p1", AmountSats: 500}); err != nil {
		t.Fatalf("CreatePledge: %v", err)
	}

	svc := &PledgeService{DB: db, Poller: pledge.NewPoller(pledge.DefaultSchedule, newStepClock())}

	var events []pledge.Event
	reason, err := svc.Track(ctx, "p1", func(ev pledge.Event) error {
		events = append(events, ev)
		if len(events) == 3 {
			if err := repo.UpdatePledgeStatus(ctx, db, "p1", "settled", nil); err != nil {
				t.Errorf("settle: %v", err)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if reason != pledge.StopTerminal {
		t.Fatalf("reason: want terminal, got %s", reason)
	}
	// The poller may have issued one more pending fetch before the update landed.
	if len(events) < 4 || len(events) > 5 {
		t.Fatalf("want 4 or 5 events, got %d", len(events))
	}
	last := events[len(events)-1]
	if !last.Final || last.Snapshot == nil || last.Snapshot.Status != pledge.StatusSettled {
		t.Fatalf("last event %+v", last)
	}
}

func TestPledgeService_TrackUnknownPledge(t *testing.T) {
	svc := &PledgeService{DB: newTestDB(t), Poller: pledge.NewPoller(pledge.DefaultSchedule, newStepClock())}
	called := false
	_, err := svc.Track(context.Background(), "ghost", func(pledge.Event) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrPledgeNotFound) {
		t.Fatalf("want ErrPledgeNotFound, got %v", err)
	}
	if called {
		t.Fatalf("no events for unknown pledge")
	}
}

func TestPledgeService_TrackConsumerGoneStops(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_ = repo.CreatePledge(ctx, db, &domain.Pledge{ID: "p2", AmountSats: 1})

	svc := &PledgeService{DB: db, Poller: pledge.NewPoller(pledge.DefaultSchedule, newStepClock())}
	calls := 0
	reason, err := svc.Track(ctx, "p2", func(pledge.Event) error {
		calls++
		return errors.New("client gone")
	})
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if reason != pledge.StopCancelled {
		t.Fatalf("reason: want cancelled, got %s", reason)
	}
	if calls != 1 {
		t.Fatalf("onEvent must not be called after failing, got %d calls", calls)
	}
}

func TestPledgeService_RemoteMirrorsTerminalStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_ = repo.CreatePledge(ctx, db, &domain.Pledge{ID: "p3", AmountSats: 42})

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pledges/p3/status" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if hits.Add(1) < 3 {
			_, _ = w.Write([]byte(`{"status":"pending","amountSats":42}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"settled","amountSats":42,"settledAt":"2024-05-01T12:00:10Z"}`))
	}))
	defer srv.Close()

	svc := &PledgeService{
		DB:     db,
		Remote: pledge.NewStatusClient(srv.URL, srv.Client()),
		Poller: pledge.NewPoller(pledge.DefaultSchedule, newStepClock()),
	}
	reason, err := svc.Track(ctx, "p3", func(pledge.Event) error { return nil })
	if err != nil || reason != pledge.StopTerminal {
		t.Fatalf("Track: %s %v", reason, err)
	}

	p, err := repo.GetPledge(ctx, db, "p3")
	if err != nil {
		t.Fatalf("GetPledge: %v", err)
	}
	if p.Status != "settled" || p.SettledAt == nil {
		t.Fatalf("local row not mirrored: %+v", p)
	}
}
