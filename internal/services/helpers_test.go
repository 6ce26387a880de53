package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/domain"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/lnurl"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/repo"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/sats"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// ----- Fake resolver -----

type fakeResolver struct {
	mu        sync.Mutex
	calls     int
	inv       *lnurl.Invoice
	err       error
	meta      *lnurl.PayMetadata
	lookupErr error
}

func (r *fakeResolver) ResolveAndRequestInvoice(ctx context.Context, address string, amountSats int64) (*lnurl.Invoice, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	inv := *r.inv
	inv.AmountSats = amountSats
	inv.RecipientAddress = address
	return &inv, nil
}

func (r *fakeResolver) LookupAddress(ctx context.Context, address string) (*lnurl.PayMetadata, error) {
	return r.meta, r.lookupErr
}

func (r *fakeResolver) Fallback() sats.Bounds { return sats.DefaultBounds }

func (r *fakeResolver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// ----- Fake queue -----

type fakeQueue struct {
	mu       sync.Mutex
	payloads []domain.NotificationPayload
	err      error
}

func (q *fakeQueue) Enqueue(ctx context.Context, p domain.NotificationPayload) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return "", q.err
	}
	q.payloads = append(q.payloads, p)
	return fmt.Sprintf("job-%d", len(q.payloads)), nil
}

func (q *fakeQueue) sent() []domain.NotificationPayload {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.NotificationPayload(nil), q.payloads...)
}

var errQueueDown = errors.New("queue down")

// ----- Fake clock -----

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stepClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
	return nil
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}
