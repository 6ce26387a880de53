package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique in-memory database per test to avoid schema leakage across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestOpen_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evento.db")
	db, err := Open("sqlite", path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	var mode string
	if err := db.Raw("PRAGMA journal_mode;").Row().Scan(&mode); err != nil || mode != "wal" {
		t.Fatalf("journal_mode = %q err=%v", mode, err)
	}
}

func TestOpen_Errors(t *testing.T) {
	if _, err := Open("sqlite", filepath.Join(t.TempDir(), "missing", "x.db")); err == nil {
		t.Fatalf("expected error for missing parent directory")
	}
	if _, err := Open("mongo", "x"); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestIdempotency_CreateGetDuplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := GetIdempotency(ctx, db, "u1", "invoice", "  ", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("blank key should be not found, got %v", err)
	}

	rec, err := CreateIdempotency(ctx, db, "u1", "invoice", "k1", "", `{"invoice":"lnbc1"}`, 200, time.Hour)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := GetIdempotency(ctx, db, "u1", "invoice", "k1", time.Now().UTC())
	if err != nil || got.ID != rec.ID || got.Response != `{"invoice":"lnbc1"}` || got.Status != 200 {
		t.Fatalf("get = %+v, %v", got, err)
	}

	if _, err := CreateIdempotency(ctx, db, "u1", "invoice", "k1", "", "{}", 200, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if _, err := GetIdempotency(ctx, db, "u2", "invoice", "k1", time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other user must not see the record, got %v", err)
	}
	if _, err := GetIdempotency(ctx, db, "u1", "invoice", "k1", time.Now().Add(2*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired record should be not found, got %v", err)
	}
}

func TestPurgeExpiredIdempotency(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	if _, err := CreateIdempotency(ctx, db, "u", "invoice", "old", "", "{}", 200, time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateIdempotency(ctx, db, "u", "invoice", "new", "", "{}", 200, 48*time.Hour); err != nil {
		t.Fatal(err)
	}
	n, err := PurgeExpiredIdempotency(ctx, db, time.Now().Add(time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("purged %d, err=%v; want 1", n, err)
	}
	// the key is reusable once purged
	if _, err := CreateIdempotency(ctx, db, "u", "invoice", "old", "", "{}", 200, time.Minute); err != nil {
		t.Fatalf("recreate after purge: %v", err)
	}
}

func TestPledge_CreateGetUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := CreatePledge(ctx, db, &domain.Pledge{ID: "pl_1", AmountSats: 2100, Invoice: "lnbc21u1", RecipientAddress: "alice@wallet.example"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	p, err := GetPledge(ctx, db, "pl_1")
	if err != nil || p.Status != "pending" || p.SettledAt != nil {
		t.Fatalf("get = %+v, %v", p, err)
	}

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := UpdatePledgeStatus(ctx, db, "pl_1", "settled", &at); err != nil {
		t.Fatalf("update: %v", err)
	}
	p, _ = GetPledge(ctx, db, "pl_1")
	if p.Status != "settled" || p.SettledAt == nil || !p.SettledAt.Equal(at) {
		t.Fatalf("after settle = %+v", p)
	}

	// terminal pledges are not modified again
	if err := UpdatePledgeStatus(ctx, db, "pl_1", "expired", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for terminal pledge, got %v", err)
	}
	if _, err := GetPledge(ctx, db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNotificationOutbox(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	payload := domain.NotificationPayload{
		RecipientUsername: "bob", RecipientEmail: "bob@example.com", RecipientName: "Bob",
		SenderName: "Alice", SenderUsername: "alice", SenderEmail: "alice@example.com",
	}
	job, err := EnqueueNotification(ctx, db, payload)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	var decoded domain.NotificationPayload
	if err := json.Unmarshal([]byte(job.Payload), &decoded); err != nil || decoded != payload {
		t.Fatalf("payload round trip: %+v %v", decoded, err)
	}

	queued, err := ListQueuedNotifications(ctx, db, 0)
	if err != nil || len(queued) != 1 || queued[0].SenderUsername != "alice" || queued[0].RecipientUsername != "bob" {
		t.Fatalf("queued = %+v, %v", queued, err)
	}

	// only non-queued rows are purged
	if n, err := PurgeNotificationJobs(ctx, db, time.Now().Add(time.Hour)); err != nil || n != 0 {
		t.Fatalf("purged queued job: n=%d err=%v", n, err)
	}
	db.Model(&domain.NotificationJob{}).Where("id = ?", job.ID).Update("status", domain.JobSent)
	if n, err := PurgeNotificationJobs(ctx, db, time.Now().Add(time.Hour)); err != nil || n != 1 {
		t.Fatalf("purge sent job: n=%d err=%v", n, err)
	}
}
