package queue

import (
	"context"

	"gorm.io/gorm"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/domain"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/repo"
)

// Outbox writes jobs to the notification_jobs table.
type Outbox struct {
	db *gorm.DB
}

// NewOutbox returns an Outbox over db.
func NewOutbox(db *gorm.DB) *Outbox { return &Outbox{db: db} }

// Enqueue inserts a queued row and returns its ID.
func (o *Outbox) Enqueue(ctx context.Context, payload domain.NotificationPayload) (string, error) {
	job, err := repo.EnqueueNotification(ctx, o.db, payload)
	if err != nil {
		return "", err
	}
	return job.ID, nil
}
