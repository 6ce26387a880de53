package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/domain"
)

// EnqueueNotification writes a queued outbox row for payload.
func EnqueueNotification(ctx context.Context, db *gorm.DB, payload domain.NotificationPayload) (*domain.NotificationJob, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	job := &domain.NotificationJob{
		ID:                uuid.NewString(),
		SenderUsername:    payload.SenderUsername,
		RecipientUsername: payload.RecipientUsername,
		Payload:           string(body),
		Status:            domain.JobQueued,
		CreatedAt:         time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

// ListQueuedNotifications returns up to limit queued jobs, oldest first.
func ListQueuedNotifications(ctx context.Context, db *gorm.DB, limit int) ([]domain.NotificationJob, error) {
	if limit <= 0 {
		limit = 100
	}
	var jobs []domain.NotificationJob
	err := db.WithContext(ctx).
		Where("status = ?", domain.JobQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

// PurgeNotificationJobs deletes delivered or failed jobs created before cutoff.
// Queued jobs are never purged.
func PurgeNotificationJobs(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("status <> ? AND created_at < ?", domain.JobQueued, cutoff).
		Delete(&domain.NotificationJob{})
	return res.RowsAffected, res.Error
}
