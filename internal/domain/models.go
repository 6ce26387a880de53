// Package domain defines the persistence models for pledges, queued
// notification jobs, and idempotent invoice responses. They are mapped with
// GORM and shared by the repository and service layers.
package domain

import (
	"time"
)

// Pledge is a payment intent whose settlement is tracked by polling.
//
// Status is one of pending, settled, expired, cancelled. SettledAt is set
// only once the pledge is settled.
type Pledge struct {
	ID               string     `json:"id"                gorm:"type:varchar(64);primaryKey"`
	Status           string     `json:"status"            gorm:"type:varchar(16);not null;default:'pending';index;check:status IN ('pending','settled','expired','cancelled')"`
	AmountSats       int64      `json:"amount_sats"       gorm:"not null;check:amount_sats > 0"`
	SettledAt        *time.Time `json:"settled_at,omitempty"`
	Invoice          string     `json:"invoice"           gorm:"type:text"`
	RecipientAddress string     `json:"recipient_address" gorm:"type:varchar(320)"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName returns the database table name for Pledge.
func (Pledge) TableName() string { return "pledges" }

// Notification job states.
const (
	JobQueued = "queued"
	JobSent   = "sent"
	JobFailed = "failed"
)

// NotificationJob is an outbox row. A delivery worker outside this service
// picks up queued rows; this service only writes them.
type NotificationJob struct {
	ID                string    `json:"id"                 gorm:"type:char(36);primaryKey"`
	SenderUsername    string    `json:"sender_username"    gorm:"type:varchar(64);not null;index:idx_job_pair,priority:1"`
	RecipientUsername string    `json:"recipient_username" gorm:"type:varchar(64);not null;index:idx_job_pair,priority:2"`
	Payload           string    `json:"payload"            gorm:"type:text;not null"`
	Status            string    `json:"status"             gorm:"type:varchar(16);not null;default:'queued';index"`
	CreatedAt         time.Time `json:"created_at"         gorm:"index"`
}

// TableName returns the database table name for NotificationJob.
func (NotificationJob) TableName() string { return "notification_jobs" }

// NotificationPayload is the body handed to the delivery worker, whether it
// travels through SQS or the outbox table.
type NotificationPayload struct {
	RecipientUsername string `json:"recipientUsername"`
	RecipientEmail    string `json:"recipientEmail"`
	RecipientName     string `json:"recipientName"`
	SenderName        string `json:"senderName"`
	SenderUsername    string `json:"senderUsername"`
	SenderEmail       string `json:"senderEmail"`
}
