package domain

import "time"

// Idempotency records the response of a completed request keyed by
// (user_id, scope, key), so a retried POST replays the original body instead
// of requesting a second invoice.
type Idempotency struct {
	ID     string `gorm:"type:char(36);primaryKey"`
	UserID string `gorm:"type:varchar(64);not null;uniqueIndex:ux_idem_user_scope_key,priority:1"`
	Scope  string `gorm:"type:varchar(64);not null;uniqueIndex:ux_idem_user_scope_key,priority:2"`
	Key    string `gorm:"type:varchar(128);not null;uniqueIndex:ux_idem_user_scope_key,priority:3"`
	// Fingerprint identifies the request body the key was first used with.
	Fingerprint string    `gorm:"type:char(64);not null;default:''"`
	Response    string    `gorm:"type:text;not null"`
	Status      int       `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt   time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }

// Expired reports whether the record is no longer replayable at now.
func (i Idempotency) Expired(now time.Time) bool { return !now.Before(i.ExpiresAt) }
