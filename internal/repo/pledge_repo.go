package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/domain"
)

// CreatePledge inserts a pending pledge.
func CreatePledge(ctx context.Context, db *gorm.DB, p *domain.Pledge) error {
	if p.Status == "" {
		p.Status = "pending"
	}
	return db.WithContext(ctx).Create(p).Error
}

// GetPledge fetches a pledge by ID, or ErrNotFound.
func GetPledge(ctx context.Context, db *gorm.DB, id string) (*domain.Pledge, error) {
	var p domain.Pledge
	err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePledgeStatus moves a pending pledge to status. settledAt is stored
// only for "settled". A pledge that already left pending is not modified and
// ErrNotFound is returned.
func UpdatePledgeStatus(ctx context.Context, db *gorm.DB, id, status string, settledAt *time.Time) error {
	updates := map[string]any{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if status == "settled" && settledAt != nil {
		updates["settled_at"] = settledAt.UTC()
	}
	res := db.WithContext(ctx).Model(&domain.Pledge{}).
		Where("id = ? AND status = ?", id, "pending").
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
