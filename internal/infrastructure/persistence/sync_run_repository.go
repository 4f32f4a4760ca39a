package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketsync/backend/internal/domain/marketplace"
)

// GormSyncRunRepository implements marketplace.SyncRunRepository using GORM
type GormSyncRunRepository struct {
	db *gorm.DB
}

var _ marketplace.SyncRunRepository = (*GormSyncRunRepository)(nil)

// NewGormSyncRunRepository creates a new GormSyncRunRepository
func NewGormSyncRunRepository(db *gorm.DB) *GormSyncRunRepository {
	return &GormSyncRunRepository{db: db}
}

// Save inserts or updates a run record
func (r *GormSyncRunRepository) Save(ctx context.Context, run *marketplace.SyncRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

// ListRecent returns the most recent runs for a store, newest first
func (r *GormSyncRunRepository) ListRecent(ctx context.Context, storeID uuid.UUID, limit int) ([]marketplace.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []marketplace.SyncRun
	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
