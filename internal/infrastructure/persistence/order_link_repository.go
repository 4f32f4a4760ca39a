package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketsync/backend/internal/domain/marketplace"
	"github.com/marketsync/backend/internal/domain/shared"
)

// GormOrderLinkRepository implements marketplace.OrderLinkRepository
// using GORM. The unique index on remote_order_id makes Create the hard
// idempotency boundary; a constraint violation is translated to
// shared.ErrAlreadyExists so callers can take the conflict-as-success
// path.
type GormOrderLinkRepository struct {
	db *gorm.DB
}

var _ marketplace.OrderLinkRepository = (*GormOrderLinkRepository)(nil)

// NewGormOrderLinkRepository creates a new GormOrderLinkRepository
func NewGormOrderLinkRepository(db *gorm.DB) *GormOrderLinkRepository {
	return &GormOrderLinkRepository{db: db}
}

// Create inserts a new link, translating a duplicate remote order id to
// shared.ErrAlreadyExists
func (r *GormOrderLinkRepository) Create(ctx context.Context, link *marketplace.OrderLink) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByRemoteOrderID looks a link up by the platform's order id
func (r *GormOrderLinkRepository) FindByRemoteOrderID(ctx context.Context, storeID uuid.UUID, remoteOrderID string) (*marketplace.OrderLink, error) {
	var link marketplace.OrderLink
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND remote_order_id = ?", storeID, remoteOrderID).
		First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

// FindByLocalOrderID looks a link up by the local order id
func (r *GormOrderLinkRepository) FindByLocalOrderID(ctx context.Context, storeID uuid.UUID, localOrderID uuid.UUID) (*marketplace.OrderLink, error) {
	var link marketplace.OrderLink
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND local_order_id = ?", storeID, localOrderID).
		First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

// Save updates an existing link
func (r *GormOrderLinkRepository) Save(ctx context.Context, link *marketplace.OrderLink) error {
	return r.db.WithContext(ctx).Save(link).Error
}

// isUniqueViolation detects a unique-constraint violation across the
// drivers in use (postgres at runtime, sqlite in tests)
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
