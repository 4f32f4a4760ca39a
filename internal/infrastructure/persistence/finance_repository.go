package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketsync/backend/internal/domain/order"
	"github.com/marketsync/backend/internal/domain/shared"
)

// GormInvoiceRepository implements order.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

var _ order.InvoiceRepository = (*GormInvoiceRepository)(nil)

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Save inserts a new invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *order.Invoice) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

// FindByOrderID returns the invoice for an order
func (r *GormInvoiceRepository) FindByOrderID(ctx context.Context, storeID, orderID uuid.UUID) (*order.Invoice, error) {
	var inv order.Invoice
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND order_id = ?", storeID, orderID).
		First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// GormCreditMemoRepository implements order.CreditMemoRepository using GORM
type GormCreditMemoRepository struct {
	db *gorm.DB
}

var _ order.CreditMemoRepository = (*GormCreditMemoRepository)(nil)

// NewGormCreditMemoRepository creates a new GormCreditMemoRepository
func NewGormCreditMemoRepository(db *gorm.DB) *GormCreditMemoRepository {
	return &GormCreditMemoRepository{db: db}
}

// Save inserts a new credit memo
func (r *GormCreditMemoRepository) Save(ctx context.Context, memo *order.CreditMemo) error {
	return r.db.WithContext(ctx).Save(memo).Error
}

// ExistsForOrder reports whether the order already has a credit memo
func (r *GormCreditMemoRepository) ExistsForOrder(ctx context.Context, storeID, orderID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&order.CreditMemo{}).
		Where("store_id = ? AND order_id = ?", storeID, orderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
