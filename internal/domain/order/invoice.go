package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketsync/backend/internal/domain/shared"
)

// Invoice is the billing artifact registered against a local order.
// Marketplace orders are captured remotely, so invoices are created
// already paid; the figures mirror the order totals.
type Invoice struct {
	shared.StoreAggregateRoot
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,4)"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,4)"`
	ShippingAmount decimal.Decimal `gorm:"type:decimal(12,4)"`
	GrandTotal     decimal.Decimal `gorm:"type:decimal(12,4)"`
}

// TableName returns the database table name
func (Invoice) TableName() string {
	return "order_invoices"
}

// NewInvoiceForOrder prepares an invoice from the order's stored totals
func NewInvoiceForOrder(o *Order) (*Invoice, error) {
	if o == nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order cannot be nil")
	}
	if o.IsClosed() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot invoice a closed order")
	}
	return &Invoice{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(o.StoreID),
		OrderID:            o.ID,
		Subtotal:           o.Totals.Subtotal,
		TaxAmount:          o.Totals.TaxAmount,
		ShippingAmount:     o.Totals.ShippingAmount,
		GrandTotal:         o.Totals.GrandTotal,
	}, nil
}
