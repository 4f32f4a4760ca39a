package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketsync/backend/internal/domain/shared"
)

// Item represents a line item on a local order. Monetary figures are
// mirrored from the platform payload verbatim and never recomputed.
type Item struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID uuid.UUID `gorm:"type:uuid;not null;index"`
	// ProductID is the local catalog product this line resolved to
	ProductID uuid.UUID `gorm:"type:uuid;not null"`
	// SKU is the retailer identifier the platform reported for the line
	SKU  string `gorm:"type:varchar(64);not null;index"`
	Name string `gorm:"type:varchar(255)"`
	// QtyOrdered is the ordered quantity
	QtyOrdered int `gorm:"not null"`
	// QtyCanceled is the quantity canceled through reconciliation
	QtyCanceled int
	// QtyRefunded is the quantity refunded through reconciliation
	QtyRefunded int
	// UnitPrice is the price before discount
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,4)"`
	// RowTotal is quantity times the effective per-unit price
	RowTotal decimal.Decimal `gorm:"type:decimal(12,4)"`
	// TaxAmount is the platform-calculated tax for the line
	TaxAmount decimal.Decimal `gorm:"type:decimal(12,4)"`
	// TaxPercent is derived from TaxAmount and RowTotal at mapping time
	TaxPercent decimal.Decimal `gorm:"type:decimal(8,4)"`
	// HiddenTaxAmount is tax included in the displayed price
	HiddenTaxAmount decimal.Decimal `gorm:"type:decimal(12,4)"`
	// DiscountAmount is the item-level discount, stored positive
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,4)"`
	// TaxCanceled accumulates tax prorated over canceled quantities
	TaxCanceled decimal.Decimal `gorm:"type:decimal(12,4)"`
	// HiddenTaxCanceled accumulates hidden tax prorated over canceled quantities
	HiddenTaxCanceled decimal.Decimal `gorm:"type:decimal(12,4)"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName returns the database table name
func (Item) TableName() string {
	return "order_items"
}

// NewItem creates a new order line item
func NewItem(orderID, productID uuid.UUID, sku, name string, qty int, unitPrice, rowTotal, taxAmount, taxPercent, discount decimal.Decimal) (*Item, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if qty <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	now := time.Now()
	return &Item{
		ID:             uuid.New(),
		OrderID:        orderID,
		ProductID:      productID,
		SKU:            sku,
		Name:           name,
		QtyOrdered:     qty,
		UnitPrice:      unitPrice,
		RowTotal:       rowTotal,
		TaxAmount:      taxAmount,
		TaxPercent:     taxPercent,
		DiscountAmount: discount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Cancel sets the canceled quantity and prorates canceled tax over the
// ordered quantity. Quantities above the ordered amount are capped.
func (i *Item) Cancel(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Cancel quantity must be positive")
	}
	if qty > i.QtyOrdered {
		qty = i.QtyOrdered
	}

	i.QtyCanceled = qty
	if i.QtyOrdered > 0 {
		ratio := decimal.NewFromInt(int64(qty)).Div(decimal.NewFromInt(int64(i.QtyOrdered)))
		i.TaxCanceled = i.TaxCanceled.Add(i.TaxAmount.Mul(ratio))
		i.HiddenTaxCanceled = i.HiddenTaxCanceled.Add(i.HiddenTaxAmount.Mul(ratio))
	}
	i.UpdatedAt = time.Now()

	return nil
}

// MarkRefunded marks the full ordered quantity as refunded
func (i *Item) MarkRefunded() {
	i.QtyRefunded = i.QtyOrdered
	i.UpdatedAt = time.Now()
}

// IsCanceled returns true if any quantity on the line was canceled
func (i *Item) IsCanceled() bool {
	return i.QtyCanceled > 0
}
