package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketsync/backend/internal/domain/shared"
)

// RefundAuditComment is the fixed note attached to reconciliation memos
const RefundAuditComment = "Refunded through the marketplace platform."

// CreditMemo is the accounting artifact representing a refund issued
// against an invoice. Tax is stored positive even though the platform
// reports refunded tax as a negative figure. AdjustmentNegative carries
// the inferred marketplace fee deduction so the memo balances against
// the invoice.
type CreditMemo struct {
	shared.StoreAggregateRoot
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	InvoiceID uuid.UUID `gorm:"type:uuid;not null"`
	// Subtotal is the refunded merchandise amount
	Subtotal decimal.Decimal `gorm:"type:decimal(12,4)"`
	// ShippingAmount is the refunded shipping amount
	ShippingAmount decimal.Decimal `gorm:"type:decimal(12,4)"`
	// TaxAmount is the refunded tax, stored positive
	TaxAmount decimal.Decimal `gorm:"type:decimal(12,4)"`
	// AdjustmentNegative is the fee deduction withheld by the platform
	AdjustmentNegative decimal.Decimal `gorm:"type:decimal(12,4)"`
	// GrandTotal is the implied order total the memo settles
	GrandTotal decimal.Decimal `gorm:"type:decimal(12,4)"`
	Comment    string          `gorm:"type:text"`
}

// TableName returns the database table name
func (CreditMemo) TableName() string {
	return "order_credit_memos"
}

// NewCreditMemo builds a credit memo against an invoice
func NewCreditMemo(storeID uuid.UUID, orderID, invoiceID uuid.UUID, subtotal, shipping, tax, adjustmentNegative, grandTotal decimal.Decimal) (*CreditMemo, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if tax.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX", "Credit memo tax must be stored positive")
	}
	if adjustmentNegative.IsNegative() {
		return nil, shared.NewDomainError("INVALID_ADJUSTMENT", "Fee adjustment cannot be negative")
	}
	return &CreditMemo{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(storeID),
		OrderID:            orderID,
		InvoiceID:          invoiceID,
		Subtotal:           subtotal,
		ShippingAmount:     shipping,
		TaxAmount:          tax,
		AdjustmentNegative: adjustmentNegative,
		GrandTotal:         grandTotal,
		Comment:            RefundAuditComment,
	}, nil
}
