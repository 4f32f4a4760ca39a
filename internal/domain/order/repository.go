package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists order aggregates. Implementations return
// shared.ErrNotFound for missing orders and operate transactionally
// per call.
type Repository interface {
	// Save inserts or updates the order with its items and comments
	Save(ctx context.Context, o *Order) error

	// FindByID loads an order with its items and comments
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*Order, error)

	// Delete removes an order with its items and comments. Used to clean
	// up the losing side of a concurrent-creation race.
	Delete(ctx context.Context, storeID, id uuid.UUID) error
}

// InvoiceRepository persists invoices
type InvoiceRepository interface {
	// Save inserts a new invoice
	Save(ctx context.Context, inv *Invoice) error

	// FindByOrderID returns the invoice for an order.
	// Returns shared.ErrNotFound when the order has no invoice.
	FindByOrderID(ctx context.Context, storeID, orderID uuid.UUID) (*Invoice, error)
}

// CreditMemoRepository persists credit memos
type CreditMemoRepository interface {
	// Save inserts a new credit memo
	Save(ctx context.Context, memo *CreditMemo) error

	// ExistsForOrder reports whether the order already has a credit memo
	ExistsForOrder(ctx context.Context, storeID, orderID uuid.UUID) (bool, error)
}
