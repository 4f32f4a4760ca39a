package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketsync/backend/internal/domain/shared"
	"github.com/marketsync/backend/internal/domain/shared/valueobject"
)

// State represents the lifecycle state of a local order
type State string

const (
	// StateNew is the initial state for orders awaiting invoicing
	StateNew State = "NEW"
	// StateProcessing means the order was auto-invoiced and is in fulfillment
	StateProcessing State = "PROCESSING"
	// StateClosed is the terminal state reached after a refund
	StateClosed State = "CLOSED"
)

// IsValid checks if the state is a valid order State
func (s State) IsValid() bool {
	switch s {
	case StateNew, StateProcessing, StateClosed:
		return true
	}
	return false
}

// String returns the string representation of State
func (s State) String() string {
	return string(s)
}

// Comment is an append-only history entry on an order
type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Message   string    `gorm:"type:text;not null"`
	CreatedAt time.Time
}

// TableName returns the database table name
func (Comment) TableName() string {
	return "order_comments"
}

// Totals holds the monetary totals of an order, mirrored verbatim from the
// platform's payment details. Base amounts are the same figures expressed
// in the store's base currency; with a single-currency store they are equal.
type Totals struct {
	Subtotal           decimal.Decimal `gorm:"type:decimal(12,4)"`
	TaxAmount          decimal.Decimal `gorm:"type:decimal(12,4)"`
	ShippingAmount     decimal.Decimal `gorm:"type:decimal(12,4)"`
	ShippingTaxAmount  decimal.Decimal `gorm:"type:decimal(12,4)"`
	DiscountAmount     decimal.Decimal `gorm:"type:decimal(12,4)"`
	GrandTotal         decimal.Decimal `gorm:"type:decimal(12,4)"`
	BaseSubtotal       decimal.Decimal `gorm:"type:decimal(12,4)"`
	BaseTaxAmount      decimal.Decimal `gorm:"type:decimal(12,4)"`
	BaseShippingAmount decimal.Decimal `gorm:"type:decimal(12,4)"`
	BaseDiscountAmount decimal.Decimal `gorm:"type:decimal(12,4)"`
	BaseGrandTotal     decimal.Decimal `gorm:"type:decimal(12,4)"`
}

// Order is the local order aggregate, the authoritative ledger entry
// mirrored from a remote marketplace order.
type Order struct {
	shared.StoreAggregateRoot
	// CustomerEmail is the buyer's contact email
	CustomerEmail string `gorm:"type:varchar(255)"`
	// BillingAddress is the billing address value object
	BillingAddress valueobject.Address `gorm:"type:text"`
	// ShippingAddress is the shipping address value object
	ShippingAddress valueobject.Address `gorm:"type:text"`
	// ShippingSameAsBilling records that shipping was cloned from billing
	ShippingSameAsBilling bool
	// Currency is the store's configured currency code
	Currency valueobject.Currency `gorm:"type:varchar(3);not null"`
	// ShippingMethod is the resolved local shipping method code
	ShippingMethod string `gorm:"type:varchar(64)"`
	// ShippingDescription is the remote shipping option's display name
	ShippingDescription string `gorm:"type:varchar(255)"`
	// DiscountDescription summarizes the order-level promotions applied
	DiscountDescription string `gorm:"type:varchar(255)"`
	// Totals are the platform-calculated order totals
	Totals Totals `gorm:"embedded"`
	// State is the lifecycle state
	State State `gorm:"type:varchar(16);not null"`
	// Items are the order lines
	Items []Item `gorm:"foreignKey:OrderID"`
	// Comments is the append-only history log
	Comments []Comment `gorm:"foreignKey:OrderID"`
}

// TableName returns the database table name
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new local order in NEW state
func NewOrder(storeID uuid.UUID, customerEmail string, currency valueobject.Currency) (*Order, error) {
	if currency == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}
	return &Order{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(storeID),
		CustomerEmail:      customerEmail,
		Currency:           currency,
		State:              StateNew,
		Items:              make([]Item, 0),
		Comments:           make([]Comment, 0),
	}, nil
}

// SetAddresses sets billing and shipping addresses. When sameAsBilling is
// true the shipping address is a value copy of billing.
func (o *Order) SetAddresses(billing, shipping valueobject.Address, sameAsBilling bool) {
	o.BillingAddress = billing
	if sameAsBilling {
		o.ShippingAddress = billing
	} else {
		o.ShippingAddress = shipping
	}
	o.ShippingSameAsBilling = sameAsBilling
	o.MarkUpdated()
}

// SetShippingMethod records the resolved shipping method and its remote
// display name
func (o *Order) SetShippingMethod(code, description string) {
	o.ShippingMethod = code
	o.ShippingDescription = description
	o.MarkUpdated()
}

// SetTotals stores the platform-calculated totals verbatim. Base amounts
// mirror the local amounts for a single-currency store.
func (o *Order) SetTotals(t Totals) {
	o.Totals = t
	o.MarkUpdated()
}

// SetDiscountDescription records the human-readable promotion summary
func (o *Order) SetDiscountDescription(description string) {
	o.DiscountDescription = description
	o.MarkUpdated()
}

// AddItem appends a line item to the order
func (o *Order) AddItem(item *Item) {
	item.OrderID = o.ID
	o.Items = append(o.Items, *item)
	o.MarkUpdated()
}

// ItemBySKU returns the line item matching the SKU, or nil
func (o *Order) ItemBySKU(sku string) *Item {
	for idx := range o.Items {
		if o.Items[idx].SKU == sku {
			return &o.Items[idx]
		}
	}
	return nil
}

// TotalQtyOrdered returns the ordered quantity summed across all lines
func (o *Order) TotalQtyOrdered() int {
	total := 0
	for idx := range o.Items {
		total += o.Items[idx].QtyOrdered
	}
	return total
}

// HasCanceledItems returns true if any line has a canceled quantity.
// Cancellation is applied at most once per order; this is the guard.
func (o *Order) HasCanceledItems() bool {
	for idx := range o.Items {
		if o.Items[idx].IsCanceled() {
			return true
		}
	}
	return false
}

// AddComment appends an entry to the order's history log
func (o *Order) AddComment(message string) {
	o.Comments = append(o.Comments, Comment{
		ID:        uuid.New(),
		OrderID:   o.ID,
		Message:   message,
		CreatedAt: time.Now(),
	})
	o.MarkUpdated()
}

// BeginProcessing transitions a NEW order to PROCESSING for auto-invoicing
func (o *Order) BeginProcessing() error {
	if o.State != StateNew {
		return shared.NewDomainError("INVALID_STATE", "Only a new order can begin processing")
	}
	o.State = StateProcessing
	o.MarkUpdated()
	return nil
}

// Close transitions the order to its terminal CLOSED state after a refund
func (o *Order) Close() error {
	if o.State == StateClosed {
		return shared.NewDomainError("INVALID_STATE", "Order is already closed")
	}
	o.State = StateClosed
	o.MarkUpdated()
	return nil
}

// IsClosed returns true if the order reached its terminal state
func (o *Order) IsClosed() bool {
	return o.State == StateClosed
}
