package marketplace

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Remote Order Payloads
// ---------------------------------------------------------------------------

// RemoteOrderState represents the lifecycle state of an order on the platform
type RemoteOrderState string

const (
	// RemoteOrderStateCreated indicates the order is new and unacknowledged
	RemoteOrderStateCreated RemoteOrderState = "CREATED"
	// RemoteOrderStateInProgress indicates the order has been acknowledged
	RemoteOrderStateInProgress RemoteOrderState = "IN_PROGRESS"
	// RemoteOrderStateCompleted indicates the order has been fulfilled
	RemoteOrderStateCompleted RemoteOrderState = "COMPLETED"
)

// RemoteOrder is the order payload as reported by the platform.
// Line items are not embedded; they are fetched through a separate
// paginated call (see CommerceClient.ListOrderItems).
type RemoteOrder struct {
	// ID is the platform's order identifier
	ID string
	// State is the order state on the platform
	State RemoteOrderState
	// BuyerEmail is the buyer's contact email
	BuyerEmail string
	// ShippingAddress is where the order ships to
	ShippingAddress RemoteAddress
	// SelectedShipping is the shipping option the buyer chose
	SelectedShipping ShippingOption
	// Payment holds the platform-calculated order totals
	Payment PaymentDetails
	// Promotions lists discounts applied by the platform
	Promotions []Promotion
	// Channel tags the sales channel the order came through
	Channel string
	// EmailOptIn indicates the buyer opted into email marketing
	EmailOptIn bool
	// CreatedAt is the RFC3339 creation timestamp reported by the platform
	CreatedAt string
}

// RemoteAddress is a shipping address as reported by the platform.
// Two historical payload shapes coexist: older payloads carry a single
// Name field, newer ones carry discrete FirstName/LastName. Discrete
// fields win when both are present.
type RemoteAddress struct {
	Name       string
	FirstName  string
	LastName   string
	Street1    string
	Street2    string
	City       string
	Region     string
	PostalCode string
	Country    string
	Telephone  string
}

// SplitName returns the first and last name for the address. Discrete
// fields are used verbatim when present; otherwise the full name is split
// on whitespace into its first two tokens.
func (a RemoteAddress) SplitName() (first, last string) {
	if a.FirstName != "" || a.LastName != "" {
		return a.FirstName, a.LastName
	}
	tokens := strings.Fields(a.Name)
	if len(tokens) == 0 {
		return "", ""
	}
	if len(tokens) == 1 {
		return tokens[0], ""
	}
	return tokens[0], tokens[1]
}

// StreetLine returns the combined street lines
func (a RemoteAddress) StreetLine() string {
	if a.Street2 == "" {
		return a.Street1
	}
	return strings.TrimSpace(a.Street1 + " " + a.Street2)
}

// RemoteOrderItem is a single order line as reported by the platform
type RemoteOrderItem struct {
	// RetailerID is the seller-assigned identifier (SKU or internal id)
	RetailerID string
	// ProductID is the platform's product identifier
	ProductID string
	// Name is the product display name
	Name string
	// Quantity is the ordered quantity
	Quantity int
	// PricePerUnit is the effective per-unit price after discounts
	PricePerUnit decimal.Decimal
	// Tax is the total tax for the line
	Tax decimal.Decimal
	// Promotions lists item-level discounts applied by the platform
	Promotions []Promotion
}

// ShippingOption is the shipping choice attached to a remote order
type ShippingOption struct {
	// Name is the display name of the option, free text
	Name string
	// Price is the shipping charge
	Price decimal.Decimal
	// Tax is the tax calculated on the shipping charge
	Tax decimal.Decimal
}

// PaymentDetails holds the totals the platform calculated for the order.
// These figures are authoritative and are mirrored verbatim.
type PaymentDetails struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ---------------------------------------------------------------------------
// Promotions
// ---------------------------------------------------------------------------

// PromotionOrderLevel marks a promotion applied to the whole order
const PromotionOrderLevel = "order_level"

// Promotion is a discount entry reported by the platform
type Promotion struct {
	// TargetGranularity is "order_level" or "item_level"
	TargetGranularity string
	// Sponsor identifies who funds the discount (seller or platform)
	Sponsor string
	// Campaign is the promotion campaign name
	Campaign string
	// Amount is the discount amount, reported positive
	Amount decimal.Decimal
}

// IsOrderLevel returns true if the promotion applies to the whole order
func (p Promotion) IsOrderLevel() bool {
	return p.TargetGranularity == PromotionOrderLevel
}

// Label returns the human-readable "[Sponsor] Campaign" form
func (p Promotion) Label() string {
	if p.Sponsor == "" {
		return p.Campaign
	}
	return "[" + p.Sponsor + "] " + p.Campaign
}

// ---------------------------------------------------------------------------
// Inbound Reconciliation Payloads
// ---------------------------------------------------------------------------

// CancellationLine identifies a quantity of one order line to cancel
type CancellationLine struct {
	RetailerID string
	Quantity   int
}

// CancellationPayload is an inbound cancellation notice from the platform
type CancellationPayload struct {
	RemoteOrderID     string
	Items             []CancellationLine
	ReasonCode        string
	ReasonDescription string
}

// TotalQuantity returns the total quantity requested for cancellation
func (p CancellationPayload) TotalQuantity() int {
	total := 0
	for _, line := range p.Items {
		total += line.Quantity
	}
	return total
}

// RefundedItem identifies an order line being refunded in full
type RefundedItem struct {
	RetailerID string
}

// RefundAmount holds the refund figures reported by the platform.
// Tax is reported negative by the platform; the local ledger stores it
// positive.
type RefundAmount struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// RefundPayload is an inbound refund notice from the platform
type RefundPayload struct {
	RemoteOrderID string
	Items         []RefundedItem
	Amount        RefundAmount
	ReasonCode    string
}
