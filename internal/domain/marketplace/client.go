package marketplace

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderPage is one page of the platform's order listing
type OrderPage struct {
	// Orders are the orders on this page
	Orders []RemoteOrder
	// NextCursor points at the next page; empty means this is the last page
	NextCursor string
}

// TrackingInfo is the tracking record sent with a mark-as-shipped call
type TrackingInfo struct {
	// TrackingNumber is the carrier's tracking number
	TrackingNumber string
	// ShippingMethodName is the display name of the shipping method
	ShippingMethodName string
	// CarrierCode is a canonical carrier code (see ResolveCarrier)
	CarrierCode string
}

// ShippedItem identifies a quantity of one order line being shipped
type ShippedItem struct {
	RetailerID string
	Quantity   int
}

// FulfillmentAddress is the ship-from address sent with a mark-as-shipped
// call. UseDefault tells the platform to use its configured default
// location instead of the explicit fields.
type FulfillmentAddress struct {
	UseDefault bool
	Street1    string
	Country    string
	State      string
	City       string
	PostalCode string
}

// CommerceClient is the port to the remote marketplace platform.
// Implementations wrap the platform's HTTPS API; all calls are blocking
// with a fixed timeout and perform no retries.
type CommerceClient interface {
	// ListOrders fetches one page of orders in created state for the store.
	// An empty cursor fetches the first page.
	ListOrders(ctx context.Context, storeID uuid.UUID, cursor string) (OrderPage, error)

	// ListOrderItems fetches all line items for a remote order, following
	// the platform's item pagination internally
	ListOrderItems(ctx context.Context, remoteOrderID string) ([]RemoteOrderItem, error)

	// Acknowledge confirms receipt of orders, mapping local order id to
	// remote order id. Acknowledged orders are not redelivered.
	Acknowledge(ctx context.Context, storeID uuid.UUID, orders map[uuid.UUID]string) error

	// MarkShipped notifies the platform that items of an order shipped
	MarkShipped(ctx context.Context, remoteOrderID string, items []ShippedItem, tracking TrackingInfo, from FulfillmentAddress) error

	// CancelOrder requests cancellation of an order on the platform
	CancelOrder(ctx context.Context, remoteOrderID string, reasonCode string) error

	// RefundOrder requests a refund for an order on the platform
	RefundOrder(ctx context.Context, remoteOrderID string, amount RefundAmount, reasonCode string) error

	// GetProductPrice looks up the platform's canonical price for a product.
	// The second return is false when the platform has no price on record.
	GetProductPrice(ctx context.Context, remoteProductID string) (decimal.Decimal, bool, error)
}
