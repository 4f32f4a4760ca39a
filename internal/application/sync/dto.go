package sync

import (
	"context"

	"github.com/google/uuid"

	"github.com/marketsync/backend/internal/domain/marketplace"
	"github.com/marketsync/backend/internal/domain/order"
	"github.com/marketsync/backend/internal/domain/shared/valueobject"
)

// PullResult accumulates the outcome of one pull run. It is threaded
// through the page loop explicitly so the engine stays reentrant.
type PullResult struct {
	// TotalPulled is how many remote orders the run saw
	TotalPulled int
	// TotalCreated is how many local orders the run created
	TotalCreated int
	// Errors holds per-order error messages for operator review
	Errors []string
}

// ProductIdentifier selects how a remote retailer id is matched against
// the local catalog
type ProductIdentifier string

const (
	// ProductIdentifierSKU matches retailer ids against catalog SKUs
	ProductIdentifierSKU ProductIdentifier = "sku"
	// ProductIdentifierID matches retailer ids against internal product ids
	ProductIdentifierID ProductIdentifier = "id"
)

// ShippingMethodMapping pairs a remote shipping-option keyword with a
// local shipping method code. Mappings are evaluated in listed order and
// the first case-insensitive substring match wins.
type ShippingMethodMapping struct {
	Keyword string
	Code    string
}

// StoreSettings is the per-store configuration the sync engine operates
// under
type StoreSettings struct {
	// DefaultStatus is the state newly created orders start in.
	// StateProcessing additionally registers an invoice at creation time.
	DefaultStatus order.State
	// Currency is the store's currency; remote totals are numeric only
	Currency valueobject.Currency
	// ShippingMethods is the ordered keyword map for shipping resolution
	ShippingMethods []ShippingMethodMapping
	// ProductIdentifier selects SKU or internal-id product matching
	ProductIdentifier ProductIdentifier
	// UseDefaultFulfillmentLocation tells the platform to use its own
	// configured ship-from location
	UseDefaultFulfillmentLocation bool
	// FulfillmentAddress is the explicit ship-from address
	FulfillmentAddress valueobject.Address
	// Carriers is the platform's supported-carrier table
	Carriers []marketplace.SupportedCarrier
	// RegionNames maps region codes to the canonical names the platform
	// expects in fulfillment addresses
	RegionNames map[string]string
}

// SettingsProvider supplies per-store settings
type SettingsProvider interface {
	SettingsFor(ctx context.Context, storeID uuid.UUID) (StoreSettings, error)
}

// ProductResolver resolves remote retailer ids to local catalog products
type ProductResolver interface {
	// BySKU resolves a catalog product by SKU.
	// Returns shared.ErrNotFound when no product matches.
	BySKU(ctx context.Context, storeID uuid.UUID, sku string) (uuid.UUID, error)

	// ByID resolves a catalog product by internal id string.
	// Returns shared.ErrNotFound when no product matches.
	ByID(ctx context.Context, storeID uuid.UUID, id string) (uuid.UUID, error)
}

// TrackingRecord is one tracking entry on a local shipment
type TrackingRecord struct {
	Number      string
	Title       string
	CarrierCode string
}

// ShipmentItem is one shipped line of a local shipment
type ShipmentItem struct {
	SKU string
	Qty int
}

// ShipmentRequest describes a local shipment to push to the platform
type ShipmentRequest struct {
	// ShipmentID is the local shipment identifier
	ShipmentID string
	// OrderID is the local order the shipment belongs to
	OrderID uuid.UUID
	// Items are the shipped lines
	Items []ShipmentItem
	// Tracking must hold exactly one record; the platform's shipment
	// call accepts a single tracking number
	Tracking []TrackingRecord
}

// InboundReconciliation applies cancellation and refund payloads received
// from the platform onto local orders
type InboundReconciliation interface {
	// ApplyCancellation reconciles an inbound cancellation payload.
	// Returns marketplace.ErrReconciliationSkipped when the order was
	// already reconciled.
	ApplyCancellation(ctx context.Context, storeID uuid.UUID, remote marketplace.RemoteOrder, payload marketplace.CancellationPayload) error

	// ApplyRefund reconciles an inbound refund payload.
	// Returns marketplace.ErrReconciliationSkipped when the order already
	// has a credit memo.
	ApplyRefund(ctx context.Context, storeID uuid.UUID, remote marketplace.RemoteOrder, payload marketplace.RefundPayload) error
}

// OutboundOrderActions issues cancel and refund requests to the platform
// for locally initiated actions. This direction coexists with inbound
// reconciliation and neither supersedes the other.
type OutboundOrderActions interface {
	// RequestCancellation asks the platform to cancel a linked order
	RequestCancellation(ctx context.Context, storeID, localOrderID uuid.UUID, reasonCode string) error

	// RequestRefund asks the platform to refund a linked order
	RequestRefund(ctx context.Context, storeID, localOrderID uuid.UUID, amount marketplace.RefundAmount, reasonCode string) error
}
