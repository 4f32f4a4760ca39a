package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketsync/backend/internal/domain/shared"
)

// Event types for the order aggregate
const (
	EventTypeOrderCreated        = "order.created"
	EventTypeCancellationApplied = "order.cancellation_applied"
	EventTypeRefundApplied       = "order.refund_applied"
	EventTypeShipmentSynced      = "order.shipment_synced"
)

const aggregateTypeOrder = "Order"

// CreatedEvent is published after a remote order is placed locally and
// its link record is created. It is fire-and-forget for downstream
// consumers such as notification and analytics.
type CreatedEvent struct {
	shared.BaseDomainEvent
	RemoteOrderID string          `json:"remote_order_id"`
	Channel       string          `json:"channel"`
	CustomerEmail string          `json:"customer_email"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	Currency      string          `json:"currency"`
}

// NewCreatedEvent creates an order created event
func NewCreatedEvent(o *Order, remoteOrderID, channel string) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, aggregateTypeOrder, o.ID, o.StoreID),
		RemoteOrderID:   remoteOrderID,
		Channel:         channel,
		CustomerEmail:   o.CustomerEmail,
		GrandTotal:      o.Totals.GrandTotal,
		Currency:        string(o.Currency),
	}
}

// CancellationAppliedEvent is published after an inbound cancellation is
// reconciled onto a local order
type CancellationAppliedEvent struct {
	shared.BaseDomainEvent
	RemoteOrderID    string `json:"remote_order_id"`
	FullCancellation bool   `json:"full_cancellation"`
	CanceledLines    int    `json:"canceled_lines"`
}

// NewCancellationAppliedEvent creates a cancellation applied event
func NewCancellationAppliedEvent(o *Order, remoteOrderID string, full bool, lines int) *CancellationAppliedEvent {
	return &CancellationAppliedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeCancellationApplied, aggregateTypeOrder, o.ID, o.StoreID),
		RemoteOrderID:    remoteOrderID,
		FullCancellation: full,
		CanceledLines:    lines,
	}
}

// RefundAppliedEvent is published after a refund is reconciled and the
// credit memo is issued
type RefundAppliedEvent struct {
	shared.BaseDomainEvent
	RemoteOrderID string          `json:"remote_order_id"`
	CreditMemoID  uuid.UUID       `json:"credit_memo_id"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	FeeDeduction  decimal.Decimal `json:"fee_deduction"`
}

// NewRefundAppliedEvent creates a refund applied event
func NewRefundAppliedEvent(o *Order, remoteOrderID string, memo *CreditMemo) *RefundAppliedEvent {
	return &RefundAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefundApplied, aggregateTypeOrder, o.ID, o.StoreID),
		RemoteOrderID:   remoteOrderID,
		CreditMemoID:    memo.ID,
		GrandTotal:      memo.GrandTotal,
		FeeDeduction:    memo.AdjustmentNegative,
	}
}

// ShipmentSyncedEvent is published after a shipment is pushed to the
// platform
type ShipmentSyncedEvent struct {
	shared.BaseDomainEvent
	RemoteOrderID  string `json:"remote_order_id"`
	ShipmentID     string `json:"shipment_id"`
	CarrierCode    string `json:"carrier_code"`
	TrackingNumber string `json:"tracking_number"`
}

// NewShipmentSyncedEvent creates a shipment synced event
func NewShipmentSyncedEvent(o *Order, remoteOrderID, shipmentID, carrierCode, trackingNumber string) *ShipmentSyncedEvent {
	return &ShipmentSyncedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipmentSynced, aggregateTypeOrder, o.ID, o.StoreID),
		RemoteOrderID:   remoteOrderID,
		ShipmentID:      shipmentID,
		CarrierCode:     carrierCode,
		TrackingNumber:  trackingNumber,
	}
}
