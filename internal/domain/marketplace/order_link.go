package marketplace

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/marketsync/backend/internal/domain/shared"
)

// StringSlice is a JSON-serialized string list column
type StringSlice []string

// Value implements driver.Valuer
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (s *StringSlice) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
	if len(data) == 0 {
		*s = nil
		return nil
	}
	return json.Unmarshal(data, s)
}

// ExtraData is a JSON-serialized free-form metadata column
type ExtraData map[string]string

// Value implements driver.Valuer
func (d ExtraData) Value() (driver.Value, error) {
	if len(d) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (d *ExtraData) Scan(value any) error {
	if value == nil {
		*d = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into ExtraData", value)
	}
	if len(data) == 0 {
		*d = nil
		return nil
	}
	return json.Unmarshal(data, d)
}

// OrderLink is the cross-reference between a remote order and a local
// order. It is created exactly once per remote order, immediately after
// local order placement. The unique index on RemoteOrderID is the
// idempotency guard: no two local orders may ever reference the same
// remote order id, and an insert that violates the index is treated as
// "order already exists" by the storage layer.
type OrderLink struct {
	shared.StoreAggregateRoot
	// RemoteOrderID is the platform's order identifier
	RemoteOrderID string `gorm:"type:varchar(64);uniqueIndex;not null"`
	// LocalOrderID is the local order this link points at
	LocalOrderID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Channel tags the sales channel the order came through
	Channel string `gorm:"type:varchar(32)"`
	// EmailOptIn records the buyer's email-marketing opt-in
	EmailOptIn bool
	// SyncedShipments lists local shipment ids already pushed to the platform
	SyncedShipments StringSlice `gorm:"type:text"`
	// Extra carries free-form platform metadata
	Extra ExtraData `gorm:"type:text"`
}

// TableName returns the database table name
func (OrderLink) TableName() string {
	return "marketplace_order_links"
}

// NewOrderLink creates a link between a remote order and a local order
func NewOrderLink(storeID uuid.UUID, remoteOrderID string, localOrderID uuid.UUID, channel string, emailOptIn bool) (*OrderLink, error) {
	if remoteOrderID == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_LINK", "remote order id cannot be empty")
	}
	if localOrderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER_LINK", "local order id cannot be empty")
	}
	return &OrderLink{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(storeID),
		RemoteOrderID:      remoteOrderID,
		LocalOrderID:       localOrderID,
		Channel:            channel,
		EmailOptIn:         emailOptIn,
	}, nil
}

// HasSyncedShipment returns true if the shipment was already pushed
func (l *OrderLink) HasSyncedShipment(shipmentID string) bool {
	for _, id := range l.SyncedShipments {
		if id == shipmentID {
			return true
		}
	}
	return false
}

// MarkShipmentSynced records a shipment as pushed to the platform
func (l *OrderLink) MarkShipmentSynced(shipmentID string) {
	if l.HasSyncedShipment(shipmentID) {
		return
	}
	l.SyncedShipments = append(l.SyncedShipments, shipmentID)
	l.MarkUpdated()
}

// OrderLinkRepository persists order links
type OrderLinkRepository interface {
	// Create inserts a new link. Returns shared.ErrAlreadyExists when a
	// link for the same remote order id already exists.
	Create(ctx context.Context, link *OrderLink) error

	// FindByRemoteOrderID looks a link up by the platform's order id.
	// Returns shared.ErrNotFound when absent.
	FindByRemoteOrderID(ctx context.Context, storeID uuid.UUID, remoteOrderID string) (*OrderLink, error)

	// FindByLocalOrderID looks a link up by the local order id.
	// Returns shared.ErrNotFound when absent.
	FindByLocalOrderID(ctx context.Context, storeID uuid.UUID, localOrderID uuid.UUID) (*OrderLink, error)

	// Save updates an existing link
	Save(ctx context.Context, link *OrderLink) error
}
