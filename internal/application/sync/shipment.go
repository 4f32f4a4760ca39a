package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/marketplace"
	"github.com/marketsync/backend/internal/domain/order"
	"github.com/marketsync/backend/internal/domain/shared"
)

// ShipmentNotifier pushes local shipment confirmations to the platform.
// It only reads the order's financial state; it appends a history comment
// and records the shipment as synced on the order link.
type ShipmentNotifier struct {
	client   marketplace.CommerceClient
	orders   order.Repository
	links    marketplace.OrderLinkRepository
	settings SettingsProvider
	eventBus shared.EventPublisher
	logger   *zap.Logger
}

// NewShipmentNotifier creates a shipment notifier
func NewShipmentNotifier(client marketplace.CommerceClient, orders order.Repository, links marketplace.OrderLinkRepository, settings SettingsProvider, eventBus shared.EventPublisher, logger *zap.Logger) *ShipmentNotifier {
	return &ShipmentNotifier{
		client:   client,
		orders:   orders,
		links:    links,
		settings: settings,
		eventBus: eventBus,
		logger:   logger,
	}
}

// MarkAsShipped validates the shipment and notifies the platform. Orders
// without a marketplace link are a silent no-op. Validation failures are
// raised before any remote call is made.
func (n *ShipmentNotifier) MarkAsShipped(ctx context.Context, storeID uuid.UUID, req ShipmentRequest) error {
	link, err := n.links.FindByLocalOrderID(ctx, storeID, req.OrderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("look up order link: %w", err)
	}

	if link.HasSyncedShipment(req.ShipmentID) {
		n.logger.Debug("shipment already synced",
			zap.String("shipment_id", req.ShipmentID),
			zap.String("remote_order_id", link.RemoteOrderID))
		return nil
	}

	// The platform's shipment call accepts a single tracking number.
	if len(req.Tracking) != 1 {
		return shared.NewDomainError("INVALID_SHIPMENT",
			fmt.Sprintf("Shipment must carry exactly one tracking record, got %d", len(req.Tracking)))
	}
	tracking := req.Tracking[0]

	settings, err := n.settings.SettingsFor(ctx, storeID)
	if err != nil {
		return fmt.Errorf("load store settings: %w", err)
	}

	carrierCode := marketplace.ResolveCarrier(tracking.CarrierCode, tracking.Title, settings.Carriers)

	from, err := resolveFulfillmentAddress(settings)
	if err != nil {
		return err
	}

	items := make([]marketplace.ShippedItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, marketplace.ShippedItem{
			RetailerID: item.SKU,
			Quantity:   item.Qty,
		})
	}

	trackingInfo := marketplace.TrackingInfo{
		TrackingNumber:     tracking.Number,
		ShippingMethodName: tracking.Title,
		CarrierCode:        carrierCode,
	}
	if err := n.client.MarkShipped(ctx, link.RemoteOrderID, items, trackingInfo, from); err != nil {
		return fmt.Errorf("mark order %s shipped: %w", link.RemoteOrderID, err)
	}

	localOrder, err := n.orders.FindByID(ctx, storeID, req.OrderID)
	if err != nil {
		return fmt.Errorf("load order: %w", err)
	}
	localOrder.AddComment(fmt.Sprintf("Shipment %s confirmed to the marketplace platform. Carrier: %s, tracking number: %s.",
		req.ShipmentID, carrierCode, tracking.Number))
	if err := n.orders.Save(ctx, localOrder); err != nil {
		return fmt.Errorf("save order after shipment: %w", err)
	}

	link.MarkShipmentSynced(req.ShipmentID)
	if err := n.links.Save(ctx, link); err != nil {
		return fmt.Errorf("save order link: %w", err)
	}

	if n.eventBus != nil {
		event := order.NewShipmentSyncedEvent(localOrder, link.RemoteOrderID, req.ShipmentID, carrierCode, tracking.Number)
		if err := n.eventBus.Publish(ctx, event); err != nil {
			n.logger.Warn("failed to publish shipment event", zap.Error(err))
		}
	}

	return nil
}

// resolveFulfillmentAddress builds the ship-from address for the platform
// call. When the store does not use the platform's default location, the
// configured address must be complete and the region code is resolved to
// its canonical name.
func resolveFulfillmentAddress(settings StoreSettings) (marketplace.FulfillmentAddress, error) {
	if settings.UseDefaultFulfillmentLocation {
		return marketplace.FulfillmentAddress{UseDefault: true}, nil
	}

	addr := settings.FulfillmentAddress
	if missing := addr.MissingFields(); len(missing) > 0 {
		return marketplace.FulfillmentAddress{}, shared.NewDomainError("INCOMPLETE_ADDRESS",
			fmt.Sprintf("Fulfillment address is missing required fields: %s", strings.Join(missing, ", ")))
	}

	region := addr.Region()
	if name, ok := settings.RegionNames[region]; ok {
		region = name
	}

	return marketplace.FulfillmentAddress{
		Street1:    addr.Street(),
		Country:    addr.Country(),
		State:      region,
		City:       addr.City(),
		PostalCode: addr.PostalCode(),
	}, nil
}
