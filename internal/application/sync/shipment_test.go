package sync

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/marketplace"
	"github.com/marketsync/backend/internal/domain/order"
	"github.com/marketsync/backend/internal/domain/shared"
	"github.com/marketsync/backend/internal/domain/shared/valueobject"
)

type shipmentFixture struct {
	client   *MockCommerceClient
	orders   *MockOrderRepository
	links    *MockOrderLinkRepository
	settings *MockSettingsProvider
	notifier *ShipmentNotifier
}

func newShipmentFixture() *shipmentFixture {
	f := &shipmentFixture{
		client:   new(MockCommerceClient),
		orders:   new(MockOrderRepository),
		links:    new(MockOrderLinkRepository),
		settings: new(MockSettingsProvider),
	}
	f.notifier = NewShipmentNotifier(f.client, f.orders, f.links, f.settings, nil, zap.NewNop())
	return f
}

func shipmentSettings() StoreSettings {
	s := testSettings()
	s.UseDefaultFulfillmentLocation = false
	s.FulfillmentAddress = valueobject.NewAddress(
		"Warehouse", "Team", "42 Depot Road", "Springfield", "CA", "94025", "US")
	s.RegionNames = map[string]string{"CA": "California"}
	s.Carriers = []marketplace.SupportedCarrier{
		{Code: "PUROLATOR", Title: "Purolator"},
	}
	return s
}

func testShipmentRequest(orderID uuid.UUID) ShipmentRequest {
	return ShipmentRequest{
		ShipmentID: "SHIP-1",
		OrderID:    orderID,
		Items:      []ShipmentItem{{SKU: "SKU-1", Qty: 2}},
		Tracking: []TrackingRecord{
			{Number: "1Z999", Title: "UPS Ground", CarrierCode: marketplace.CarrierCodeCustom},
		},
	}
}

func TestMarkAsShipped_NotifiesPlatform(t *testing.T) {
	f := newShipmentFixture()
	storeID := uuid.New()
	localOrder, _ := order.NewOrder(storeID, "buyer@example.com", valueobject.USD)
	link, _ := marketplace.NewOrderLink(storeID, "FB-1001", localOrder.ID, "marketplace", false)

	f.links.On("FindByLocalOrderID", mock.Anything, storeID, localOrder.ID).Return(link, nil).Once()
	f.settings.On("SettingsFor", mock.Anything, storeID).Return(shipmentSettings(), nil).Once()
	f.client.On("MarkShipped", mock.Anything, "FB-1001",
		[]marketplace.ShippedItem{{RetailerID: "SKU-1", Quantity: 2}},
		marketplace.TrackingInfo{TrackingNumber: "1Z999", ShippingMethodName: "UPS Ground", CarrierCode: "UPS"},
		marketplace.FulfillmentAddress{
			Street1:    "42 Depot Road",
			Country:    "US",
			State:      "California",
			City:       "Springfield",
			PostalCode: "94025",
		}).Return(nil).Once()
	f.orders.On("FindByID", mock.Anything, storeID, localOrder.ID).Return(localOrder, nil).Once()
	f.orders.On("Save", mock.Anything, localOrder).Return(nil).Once()
	f.links.On("Save", mock.Anything, link).Return(nil).Once()

	err := f.notifier.MarkAsShipped(context.Background(), storeID, testShipmentRequest(localOrder.ID))

	assert.NoError(t, err)
	assert.True(t, link.HasSyncedShipment("SHIP-1"))
	assert.Len(t, localOrder.Comments, 1)
	assert.Contains(t, localOrder.Comments[0].Message, "SHIP-1")
	assert.Contains(t, localOrder.Comments[0].Message, "UPS")
	assert.Contains(t, localOrder.Comments[0].Message, "1Z999")
	f.client.AssertExpectations(t)
}

func TestMarkAsShipped_UnlinkedOrderIsNoOp(t *testing.T) {
	f := newShipmentFixture()
	storeID := uuid.New()
	orderID := uuid.New()

	f.links.On("FindByLocalOrderID", mock.Anything, storeID, orderID).Return(nil, shared.ErrNotFound).Once()

	err := f.notifier.MarkAsShipped(context.Background(), storeID, testShipmentRequest(orderID))

	assert.NoError(t, err)
	f.client.AssertNotCalled(t, "MarkShipped", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkAsShipped_AlreadySyncedShipmentIsNoOp(t *testing.T) {
	f := newShipmentFixture()
	storeID := uuid.New()
	orderID := uuid.New()
	link, _ := marketplace.NewOrderLink(storeID, "FB-1001", orderID, "marketplace", false)
	link.MarkShipmentSynced("SHIP-1")

	f.links.On("FindByLocalOrderID", mock.Anything, storeID, orderID).Return(link, nil).Once()

	err := f.notifier.MarkAsShipped(context.Background(), storeID, testShipmentRequest(orderID))

	assert.NoError(t, err)
	f.client.AssertNotCalled(t, "MarkShipped", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.links.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestMarkAsShipped_TrackingRecordCountValidation(t *testing.T) {
	tests := []struct {
		name     string
		tracking []TrackingRecord
	}{
		{"no tracking records", nil},
		{"two tracking records", []TrackingRecord{
			{Number: "1Z999", CarrierCode: "UPS"},
			{Number: "1Z998", CarrierCode: "UPS"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newShipmentFixture()
			storeID := uuid.New()
			orderID := uuid.New()
			link, _ := marketplace.NewOrderLink(storeID, "FB-1001", orderID, "marketplace", false)

			f.links.On("FindByLocalOrderID", mock.Anything, storeID, orderID).Return(link, nil).Once()

			req := testShipmentRequest(orderID)
			req.Tracking = tt.tracking

			err := f.notifier.MarkAsShipped(context.Background(), storeID, req)

			var domainErr *shared.DomainError
			assert.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "INVALID_SHIPMENT", domainErr.Code)
			// Validation happens before any remote call.
			f.client.AssertNotCalled(t, "MarkShipped", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			f.settings.AssertNotCalled(t, "SettingsFor", mock.Anything, mock.Anything)
		})
	}
}

func TestMarkAsShipped_IncompleteFulfillmentAddress(t *testing.T) {
	f := newShipmentFixture()
	storeID := uuid.New()
	orderID := uuid.New()
	link, _ := marketplace.NewOrderLink(storeID, "FB-1001", orderID, "marketplace", false)

	settings := shipmentSettings()
	settings.FulfillmentAddress = valueobject.NewAddress("", "", "", "Springfield", "", "94025", "US")

	f.links.On("FindByLocalOrderID", mock.Anything, storeID, orderID).Return(link, nil).Once()
	f.settings.On("SettingsFor", mock.Anything, storeID).Return(settings, nil).Once()

	err := f.notifier.MarkAsShipped(context.Background(), storeID, testShipmentRequest(orderID))

	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INCOMPLETE_ADDRESS", domainErr.Code)
	assert.Contains(t, domainErr.Message, "street")
	assert.Contains(t, domainErr.Message, "state")
	f.client.AssertNotCalled(t, "MarkShipped", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkAsShipped_DefaultFulfillmentLocation(t *testing.T) {
	f := newShipmentFixture()
	storeID := uuid.New()
	localOrder, _ := order.NewOrder(storeID, "buyer@example.com", valueobject.USD)
	link, _ := marketplace.NewOrderLink(storeID, "FB-1001", localOrder.ID, "marketplace", false)

	settings := shipmentSettings()
	settings.UseDefaultFulfillmentLocation = true

	f.links.On("FindByLocalOrderID", mock.Anything, storeID, localOrder.ID).Return(link, nil).Once()
	f.settings.On("SettingsFor", mock.Anything, storeID).Return(settings, nil).Once()
	f.client.On("MarkShipped", mock.Anything, "FB-1001", mock.Anything, mock.Anything,
		marketplace.FulfillmentAddress{UseDefault: true}).Return(nil).Once()
	f.orders.On("FindByID", mock.Anything, storeID, localOrder.ID).Return(localOrder, nil).Once()
	f.orders.On("Save", mock.Anything, localOrder).Return(nil).Once()
	f.links.On("Save", mock.Anything, link).Return(nil).Once()

	err := f.notifier.MarkAsShipped(context.Background(), storeID, testShipmentRequest(localOrder.ID))

	assert.NoError(t, err)
	f.client.AssertExpectations(t)
}

func TestOutboundActions_RequireOrderLink(t *testing.T) {
	client := new(MockCommerceClient)
	links := new(MockOrderLinkRepository)
	actions := NewOutboundActions(client, links, zap.NewNop())
	storeID := uuid.New()
	orderID := uuid.New()

	links.On("FindByLocalOrderID", mock.Anything, storeID, orderID).Return(nil, shared.ErrNotFound)

	err := actions.RequestCancellation(context.Background(), storeID, orderID, "OUT_OF_STOCK")
	assert.ErrorIs(t, err, marketplace.ErrOrderNotLinked)

	err = actions.RequestRefund(context.Background(), storeID, orderID, marketplace.RefundAmount{}, "BUYERS_REMORSE")
	assert.ErrorIs(t, err, marketplace.ErrOrderNotLinked)

	client.AssertNotCalled(t, "CancelOrder", mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "RefundOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOutboundActions_ForwardToPlatform(t *testing.T) {
	client := new(MockCommerceClient)
	links := new(MockOrderLinkRepository)
	actions := NewOutboundActions(client, links, zap.NewNop())
	storeID := uuid.New()
	orderID := uuid.New()
	link, _ := marketplace.NewOrderLink(storeID, "FB-1001", orderID, "marketplace", false)

	links.On("FindByLocalOrderID", mock.Anything, storeID, orderID).Return(link, nil)
	client.On("CancelOrder", mock.Anything, "FB-1001", "OUT_OF_STOCK").Return(nil).Once()
	client.On("RefundOrder", mock.Anything, "FB-1001", mock.Anything, "BUYERS_REMORSE").Return(nil).Once()

	assert.NoError(t, actions.RequestCancellation(context.Background(), storeID, orderID, "OUT_OF_STOCK"))
	assert.NoError(t, actions.RequestRefund(context.Background(), storeID, orderID, marketplace.RefundAmount{}, "BUYERS_REMORSE"))
	client.AssertExpectations(t)
}
