package sync

import (
	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/marketplace"
	"github.com/marketsync/backend/internal/domain/order"
	"github.com/marketsync/backend/internal/domain/shared"
)

// Service is the composition root for the sync application layer. The
// engine drives the scheduled pull; Inbound, Shipments and Outbound are
// invoked by external triggers (webhook dispatchers, fulfillment staff,
// admin actions) that live outside this module.
type Service struct {
	Engine    *OrderSyncEngine
	Inbound   *Inbound
	Shipments *ShipmentNotifier
	Outbound  *OutboundActions
}

// Dependencies bundles everything the sync services need
type Dependencies struct {
	Client      marketplace.CommerceClient
	Orders      order.Repository
	Invoices    order.InvoiceRepository
	CreditMemos order.CreditMemoRepository
	Links       marketplace.OrderLinkRepository
	Runs        marketplace.SyncRunRepository
	Products    ProductResolver
	Settings    SettingsProvider
	Idempotency shared.IdempotencyStore
	EventBus    shared.EventPublisher
	Logger      *zap.Logger

	// MaxPullPages bounds the order pagination loop; zero keeps the
	// engine default.
	MaxPullPages int
}

// NewService wires the full sync application layer
func NewService(deps Dependencies) *Service {
	mapper := NewOrderMapper(deps.Client, deps.Products, deps.Logger)
	engine := NewOrderSyncEngine(
		deps.Client, mapper,
		deps.Orders, deps.Invoices, deps.Links, deps.Runs,
		deps.Settings, deps.EventBus, deps.Logger,
	)
	engine.SetMaxPullPages(deps.MaxPullPages)
	cancellations := NewCancellationReconciler(engine, deps.Orders, deps.Idempotency, deps.EventBus, deps.Logger)
	refunds := NewRefundReconciler(engine, deps.Orders, deps.Invoices, deps.CreditMemos, deps.Idempotency, deps.EventBus, deps.Logger)

	return &Service{
		Engine:    engine,
		Inbound:   NewInbound(cancellations, refunds),
		Shipments: NewShipmentNotifier(deps.Client, deps.Orders, deps.Links, deps.Settings, deps.EventBus, deps.Logger),
		Outbound:  NewOutboundActions(deps.Client, deps.Links, deps.Logger),
	}
}
