package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/marketplace"
	"github.com/marketsync/backend/internal/domain/order"
	"github.com/marketsync/backend/internal/domain/shared"
)

// defaultMaxPullPages bounds the pagination loop against a misbehaving
// paging API that keeps returning a next cursor.
const defaultMaxPullPages = 200

// OrderSyncEngine orchestrates the paginated order pull: per-order
// idempotent creation, post-page acknowledgement, and collect-and-continue
// error handling. One engine instance is safe for concurrent use; all run
// state lives in the PullResult threaded through each call.
type OrderSyncEngine struct {
	client       marketplace.CommerceClient
	mapper       *OrderMapper
	orders       order.Repository
	invoices     order.InvoiceRepository
	links        marketplace.OrderLinkRepository
	runs         marketplace.SyncRunRepository
	settings     SettingsProvider
	eventBus     shared.EventPublisher
	logger       *zap.Logger
	maxPullPages int
}

// NewOrderSyncEngine creates an order sync engine
func NewOrderSyncEngine(
	client marketplace.CommerceClient,
	mapper *OrderMapper,
	orders order.Repository,
	invoices order.InvoiceRepository,
	links marketplace.OrderLinkRepository,
	runs marketplace.SyncRunRepository,
	settings SettingsProvider,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *OrderSyncEngine {
	return &OrderSyncEngine{
		client:       client,
		mapper:       mapper,
		orders:       orders,
		invoices:     invoices,
		links:        links,
		runs:         runs,
		settings:     settings,
		eventBus:     eventBus,
		logger:       logger,
		maxPullPages: defaultMaxPullPages,
	}
}

// SetMaxPullPages overrides the pagination bound. Non-positive values
// are ignored and keep the current bound.
func (e *OrderSyncEngine) SetMaxPullPages(pages int) {
	if pages > 0 {
		e.maxPullPages = pages
	}
}

// PullPendingOrders pulls all unacknowledged orders for a store, creating
// local orders idempotently page by page. A single bad order never aborts
// the batch; its error is collected into the result. The run summary is
// persisted for operator review.
func (e *OrderSyncEngine) PullPendingOrders(ctx context.Context, storeID uuid.UUID) (*PullResult, error) {
	run := marketplace.NewSyncRun(storeID)
	result := &PullResult{}

	err := e.pullPages(ctx, storeID, result)

	run.Finish(result.TotalPulled, result.TotalCreated, result.Errors)
	if err != nil {
		run.Status = marketplace.SyncRunStatusFailed
	}
	if saveErr := e.runs.Save(ctx, run); saveErr != nil {
		e.logger.Error("failed to persist sync run",
			zap.String("store_id", storeID.String()),
			zap.Error(saveErr))
	}

	if err != nil {
		return result, err
	}
	return result, nil
}

// pullPages walks the order listing cursor by cursor. Each page's
// per-order creation and acknowledgement complete before the next page is
// fetched; the acknowledgement tells the platform it may advance past
// those orders.
func (e *OrderSyncEngine) pullPages(ctx context.Context, storeID uuid.UUID, result *PullResult) error {
	cursor := ""
	for page := 0; ; page++ {
		if page >= e.maxPullPages {
			result.Errors = append(result.Errors,
				fmt.Sprintf("pagination aborted after %d pages", e.maxPullPages))
			return nil
		}

		orderPage, err := e.client.ListOrders(ctx, storeID, cursor)
		if err != nil {
			return fmt.Errorf("list orders (cursor %q): %w", cursor, err)
		}

		pendingAck := make(map[uuid.UUID]string)
		for _, remote := range orderPage.Orders {
			result.TotalPulled++
			localOrder, created, err := e.GetOrCreateOrder(ctx, storeID, remote)
			if err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("order %s: %v", remote.ID, err))
				e.logger.Warn("failed to create local order",
					zap.String("remote_order_id", remote.ID),
					zap.Error(err))
				continue
			}
			if created {
				result.TotalCreated++
				pendingAck[localOrder.ID] = remote.ID
			}
		}

		// Acknowledge only after creation succeeded; a crash before ack
		// causes safe redelivery. A failed ack likewise leaves the orders
		// unacknowledged for the next run.
		if len(pendingAck) > 0 {
			if err := e.client.Acknowledge(ctx, storeID, pendingAck); err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("acknowledge %d orders: %v", len(pendingAck), err))
				e.logger.Error("failed to acknowledge orders",
					zap.Int("count", len(pendingAck)),
					zap.Error(err))
			}
		}

		cursor = orderPage.NextCursor
		if cursor == "" {
			return nil
		}
	}
}

// GetOrCreateOrder returns the local order for a remote order, creating
// it if it does not exist yet. This is the idempotency boundary: the link
// lookup is optimistic and the storage-level unique constraint on the
// remote order id is the hard guarantee. A constraint violation on link
// insert means a concurrent invocation won the race; the existing order
// is returned and the losing order is removed.
func (e *OrderSyncEngine) GetOrCreateOrder(ctx context.Context, storeID uuid.UUID, remote marketplace.RemoteOrder) (*order.Order, bool, error) {
	link, err := e.links.FindByRemoteOrderID(ctx, storeID, remote.ID)
	if err == nil {
		existing, err := e.orders.FindByID(ctx, storeID, link.LocalOrderID)
		if err != nil {
			return nil, false, fmt.Errorf("load linked order %s: %w", link.LocalOrderID, err)
		}
		return existing, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, false, fmt.Errorf("look up order link: %w", err)
	}

	settings, err := e.settings.SettingsFor(ctx, storeID)
	if err != nil {
		return nil, false, fmt.Errorf("load store settings: %w", err)
	}

	localOrder, err := e.mapper.Map(ctx, storeID, remote, settings)
	if err != nil {
		return nil, false, err
	}

	autoInvoice := settings.DefaultStatus == order.StateProcessing
	if autoInvoice {
		if err := localOrder.BeginProcessing(); err != nil {
			return nil, false, err
		}
	}

	if err := e.orders.Save(ctx, localOrder); err != nil {
		return nil, false, fmt.Errorf("save order: %w", err)
	}

	link, err = marketplace.NewOrderLink(storeID, remote.ID, localOrder.ID, remote.Channel, remote.EmailOptIn)
	if err != nil {
		return nil, false, err
	}
	if err := e.links.Create(ctx, link); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return e.resolveCreationRace(ctx, storeID, remote.ID, localOrder.ID)
		}
		return nil, false, fmt.Errorf("create order link: %w", err)
	}

	if autoInvoice {
		invoice, err := order.NewInvoiceForOrder(localOrder)
		if err != nil {
			return nil, false, err
		}
		if err := e.invoices.Save(ctx, invoice); err != nil {
			return nil, false, fmt.Errorf("save invoice: %w", err)
		}
	}

	e.publish(ctx, order.NewCreatedEvent(localOrder, remote.ID, remote.Channel))

	return localOrder, true, nil
}

// resolveCreationRace handles a unique-constraint violation on link
// insert: a concurrent invocation created the order first. The duplicate
// local order is removed and the winner's order returned.
func (e *OrderSyncEngine) resolveCreationRace(ctx context.Context, storeID uuid.UUID, remoteOrderID string, duplicateOrderID uuid.UUID) (*order.Order, bool, error) {
	if err := e.orders.Delete(ctx, storeID, duplicateOrderID); err != nil {
		e.logger.Error("failed to remove duplicate order after creation race",
			zap.String("order_id", duplicateOrderID.String()),
			zap.String("remote_order_id", remoteOrderID),
			zap.Error(err))
	}

	link, err := e.links.FindByRemoteOrderID(ctx, storeID, remoteOrderID)
	if err != nil {
		return nil, false, fmt.Errorf("re-read order link after conflict: %w", err)
	}
	existing, err := e.orders.FindByID(ctx, storeID, link.LocalOrderID)
	if err != nil {
		return nil, false, fmt.Errorf("load linked order %s: %w", link.LocalOrderID, err)
	}

	e.logger.Info("concurrent creation detected, reusing existing order",
		zap.String("remote_order_id", remoteOrderID),
		zap.String("order_id", existing.ID.String()))

	return existing, false, nil
}

// publish sends a domain event fire-and-forget
func (e *OrderSyncEngine) publish(ctx context.Context, event shared.DomainEvent) {
	if e.eventBus == nil {
		return
	}
	if err := e.eventBus.Publish(ctx, event); err != nil {
		e.logger.Warn("failed to publish domain event",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
}
