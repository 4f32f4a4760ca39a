package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/marketplace"
	"github.com/marketsync/backend/internal/domain/order"
	"github.com/marketsync/backend/internal/domain/shared"
)

// reconciliationKeyTTL bounds how long processed-payload fingerprints are
// kept in the idempotency store. The state-based guards on the order
// remain authoritative after expiry.
const reconciliationKeyTTL = 7 * 24 * time.Hour

// CancellationReconciler applies inbound cancellation payloads to local
// orders. Cancellation is processed at most once per order; a second
// payload for the same order is dropped with ErrReconciliationSkipped.
type CancellationReconciler struct {
	engine   *OrderSyncEngine
	orders   order.Repository
	idem     shared.IdempotencyStore
	eventBus shared.EventPublisher
	logger   *zap.Logger
}

// NewCancellationReconciler creates a cancellation reconciler
func NewCancellationReconciler(engine *OrderSyncEngine, orders order.Repository, idem shared.IdempotencyStore, eventBus shared.EventPublisher, logger *zap.Logger) *CancellationReconciler {
	return &CancellationReconciler{
		engine:   engine,
		orders:   orders,
		idem:     idem,
		eventBus: eventBus,
		logger:   logger,
	}
}

// ApplyCancellation reconciles a cancellation payload onto the local
// order, creating the order first if it was never pulled. Per-item
// canceled quantities are set and tax prorated; a line referencing an
// unknown SKU is logged and skipped without aborting the rest.
func (r *CancellationReconciler) ApplyCancellation(ctx context.Context, storeID uuid.UUID, remote marketplace.RemoteOrder, payload marketplace.CancellationPayload) error {
	key := fmt.Sprintf("cancel:%s:%s", storeID, payload.RemoteOrderID)
	if r.alreadyProcessed(ctx, key) {
		return marketplace.ErrReconciliationSkipped
	}

	localOrder, _, err := r.engine.GetOrCreateOrder(ctx, storeID, remote)
	if err != nil {
		return err
	}

	if localOrder.HasCanceledItems() {
		return marketplace.ErrReconciliationSkipped
	}

	full := localOrder.TotalQtyOrdered() <= payload.TotalQuantity()
	canceledLines := 0
	for _, line := range payload.Items {
		item := localOrder.ItemBySKU(line.RetailerID)
		if item == nil {
			r.logger.Error("cancellation line references a sku absent from the order",
				zap.String("remote_order_id", payload.RemoteOrderID),
				zap.String("order_id", localOrder.ID.String()),
				zap.String("retailer_id", line.RetailerID))
			continue
		}
		if err := item.Cancel(line.Quantity); err != nil {
			r.logger.Error("failed to cancel order line",
				zap.String("retailer_id", line.RetailerID),
				zap.Error(err))
			continue
		}
		canceledLines++
	}

	localOrder.AddComment(cancellationComment(payload, full))

	if err := r.orders.Save(ctx, localOrder); err != nil {
		return fmt.Errorf("save order after cancellation: %w", err)
	}

	r.markProcessed(ctx, key)

	if r.eventBus != nil {
		event := order.NewCancellationAppliedEvent(localOrder, payload.RemoteOrderID, full, canceledLines)
		if err := r.eventBus.Publish(ctx, event); err != nil {
			r.logger.Warn("failed to publish cancellation event", zap.Error(err))
		}
	}

	return nil
}

// alreadyProcessed is the fast-path guard in front of the state check.
// Store errors degrade to the state-based guard.
func (r *CancellationReconciler) alreadyProcessed(ctx context.Context, key string) bool {
	if r.idem == nil {
		return false
	}
	processed, err := r.idem.IsProcessed(ctx, key)
	if err != nil {
		r.logger.Warn("idempotency store lookup failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return processed
}

func (r *CancellationReconciler) markProcessed(ctx context.Context, key string) {
	if r.idem == nil {
		return
	}
	if _, err := r.idem.MarkProcessed(ctx, key, reconciliationKeyTTL); err != nil {
		r.logger.Warn("failed to mark payload processed", zap.String("key", key), zap.Error(err))
	}
}

// cancellationComment builds the human-readable history note
func cancellationComment(payload marketplace.CancellationPayload, full bool) string {
	scope := "Partial"
	if full {
		scope = "Full"
	}
	comment := fmt.Sprintf("%s cancellation received from the marketplace platform.", scope)
	if payload.ReasonCode != "" {
		comment += fmt.Sprintf(" Reason: %s.", payload.ReasonCode)
	}
	if payload.ReasonDescription != "" {
		comment += " " + payload.ReasonDescription
	}
	return comment
}
