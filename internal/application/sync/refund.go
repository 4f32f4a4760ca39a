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
	"github.com/marketsync/backend/internal/domain/shared/valueobject"
)

// RefundReconciler applies inbound refund payloads: marks refunded lines,
// derives the implied fee deduction, ensures an invoice exists, issues a
// credit memo, and closes the order. At most one refund per order is
// supported; a second payload is dropped with ErrReconciliationSkipped.
type RefundReconciler struct {
	engine   *OrderSyncEngine
	orders   order.Repository
	invoices order.InvoiceRepository
	memos    order.CreditMemoRepository
	idem     shared.IdempotencyStore
	eventBus shared.EventPublisher
	logger   *zap.Logger
}

// NewRefundReconciler creates a refund reconciler
func NewRefundReconciler(engine *OrderSyncEngine, orders order.Repository, invoices order.InvoiceRepository, memos order.CreditMemoRepository, idem shared.IdempotencyStore, eventBus shared.EventPublisher, logger *zap.Logger) *RefundReconciler {
	return &RefundReconciler{
		engine:   engine,
		orders:   orders,
		invoices: invoices,
		memos:    memos,
		idem:     idem,
		eventBus: eventBus,
		logger:   logger,
	}
}

// ApplyRefund reconciles a refund payload onto the local order. A failed
// credit-memo write leaves the order open and propagates the error; the
// order is only closed once the memo is persisted.
func (r *RefundReconciler) ApplyRefund(ctx context.Context, storeID uuid.UUID, remote marketplace.RemoteOrder, payload marketplace.RefundPayload) error {
	key := fmt.Sprintf("refund:%s:%s", storeID, payload.RemoteOrderID)
	if r.alreadyProcessed(ctx, key) {
		return marketplace.ErrReconciliationSkipped
	}

	localOrder, _, err := r.engine.GetOrCreateOrder(ctx, storeID, remote)
	if err != nil {
		return err
	}

	hasMemo, err := r.memos.ExistsForOrder(ctx, storeID, localOrder.ID)
	if err != nil {
		return fmt.Errorf("check existing credit memo: %w", err)
	}
	if hasMemo {
		return marketplace.ErrReconciliationSkipped
	}

	// A refunded line is refunded in full; partial line quantities are
	// not supported.
	for _, refunded := range payload.Items {
		item := localOrder.ItemBySKU(refunded.RetailerID)
		if item == nil {
			r.logger.Error("refund line references a sku absent from the order",
				zap.String("remote_order_id", payload.RemoteOrderID),
				zap.String("order_id", localOrder.ID.String()),
				zap.String("retailer_id", refunded.RetailerID))
			continue
		}
		item.MarkRefunded()
	}

	impliedTotal, feeDeduction, taxAmount, err := deriveRefundTotals(payload.Amount, localOrder.Currency)
	if err != nil {
		return err
	}
	if feeDeduction.IsPositive() {
		r.logger.Info("platform fee inferred from refund totals",
			zap.String("remote_order_id", payload.RemoteOrderID),
			zap.String("fee", feeDeduction.String()))
	}

	invoice, err := r.ensureInvoice(ctx, storeID, localOrder)
	if err != nil {
		return err
	}

	memo, err := order.NewCreditMemo(storeID, localOrder.ID, invoice.ID,
		payload.Amount.Subtotal, payload.Amount.Shipping,
		taxAmount.Amount(), feeDeduction.Amount(), impliedTotal.Amount())
	if err != nil {
		return err
	}
	if err := r.memos.Save(ctx, memo); err != nil {
		return fmt.Errorf("save credit memo for order %s: %w", localOrder.ID, err)
	}

	localOrder.AddComment(order.RefundAuditComment)
	if err := localOrder.Close(); err != nil {
		return err
	}
	if err := r.orders.Save(ctx, localOrder); err != nil {
		return fmt.Errorf("save order after refund: %w", err)
	}

	r.markProcessed(ctx, key)

	if r.eventBus != nil {
		event := order.NewRefundAppliedEvent(localOrder, payload.RemoteOrderID, memo)
		if err := r.eventBus.Publish(ctx, event); err != nil {
			r.logger.Warn("failed to publish refund event", zap.Error(err))
		}
	}

	return nil
}

// ensureInvoice returns the order's invoice, creating one through the
// standard preparation flow if the order has none yet
func (r *RefundReconciler) ensureInvoice(ctx context.Context, storeID uuid.UUID, localOrder *order.Order) (*order.Invoice, error) {
	invoice, err := r.invoices.FindByOrderID(ctx, storeID, localOrder.ID)
	if err == nil {
		return invoice, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("look up invoice: %w", err)
	}

	invoice, err = order.NewInvoiceForOrder(localOrder)
	if err != nil {
		return nil, err
	}
	if err := r.invoices.Save(ctx, invoice); err != nil {
		return nil, fmt.Errorf("save invoice: %w", err)
	}
	return invoice, nil
}

func (r *RefundReconciler) alreadyProcessed(ctx context.Context, key string) bool {
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

func (r *RefundReconciler) markProcessed(ctx context.Context, key string) {
	if r.idem == nil {
		return
	}
	if _, err := r.idem.MarkProcessed(ctx, key, reconciliationKeyTTL); err != nil {
		r.logger.Warn("failed to mark payload processed", zap.String("key", key), zap.Error(err))
	}
}

// deriveRefundTotals models the marketplace's seller-fee deduction, which
// is not itemized in the payload but changes the grand total. The platform
// reports refunded tax as a negative figure; the local ledger stores it
// positive. The implied order total is what the buyer actually paid; the
// difference between it and the reported refund total is the fee the
// platform withheld. All figures are carried as Money in the order's
// currency so a mismatched operand cannot slip into the credit memo.
func deriveRefundTotals(amount marketplace.RefundAmount, currency valueobject.Currency) (impliedTotal, feeDeduction, taxAmount valueobject.Money, err error) {
	subtotal, err := valueobject.NewMoney(amount.Subtotal, currency)
	if err != nil {
		return impliedTotal, feeDeduction, taxAmount, err
	}
	shipping, err := valueobject.NewMoney(amount.Shipping, currency)
	if err != nil {
		return impliedTotal, feeDeduction, taxAmount, err
	}
	reported, err := valueobject.NewMoney(amount.Total, currency)
	if err != nil {
		return impliedTotal, feeDeduction, taxAmount, err
	}
	tax, err := valueobject.NewMoney(amount.Tax, currency)
	if err != nil {
		return impliedTotal, feeDeduction, taxAmount, err
	}
	taxAmount = tax.Abs()

	gross, err := subtotal.Add(shipping)
	if err != nil {
		return impliedTotal, feeDeduction, taxAmount, err
	}
	impliedTotal, err = gross.Sub(taxAmount)
	if err != nil {
		return impliedTotal, feeDeduction, taxAmount, err
	}
	clamped, err := impliedTotal.LessThan(reported)
	if err != nil {
		return impliedTotal, feeDeduction, taxAmount, err
	}
	if clamped {
		impliedTotal = reported
	}
	feeDeduction, err = impliedTotal.Sub(reported)
	return impliedTotal, feeDeduction, taxAmount, err
}
