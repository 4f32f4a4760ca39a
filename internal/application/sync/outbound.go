package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/marketplace"
	"github.com/marketsync/backend/internal/domain/shared"
)

// Inbound bundles the two reconcilers behind the InboundReconciliation
// interface for callers that dispatch both payload kinds
type Inbound struct {
	*CancellationReconciler
	*RefundReconciler
}

var _ InboundReconciliation = (*Inbound)(nil)

// NewInbound creates the inbound reconciliation facade
func NewInbound(cancellations *CancellationReconciler, refunds *RefundReconciler) *Inbound {
	return &Inbound{
		CancellationReconciler: cancellations,
		RefundReconciler:       refunds,
	}
}

// OutboundActions issues locally initiated cancel and refund requests to
// the platform. This is the outbound direction; it never mutates local
// order state, which is reconciled when the platform's own payload comes
// back inbound.
type OutboundActions struct {
	client marketplace.CommerceClient
	links  marketplace.OrderLinkRepository
	logger *zap.Logger
}

var _ OutboundOrderActions = (*OutboundActions)(nil)

// NewOutboundActions creates the outbound actions service
func NewOutboundActions(client marketplace.CommerceClient, links marketplace.OrderLinkRepository, logger *zap.Logger) *OutboundActions {
	return &OutboundActions{
		client: client,
		links:  links,
		logger: logger,
	}
}

// RequestCancellation asks the platform to cancel a linked order
func (a *OutboundActions) RequestCancellation(ctx context.Context, storeID, localOrderID uuid.UUID, reasonCode string) error {
	link, err := a.lookupLink(ctx, storeID, localOrderID)
	if err != nil {
		return err
	}
	if err := a.client.CancelOrder(ctx, link.RemoteOrderID, reasonCode); err != nil {
		return fmt.Errorf("cancel order %s: %w", link.RemoteOrderID, err)
	}
	a.logger.Info("cancellation requested on the platform",
		zap.String("remote_order_id", link.RemoteOrderID),
		zap.String("reason_code", reasonCode))
	return nil
}

// RequestRefund asks the platform to refund a linked order
func (a *OutboundActions) RequestRefund(ctx context.Context, storeID, localOrderID uuid.UUID, amount marketplace.RefundAmount, reasonCode string) error {
	link, err := a.lookupLink(ctx, storeID, localOrderID)
	if err != nil {
		return err
	}
	if err := a.client.RefundOrder(ctx, link.RemoteOrderID, amount, reasonCode); err != nil {
		return fmt.Errorf("refund order %s: %w", link.RemoteOrderID, err)
	}
	a.logger.Info("refund requested on the platform",
		zap.String("remote_order_id", link.RemoteOrderID),
		zap.String("reason_code", reasonCode))
	return nil
}

func (a *OutboundActions) lookupLink(ctx context.Context, storeID, localOrderID uuid.UUID) (*marketplace.OrderLink, error) {
	link, err := a.links.FindByLocalOrderID(ctx, storeID, localOrderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, marketplace.ErrOrderNotLinked
		}
		return nil, fmt.Errorf("look up order link: %w", err)
	}
	return link, nil
}
