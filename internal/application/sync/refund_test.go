package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/marketsync/backend/internal/domain/marketplace"
	"github.com/marketsync/backend/internal/domain/order"
	"github.com/marketsync/backend/internal/domain/shared"
	"github.com/marketsync/backend/internal/domain/shared/valueobject"
)

func testRefundPayload(remoteOrderID string) marketplace.RefundPayload {
	return marketplace.RefundPayload{
		RemoteOrderID: remoteOrderID,
		Items:         []marketplace.RefundedItem{{RetailerID: "SKU-1"}, {RetailerID: "SKU-2"}},
		Amount: marketplace.RefundAmount{
			Subtotal: decimal.NewFromInt(80),
			Shipping: decimal.NewFromInt(10),
			Tax:      decimal.NewFromInt(-5),
			Total:    decimal.NewFromInt(70),
		},
		ReasonCode: "BUYERS_REMORSE",
	}
}

func TestDeriveRefundTotals(t *testing.T) {
	tests := []struct {
		name        string
		amount      marketplace.RefundAmount
		wantImplied string
		wantFee     string
		wantTax     string
	}{
		{
			name: "fee inferred from implied total",
			amount: marketplace.RefundAmount{
				Subtotal: decimal.NewFromInt(80),
				Shipping: decimal.NewFromInt(10),
				Tax:      decimal.NewFromInt(-5),
				Total:    decimal.NewFromInt(70),
			},
			wantImplied: "85", wantFee: "15", wantTax: "5",
		},
		{
			name: "no fee when totals agree",
			amount: marketplace.RefundAmount{
				Subtotal: decimal.NewFromInt(80),
				Shipping: decimal.NewFromInt(10),
				Tax:      decimal.NewFromInt(-5),
				Total:    decimal.NewFromInt(85),
			},
			wantImplied: "85", wantFee: "0", wantTax: "5",
		},
		{
			name: "implied total clamped to reported total",
			amount: marketplace.RefundAmount{
				Subtotal: decimal.NewFromInt(50),
				Shipping: decimal.Zero,
				Tax:      decimal.NewFromInt(-5),
				Total:    decimal.NewFromInt(50),
			},
			wantImplied: "50", wantFee: "0", wantTax: "5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			implied, fee, tax, err := deriveRefundTotals(tt.amount, valueobject.EUR)
			require.NoError(t, err)
			assert.True(t, implied.Amount().Equal(decimal.RequireFromString(tt.wantImplied)), "implied: %s", implied)
			assert.True(t, fee.Amount().Equal(decimal.RequireFromString(tt.wantFee)), "fee: %s", fee)
			assert.True(t, tax.Amount().Equal(decimal.RequireFromString(tt.wantTax)), "tax: %s", tax)
			// Every derived figure carries the order's currency.
			assert.Equal(t, valueobject.EUR, implied.Currency())
			assert.Equal(t, valueobject.EUR, fee.Currency())
			assert.Equal(t, valueobject.EUR, tax.Currency())
		})
	}
}

func TestDeriveRefundTotals_RequiresCurrency(t *testing.T) {
	_, _, _, err := deriveRefundTotals(testRefundPayload("FB-1001").Amount, "")
	assert.Error(t, err)
}

func TestApplyRefund_IssuesCreditMemoAndClosesOrder(t *testing.T) {
	f := newReconcilerFixture()
	storeID := uuid.New()
	localOrder := makeOrderWithItems(t, storeID)
	remote := testRemoteOrder("FB-1001")

	f.idem.On("IsProcessed", mock.Anything, mock.Anything).Return(false, nil)
	f.idem.On("MarkProcessed", mock.Anything, "refund:"+storeID.String()+":"+remote.ID, reconciliationKeyTTL).Return(true, nil)
	f.linkedOrder(storeID, remote.ID, localOrder)
	f.memos.On("ExistsForOrder", mock.Anything, storeID, localOrder.ID).Return(false, nil).Once()

	invoice, _ := order.NewInvoiceForOrder(localOrder)
	f.invoices.On("FindByOrderID", mock.Anything, storeID, localOrder.ID).Return(invoice, nil).Once()

	var savedMemo *order.CreditMemo
	f.memos.On("Save", mock.Anything, mock.AnythingOfType("*order.CreditMemo")).
		Run(func(args mock.Arguments) { savedMemo = args.Get(1).(*order.CreditMemo) }).
		Return(nil).Once()
	f.orders.On("Save", mock.Anything, localOrder).Return(nil).Once()

	err := f.refunds.ApplyRefund(context.Background(), storeID, remote, testRefundPayload(remote.ID))

	assert.NoError(t, err)
	assert.NotNil(t, savedMemo)
	assert.True(t, savedMemo.GrandTotal.Equal(decimal.NewFromInt(85)))
	assert.True(t, savedMemo.AdjustmentNegative.Equal(decimal.NewFromInt(15)))
	assert.True(t, savedMemo.TaxAmount.Equal(decimal.NewFromInt(5)))
	assert.True(t, savedMemo.Subtotal.Equal(decimal.NewFromInt(80)))
	assert.True(t, savedMemo.ShippingAmount.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, order.RefundAuditComment, savedMemo.Comment)
	assert.Equal(t, invoice.ID, savedMemo.InvoiceID)

	assert.True(t, localOrder.IsClosed())
	assert.Equal(t, 2, localOrder.ItemBySKU("SKU-1").QtyRefunded)
	assert.Equal(t, 1, localOrder.ItemBySKU("SKU-2").QtyRefunded)
	assert.Len(t, localOrder.Comments, 1)
	assert.Equal(t, order.RefundAuditComment, localOrder.Comments[0].Message)
}

func TestApplyRefund_CreatesInvoiceWhenMissing(t *testing.T) {
	f := newReconcilerFixture()
	storeID := uuid.New()
	localOrder := makeOrderWithItems(t, storeID)
	remote := testRemoteOrder("FB-1001")

	f.idem.On("IsProcessed", mock.Anything, mock.Anything).Return(false, nil)
	f.idem.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	f.linkedOrder(storeID, remote.ID, localOrder)
	f.memos.On("ExistsForOrder", mock.Anything, storeID, localOrder.ID).Return(false, nil).Once()
	f.invoices.On("FindByOrderID", mock.Anything, storeID, localOrder.ID).Return(nil, shared.ErrNotFound).Once()
	f.invoices.On("Save", mock.Anything, mock.AnythingOfType("*order.Invoice")).Return(nil).Once()
	f.memos.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
	f.orders.On("Save", mock.Anything, localOrder).Return(nil).Once()

	err := f.refunds.ApplyRefund(context.Background(), storeID, remote, testRefundPayload(remote.ID))

	assert.NoError(t, err)
	f.invoices.AssertExpectations(t)
}

func TestApplyRefund_ExistingMemoIsSkipped(t *testing.T) {
	f := newReconcilerFixture()
	storeID := uuid.New()
	localOrder := makeOrderWithItems(t, storeID)
	remote := testRemoteOrder("FB-1001")

	f.idem.On("IsProcessed", mock.Anything, mock.Anything).Return(false, nil)
	f.linkedOrder(storeID, remote.ID, localOrder)
	f.memos.On("ExistsForOrder", mock.Anything, storeID, localOrder.ID).Return(true, nil).Once()

	err := f.refunds.ApplyRefund(context.Background(), storeID, remote, testRefundPayload(remote.ID))

	assert.ErrorIs(t, err, marketplace.ErrReconciliationSkipped)
	assert.False(t, localOrder.IsClosed())
	f.memos.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestApplyRefund_FailedMemoWriteLeavesOrderOpen(t *testing.T) {
	f := newReconcilerFixture()
	storeID := uuid.New()
	localOrder := makeOrderWithItems(t, storeID)
	remote := testRemoteOrder("FB-1001")

	f.idem.On("IsProcessed", mock.Anything, mock.Anything).Return(false, nil)
	f.linkedOrder(storeID, remote.ID, localOrder)
	f.memos.On("ExistsForOrder", mock.Anything, storeID, localOrder.ID).Return(false, nil).Once()

	invoice, _ := order.NewInvoiceForOrder(localOrder)
	f.invoices.On("FindByOrderID", mock.Anything, storeID, localOrder.ID).Return(invoice, nil).Once()
	f.memos.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	err := f.refunds.ApplyRefund(context.Background(), storeID, remote, testRefundPayload(remote.ID))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.False(t, localOrder.IsClosed())
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.idem.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyRefund_UnknownSKULineIsSkipped(t *testing.T) {
	f := newReconcilerFixture()
	storeID := uuid.New()
	localOrder := makeOrderWithItems(t, storeID)
	remote := testRemoteOrder("FB-1001")

	f.idem.On("IsProcessed", mock.Anything, mock.Anything).Return(false, nil)
	f.idem.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	f.linkedOrder(storeID, remote.ID, localOrder)
	f.memos.On("ExistsForOrder", mock.Anything, storeID, localOrder.ID).Return(false, nil).Once()

	invoice, _ := order.NewInvoiceForOrder(localOrder)
	f.invoices.On("FindByOrderID", mock.Anything, storeID, localOrder.ID).Return(invoice, nil).Once()
	f.memos.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
	f.orders.On("Save", mock.Anything, localOrder).Return(nil).Once()

	payload := testRefundPayload(remote.ID)
	payload.Items = []marketplace.RefundedItem{{RetailerID: "GHOST-SKU"}, {RetailerID: "SKU-1"}}

	err := f.refunds.ApplyRefund(context.Background(), storeID, remote, payload)

	assert.NoError(t, err)
	assert.Equal(t, 2, localOrder.ItemBySKU("SKU-1").QtyRefunded)
	assert.Equal(t, 0, localOrder.ItemBySKU("SKU-2").QtyRefunded)
}
