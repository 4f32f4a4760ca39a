package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/marketsync/backend/internal/domain/shared/valueobject"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder(uuid.New(), "buyer@example.com", valueobject.USD)
	assert.NoError(t, err)
	return o
}

func newTestItem(t *testing.T, orderID uuid.UUID, sku string, qty int, tax string) *Item {
	t.Helper()
	item, err := NewItem(orderID, uuid.New(), sku, "Widget", qty,
		decimal.NewFromInt(50), decimal.NewFromInt(50).Mul(decimal.NewFromInt(int64(qty))),
		decimal.RequireFromString(tax), decimal.NewFromInt(8), decimal.Zero)
	assert.NoError(t, err)
	return item
}

func TestNewOrder_RequiresCurrency(t *testing.T) {
	_, err := NewOrder(uuid.New(), "buyer@example.com", "")
	assert.Error(t, err)
}

func TestOrder_StateTransitions(t *testing.T) {
	o := newTestOrder(t)
	assert.Equal(t, StateNew, o.State)

	assert.NoError(t, o.BeginProcessing())
	assert.Equal(t, StateProcessing, o.State)

	// Already processing, cannot begin again.
	assert.Error(t, o.BeginProcessing())

	assert.NoError(t, o.Close())
	assert.True(t, o.IsClosed())
	assert.Error(t, o.Close())
}

func TestOrder_CloseFromNewState(t *testing.T) {
	o := newTestOrder(t)
	assert.NoError(t, o.Close())
	assert.True(t, o.IsClosed())
}

func TestOrder_SetAddressesCloning(t *testing.T) {
	o := newTestOrder(t)
	billing := valueobject.NewAddress("Jane", "Smith", "123 Main St", "Springfield", "CA", "94025", "US")
	other := valueobject.NewAddress("John", "Doe", "9 Side St", "Shelbyville", "OR", "97001", "US")

	o.SetAddresses(billing, other, true)
	assert.True(t, o.ShippingAddress.Equals(billing))
	assert.True(t, o.ShippingSameAsBilling)

	o.SetAddresses(billing, other, false)
	assert.True(t, o.ShippingAddress.Equals(other))
	assert.False(t, o.ShippingSameAsBilling)
}

func TestOrder_ItemLookupAndTotals(t *testing.T) {
	o := newTestOrder(t)
	o.AddItem(newTestItem(t, o.ID, "SKU-1", 2, "8"))
	o.AddItem(newTestItem(t, o.ID, "SKU-2", 1, "4"))

	assert.Equal(t, 3, o.TotalQtyOrdered())
	assert.NotNil(t, o.ItemBySKU("SKU-1"))
	assert.Nil(t, o.ItemBySKU("GHOST"))
	assert.Equal(t, o.ID, o.Items[0].OrderID)
}

func TestOrder_HasCanceledItems(t *testing.T) {
	o := newTestOrder(t)
	o.AddItem(newTestItem(t, o.ID, "SKU-1", 2, "8"))
	assert.False(t, o.HasCanceledItems())

	assert.NoError(t, o.ItemBySKU("SKU-1").Cancel(1))
	assert.True(t, o.HasCanceledItems())
}

func TestItem_CancelProratesTax(t *testing.T) {
	item := newTestItem(t, uuid.New(), "SKU-1", 4, "10")

	assert.NoError(t, item.Cancel(1))
	assert.Equal(t, 1, item.QtyCanceled)
	assert.True(t, item.TaxCanceled.Equal(decimal.RequireFromString("2.5")), "got %s", item.TaxCanceled)
}

func TestItem_CancelCapsAtOrderedQuantity(t *testing.T) {
	item := newTestItem(t, uuid.New(), "SKU-1", 2, "8")

	assert.NoError(t, item.Cancel(99))
	assert.Equal(t, 2, item.QtyCanceled)
	assert.True(t, item.TaxCanceled.Equal(decimal.NewFromInt(8)))
}

func TestItem_CancelRejectsNonPositiveQuantity(t *testing.T) {
	item := newTestItem(t, uuid.New(), "SKU-1", 2, "8")
	assert.Error(t, item.Cancel(0))
	assert.Error(t, item.Cancel(-1))
}

func TestItem_MarkRefunded(t *testing.T) {
	item := newTestItem(t, uuid.New(), "SKU-1", 3, "8")
	item.MarkRefunded()
	assert.Equal(t, 3, item.QtyRefunded)
}

func TestNewItem_Validation(t *testing.T) {
	orderID := uuid.New()

	_, err := NewItem(orderID, uuid.Nil, "SKU-1", "Widget", 1,
		decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero)
	assert.Error(t, err)

	_, err = NewItem(orderID, uuid.New(), "", "Widget", 1,
		decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero)
	assert.Error(t, err)

	_, err = NewItem(orderID, uuid.New(), "SKU-1", "Widget", 0,
		decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero)
	assert.Error(t, err)
}

func TestNewInvoiceForOrder(t *testing.T) {
	o := newTestOrder(t)
	o.SetTotals(Totals{
		Subtotal:       decimal.NewFromInt(100),
		TaxAmount:      decimal.NewFromInt(8),
		ShippingAmount: decimal.NewFromInt(5),
		GrandTotal:     decimal.NewFromInt(113),
	})

	inv, err := NewInvoiceForOrder(o)
	assert.NoError(t, err)
	assert.Equal(t, o.ID, inv.OrderID)
	assert.True(t, inv.GrandTotal.Equal(decimal.NewFromInt(113)))
	assert.True(t, inv.Subtotal.Equal(decimal.NewFromInt(100)))
}

func TestNewInvoiceForOrder_RejectsClosedOrder(t *testing.T) {
	o := newTestOrder(t)
	assert.NoError(t, o.Close())

	_, err := NewInvoiceForOrder(o)
	assert.Error(t, err)

	_, err = NewInvoiceForOrder(nil)
	assert.Error(t, err)
}

func TestNewCreditMemo(t *testing.T) {
	storeID := uuid.New()
	orderID := uuid.New()
	invoiceID := uuid.New()

	memo, err := NewCreditMemo(storeID, orderID, invoiceID,
		decimal.NewFromInt(80), decimal.NewFromInt(10), decimal.NewFromInt(5),
		decimal.NewFromInt(15), decimal.NewFromInt(85))
	assert.NoError(t, err)
	assert.Equal(t, RefundAuditComment, memo.Comment)
	assert.True(t, memo.AdjustmentNegative.Equal(decimal.NewFromInt(15)))

	_, err = NewCreditMemo(storeID, uuid.Nil, invoiceID,
		decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero)
	assert.Error(t, err)

	_, err = NewCreditMemo(storeID, orderID, uuid.Nil,
		decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero)
	assert.Error(t, err)

	// Refunded tax is stored positive.
	_, err = NewCreditMemo(storeID, orderID, invoiceID,
		decimal.Zero, decimal.Zero, decimal.NewFromInt(-5), decimal.Zero, decimal.Zero)
	assert.Error(t, err)

	_, err = NewCreditMemo(storeID, orderID, invoiceID,
		decimal.Zero, decimal.Zero, decimal.Zero, decimal.NewFromInt(-1), decimal.Zero)
	assert.Error(t, err)
}
