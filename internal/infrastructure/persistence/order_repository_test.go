package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marketsync/backend/internal/domain/marketplace"
	"github.com/marketsync/backend/internal/domain/order"
	"github.com/marketsync/backend/internal/domain/shared"
	"github.com/marketsync/backend/internal/domain/shared/valueobject"
)

func setupOrderTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&order.Order{},
		&order.Item{},
		&order.Comment{},
		&order.Invoice{},
		&order.CreditMemo{},
		&marketplace.OrderLink{},
		&marketplace.SyncRun{},
	)
	require.NoError(t, err)

	return db
}

func makeTestOrder(t *testing.T, storeID uuid.UUID) *order.Order {
	t.Helper()
	o, err := order.NewOrder(storeID, "buyer@example.com", valueobject.USD)
	require.NoError(t, err)

	o.SetAddresses(
		valueobject.NewAddress("Jane", "Smith", "123 Main St", "Springfield", "CA", "94025", "US"),
		valueobject.EmptyAddress(), true)
	o.SetShippingMethod("flatrate_flatrate", "Standard Shipping")
	o.SetTotals(order.Totals{
		Subtotal:   decimal.NewFromInt(100),
		TaxAmount:  decimal.NewFromInt(8),
		GrandTotal: decimal.NewFromInt(113),
	})

	item, err := order.NewItem(o.ID, uuid.New(), "SKU-1", "Widget", 2,
		decimal.NewFromInt(50), decimal.NewFromInt(100), decimal.NewFromInt(8),
		decimal.NewFromInt(8), decimal.Zero)
	require.NoError(t, err)
	o.AddItem(item)
	o.AddComment("Order imported")
	return o
}

func TestGormOrderRepository_SaveAndFindByID(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	o := makeTestOrder(t, storeID)

	require.NoError(t, repo.Save(ctx, o))

	found, err := repo.FindByID(ctx, storeID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, found.ID)
	assert.Equal(t, order.StateNew, found.State)
	assert.Equal(t, "buyer@example.com", found.CustomerEmail)
	assert.Equal(t, "flatrate_flatrate", found.ShippingMethod)
	assert.True(t, found.Totals.GrandTotal.Equal(decimal.NewFromInt(113)))
	assert.Equal(t, "Jane", found.BillingAddress.FirstName())
	assert.True(t, found.ShippingAddress.Equals(found.BillingAddress))

	require.Len(t, found.Items, 1)
	assert.Equal(t, "SKU-1", found.Items[0].SKU)
	assert.True(t, found.Items[0].RowTotal.Equal(decimal.NewFromInt(100)))
	require.Len(t, found.Comments, 1)
	assert.Equal(t, "Order imported", found.Comments[0].Message)
}

func TestGormOrderRepository_SavePersistsStateChanges(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	o := makeTestOrder(t, storeID)
	require.NoError(t, repo.Save(ctx, o))

	require.NoError(t, o.BeginProcessing())
	require.NoError(t, o.ItemBySKU("SKU-1").Cancel(1))
	require.NoError(t, repo.Save(ctx, o))

	found, err := repo.FindByID(ctx, storeID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StateProcessing, found.State)
	assert.Equal(t, 1, found.Items[0].QtyCanceled)
	assert.True(t, found.Items[0].TaxCanceled.Equal(decimal.NewFromInt(4)))
}

func TestGormOrderRepository_FindByID_WrongStore(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := makeTestOrder(t, uuid.New())
	require.NoError(t, repo.Save(ctx, o))

	_, err := repo.FindByID(ctx, uuid.New(), o.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_Delete(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	o := makeTestOrder(t, storeID)
	require.NoError(t, repo.Save(ctx, o))

	require.NoError(t, repo.Delete(ctx, storeID, o.ID))

	_, err := repo.FindByID(ctx, storeID, o.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// Items are gone too.
	var count int64
	require.NoError(t, db.Model(&order.Item{}).Where("order_id = ?", o.ID).Count(&count).Error)
	assert.Zero(t, count)

	assert.ErrorIs(t, repo.Delete(ctx, storeID, o.ID), shared.ErrNotFound)
}

func TestGormOrderLinkRepository_SQLiteUniqueConstraint(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderLinkRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	link, err := marketplace.NewOrderLink(storeID, "FB-1001", uuid.New(), "marketplace", false)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, link))

	duplicate, err := marketplace.NewOrderLink(storeID, "FB-1001", uuid.New(), "marketplace", false)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, duplicate), shared.ErrAlreadyExists)

	found, err := repo.FindByRemoteOrderID(ctx, storeID, "FB-1001")
	require.NoError(t, err)
	assert.Equal(t, link.LocalOrderID, found.LocalOrderID)

	found.MarkShipmentSynced("SHIP-1")
	require.NoError(t, repo.Save(ctx, found))

	reloaded, err := repo.FindByLocalOrderID(ctx, storeID, link.LocalOrderID)
	require.NoError(t, err)
	assert.True(t, reloaded.HasSyncedShipment("SHIP-1"))
}

func TestGormFinanceRepositories(t *testing.T) {
	db := setupOrderTestDB(t)
	invoices := NewGormInvoiceRepository(db)
	memos := NewGormCreditMemoRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	o := makeTestOrder(t, storeID)

	_, err := invoices.FindByOrderID(ctx, storeID, o.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	inv, err := order.NewInvoiceForOrder(o)
	require.NoError(t, err)
	require.NoError(t, invoices.Save(ctx, inv))

	found, err := invoices.FindByOrderID(ctx, storeID, o.ID)
	require.NoError(t, err)
	assert.True(t, found.GrandTotal.Equal(decimal.NewFromInt(113)))

	exists, err := memos.ExistsForOrder(ctx, storeID, o.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	memo, err := order.NewCreditMemo(storeID, o.ID, inv.ID,
		decimal.NewFromInt(80), decimal.NewFromInt(10), decimal.NewFromInt(5),
		decimal.NewFromInt(15), decimal.NewFromInt(85))
	require.NoError(t, err)
	require.NoError(t, memos.Save(ctx, memo))

	exists, err = memos.ExistsForOrder(ctx, storeID, o.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGormSyncRunRepository_ListRecent(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormSyncRunRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	for i := 0; i < 3; i++ {
		run := marketplace.NewSyncRun(storeID)
		run.Finish(i, i, nil)
		require.NoError(t, repo.Save(ctx, run))
	}

	runs, err := repo.ListRecent(ctx, storeID, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	runs, err = repo.ListRecent(ctx, uuid.New(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
