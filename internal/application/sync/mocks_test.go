package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/marketsync/backend/internal/domain/marketplace"
	"github.com/marketsync/backend/internal/domain/order"
	"github.com/marketsync/backend/internal/domain/shared"
)

// MockCommerceClient is a mock implementation of marketplace.CommerceClient
type MockCommerceClient struct {
	mock.Mock
}

func (m *MockCommerceClient) ListOrders(ctx context.Context, storeID uuid.UUID, cursor string) (marketplace.OrderPage, error) {
	args := m.Called(ctx, storeID, cursor)
	return args.Get(0).(marketplace.OrderPage), args.Error(1)
}

func (m *MockCommerceClient) ListOrderItems(ctx context.Context, remoteOrderID string) ([]marketplace.RemoteOrderItem, error) {
	args := m.Called(ctx, remoteOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketplace.RemoteOrderItem), args.Error(1)
}

func (m *MockCommerceClient) Acknowledge(ctx context.Context, storeID uuid.UUID, orders map[uuid.UUID]string) error {
	args := m.Called(ctx, storeID, orders)
	return args.Error(0)
}

func (m *MockCommerceClient) MarkShipped(ctx context.Context, remoteOrderID string, items []marketplace.ShippedItem, tracking marketplace.TrackingInfo, from marketplace.FulfillmentAddress) error {
	args := m.Called(ctx, remoteOrderID, items, tracking, from)
	return args.Error(0)
}

func (m *MockCommerceClient) CancelOrder(ctx context.Context, remoteOrderID string, reasonCode string) error {
	args := m.Called(ctx, remoteOrderID, reasonCode)
	return args.Error(0)
}

func (m *MockCommerceClient) RefundOrder(ctx context.Context, remoteOrderID string, amount marketplace.RefundAmount, reasonCode string) error {
	args := m.Called(ctx, remoteOrderID, amount, reasonCode)
	return args.Error(0)
}

func (m *MockCommerceClient) GetProductPrice(ctx context.Context, remoteProductID string) (decimal.Decimal, bool, error) {
	args := m.Called(ctx, remoteProductID)
	return args.Get(0).(decimal.Decimal), args.Bool(1), args.Error(2)
}

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, storeID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	args := m.Called(ctx, storeID, id)
	return args.Error(0)
}

// MockInvoiceRepository is a mock implementation of order.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *order.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindByOrderID(ctx context.Context, storeID, orderID uuid.UUID) (*order.Invoice, error) {
	args := m.Called(ctx, storeID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Invoice), args.Error(1)
}

// MockCreditMemoRepository is a mock implementation of order.CreditMemoRepository
type MockCreditMemoRepository struct {
	mock.Mock
}

func (m *MockCreditMemoRepository) Save(ctx context.Context, memo *order.CreditMemo) error {
	args := m.Called(ctx, memo)
	return args.Error(0)
}

func (m *MockCreditMemoRepository) ExistsForOrder(ctx context.Context, storeID, orderID uuid.UUID) (bool, error) {
	args := m.Called(ctx, storeID, orderID)
	return args.Bool(0), args.Error(1)
}

// MockOrderLinkRepository is a mock implementation of marketplace.OrderLinkRepository
type MockOrderLinkRepository struct {
	mock.Mock
}

func (m *MockOrderLinkRepository) Create(ctx context.Context, link *marketplace.OrderLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockOrderLinkRepository) FindByRemoteOrderID(ctx context.Context, storeID uuid.UUID, remoteOrderID string) (*marketplace.OrderLink, error) {
	args := m.Called(ctx, storeID, remoteOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.OrderLink), args.Error(1)
}

func (m *MockOrderLinkRepository) FindByLocalOrderID(ctx context.Context, storeID uuid.UUID, localOrderID uuid.UUID) (*marketplace.OrderLink, error) {
	args := m.Called(ctx, storeID, localOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.OrderLink), args.Error(1)
}

func (m *MockOrderLinkRepository) Save(ctx context.Context, link *marketplace.OrderLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

// MockSyncRunRepository is a mock implementation of marketplace.SyncRunRepository
type MockSyncRunRepository struct {
	mock.Mock
}

func (m *MockSyncRunRepository) Save(ctx context.Context, run *marketplace.SyncRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockSyncRunRepository) ListRecent(ctx context.Context, storeID uuid.UUID, limit int) ([]marketplace.SyncRun, error) {
	args := m.Called(ctx, storeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketplace.SyncRun), args.Error(1)
}

// MockSettingsProvider is a mock implementation of SettingsProvider
type MockSettingsProvider struct {
	mock.Mock
}

func (m *MockSettingsProvider) SettingsFor(ctx context.Context, storeID uuid.UUID) (StoreSettings, error) {
	args := m.Called(ctx, storeID)
	return args.Get(0).(StoreSettings), args.Error(1)
}

// MockProductResolver is a mock implementation of ProductResolver
type MockProductResolver struct {
	mock.Mock
}

func (m *MockProductResolver) BySKU(ctx context.Context, storeID uuid.UUID, sku string) (uuid.UUID, error) {
	args := m.Called(ctx, storeID, sku)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockProductResolver) ByID(ctx context.Context, storeID uuid.UUID, id string) (uuid.UUID, error) {
	args := m.Called(ctx, storeID, id)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ shared.IdempotencyStore = (*MockIdempotencyStore)(nil)
