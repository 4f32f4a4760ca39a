package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketsync/backend/internal/domain/shared"
)

// Product is the local catalog entry remote order lines resolve against.
// Only the fields the sync flow needs are modeled here; catalog management
// itself lives outside this service.
type Product struct {
	shared.StoreAggregateRoot

	SKU     string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_product_store_sku,priority:2"`
	Name    string          `gorm:"type:varchar(255);not null"`
	Price   decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Enabled bool            `gorm:"not null;default:true"`
}

// TableName returns the database table name
func (Product) TableName() string {
	return "catalog_products"
}

// NewProduct creates a catalog product
func NewProduct(storeID uuid.UUID, sku, name string, price decimal.Decimal) (*Product, error) {
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product SKU cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product price cannot be negative")
	}
	return &Product{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(storeID),
		SKU:                sku,
		Name:               name,
		Price:              price,
		Enabled:            true,
	}, nil
}

// Repository defines catalog product persistence
type Repository interface {
	// Save persists a product
	Save(ctx context.Context, product *Product) error

	// FindBySKU finds a product by store and SKU.
	// Returns shared.ErrNotFound when no product matches.
	FindBySKU(ctx context.Context, storeID uuid.UUID, sku string) (*Product, error)

	// FindByID finds a product by store and id.
	// Returns shared.ErrNotFound when no product matches.
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*Product, error)
}
