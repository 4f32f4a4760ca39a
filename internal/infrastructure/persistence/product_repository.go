package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketsync/backend/internal/application/sync"
	"github.com/marketsync/backend/internal/domain/catalog"
	"github.com/marketsync/backend/internal/domain/shared"
)

// GormProductRepository implements catalog.Repository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

var _ catalog.Repository = (*GormProductRepository)(nil)

// NewGormProductRepository creates a new product repository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Save persists a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

// FindBySKU finds a product by store and SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, storeID uuid.UUID, sku string) (*catalog.Product, error) {
	var product catalog.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND sku = ?", storeID, sku).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product by sku: %w", err)
	}
	return &product, nil
}

// FindByID finds a product by store and id
func (r *GormProductRepository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, id).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product by id: %w", err)
	}
	return &product, nil
}

// CatalogProductResolver resolves remote retailer ids against the local
// catalog table
type CatalogProductResolver struct {
	products catalog.Repository
}

var _ sync.ProductResolver = (*CatalogProductResolver)(nil)

// NewCatalogProductResolver creates a catalog-backed product resolver
func NewCatalogProductResolver(products catalog.Repository) *CatalogProductResolver {
	return &CatalogProductResolver{products: products}
}

// BySKU resolves a catalog product by SKU
func (r *CatalogProductResolver) BySKU(ctx context.Context, storeID uuid.UUID, sku string) (uuid.UUID, error) {
	product, err := r.products.FindBySKU(ctx, storeID, sku)
	if err != nil {
		return uuid.Nil, err
	}
	return product.ID, nil
}

// ByID resolves a catalog product by internal id string. Retailer ids in
// id mode carry the local product uuid verbatim.
func (r *CatalogProductResolver) ByID(ctx context.Context, storeID uuid.UUID, id string) (uuid.UUID, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, shared.ErrNotFound
	}
	product, err := r.products.FindByID(ctx, storeID, productID)
	if err != nil {
		return uuid.Nil, err
	}
	return product.ID, nil
}
