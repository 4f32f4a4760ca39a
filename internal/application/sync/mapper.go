package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/marketplace"
	"github.com/marketsync/backend/internal/domain/order"
	"github.com/marketsync/backend/internal/domain/shared/valueobject"
)

// OrderMapper builds a local order aggregate from a remote order payload.
// Monetary figures are taken verbatim from the platform; the mapper never
// recomputes tax, shipping, or pricing.
type OrderMapper struct {
	client   marketplace.CommerceClient
	products ProductResolver
	logger   *zap.Logger
}

// NewOrderMapper creates an order mapper
func NewOrderMapper(client marketplace.CommerceClient, products ProductResolver, logger *zap.Logger) *OrderMapper {
	return &OrderMapper{
		client:   client,
		products: products,
		logger:   logger,
	}
}

// Map converts a remote order into a local order aggregate. Line items
// are fetched through the platform's separate items call. Any unmappable
// shipping method or unresolved product fails the whole order; there is
// no silent fallback.
func (m *OrderMapper) Map(ctx context.Context, storeID uuid.UUID, remote marketplace.RemoteOrder, settings StoreSettings) (*order.Order, error) {
	localOrder, err := order.NewOrder(storeID, remote.BuyerEmail, settings.Currency)
	if err != nil {
		return nil, err
	}

	address := m.mapAddress(remote)
	localOrder.SetAddresses(address, address, true)

	methodCode, err := resolveShippingMethod(settings.ShippingMethods, remote.SelectedShipping.Name)
	if err != nil {
		return nil, err
	}
	localOrder.SetShippingMethod(methodCode, remote.SelectedShipping.Name)

	items, err := m.client.ListOrderItems(ctx, remote.ID)
	if err != nil {
		return nil, fmt.Errorf("list items for order %s: %w", remote.ID, err)
	}

	for _, remoteItem := range items {
		localItem, err := m.mapItem(ctx, storeID, localOrder.ID, remoteItem, settings)
		if err != nil {
			return nil, err
		}
		localOrder.AddItem(localItem)
	}

	discount, description := aggregateOrderPromotions(remote.Promotions)
	localOrder.SetDiscountDescription(description)

	localOrder.SetTotals(order.Totals{
		Subtotal:           remote.Payment.Subtotal,
		TaxAmount:          remote.Payment.Tax,
		ShippingAmount:     remote.SelectedShipping.Price,
		ShippingTaxAmount:  remote.SelectedShipping.Tax,
		DiscountAmount:     discount.Neg(),
		GrandTotal:         remote.Payment.Total,
		BaseSubtotal:       remote.Payment.Subtotal,
		BaseTaxAmount:      remote.Payment.Tax,
		BaseShippingAmount: remote.SelectedShipping.Price,
		BaseDiscountAmount: discount.Neg(),
		BaseGrandTotal:     remote.Payment.Total,
	})

	return localOrder, nil
}

// mapAddress converts the remote shipping address. The billing address is
// cloned from it; the platform only reports a ship-to address.
func (m *OrderMapper) mapAddress(remote marketplace.RemoteOrder) valueobject.Address {
	first, last := remote.ShippingAddress.SplitName()
	return valueobject.NewAddress(
		first, last,
		remote.ShippingAddress.StreetLine(),
		remote.ShippingAddress.City,
		remote.ShippingAddress.Region,
		remote.ShippingAddress.PostalCode,
		remote.ShippingAddress.Country,
		valueobject.WithTelephone(remote.ShippingAddress.Telephone),
		valueobject.WithEmail(remote.BuyerEmail),
	)
}

// mapItem converts one remote line item, resolving the product and the
// price before discount
func (m *OrderMapper) mapItem(ctx context.Context, storeID, orderID uuid.UUID, remoteItem marketplace.RemoteOrderItem, settings StoreSettings) (*order.Item, error) {
	productID, err := m.resolveProduct(ctx, storeID, remoteItem.RetailerID, settings.ProductIdentifier)
	if err != nil {
		return nil, fmt.Errorf("%w: retailer id %q", marketplace.ErrProductNotResolved, remoteItem.RetailerID)
	}

	unitPrice := m.priceBeforeDiscount(ctx, remoteItem)
	qty := decimal.NewFromInt(int64(remoteItem.Quantity))
	rowTotal := remoteItem.PricePerUnit.Mul(qty)

	// Tax percent is derived from the platform's figures, never from a
	// local tax engine. Guard against zero-value rows.
	taxPercent := decimal.Zero
	if !rowTotal.IsZero() {
		taxPercent = remoteItem.Tax.Div(rowTotal).Mul(decimal.NewFromInt(100))
	}

	itemDiscount := decimal.Zero
	for _, promo := range remoteItem.Promotions {
		if !promo.IsOrderLevel() {
			itemDiscount = itemDiscount.Add(promo.Amount)
		}
	}

	return order.NewItem(orderID, productID, remoteItem.RetailerID, remoteItem.Name,
		remoteItem.Quantity, unitPrice, rowTotal, remoteItem.Tax, taxPercent, itemDiscount)
}

// resolveProduct looks the retailer id up in the local catalog per the
// configured identifier mode
func (m *OrderMapper) resolveProduct(ctx context.Context, storeID uuid.UUID, retailerID string, mode ProductIdentifier) (uuid.UUID, error) {
	if mode == ProductIdentifierID {
		return m.products.ByID(ctx, storeID, retailerID)
	}
	return m.products.BySKU(ctx, storeID, retailerID)
}

// priceBeforeDiscount queries the platform's canonical product price and
// falls back to the per-unit price on the order line when the lookup
// fails or the platform has no price on record
func (m *OrderMapper) priceBeforeDiscount(ctx context.Context, remoteItem marketplace.RemoteOrderItem) decimal.Decimal {
	price, found, err := m.client.GetProductPrice(ctx, remoteItem.ProductID)
	if err != nil {
		m.logger.Debug("product price lookup failed, using line price",
			zap.String("remote_product_id", remoteItem.ProductID),
			zap.Error(err))
		return remoteItem.PricePerUnit
	}
	if !found {
		return remoteItem.PricePerUnit
	}
	return price
}

// resolveShippingMethod scans the ordered keyword map and returns the
// first method whose keyword appears in the remote option name,
// case-insensitively. No match is a mapping error; an order with an
// unmappable shipping option must fail loudly rather than ship
// incorrectly.
func resolveShippingMethod(mappings []ShippingMethodMapping, optionName string) (string, error) {
	name := strings.ToLower(optionName)
	for _, mapping := range mappings {
		if mapping.Keyword == "" {
			continue
		}
		if strings.Contains(name, strings.ToLower(mapping.Keyword)) {
			return mapping.Code, nil
		}
	}
	return "", fmt.Errorf("%w: option %q", marketplace.ErrShippingMethodUnmapped, optionName)
}

// aggregateOrderPromotions sums order-level promotion amounts and builds
// the human-readable discount description from "[Sponsor] Campaign"
// labels joined by commas
func aggregateOrderPromotions(promotions []marketplace.Promotion) (decimal.Decimal, string) {
	total := decimal.Zero
	labels := make([]string, 0, len(promotions))
	for _, promo := range promotions {
		if !promo.IsOrderLevel() {
			continue
		}
		total = total.Add(promo.Amount)
		labels = append(labels, promo.Label())
	}
	return total, strings.Join(labels, ", ")
}
