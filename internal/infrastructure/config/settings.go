package config

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/marketsync/backend/internal/application/sync"
	"github.com/marketsync/backend/internal/domain/marketplace"
	"github.com/marketsync/backend/internal/domain/order"
	"github.com/marketsync/backend/internal/domain/shared/valueobject"
)

// StoreSettingsProvider serves per-store sync settings from configuration.
// Stores without an explicit entry fall back to the configured defaults.
type StoreSettingsProvider struct {
	defaults StoreConfig
	stores   map[uuid.UUID]StoreConfig
}

var _ sync.SettingsProvider = (*StoreSettingsProvider)(nil)

// NewStoreSettingsProvider builds a settings provider from the sync
// configuration. Store entries with an unparsable store id are skipped.
func NewStoreSettingsProvider(cfg SyncConfig) *StoreSettingsProvider {
	stores := make(map[uuid.UUID]StoreConfig, len(cfg.Stores))
	for _, store := range cfg.Stores {
		id, err := uuid.Parse(store.StoreID)
		if err != nil {
			continue
		}
		stores[id] = store
	}
	return &StoreSettingsProvider{
		defaults: cfg.Defaults,
		stores:   stores,
	}
}

// SettingsFor returns the effective settings for a store
func (p *StoreSettingsProvider) SettingsFor(_ context.Context, storeID uuid.UUID) (sync.StoreSettings, error) {
	store, ok := p.stores[storeID]
	if !ok {
		store = p.defaults
	}
	return convertStoreConfig(store, p.defaults), nil
}

func convertStoreConfig(store, defaults StoreConfig) sync.StoreSettings {
	settings := sync.StoreSettings{
		DefaultStatus:                 parseDefaultStatus(firstNonEmpty(store.DefaultStatus, defaults.DefaultStatus)),
		Currency:                      parseCurrency(firstNonEmpty(store.Currency, defaults.Currency)),
		ProductIdentifier:             parseProductIdentifier(firstNonEmpty(store.ProductIdentifier, defaults.ProductIdentifier)),
		UseDefaultFulfillmentLocation: store.UseDefaultFulfillmentLocation,
		RegionNames:                   store.RegionNames,
	}

	methods := store.ShippingMethods
	if len(methods) == 0 {
		methods = defaults.ShippingMethods
	}
	settings.ShippingMethods = make([]sync.ShippingMethodMapping, 0, len(methods))
	for _, m := range methods {
		settings.ShippingMethods = append(settings.ShippingMethods, sync.ShippingMethodMapping{
			Keyword: m.Keyword,
			Code:    m.Code,
		})
	}

	carriers := store.Carriers
	if len(carriers) == 0 {
		carriers = defaults.Carriers
	}
	settings.Carriers = make([]marketplace.SupportedCarrier, 0, len(carriers))
	for _, c := range carriers {
		settings.Carriers = append(settings.Carriers, marketplace.SupportedCarrier{
			Code:  c.Code,
			Title: c.Title,
		})
	}

	addr := store.FulfillmentAddress
	if addr == (AddressConfig{}) {
		addr = defaults.FulfillmentAddress
	}
	settings.FulfillmentAddress = valueobject.NewAddress(
		addr.FirstName, addr.LastName, addr.Street,
		addr.City, addr.Region, addr.PostalCode, addr.Country,
		valueobject.WithTelephone(addr.Telephone),
	)

	if len(settings.RegionNames) == 0 {
		settings.RegionNames = defaults.RegionNames
	}

	return settings
}

func parseDefaultStatus(status string) order.State {
	if strings.EqualFold(status, "new") {
		return order.StateNew
	}
	return order.StateProcessing
}

func parseCurrency(currency string) valueobject.Currency {
	if currency == "" {
		return valueobject.USD
	}
	return valueobject.Currency(strings.ToUpper(currency))
}

func parseProductIdentifier(identifier string) sync.ProductIdentifier {
	if strings.EqualFold(identifier, "id") {
		return sync.ProductIdentifierID
	}
	return sync.ProductIdentifierSKU
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
