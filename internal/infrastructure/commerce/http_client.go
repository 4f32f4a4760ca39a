package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketsync/backend/internal/domain/marketplace"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB max response

// maxItemPages bounds the item pagination loop against a paging block
// that never terminates
const maxItemPages = 50

// HTTPClient implements the marketplace CommerceClient port against the
// platform's HTTPS API. Calls are blocking with a fixed timeout and no
// retries; redelivery semantics are handled above by acknowledgement.
type HTTPClient struct {
	config     *ClientConfig
	httpClient *http.Client

	// storeConfigs holds per-store credentials
	storeConfigs map[uuid.UUID]*ClientConfig
	mu           sync.RWMutex
}

var _ marketplace.CommerceClient = (*HTTPClient)(nil)

// NewHTTPClient creates a client with the given default configuration
func NewHTTPClient(config *ClientConfig) (*HTTPClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &HTTPClient{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		storeConfigs: make(map[uuid.UUID]*ClientConfig),
	}, nil
}

// SetStoreConfig sets the credentials for a specific store
func (c *HTTPClient) SetStoreConfig(storeID uuid.UUID, config *ClientConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeConfigs[storeID] = config
	return nil
}

// storeConfig retrieves the configuration for a store, falling back to
// the default
func (c *HTTPClient) storeConfig(storeID uuid.UUID) (*ClientConfig, error) {
	c.mu.RLock()
	config, ok := c.storeConfigs[storeID]
	c.mu.RUnlock()
	if ok {
		return config, nil
	}
	if c.config != nil {
		return c.config, nil
	}
	return nil, marketplace.ErrPlatformNotConfigured
}

// ListOrders fetches one page of orders in created state
func (c *HTTPClient) ListOrders(ctx context.Context, storeID uuid.UUID, cursor string) (marketplace.OrderPage, error) {
	config, err := c.storeConfig(storeID)
	if err != nil {
		return marketplace.OrderPage{}, err
	}

	query := url.Values{}
	query.Set("state", string(marketplace.RemoteOrderStateCreated))
	query.Set("limit", strconv.Itoa(config.PageSize))
	if cursor != "" {
		query.Set("after", cursor)
	}

	body, err := c.doRequest(ctx, config, http.MethodGet, fmt.Sprintf("/%s/orders", config.ShopID), query, nil)
	if err != nil {
		return marketplace.OrderPage{}, err
	}

	var resp orderListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return marketplace.OrderPage{}, fmt.Errorf("%w: %v", marketplace.ErrPlatformInvalidResponse, err)
	}
	if resp.Error != nil {
		return marketplace.OrderPage{}, fmt.Errorf("%w: %d - %s", marketplace.ErrPlatformRequestFailed, resp.Error.Code, resp.Error.Message)
	}

	page := marketplace.OrderPage{Orders: make([]marketplace.RemoteOrder, 0, len(resp.Data))}
	for _, wire := range resp.Data {
		remote, err := convertWireOrder(wire)
		if err != nil {
			return marketplace.OrderPage{}, err
		}
		page.Orders = append(page.Orders, remote)
	}
	if resp.Paging.Next != "" {
		page.NextCursor = resp.Paging.Cursors.After
	}
	return page, nil
}

// ListOrderItems fetches all line items for an order, following the item
// pagination internally
func (c *HTTPClient) ListOrderItems(ctx context.Context, remoteOrderID string) ([]marketplace.RemoteOrderItem, error) {
	config := c.defaultConfig()
	if config == nil {
		return nil, marketplace.ErrPlatformNotConfigured
	}

	items := make([]marketplace.RemoteOrderItem, 0)
	cursor := ""
	for page := 0; ; page++ {
		if page >= maxItemPages {
			return nil, fmt.Errorf("%w: item paging for order %s exceeded %d pages",
				marketplace.ErrPlatformInvalidResponse, remoteOrderID, maxItemPages)
		}

		query := url.Values{}
		if cursor != "" {
			query.Set("after", cursor)
		}
		body, err := c.doRequest(ctx, config, http.MethodGet, fmt.Sprintf("/%s/items", remoteOrderID), query, nil)
		if err != nil {
			return nil, err
		}

		var resp itemListResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: %v", marketplace.ErrPlatformInvalidResponse, err)
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("%w: %d - %s", marketplace.ErrPlatformRequestFailed, resp.Error.Code, resp.Error.Message)
		}

		for _, wire := range resp.Data {
			item, err := convertWireItem(wire)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}

		if resp.Paging.Next == "" {
			return items, nil
		}
		// A next link without a fresh cursor would re-fetch the same
		// page forever.
		next := resp.Paging.Cursors.After
		if next == "" || next == cursor {
			return nil, fmt.Errorf("%w: item paging cursor did not advance for order %s",
				marketplace.ErrPlatformInvalidResponse, remoteOrderID)
		}
		cursor = next
	}
}

// Acknowledge confirms receipt of orders so the platform stops
// redelivering them
func (c *HTTPClient) Acknowledge(ctx context.Context, storeID uuid.UUID, orders map[uuid.UUID]string) error {
	config, err := c.storeConfig(storeID)
	if err != nil {
		return err
	}

	reqBody := ackRequest{Orders: make([]ackRequestEntry, 0, len(orders))}
	for localID, remoteID := range orders {
		reqBody.Orders = append(reqBody.Orders, ackRequestEntry{
			RemoteOrderID: remoteID,
			MerchantOrder: localID.String(),
		})
	}

	body, err := c.doRequest(ctx, config, http.MethodPost, fmt.Sprintf("/%s/acknowledge_orders", config.ShopID), nil, reqBody)
	if err != nil {
		return err
	}
	return checkSuccess(body)
}

// MarkShipped notifies the platform that items of an order shipped
func (c *HTTPClient) MarkShipped(ctx context.Context, remoteOrderID string, items []marketplace.ShippedItem, tracking marketplace.TrackingInfo, from marketplace.FulfillmentAddress) error {
	config := c.defaultConfig()
	if config == nil {
		return marketplace.ErrPlatformNotConfigured
	}

	var reqBody shipmentRequestBody
	for _, item := range items {
		reqBody.Items = append(reqBody.Items, shipmentItemEntry{
			RetailerID: item.RetailerID,
			Quantity:   item.Quantity,
		})
	}
	reqBody.TrackingInfo.TrackingNumber = tracking.TrackingNumber
	reqBody.TrackingInfo.ShippingMethodName = tracking.ShippingMethodName
	reqBody.TrackingInfo.CarrierCode = tracking.CarrierCode
	reqBody.UseDefaultFulfillmentLocation = from.UseDefault
	if !from.UseDefault {
		reqBody.FulfillmentAddress = &wireAddress{
			Street1:    from.Street1,
			City:       from.City,
			State:      from.State,
			PostalCode: from.PostalCode,
			Country:    from.Country,
		}
	}

	body, err := c.doRequest(ctx, config, http.MethodPost, fmt.Sprintf("/%s/shipments", remoteOrderID), nil, reqBody)
	if err != nil {
		return err
	}
	return checkSuccess(body)
}

// CancelOrder requests cancellation of an order on the platform
func (c *HTTPClient) CancelOrder(ctx context.Context, remoteOrderID string, reasonCode string) error {
	config := c.defaultConfig()
	if config == nil {
		return marketplace.ErrPlatformNotConfigured
	}

	body, err := c.doRequest(ctx, config, http.MethodPost, fmt.Sprintf("/%s/cancellations", remoteOrderID), nil, cancelRequestBody{ReasonCode: reasonCode})
	if err != nil {
		return err
	}
	return checkSuccess(body)
}

// RefundOrder requests a refund for an order on the platform
func (c *HTTPClient) RefundOrder(ctx context.Context, remoteOrderID string, amount marketplace.RefundAmount, reasonCode string) error {
	config := c.defaultConfig()
	if config == nil {
		return marketplace.ErrPlatformNotConfigured
	}

	reqBody := refundRequestBody{ReasonCode: reasonCode}
	reqBody.Amount.Subtotal = amount.Subtotal.String()
	reqBody.Amount.Shipping = amount.Shipping.String()
	reqBody.Amount.Tax = amount.Tax.String()
	reqBody.Amount.Total = amount.Total.String()

	body, err := c.doRequest(ctx, config, http.MethodPost, fmt.Sprintf("/%s/refunds", remoteOrderID), nil, reqBody)
	if err != nil {
		return err
	}
	return checkSuccess(body)
}

// GetProductPrice looks up the platform's canonical price for a product.
// A product without a price on record returns found=false.
func (c *HTTPClient) GetProductPrice(ctx context.Context, remoteProductID string) (decimal.Decimal, bool, error) {
	config := c.defaultConfig()
	if config == nil {
		return decimal.Zero, false, marketplace.ErrPlatformNotConfigured
	}

	query := url.Values{}
	query.Set("fields", "id,price")
	body, err := c.doRequest(ctx, config, http.MethodGet, fmt.Sprintf("/%s", remoteProductID), query, nil)
	if err != nil {
		return decimal.Zero, false, err
	}

	var resp productResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return decimal.Zero, false, fmt.Errorf("%w: %v", marketplace.ErrPlatformInvalidResponse, err)
	}
	if resp.Error != nil {
		return decimal.Zero, false, fmt.Errorf("%w: %d - %s", marketplace.ErrPlatformRequestFailed, resp.Error.Code, resp.Error.Message)
	}
	if resp.Price == "" {
		return decimal.Zero, false, nil
	}
	price, err := parseAmount(resp.Price)
	if err != nil {
		return decimal.Zero, false, err
	}
	return price, true, nil
}

func (c *HTTPClient) defaultConfig() *ClientConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// doRequest performs an HTTP request against the platform API
func (c *HTTPClient) doRequest(ctx context.Context, config *ClientConfig, method, path string, query url.Values, payload any) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("access_token", config.AccessToken)
	query.Set("appsecret_proof", config.Proof())

	requestURL := fmt.Sprintf("%s%s?%s", config.APIBaseURL, path, query.Encode())

	var bodyReader io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marketplace: failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("marketplace: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", marketplace.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("marketplace: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: HTTP %d", marketplace.ErrPlatformAuthFailed, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: HTTP %d", marketplace.ErrPlatformRateLimited, resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: HTTP %d", marketplace.ErrPlatformUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: HTTP %d", marketplace.ErrPlatformRequestFailed, resp.StatusCode)
	}

	return body, nil
}

// checkSuccess parses a generic mutation response
func checkSuccess(body []byte) error {
	var resp successResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%w: %v", marketplace.ErrPlatformInvalidResponse, err)
	}
	if resp.Error != nil {
		return fmt.Errorf("%w: %d - %s", marketplace.ErrPlatformRequestFailed, resp.Error.Code, resp.Error.Message)
	}
	if !resp.Success {
		return fmt.Errorf("%w: call not successful", marketplace.ErrPlatformRequestFailed)
	}
	return nil
}

// parseAmount parses a decimal string off the wire
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: bad amount %q", marketplace.ErrPlatformInvalidResponse, s)
	}
	return d, nil
}

// convertWireOrder converts a wire order to the domain payload
func convertWireOrder(wire wireOrder) (marketplace.RemoteOrder, error) {
	shippingPrice, err := parseAmount(wire.SelectedShipping.Price)
	if err != nil {
		return marketplace.RemoteOrder{}, err
	}
	shippingTax, err := parseAmount(wire.SelectedShipping.CalculatedTax)
	if err != nil {
		return marketplace.RemoteOrder{}, err
	}
	subtotal, err := parseAmount(wire.Payment.Subtotal)
	if err != nil {
		return marketplace.RemoteOrder{}, err
	}
	tax, err := parseAmount(wire.Payment.Tax)
	if err != nil {
		return marketplace.RemoteOrder{}, err
	}
	total, err := parseAmount(wire.Payment.TotalAmount)
	if err != nil {
		return marketplace.RemoteOrder{}, err
	}
	promotions, err := convertWirePromotions(wire.Promotions)
	if err != nil {
		return marketplace.RemoteOrder{}, err
	}

	return marketplace.RemoteOrder{
		ID:         wire.ID,
		State:      marketplace.RemoteOrderState(wire.State),
		BuyerEmail: wire.Buyer.Email,
		ShippingAddress: marketplace.RemoteAddress{
			Name:       wire.ShippingAddress.Name,
			FirstName:  wire.ShippingAddress.FirstName,
			LastName:   wire.ShippingAddress.LastName,
			Street1:    wire.ShippingAddress.Street1,
			Street2:    wire.ShippingAddress.Street2,
			City:       wire.ShippingAddress.City,
			Region:     wire.ShippingAddress.State,
			PostalCode: wire.ShippingAddress.PostalCode,
			Country:    wire.ShippingAddress.Country,
			Telephone:  wire.ShippingAddress.Telephone,
		},
		SelectedShipping: marketplace.ShippingOption{
			Name:  wire.SelectedShipping.Name,
			Price: shippingPrice,
			Tax:   shippingTax,
		},
		Payment: marketplace.PaymentDetails{
			Subtotal: subtotal,
			Tax:      tax,
			Total:    total,
		},
		Promotions: promotions,
		Channel:    wire.Channel,
		EmailOptIn: wire.Buyer.EmailOptIn,
		CreatedAt:  wire.CreatedAt,
	}, nil
}

// convertWireItem converts a wire line item to the domain payload
func convertWireItem(wire wireItem) (marketplace.RemoteOrderItem, error) {
	price, err := parseAmount(wire.PricePerUnit)
	if err != nil {
		return marketplace.RemoteOrderItem{}, err
	}
	tax, err := parseAmount(wire.TaxDetails.EstimatedTax)
	if err != nil {
		return marketplace.RemoteOrderItem{}, err
	}
	promotions, err := convertWirePromotions(wire.Promotions)
	if err != nil {
		return marketplace.RemoteOrderItem{}, err
	}
	return marketplace.RemoteOrderItem{
		RetailerID:   wire.RetailerID,
		ProductID:    wire.ProductID,
		Name:         wire.ProductName,
		Quantity:     wire.Quantity,
		PricePerUnit: price,
		Tax:          tax,
		Promotions:   promotions,
	}, nil
}

func convertWirePromotions(wires []wirePromotion) ([]marketplace.Promotion, error) {
	if len(wires) == 0 {
		return nil, nil
	}
	promotions := make([]marketplace.Promotion, 0, len(wires))
	for _, wire := range wires {
		amount, err := parseAmount(wire.Amount)
		if err != nil {
			return nil, err
		}
		promotions = append(promotions, marketplace.Promotion{
			TargetGranularity: wire.TargetGranularity,
			Sponsor:           wire.Sponsor,
			Campaign:          wire.CampaignName,
			Amount:            amount,
		})
	}
	return promotions, nil
}
