package commerce

// Wire types for the marketplace API. Monetary amounts travel as decimal
// strings and are parsed without float conversion.

// apiEnvelope is the common error envelope on every response
type apiEnvelope struct {
	Error *apiError `json:"error,omitempty"`
}

// apiError is the platform's error payload
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// paging carries the platform's cursor pagination block
type paging struct {
	Cursors struct {
		After string `json:"after"`
	} `json:"cursors"`
	Next string `json:"next,omitempty"`
}

// wireAddress is an address as it appears on the wire. Older payloads
// carry only name, newer ones first_name/last_name.
type wireAddress struct {
	Name       string `json:"name,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Street1    string `json:"street1"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Telephone  string `json:"telephone,omitempty"`
}

// wirePromotion is a discount entry on the wire
type wirePromotion struct {
	TargetGranularity string `json:"target_granularity"`
	Sponsor           string `json:"sponsor,omitempty"`
	CampaignName      string `json:"campaign_name,omitempty"`
	Amount            string `json:"amount"`
}

// wireShippingOption is the selected shipping option on the wire
type wireShippingOption struct {
	Name          string `json:"name"`
	Price         string `json:"price"`
	CalculatedTax string `json:"calculated_tax"`
}

// wirePaymentDetails carries the platform-calculated totals
type wirePaymentDetails struct {
	Subtotal    string `json:"subtotal"`
	Tax         string `json:"tax"`
	TotalAmount string `json:"total_amount"`
}

// wireBuyer is the buyer contact block
type wireBuyer struct {
	Email      string `json:"email"`
	EmailOptIn bool   `json:"email_remarketing_option"`
}

// wireOrder is one order in the listing response
type wireOrder struct {
	ID               string             `json:"id"`
	State            string             `json:"order_status"`
	CreatedAt        string             `json:"created_at"`
	Channel          string             `json:"channel"`
	Buyer            wireBuyer          `json:"buyer_details"`
	ShippingAddress  wireAddress        `json:"shipping_address"`
	SelectedShipping wireShippingOption `json:"selected_shipping_option"`
	Payment          wirePaymentDetails `json:"estimated_payment_details"`
	Promotions       []wirePromotion    `json:"promotion_details,omitempty"`
}

// orderListResponse is the order listing page
type orderListResponse struct {
	apiEnvelope
	Data   []wireOrder `json:"data"`
	Paging paging      `json:"paging"`
}

// wireItem is one order line in the items response
type wireItem struct {
	RetailerID   string          `json:"retailer_id"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	PricePerUnit string          `json:"price_per_unit"`
	TaxDetails   struct {
		EstimatedTax string `json:"estimated_tax"`
	} `json:"tax_details"`
	Promotions []wirePromotion `json:"promotion_details,omitempty"`
}

// itemListResponse is one page of the order items listing
type itemListResponse struct {
	apiEnvelope
	Data   []wireItem `json:"data"`
	Paging paging     `json:"paging"`
}

// ackRequestEntry maps one acknowledged order
type ackRequestEntry struct {
	RemoteOrderID  string `json:"id"`
	MerchantOrder  string `json:"merchant_order_reference"`
}

// ackRequest is the acknowledgement call body
type ackRequest struct {
	Orders []ackRequestEntry `json:"orders"`
}

// successResponse is the generic mutation response
type successResponse struct {
	apiEnvelope
	Success bool `json:"success"`
}

// shipmentItemEntry is one shipped line on the wire
type shipmentItemEntry struct {
	RetailerID string `json:"retailer_id"`
	Quantity   int    `json:"quantity"`
}

// shipmentRequestBody is the mark-as-shipped call body
type shipmentRequestBody struct {
	Items        []shipmentItemEntry `json:"items"`
	TrackingInfo struct {
		TrackingNumber     string `json:"tracking_number"`
		ShippingMethodName string `json:"shipping_method_name"`
		CarrierCode        string `json:"carrier"`
	} `json:"tracking_info"`
	UseDefaultFulfillmentLocation bool         `json:"should_use_default_fulfillment_location"`
	FulfillmentAddress            *wireAddress `json:"fulfillment_address,omitempty"`
}

// cancelRequestBody is the order cancellation call body
type cancelRequestBody struct {
	ReasonCode string `json:"cancel_reason_code,omitempty"`
}

// refundRequestBody is the order refund call body
type refundRequestBody struct {
	ReasonCode string `json:"reason_code,omitempty"`
	Amount     struct {
		Subtotal string `json:"subtotal"`
		Shipping string `json:"shipping"`
		Tax      string `json:"tax"`
		Total    string `json:"total"`
	} `json:"refund_amount"`
}

// productResponse is the product lookup response
type productResponse struct {
	apiEnvelope
	ID    string `json:"id"`
	Price string `json:"price,omitempty"`
}
