package commerce

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ClientConfig holds credentials and endpoints for the marketplace API
type ClientConfig struct {
	// ShopID is the seller's shop identifier on the platform
	ShopID string
	// AccessToken authorizes API calls for the shop
	AccessToken string
	// AppSecret is used to derive the request proof
	AppSecret string
	// APIBaseURL is the base URL of the platform API
	APIBaseURL string
	// IsSandbox indicates the sandbox environment
	IsSandbox bool
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// PageSize is the order listing page size
	PageSize int
}

const (
	// ProductionAPIURL is the production API endpoint
	ProductionAPIURL = "https://api.marketplace-commerce.com/v3"
	// SandboxAPIURL is the sandbox API endpoint
	SandboxAPIURL = "https://api-sandbox.marketplace-commerce.com/v3"
	// defaultPageSize matches the platform's order listing page size
	defaultPageSize = 25
)

// Errors for client configuration
var (
	ErrConfigMissingShopID      = errors.New("marketplace: shop ID is required")
	ErrConfigMissingAccessToken = errors.New("marketplace: access token is required")
	ErrConfigMissingAppSecret   = errors.New("marketplace: app secret is required")
)

// NewClientConfig creates a client configuration with production defaults
func NewClientConfig(shopID, accessToken, appSecret string) *ClientConfig {
	return &ClientConfig{
		ShopID:         shopID,
		AccessToken:    accessToken,
		AppSecret:      appSecret,
		APIBaseURL:     ProductionAPIURL,
		IsSandbox:      false,
		TimeoutSeconds: 30,
		PageSize:       defaultPageSize,
	}
}

// Validate validates the configuration and fills defaults
func (c *ClientConfig) Validate() error {
	if c.ShopID == "" {
		return ErrConfigMissingShopID
	}
	if c.AccessToken == "" {
		return ErrConfigMissingAccessToken
	}
	if c.AppSecret == "" {
		return ErrConfigMissingAppSecret
	}
	if c.APIBaseURL == "" {
		if c.IsSandbox {
			c.APIBaseURL = SandboxAPIURL
		} else {
			c.APIBaseURL = ProductionAPIURL
		}
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
	return nil
}

// Proof derives the request proof the platform requires alongside the
// access token: HMAC-SHA256 of the token keyed by the app secret.
func (c *ClientConfig) Proof() string {
	h := hmac.New(sha256.New, []byte(c.AppSecret))
	h.Write([]byte(c.AccessToken))
	return hex.EncodeToString(h.Sum(nil))
}
