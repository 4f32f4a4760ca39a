package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Log         LogConfig
	Marketplace MarketplaceConfig
	Sync        SyncConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int `validate:"gt=0"`
	MaxIdleConns    int `validate:"gte=0"`
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// KafkaConfig holds Kafka producer settings for order event forwarding
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// MarketplaceConfig holds the commerce platform API credentials
type MarketplaceConfig struct {
	ShopID         string `validate:"required"`
	AccessToken    string `validate:"required"`
	AppSecret      string
	Sandbox        bool
	TimeoutSeconds int `validate:"gte=0"`
	PageSize       int `validate:"gte=0,lte=100"`
}

// SyncConfig holds the order pull schedule and per-store settings
type SyncConfig struct {
	PullInterval time.Duration
	MaxPages     int `validate:"gte=0"`
	// Defaults applies to any store without an explicit entry in Stores
	Defaults StoreConfig
	Stores   []StoreConfig
}

// StoreConfig holds one store's sync behavior
type StoreConfig struct {
	StoreID                       string                 `mapstructure:"store_id"`
	DefaultStatus                 string                 `mapstructure:"default_status"`      // new, processing
	Currency                      string                 `mapstructure:"currency"`            // ISO 4217 code
	ProductIdentifier             string                 `mapstructure:"product_identifier"`  // sku, id
	ShippingMethods               []ShippingMethodConfig `mapstructure:"shipping_methods"`    // ordered, first match wins
	UseDefaultFulfillmentLocation bool                   `mapstructure:"use_default_fulfillment_location"`
	FulfillmentAddress            AddressConfig          `mapstructure:"fulfillment_address"`
	Carriers                      []CarrierConfig        `mapstructure:"carriers"`
	RegionNames                   map[string]string      `mapstructure:"region_names"`
}

// ShippingMethodConfig maps a remote shipping-option keyword to a local
// shipping method code
type ShippingMethodConfig struct {
	Keyword string `mapstructure:"keyword"`
	Code    string `mapstructure:"code"`
}

// AddressConfig holds a configured ship-from address
type AddressConfig struct {
	FirstName  string `mapstructure:"first_name"`
	LastName   string `mapstructure:"last_name"`
	Street     string `mapstructure:"street"`
	City       string `mapstructure:"city"`
	Region     string `mapstructure:"region"`
	PostalCode string `mapstructure:"postal_code"`
	Country    string `mapstructure:"country"`
	Telephone  string `mapstructure:"telephone"`
}

// CarrierConfig is one entry of the platform's supported-carrier table
type CarrierConfig struct {
	Code  string `mapstructure:"code"`
	Title string `mapstructure:"title"`
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with SYNC_ prefix (e.g. SYNC_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Kafka: KafkaConfig{
			Enabled: v.GetBool("kafka.enabled"),
			Brokers: v.GetStringSlice("kafka.brokers"),
			Topic:   v.GetString("kafka.topic"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Marketplace: MarketplaceConfig{
			ShopID:         v.GetString("marketplace.shop_id"),
			AccessToken:    v.GetString("marketplace.access_token"),
			AppSecret:      v.GetString("marketplace.app_secret"),
			Sandbox:        v.GetBool("marketplace.sandbox"),
			TimeoutSeconds: v.GetInt("marketplace.timeout_seconds"),
			PageSize:       v.GetInt("marketplace.page_size"),
		},
		Sync: SyncConfig{
			PullInterval: v.GetDuration("sync.pull_interval"),
			MaxPages:     v.GetInt("sync.max_pages"),
		},
	}

	// Store settings are nested tables, decoded as a block
	if err := v.UnmarshalKey("sync.defaults", &cfg.Sync.Defaults); err != nil {
		return nil, fmt.Errorf("error decoding sync.defaults: %w", err)
	}
	if err := v.UnmarshalKey("sync.stores", &cfg.Sync.Stores); err != nil {
		return nil, fmt.Errorf("error decoding sync.stores: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "marketsync"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "marketsync"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{"localhost:9092"}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "order-sync-events"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Marketplace.TimeoutSeconds == 0 {
		cfg.Marketplace.TimeoutSeconds = 30
	}
	if cfg.Marketplace.PageSize == 0 {
		cfg.Marketplace.PageSize = 25
	}
	if cfg.Sync.PullInterval == 0 {
		cfg.Sync.PullInterval = 5 * time.Minute
	}
	if cfg.Sync.MaxPages == 0 {
		cfg.Sync.MaxPages = 200
	}
	if cfg.Sync.Defaults.DefaultStatus == "" {
		cfg.Sync.Defaults.DefaultStatus = "processing"
	}
	if cfg.Sync.Defaults.Currency == "" {
		cfg.Sync.Defaults.Currency = "USD"
	}
	if cfg.Sync.Defaults.ProductIdentifier == "" {
		cfg.Sync.Defaults.ProductIdentifier = "sku"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	for _, store := range c.Sync.Stores {
		switch store.DefaultStatus {
		case "", "new", "processing":
		default:
			return fmt.Errorf("sync.stores: unknown default_status %q for store %s", store.DefaultStatus, store.StoreID)
		}
		switch store.ProductIdentifier {
		case "", "sku", "id":
		default:
			return fmt.Errorf("sync.stores: unknown product_identifier %q for store %s", store.ProductIdentifier, store.StoreID)
		}
	}

	if c.App.Env == "production" {
		if c.Marketplace.AppSecret == "" {
			return fmt.Errorf("marketplace.app_secret is required in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
