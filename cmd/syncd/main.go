package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	syncapp "github.com/marketsync/backend/internal/application/sync"
	"github.com/marketsync/backend/internal/domain/shared"
	"github.com/marketsync/backend/internal/infrastructure/cache"
	"github.com/marketsync/backend/internal/infrastructure/commerce"
	"github.com/marketsync/backend/internal/infrastructure/config"
	"github.com/marketsync/backend/internal/infrastructure/event"
	"github.com/marketsync/backend/internal/infrastructure/logger"
	"github.com/marketsync/backend/internal/infrastructure/persistence"
	"github.com/marketsync/backend/internal/infrastructure/scheduler"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting marketplace order sync",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
	)

	storeIDs := configuredStoreIDs(cfg, log)
	if len(storeIDs) == 0 {
		log.Fatal("No stores configured, set sync.stores in config")
	}

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Initialize event bus, with Kafka forwarding when enabled
	eventBus := event.NewInMemoryEventBus(log)
	if cfg.Kafka.Enabled {
		notifier, err := event.NewKafkaOrderNotifier(event.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}, log)
		if err != nil {
			log.Fatal("Failed to create Kafka notifier", zap.Error(err))
		}
		defer notifier.Close()
		eventBus.Subscribe(notifier)
		log.Info("Kafka order notifier enabled", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	// Initialize the commerce platform client
	clientConfig := commerce.NewClientConfig(
		cfg.Marketplace.ShopID,
		cfg.Marketplace.AccessToken,
		cfg.Marketplace.AppSecret,
	)
	clientConfig.IsSandbox = cfg.Marketplace.Sandbox
	clientConfig.TimeoutSeconds = cfg.Marketplace.TimeoutSeconds
	clientConfig.PageSize = cfg.Marketplace.PageSize
	client, err := commerce.NewHTTPClient(clientConfig)
	if err != nil {
		log.Fatal("Failed to create commerce client", zap.Error(err))
	}

	// Wire the sync application layer
	productRepo := persistence.NewGormProductRepository(db.DB)
	service := syncapp.NewService(syncapp.Dependencies{
		Client:      client,
		Orders:      persistence.NewGormOrderRepository(db.DB),
		Invoices:    persistence.NewGormInvoiceRepository(db.DB),
		CreditMemos: persistence.NewGormCreditMemoRepository(db.DB),
		Links:       persistence.NewGormOrderLinkRepository(db.DB),
		Runs:        persistence.NewGormSyncRunRepository(db.DB),
		Products:    persistence.NewCatalogProductResolver(productRepo),
		Settings:    config.NewStoreSettingsProvider(cfg.Sync),
		Idempotency: buildIdempotencyStore(cfg, log),
		EventBus:    eventBus,
		Logger:      log,

		MaxPullPages: cfg.Sync.MaxPages,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = eventBus.Stop(shutdownCtx)
	}()

	schedulerConfig := scheduler.DefaultConfig()
	schedulerConfig.Interval = cfg.Sync.PullInterval
	pullScheduler, err := scheduler.NewPullScheduler(
		schedulerConfig,
		&enginePullExecutor{engine: service.Engine},
		storeIDs,
		log,
	)
	if err != nil {
		log.Fatal("Failed to create pull scheduler", zap.Error(err))
	}
	if err := pullScheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start pull scheduler", zap.Error(err))
	}

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := pullScheduler.Stop(shutdownCtx); err != nil {
		log.Error("Pull scheduler shutdown error", zap.Error(err))
	}

	log.Info("Shutdown complete")
}

// enginePullExecutor adapts the sync engine to the scheduler's executor
type enginePullExecutor struct {
	engine *syncapp.OrderSyncEngine
}

func (e *enginePullExecutor) Execute(ctx context.Context, job *scheduler.PullJob) error {
	result, err := e.engine.PullPendingOrders(ctx, job.StoreID)
	if err != nil {
		return err
	}
	job.Complete(result.TotalPulled, result.TotalCreated, len(result.Errors))
	return nil
}

func configuredStoreIDs(cfg *config.Config, log *zap.Logger) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(cfg.Sync.Stores))
	for _, store := range cfg.Sync.Stores {
		id, err := uuid.Parse(store.StoreID)
		if err != nil {
			log.Warn("Skipping store with invalid id", zap.String("store_id", store.StoreID))
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func buildIdempotencyStore(cfg *config.Config, log *zap.Logger) shared.IdempotencyStore {
	if cfg.Redis.Enabled {
		store, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		log.Info("Using Redis idempotency store")
		return store
	}
	log.Info("Using in-memory idempotency store")
	return cache.NewInMemoryIdempotencyStore()
}
