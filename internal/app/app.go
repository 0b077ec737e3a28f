package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hookline/hookline/config"
	"github.com/hookline/hookline/internal/cache"
	"github.com/hookline/hookline/internal/database"
	"github.com/hookline/hookline/internal/domain"
	httphandler "github.com/hookline/hookline/internal/http"
	"github.com/hookline/hookline/internal/http/middleware"
	"github.com/hookline/hookline/internal/queue"
	"github.com/hookline/hookline/internal/repository"
	"github.com/hookline/hookline/internal/service"
	"github.com/hookline/hookline/pkg/logger"
	"github.com/hookline/hookline/pkg/ratelimiter"
)

// App wires the API server: storage, queue, services, handlers and the HTTP
// listener.
type App struct {
	cfg    *config.Config
	logger logger.Logger

	db          *sql.DB
	redisClient *redis.Client

	subscriptionRepo  domain.SubscriptionRepository
	webhookRepo       domain.WebhookRepository
	attemptRepo       domain.DeliveryAttemptRepository
	taskQueue         domain.Queue
	subscriptionCache domain.SubscriptionCache

	subscriptionService *service.SubscriptionService
	ingestService       *service.IngestService
	attemptService      *service.DeliveryAttemptService

	rateLimiter *ratelimiter.RateLimiter
	mux         *http.ServeMux
	server      *http.Server
}

// AppOption configures the App
type AppOption func(*App)

// WithLogger sets the logger
func WithLogger(l logger.Logger) AppOption {
	return func(a *App) {
		a.logger = l
	}
}

// NewApp creates a new App with the given configuration
func NewApp(cfg *config.Config, opts ...AppOption) *App {
	a := &App{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.NewLogger(cfg.LogLevel)
	}
	return a
}

// InitDB opens the database pool and ensures the schema exists
func (a *App) InitDB() error {
	db, err := database.Connect(a.cfg.Database)
	if err != nil {
		return err
	}
	a.db = db

	if err := database.InitializeDatabase(db); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	return nil
}

// InitRedis connects the Redis client used by the queue and the cache
func (a *App) InitRedis() error {
	a.redisClient = redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

// InitRepositories constructs the data access layer
func (a *App) InitRepositories() {
	a.subscriptionRepo = repository.NewSubscriptionRepository(a.db)
	a.webhookRepo = repository.NewWebhookRepository(a.db)
	a.attemptRepo = repository.NewDeliveryAttemptRepository(a.db)
	a.taskQueue = queue.NewRedisQueue(a.redisClient, a.cfg.Delivery.VisibilityTimeout, a.logger)
	a.subscriptionCache = cache.NewSubscriptionCache(a.redisClient, a.subscriptionRepo, a.cfg.Delivery.CacheTTL, a.logger)
}

// InitServices constructs the business logic layer
func (a *App) InitServices() {
	a.subscriptionService = service.NewSubscriptionService(a.subscriptionRepo, a.subscriptionCache, a.logger)
	a.ingestService = service.NewIngestService(a.subscriptionRepo, a.webhookRepo, a.taskQueue, a.logger)
	a.attemptService = service.NewDeliveryAttemptService(a.attemptRepo, a.subscriptionRepo, a.logger)
}

// InitHandlers builds the mux with per-route-group rate limits
func (a *App) InitHandlers() {
	a.rateLimiter = ratelimiter.NewRateLimiter()
	a.rateLimiter.SetPolicy("subscriptions", a.cfg.RateLimit.SubscriptionsPerMinute, time.Minute)
	a.rateLimiter.SetPolicy("ingest", a.cfg.RateLimit.IngestPerMinute, time.Minute)
	a.rateLimiter.SetPolicy("delivery-attempts", a.cfg.RateLimit.DeliveryAttemptsPerMinute, time.Minute)

	a.mux = http.NewServeMux()

	subscriptionHandler := httphandler.NewSubscriptionHandler(a.subscriptionService, a.logger)
	subscriptionHandler.RegisterRoutes(a.mux, middleware.RateLimit(a.rateLimiter, "subscriptions"))

	ingestHandler := httphandler.NewIngestHandler(a.ingestService, a.logger)
	ingestHandler.RegisterRoutes(a.mux, middleware.RateLimit(a.rateLimiter, "ingest"))

	attemptHandler := httphandler.NewDeliveryAttemptHandler(a.attemptService, a.logger)
	attemptHandler.RegisterRoutes(a.mux, middleware.RateLimit(a.rateLimiter, "delivery-attempts"))

	healthHandler := httphandler.NewHealthHandler(a.cfg.Version)
	healthHandler.RegisterRoutes(a.mux)
}

// Initialize runs all initialization steps in order
func (a *App) Initialize() error {
	if err := a.InitDB(); err != nil {
		return err
	}
	if err := a.InitRedis(); err != nil {
		return err
	}
	a.InitRepositories()
	a.InitServices()
	a.InitHandlers()
	return nil
}

// Start runs the HTTP server and blocks until it stops
func (a *App) Start() error {
	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	a.server = &http.Server{
		Addr:         addr,
		Handler:      a.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	a.logger.WithField("addr", addr).Info("HTTP server listening")
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully and releases resources
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down")

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Error(fmt.Sprintf("HTTP server shutdown failed: %v", err))
		}
	}
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error(fmt.Sprintf("Redis close failed: %v", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error(fmt.Sprintf("Database close failed: %v", err))
		}
	}

	return nil
}

// GetMux exposes the router, used by tests
func (a *App) GetMux() *http.ServeMux {
	return a.mux
}
