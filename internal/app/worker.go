package app

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hookline/hookline/config"
	"github.com/hookline/hookline/internal/cache"
	"github.com/hookline/hookline/internal/database"
	"github.com/hookline/hookline/internal/domain"
	"github.com/hookline/hookline/internal/queue"
	"github.com/hookline/hookline/internal/repository"
	"github.com/hookline/hookline/internal/service"
	"github.com/hookline/hookline/pkg/logger"
)

// WorkerApp wires the delivery worker process: the worker pool, the cleanup
// scheduler and the retention sweeper.
type WorkerApp struct {
	cfg    *config.Config
	logger logger.Logger

	db          *sql.DB
	redisClient *redis.Client

	webhookRepo       domain.WebhookRepository
	attemptRepo       domain.DeliveryAttemptRepository
	subscriptionRepo  domain.SubscriptionRepository
	taskQueue         domain.Queue
	subscriptionCache domain.SubscriptionCache

	worker    *service.DeliveryWorker
	scheduler *service.CleanupScheduler
	sweeper   *service.RetentionSweeper

	wg sync.WaitGroup
}

// NewWorkerApp creates a new WorkerApp with the given configuration
func NewWorkerApp(cfg *config.Config, opts ...WorkerAppOption) *WorkerApp {
	a := &WorkerApp{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.NewLogger(cfg.LogLevel)
	}
	return a
}

// WorkerAppOption configures the WorkerApp
type WorkerAppOption func(*WorkerApp)

// WithWorkerLogger sets the logger
func WithWorkerLogger(l logger.Logger) WorkerAppOption {
	return func(a *WorkerApp) {
		a.logger = l
	}
}

// Initialize connects the infrastructure and builds the pipeline components
func (a *WorkerApp) Initialize() error {
	db, err := database.Connect(a.cfg.Database)
	if err != nil {
		return err
	}
	a.db = db

	if err := database.InitializeDatabase(db); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

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

	a.webhookRepo = repository.NewWebhookRepository(a.db)
	a.attemptRepo = repository.NewDeliveryAttemptRepository(a.db)
	a.subscriptionRepo = repository.NewSubscriptionRepository(a.db)
	a.taskQueue = queue.NewRedisQueue(a.redisClient, a.cfg.Delivery.VisibilityTimeout, a.logger)
	a.subscriptionCache = cache.NewSubscriptionCache(a.redisClient, a.subscriptionRepo, a.cfg.Delivery.CacheTTL, a.logger)

	a.worker = service.NewDeliveryWorker(
		a.webhookRepo,
		a.subscriptionCache,
		a.attemptRepo,
		a.taskQueue,
		a.cfg.Delivery,
		nil,
		a.logger,
	)
	a.scheduler = service.NewCleanupScheduler(a.taskQueue, a.cfg.Retention.CleanupInterval, a.logger)
	a.sweeper = service.NewRetentionSweeper(a.attemptRepo, a.taskQueue, a.cfg.Retention.Window, a.cfg.Retention.BatchSize, a.logger)

	return nil
}

// Start launches the pipeline. It returns immediately; the components stop
// when the context is cancelled.
func (a *WorkerApp) Start(ctx context.Context) {
	a.worker.Start(ctx)

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		a.scheduler.Start(ctx)
	}()
	go func() {
		defer a.wg.Done()
		a.sweeper.Start(ctx)
	}()
}

// Shutdown waits for the components to drain and releases resources. In-flight
// tasks that do not finish are redelivered after the visibility timeout.
func (a *WorkerApp) Shutdown() error {
	a.worker.Wait()
	a.wg.Wait()

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

	a.logger.Info("Worker stopped")
	return nil
}
