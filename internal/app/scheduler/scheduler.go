// Package scheduler собирает процесс ежедневной проверки истёкших подписок.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/fithub/membership-service/internal/clients/userdir"
	"github.com/fithub/membership-service/internal/config"
	"github.com/fithub/membership-service/internal/lib/rabbitmq"
	"github.com/fithub/membership-service/internal/lib/sl"
	"github.com/fithub/membership-service/internal/services/notification"
	"github.com/fithub/membership-service/internal/services/payment"
	planservice "github.com/fithub/membership-service/internal/services/plan"
	schedulerservice "github.com/fithub/membership-service/internal/services/scheduler"
	subservice "github.com/fithub/membership-service/internal/services/subscription"
	"github.com/fithub/membership-service/internal/storage/cache"
	"github.com/fithub/membership-service/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	db               *repository.Storage
	cache            *cache.Cache
	conn             *amqp.Connection
	ch               *amqp.Channel
	logger           *slog.Logger
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	var err error
	for range 10 {
		if err = repository.CheckDatabaseReady(ctx, db); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return fmt.Errorf("database not ready after retries: %w", err)
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	loc, err := cfg.Scheduler.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone: %w", err)
	}
	now, err := cfg.Scheduler.Clock()
	if err != nil {
		return nil, err
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := waitForDB(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	plans := planservice.NewPlanService(db, cacheRedis, cfg.RedisConnection.PlanTTL, logger)
	subscriptions := subservice.NewSubscriptionService(
		db,
		plans,
		userdir.New(cfg.UserDirectory, cfg.CircuitBreaker, logger),
		payment.NewSimulator(logger),
		notification.NewDispatcher(rabbitmq.NewPublisher(ch), logger),
		logger,
		subservice.WithClock(now),
		subservice.WithBatchSize(cfg.Scheduler.BatchSize),
	)

	schedulerService, err := schedulerservice.NewSchedulerService(subscriptions, cfg.Scheduler.ExpiryCron, loc, logger)
	if err != nil {
		closeResources(ch, conn, logger)
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, err
	}

	return &App{
		schedulerService: schedulerService,
		db:               db,
		cache:            cacheRedis,
		conn:             conn,
		ch:               ch,
		logger:           logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// RunOnce выполняет одну проверку, освобождает ресурсы и возвращает ошибку проверки.
func (a *App) RunOnce(ctx context.Context) error {
	defer a.close()
	return a.schedulerService.RunOnce(ctx)
}

// Run запускает планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.schedulerService.Start(ctx)

	a.logger.Info("shutting down scheduler service")
	a.close()
	return nil
}

func (a *App) close() {
	closeResources(a.ch, a.conn, a.logger)
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
