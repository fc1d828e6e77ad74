package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"
	"golang.org/x/sync/errgroup"

	"github.com/fithub/membership-service/internal/api/handlers/health"
	"github.com/fithub/membership-service/internal/clients/userdir"
	"github.com/fithub/membership-service/internal/config"
	"github.com/fithub/membership-service/internal/grpc/server"
	"github.com/fithub/membership-service/internal/lib/jwt"
	"github.com/fithub/membership-service/internal/lib/rabbitmq"
	"github.com/fithub/membership-service/internal/migrations"
	analyticsservice "github.com/fithub/membership-service/internal/services/analytics"
	assignmentservice "github.com/fithub/membership-service/internal/services/assignment"
	"github.com/fithub/membership-service/internal/services/notification"
	"github.com/fithub/membership-service/internal/services/payment"
	planservice "github.com/fithub/membership-service/internal/services/plan"
	subservice "github.com/fithub/membership-service/internal/services/subscription"
	"github.com/fithub/membership-service/internal/storage/cache"
	"github.com/fithub/membership-service/internal/storage/repository"
)

// App HTTP API сервиса абонементов вместе с gRPC health-сервером.
type App struct {
	server     *http.Server
	grpcHealth *server.HealthServer
	grpcAddr   string
	logger     *slog.Logger
	db         *repository.Storage
	cache      *cache.Cache
	conn       *amqp.Connection
	ch         *amqp.Channel
}

// New подключается к зависимостям, применяет миграции и собирает роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	now, err := cfg.Scheduler.Clock()
	if err != nil {
		return nil, err
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		_ = db.Close()
		_ = cacheRedis.Close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
	if err != nil {
		_ = conn.Close()
		_ = db.Close()
		_ = cacheRedis.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	users := userdir.New(cfg.UserDirectory, cfg.CircuitBreaker, logger)
	notifier := notification.NewDispatcher(rabbitmq.NewPublisher(ch), logger)

	plans := planservice.NewPlanService(db, cacheRedis, cfg.RedisConnection.PlanTTL, logger)
	svc := Services{
		Plans: plans,
		Subscriptions: subservice.NewSubscriptionService(db, plans, users, payment.NewSimulator(logger), notifier, logger,
			subservice.WithBatchSize(cfg.Scheduler.BatchSize), subservice.WithClock(now)),
		Assignments: assignmentservice.NewAssignmentService(db, plans, users, notifier, logger,
			assignmentservice.WithClock(now)),
		Analytics: analyticsservice.NewAnalyticsService(db, logger, analyticsservice.WithClock(now)),
	}

	checks := map[string]health.Pinger{
		"database": db,
		"cache":    cacheRedis,
		"broker": health.PingFunc(func(context.Context) error {
			if conn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, svc, jwt.NewJWTMaker(cfg.JWT.SecretKey, cfg.JWT.TokenTTL), checks)

	grpcChecks := make(map[string]server.Pinger, len(checks))
	for name, check := range checks {
		grpcChecks[name] = check
	}

	return &App{
		server: &http.Server{
			Addr:         cfg.HTTPServer.Address,
			Handler:      router,
			ReadTimeout:  cfg.HTTPServer.Timeout,
			WriteTimeout: cfg.HTTPServer.Timeout,
			IdleTimeout:  cfg.HTTPServer.IdleTimeout,
		},
		grpcHealth: server.NewHealthServer(grpcChecks, 10*time.Second, logger),
		grpcAddr:   cfg.GRPCHealthAddress,
		logger:     logger,
		db:         db,
		cache:      cacheRedis,
		conn:       conn,
		ch:         ch,
	}, nil
}

// Run обслуживает HTTP и gRPC до отмены ctx, затем плавно останавливается.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return a.grpcHealth.Serve(ctx, a.grpcAddr)
	})
	g.Go(func() error {
		<-ctx.Done()
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		return a.server.Shutdown(timeoutCtx)
	})

	err := g.Wait()
	a.close()
	return err
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", slog.Any("err", err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", slog.Any("err", err))
	}
}
