package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/storepulse/store-uptime-worker/internal/cache"
	"github.com/storepulse/store-uptime-worker/internal/config"
	"github.com/storepulse/store-uptime-worker/internal/db"
	"github.com/storepulse/store-uptime-worker/internal/httpapi"
	"github.com/storepulse/store-uptime-worker/internal/mq"
	"github.com/storepulse/store-uptime-worker/internal/repository"
	"github.com/storepulse/store-uptime-worker/internal/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func startServer(
	lc fx.Lifecycle,
	conn *mq.Connection,
	cfg *config.Config,
	logger *zap.Logger,
	svc *service.ReportService,
	router *httpapi.Router,
) error {
	// Context for the consumer, cancelled on shutdown
	ctx, cancel := context.WithCancel(context.Background())

	consumer, err := mq.NewConsumer(mq.ConsumerConfig{
		Connection:       conn,
		Queue:            cfg.RabbitMQ.ReportQueue,
		DLQQueue:         cfg.RabbitMQ.DLQQueue,
		Exchange:         cfg.RabbitMQ.ReportExchange,
		RoutingKey:       cfg.RabbitMQ.ReportRoutingKey,
		PrefetchCount:    cfg.RabbitMQ.PrefetchCount,
		Logger:           logger,
		MessageProcessor: svc.HandleRequest,
	})
	if err != nil {
		cancel()
		return err
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServicePort),
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			logger.Info("starting report consumer",
				zap.String("queue", cfg.RabbitMQ.ReportQueue),
				zap.Int("prefetch", cfg.RabbitMQ.PrefetchCount))
			if err := consumer.Start(ctx); err != nil {
				return err
			}

			logger.Info("starting http server", zap.Int("port", cfg.ServicePort))
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("http server stopped unexpectedly", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			if err := consumer.Close(); err != nil {
				logger.Error("failed to close consumer", zap.Error(err))
			}
			if err := server.Shutdown(stopCtx); err != nil {
				logger.Error("failed to shut down http server", zap.Error(err))
				return err
			}
			logger.Info("server stopped gracefully")
			return nil
		},
	})

	return nil
}

// ProvideDBPool creates the database pool
func ProvideDBPool(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (*db.Pool, error) {
	return db.NewPool(lc, logger, cfg.Database.URL)
}

// ProvideReferenceRepository creates the reference data repository
func ProvideReferenceRepository(pool *db.Pool) *repository.ReferenceRepository {
	return repository.NewReferenceRepository(pool)
}

// ProvideReportRepository creates the report job repository
func ProvideReportRepository(pool *db.Pool) *repository.ReportRepository {
	return repository.NewReportRepository(pool)
}

// ProvideMQConnection creates the RabbitMQ connection
func ProvideMQConnection(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (*mq.Connection, error) {
	return mq.NewConnection(lc, logger, cfg.RabbitMQ.URL)
}

// ProvidePublisher creates the report request publisher
func ProvidePublisher(conn *mq.Connection, cfg *config.Config, logger *zap.Logger) (*mq.Publisher, error) {
	return mq.NewPublisher(conn, cfg.RabbitMQ.ReportExchange, logger)
}

// ProvideRowCache creates the optional redis-backed row cache. No REDIS_ADDR
// means no cache; the nil cache is a no-op.
func ProvideRowCache(cfg *config.Config, logger *zap.Logger) *cache.RowCache {
	if cfg.Redis.Addr == "" {
		logger.Info("row cache disabled (REDIS_ADDR not set)")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return cache.NewRowCache(cache.NewRedisKVStore(client), cfg.Report.RowCacheTTL, logger)
}

// ProvideReportService creates the report orchestrator
func ProvideReportService(
	refData *repository.ReferenceRepository,
	reports *repository.ReportRepository,
	publisher *mq.Publisher,
	rowCache *cache.RowCache,
	cfg *config.Config,
	logger *zap.Logger,
) *service.ReportService {
	return service.NewReportService(refData, reports, publisher, rowCache, cfg, logger)
}

// ProvideRouter creates the http router with report routes registered
func ProvideRouter(svc *service.ReportService, logger *zap.Logger) *httpapi.Router {
	router := httpapi.NewRouter(logger)
	router.RegisterReportRoutes(httpapi.NewReportHandler(svc, logger))
	return router
}
