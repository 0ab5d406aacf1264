package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pieceflow/dealbridge/internal/api"
	"github.com/pieceflow/dealbridge/internal/api/handler"
	"github.com/pieceflow/dealbridge/internal/config"
	"github.com/pieceflow/dealbridge/internal/db"
	"github.com/pieceflow/dealbridge/internal/metrics"
	"github.com/pieceflow/dealbridge/internal/queue"
	"github.com/pieceflow/dealbridge/internal/ratelimiter"
	"github.com/pieceflow/dealbridge/internal/repository"
	"github.com/pieceflow/dealbridge/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx := context.Background()

	// ---- database ----
	reader, store, closeDB, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer closeDB()

	// ---- queue transport ----
	transport, closeQueue, err := openTransport(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to set up queue transport", zap.Error(err), zap.String("backend", cfg.QueueBackend))
	}
	defer closeQueue()

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	clientCfg := queue.ClientConfig{
		QueueURL:    cfg.QueueURL,
		SendTimeout: cfg.QueueSendTimeout,
		OnResult:    m.QueueHook(),
	}
	if limiter := ratelimiter.New(cfg.QueueSendRate); limiter != nil {
		clientCfg.Limiter = limiter
	}
	pieces := queue.NewPieceClient(transport, clientCfg, logger)
	deals := service.NewDealView(reader, cfg.DealViewDefaultLimit, logger, m.DealViewHook())

	// ---- HTTP server ----
	router := api.NewRouter(api.Deps{
		Pieces:   pieces,
		Deals:    deals,
		Store:    store,
		Registry: reg,
		Logger:   logger,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("queue_backend", cfg.QueueBackend),
			zap.String("database_driver", cfg.DatabaseDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	logger.Info("server stopped cleanly")
}

// openStore returns the view reader for the configured driver together with
// a health pinger and a close function.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.ViewReader, handler.Pinger, func(), error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.RunMigrations {
			if err := db.ApplySQLiteSchema(ctx, sqlDB); err != nil {
				sqlDB.Close()
				return nil, nil, nil, err
			}
			logger.Info("sqlite schema applied")
		}
		return repository.NewSQLViewReader(sqlDB), sqlPinger{sqlDB}, func() { sqlDB.Close() }, nil

	default:
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.RunMigrations {
			if err := db.Migrate(cfg.DatabaseURL); err != nil {
				pool.Close()
				return nil, nil, nil, err
			}
			logger.Info("database migrations applied")
		}
		return repository.NewPgViewReader(pool), pool, pool.Close, nil
	}
}

// openTransport builds the queue transport for QUEUE_BACKEND.
func openTransport(ctx context.Context, cfg *config.Config) (queue.Transport, func(), error) {
	switch cfg.QueueBackend {
	case config.QueueBackendRedis:
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return queue.NewRedisStreamTransport(rdb, cfg.RedisStreamMaxLen), func() { rdb.Close() }, nil

	case config.QueueBackendHTTP:
		return queue.NewHTTPTransport(cfg.QueueSendTimeout), func() {}, nil

	default:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, nil, fmt.Errorf("load aws config: %w", err)
		}
		client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
			if cfg.SQSEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.SQSEndpoint)
			}
		})
		return queue.NewSQSTransport(client), func() {}, nil
	}
}

// sqlPinger adapts *sql.DB to the readiness check.
type sqlPinger struct{ db *sql.DB }

func (p sqlPinger) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }
