package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/signonhq/signon/config"
	"github.com/signonhq/signon/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting signon service",
		"user_source", cfg.Auth.Source,
		"http_addr", cfg.HTTP.Addr)

	db, redisClient, err := initInfrastructure(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close database failed", "error", cerr)
			}
		}()
	}
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close redis failed", "error", cerr)
		}
	}()

	auth, err := bootstrap.BuildAuthStack(bootstrap.AuthConfig{
		Auth:        cfg.Auth,
		DB:          db,
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("build auth stack: %w", err)
	}

	metrics := bootstrap.BuildMetricsSink(cfg.Metrics, logger)
	if metrics != nil {
		defer func() {
			if cerr := metrics.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close metrics sink failed", "error", cerr)
			}
		}()
	}

	server := bootstrap.StartHTTPServer(&bootstrap.HTTPServerConfig{
		Config:  &cfg,
		Auth:    auth,
		Metrics: metrics,
		Logger:  logger,
	})

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(signalCtx)
	g.Go(func() error {
		<-gctx.Done()
		return bootstrap.ShutdownHTTPServer(ctx, server, logger)
	})
	return g.Wait()
}

// initInfrastructure connects shared dependencies. The database is only
// dialed when the database user source is configured.
//
//nolint:ireturn // returning redis.UniversalClient keeps the stores client-agnostic.
func initInfrastructure(
	ctx context.Context,
	cfg *config.AppConfig,
	logger *slog.Logger,
) (*sql.DB, redis.UniversalClient, error) {
	var db *sql.DB
	if cfg.Auth.Source == config.UserSourceDatabase {
		var err error
		db, err = bootstrap.ConnectDB(bootstrap.DatabaseConfig{
			DBConfig:    cfg.Postgres,
			RedisConfig: cfg.Redis,
			Logger:      logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect db: %w", err)
		}
	}

	redisClient, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
		DBConfig:    cfg.Postgres,
		RedisConfig: cfg.Redis,
		Logger:      logger,
	})
	if err != nil {
		if db != nil {
			if cerr := db.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close database after redis connect failure", "error", cerr)
				return nil, nil, fmt.Errorf("connect redis: %w", errors.Join(err, fmt.Errorf("close database: %w", cerr)))
			}
		}
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}

	return db, redisClient, nil
}
