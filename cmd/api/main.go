package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Run starts the API and blocks until ctx is cancelled
func Run(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if err := validation.RegisterBindings(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	db, err := database.New(cfg, log)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(db, log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Redis is optional: without it logout cannot revoke tokens and recipe
	// creation is not rate limited
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg)
		if err != nil {
			log.Warn("redis unavailable, continuing without it", zap.Error(err))
			redisClient = nil
		} else {
			defer func() { _ = redisClient.Close() }()
		}
	}

	images, err := service.NewImageStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize image storage: %w", err)
	}

	loginLimiter := api.NewLoginLimiter()
	go loginLimiter.Cleanup(ctx, 10*time.Minute, time.Hour)

	handler := router.SetupRouter(api.Dependencies{
		DB:           db,
		Redis:        redisClient,
		Images:       images,
		Config:       cfg,
		Log:          log,
		LoginLimiter: loginLimiter,
	})

	return server.New(cfg.Addr(), handler, log).Run(ctx)
}
