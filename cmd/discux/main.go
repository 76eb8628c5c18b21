package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/gutp/discux/config"
	"github.com/gutp/discux/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	if err := run(ctx); err != nil {
		slog.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger := bootstrap.InitLogger(&cfg)
	logStartupInfo(ctx, logger, &cfg)

	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	redisClient, err := bootstrap.ConnectRedis(ctx, bootstrap.RedisConnConfig{
		Redis:  cfg.Redis,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close redis failed", "error", cerr)
		}
	}()

	provider, err := bootstrap.BuildAuthProvider(ctx, bootstrap.AuthProviderConfig{
		Auth:       cfg.Auth,
		HTTPClient: &http.Client{Timeout: cfg.Auth.OAuth.CallTimeout},
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	services, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config:      &cfg,
		RedisClient: redisClient,
		Provider:    provider,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	return bootstrap.RunWithShutdown(&bootstrap.ServiceOrchestrationConfig{
		Config:      &cfg,
		Services:    services,
		RedisClient: redisClient,
		Logger:      logger,
	})
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting discux",
		"app_id", cfg.AppID,
		"auth_mode", cfg.Auth.Mode,
		"content_api", cfg.Content.BaseURL,
		"addr", cfg.HTTP.Addr,
		"dev", cfg.IsDev,
		"log_level", cfg.LogLevel())
}
