package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gutp/discux/config"
)

// shutdownWaitTimeout is the maximum time to wait for in-flight requests.
const shutdownWaitTimeout = 10 * time.Second

// ServiceOrchestrationConfig contains what RunWithShutdown needs.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
	// Signals overrides the shutdown signal source; SIGINT/SIGTERM when nil.
	Signals <-chan os.Signal
}

// RunWithShutdown starts the HTTP server and blocks until a shutdown signal
// arrives or the server fails.
func RunWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var health func(context.Context) error
	if cfg.RedisClient != nil {
		health = func(ctx context.Context) error { return cfg.RedisClient.Ping(ctx).Err() }
	}

	errCh := make(chan error, 1)
	server, err := StartHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Health:   health,
		Logger:   logger,
	}, errCh)
	if err != nil {
		return err
	}

	quit := cfg.Signals
	if quit == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(ch)
		quit = ch
	}

	select {
	case <-quit:
		logger.Info("shutting down services...")
		return gracefulStop(server, logger)
	case err := <-errCh:
		logger.Error("service error", "error", err)
		if stopErr := gracefulStop(server, logger); stopErr != nil {
			logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

func gracefulStop(server *HTTPServer, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
	defer cancel()
	return server.Shutdown(ctx, logger)
}
