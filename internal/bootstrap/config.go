package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/gutp/discux/config"
)

// InitLogger installs a JSON logger on stdout at the level cfg resolves to
// and makes it the slog default.
func InitLogger(cfg *config.AppConfig) *slog.Logger {
	logger := newLogger(os.Stdout, cfg.LogLevel())
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// LoadConfig reads the optional .env files (./.env when none are named), then
// the process environment, and sanitizes the result. It does not validate;
// callers that need a startable config call Validate.
func LoadConfig(envFiles ...string) (config.AppConfig, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		var pathErr *os.PathError
		if len(envFiles) > 0 || !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}
