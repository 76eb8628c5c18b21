package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gutp/discux/config"
	"github.com/gutp/discux/internal/bootstrap"
)

func main() {
	a := &app{connect: connectRedis, logger: slog.Default()}
	a.loadConfig = func() (config.AppConfig, error) {
		cfg, err := bootstrap.LoadConfig()
		if err != nil {
			return cfg, err
		}
		a.logger = bootstrap.InitLogger(&cfg)
		return cfg, nil
	}
	if err := newRootCmd(a).ExecuteContext(context.Background()); err != nil {
		os.Exit(1) //nolint:forbidigo // CLI must signal command failure to shell scripts
	}
}
