package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/gutp/discux/config"
	"github.com/gutp/discux/internal/bootstrap"
)

// app carries what every subcommand needs; tests swap loadConfig and connect.
type app struct {
	loadConfig func() (config.AppConfig, error)
	connect    func(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, error)
	logger     *slog.Logger
}

//nolint:ireturn // mirrors bootstrap.ConnectRedis.
func connectRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	return bootstrap.ConnectRedis(ctx, bootstrap.RedisConnConfig{Redis: cfg, Logger: logger})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "discux-admin",
		Short: "Operator tooling for the discux forum front end",
		Long: `discux-admin inspects and revokes login sessions in the session store
and checks the service configuration without starting the server.`,
		SilenceUsage: true,
	}
	root.AddCommand(newSessionCmd(a), newConfigCmd(a))
	return root
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func writeRow(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
