package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	redisadapter "github.com/gutp/discux/internal/adapters/redis"
	"github.com/gutp/discux/internal/ports"
	"github.com/gutp/discux/internal/service"
)

// errSessionNotFound is returned for tokens with no stored session.
var errSessionNotFound = errors.New("session not found")

func newSessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect, expire or revoke a login session by token",
	}

	show := &cobra.Command{
		Use:   "show <token>",
		Short: "Print the subject and remaining lifetime of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSessions(cmd.Context(), func(ctx context.Context, m *service.SessionManager) error {
				info, err := m.Inspect(ctx, args[0])
				if errors.Is(err, ports.ErrKeyNotFound) {
					return errSessionNotFound
				}
				if err != nil {
					return err
				}
				tw := newTable(cmd.OutOrStdout())
				if err := writeRow(tw, "SUBJECT\tEXPIRES\n"); err != nil {
					return err
				}
				expires := "never"
				if info.Remaining > 0 {
					expires = humanize.Time(time.Now().Add(info.Remaining))
				}
				if err := writeRow(tw, "%s\t%s\n", info.SubjectID, expires); err != nil {
					return err
				}
				return tw.Flush()
			})
		},
	}

	revoke := &cobra.Command{
		Use:   "revoke <token>",
		Short: "Delete a session; the browser holding it becomes anonymous",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSessions(cmd.Context(), func(ctx context.Context, m *service.SessionManager) error {
				if err := m.DestroySession(ctx, args[0]); err != nil {
					return err
				}
				return writeRow(cmd.OutOrStdout(), "session revoked\n")
			})
		},
	}

	var ttl time.Duration
	expire := &cobra.Command{
		Use:   "expire <token>",
		Short: "Cap the remaining lifetime of a session",
		Long:  "Cap the remaining lifetime of a session. A session is never extended.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSessions(cmd.Context(), func(ctx context.Context, m *service.SessionManager) error {
				ok, err := m.Shorten(ctx, args[0], ttl)
				if err != nil {
					return err
				}
				if !ok {
					return errSessionNotFound
				}
				return writeRow(cmd.OutOrStdout(), "session expires within %s\n", ttl)
			})
		},
	}
	expire.Flags().DurationVar(&ttl, "ttl", time.Minute, "maximum remaining lifetime")

	cmd.AddCommand(show, revoke, expire)
	return cmd
}

// withSessions connects to the session store for the duration of fn.
func (a *app) withSessions(ctx context.Context, fn func(context.Context, *service.SessionManager) error) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	client, err := a.connect(ctx, cfg.Redis, a.logger)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil && a.logger != nil {
			a.logger.ErrorContext(ctx, "close redis failed", "error", cerr)
		}
	}()

	m := service.NewSessionManager(service.SessionManagerOptions{
		Store:  redisadapter.NewKVStore(client),
		AppID:  cfg.AppID,
		TTL:    cfg.Auth.SessionTTL,
		Logger: a.logger,
	})
	return fn(ctx, m)
}
