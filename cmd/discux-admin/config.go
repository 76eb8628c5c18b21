package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load and validate configuration from the environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			tw := newTable(cmd.OutOrStdout())
			rows := [][2]string{
				{"app id", cfg.AppID},
				{"profession", cfg.Profession},
				{"auth mode", string(cfg.Auth.Mode)},
				{"session cookie", cfg.SessionCookieName()},
				{"session ttl", cfg.Auth.SessionTTL.String()},
				{"content api", cfg.Content.BaseURL},
				{"http addr", cfg.HTTP.Addr},
				{"dev mode", fmt.Sprint(cfg.IsDev)},
				{"log level", cfg.LogLevel().String()},
			}
			for _, r := range rows {
				if err := writeRow(tw, "%s\t%s\n", r[0], r[1]); err != nil {
					return err
				}
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return writeRow(cmd.OutOrStdout(), "config OK\n")
		},
	})
	return cmd
}
