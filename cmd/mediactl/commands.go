package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-media/pkg/simplemedia"
	"github.com/tendant/simple-media/pkg/simplemedia/config"
	repopg "github.com/tendant/simple-media/pkg/simplemedia/repo/postgres"
)

// loadConfig reads configuration the way cmd/server does
func loadConfig(cmd *cobra.Command) (*config.ServerConfig, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	return config.Load(config.WithDotEnv(envFile), config.WithEnv())
}

func requirePostgres(cfg *config.ServerConfig) error {
	if cfg.DatabaseType != config.DatabasePostgres {
		return errors.New("DATABASE_URL must point at postgres for this command")
	}
	return nil
}

// NewMigrateCommand applies the embedded schema
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := requirePostgres(cfg); err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := config.OpenPostgres(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := repopg.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema applied")
			return nil
		},
	}
}

// NewPingCommand checks database connectivity
func NewPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check database connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := requirePostgres(cfg); err != nil {
				return err
			}
			if err := config.PingPostgres(cmd.Context(), cfg.DatabaseURL); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database reachable")
			return nil
		},
	}
}

// NewDashboardCommand prints the engagement dashboard as JSON
func NewDashboardCommand() *cobra.Command {
	var days string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print the engagement dashboard summary as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			svc, cleanup, err := cfg.BuildService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := svc.DashboardSummary(cmd.Context(), simplemedia.ParseDays(days))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}

	cmd.Flags().StringVar(&days, "days", "", "trailing window in days (default 10, max 366)")

	return cmd
}
