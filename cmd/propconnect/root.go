package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/propconnect/propconnect/internal/config"
	"github.com/propconnect/propconnect/pkg/logger"
)

const serviceName = "propconnect-api"

// NewRootCmd creates the root command. Without a subcommand it serves the
// API.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "propconnect",
		Short: "PropConnect real-estate API",
		Long: `PropConnect serves the real-estate listing API: account registration
and login, owned property listings, and superadmin account management.
Configuration is read from the environment.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedSuperAdminCmd())

	return cmd
}

// setup loads configuration and builds the process logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, logger.New(serviceName, cfg.LogLevel), nil
}
