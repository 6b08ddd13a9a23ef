package main

import (
	"github.com/spf13/cobra"

	"github.com/propconnect/propconnect/internal/app"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply every pending embedded SQL migration to PostgreSQL and exit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			cmd.Println("Running migrations...")
			if err := app.Migrate(cmd.Context(), cfg, log); err != nil {
				return err
			}
			cmd.Println("Migrations completed successfully")
			return nil
		},
	}
}
