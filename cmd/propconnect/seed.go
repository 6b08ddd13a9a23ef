package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/propconnect/propconnect/internal/app"
)

// NewSeedSuperAdminCmd creates the seed-superadmin subcommand.
func NewSeedSuperAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-superadmin",
		Short: "Create the bootstrap superadmin",
		Long: `Create a superadmin from SUPERADMIN_EMAIL, SUPERADMIN_PASSWORD,
SUPERADMIN_PHONE and SUPERADMIN_NAME unless one already exists.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if cfg.SuperAdminEmail == "" || cfg.SuperAdminPassword == "" {
				return errors.New("SUPERADMIN_EMAIL and SUPERADMIN_PASSWORD are required")
			}

			created, err := app.SeedSuperAdmin(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			if created {
				cmd.Println("Superadmin created")
			} else {
				cmd.Println("Superadmin already exists, nothing to do")
			}
			return nil
		},
	}
}
