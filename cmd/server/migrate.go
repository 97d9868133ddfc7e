package main

import (
	"fmt"

	"github.com/jrsteele09/go-account-api/migrations"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back the database schema",
}

func init() {
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dsn, err := databaseURL()
				if err != nil {
					return err
				}
				if err := migrations.Up(cmd.Context(), dsn); err != nil {
					return err
				}
				log.Info().Msg("migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dsn, err := databaseURL()
				if err != nil {
					return err
				}
				if err := migrations.Down(cmd.Context(), dsn); err != nil {
					return err
				}
				log.Info().Msg("rolled back one migration")
				return nil
			},
		},
	)
}

func databaseURL() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.GetDatabaseURL() == "" {
		return "", fmt.Errorf("DATABASE_URL is required to run migrations")
	}
	return cfg.GetDatabaseURL(), nil
}
