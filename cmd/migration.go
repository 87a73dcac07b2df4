package cmd

import (
	"errors"
	"fmt"

	"trading-agent/pkg/postgres"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
)

var migrationsPath string

func runMigrations(direction string) error {
	appDep, err := NewAppDependency(configPath)
	if err != nil {
		return err
	}
	defer appDep.Close()

	m, err := migrate.New(migrationsPath, postgres.DSN(appDep.cfg.DB))
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			appDep.log.Warn(fmt.Sprintf("Migration source error on close: %v", srcErr))
		}
		if dbErr != nil {
			appDep.log.Warn(fmt.Sprintf("Migration database error on close: %v", dbErr))
		}
	}()

	var migrationErr error
	switch direction {
	case "up":
		migrationErr = m.Up()
	case "down":
		migrationErr = m.Steps(-1)
	}

	if errors.Is(migrationErr, migrate.ErrNoChange) {
		appDep.printer.Success("No migrations to apply.")
		return nil
	}
	if migrationErr != nil {
		return fmt.Errorf("migration failed: %w", migrationErr)
	}

	if direction == "up" {
		appDep.printer.Success("Applied migrations successfully.")
	} else {
		appDep.printer.Success("Reverted last migration successfully.")
	}
	return nil
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all available database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrations("up")
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert the last database migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrations("down")
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the wallet user database schema",
}

func init() {
	migrateCmd.PersistentFlags().StringVar(&migrationsPath, "path", "file://migrations", "migration source URL")
	migrateCmd.AddCommand(upCmd)
	migrateCmd.AddCommand(downCmd)
}
