package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uclouvain/admission-core/config"
	"github.com/uclouvain/admission-core/internal/infrastructure/persistence/postgres"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			RunE: withMigrator(func(ctx context.Context, cmd *cobra.Command, m *postgres.Migrator) error {
				if err := m.Migrate(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last applied migration",
			RunE: withMigrator(func(ctx context.Context, cmd *cobra.Command, m *postgres.Migrator) error {
				if err := m.Rollback(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "last migration rolled back")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			RunE: withMigrator(func(ctx context.Context, cmd *cobra.Command, m *postgres.Migrator) error {
				migrations, err := m.Status(ctx)
				if err != nil {
					return err
				}
				renderMigrations(cmd.OutOrStdout(), migrations)
				return nil
			}),
		},
	)
	return cmd
}

// withMigrator opens the configured database for the duration of fn.
func withMigrator(fn func(context.Context, *cobra.Command, *postgres.Migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Database.Driver != config.DriverPostgres {
			return errors.New("migrate: database.driver must be postgres")
		}
		ctx := cmd.Context()
		conn, err := connectPostgres(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer conn.Close()
		return fn(ctx, cmd, postgres.NewMigrator(conn))
	}
}
