package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bizportal/backend/internal/infrastructure/config"
	"github.com/bizportal/backend/internal/infrastructure/migration"
	"github.com/bizportal/backend/migrations"
)

var errSQLiteMigrations = errors.New("versioned migrations require the postgres driver; sqlite supports only 'migrate up'")

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return a.migrateUp()
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every applied migration",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return a.withMigrator(func(m *migration.Migrator) error { return m.Down() })
			},
		},
		&cobra.Command{
			Use:   "steps N",
			Short: "Apply N migrations forward, or roll back when N is negative",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil || n == 0 {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				return a.withMigrator(func(m *migration.Migrator) error { return m.Steps(n) })
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return a.withMigrator(func(m *migration.Migrator) error {
					status, err := m.Version()
					if err != nil {
						return err
					}
					a.log.Info("Schema version",
						zap.Uint("version", status.Version),
						zap.Bool("dirty", status.Dirty),
						zap.Bool("pending", status.Pending))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Set the schema version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil || version < -1 {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return a.withMigrator(func(m *migration.Migrator) error { return m.Force(version) })
			},
		},
		newMigrateCreateCmd(a),
		&cobra.Command{
			Use:   "list",
			Short: "List the migrations embedded in this binary",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				entries, err := migration.ListMigrations(migrations.FS)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, e := range entries {
					down := ""
					if !e.HasDown {
						down = " (no down)"
					}
					fmt.Fprintf(out, "%06d  %s%s\n", e.Version, e.Name, down)
				}
				return nil
			},
		},
	)
	return cmd
}

func newMigrateCreateCmd(a *app) *cobra.Command {
	var dir, description string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Scaffold an empty up/down migration pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
			file, err := migration.CreateMigration(dir, args[0], description)
			if err != nil {
				return err
			}
			a.log.Info("Migration created",
				zap.String("version", file.Version),
				zap.String("up", file.UpPath),
				zap.String("down", file.DownPath))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "migrations", "directory holding the migration files")
	cmd.Flags().StringVarP(&description, "description", "d", "", "description written into the file header")
	return cmd
}

// migrateUp runs golang-migrate on postgres and AutoMigrate on sqlite
func (a *app) migrateUp() error {
	if a.cfg.Database.Driver != config.DriverSQLite {
		return a.withMigrator(func(m *migration.Migrator) error { return m.Up() })
	}

	db, err := a.openDatabase()
	if err != nil {
		return err
	}
	defer a.closeDB(db)

	if err := db.AutoMigrate(); err != nil {
		return fmt.Errorf("auto-migrate failed: %w", err)
	}
	a.log.Info("SQLite schema synchronised", zap.String("path", a.cfg.Database.Path))
	return nil
}

func (a *app) withMigrator(fn func(*migration.Migrator) error) error {
	if a.cfg.Database.Driver == config.DriverSQLite {
		return errSQLiteMigrations
	}

	db, err := a.openDatabase()
	if err != nil {
		return err
	}
	defer a.closeDB(db)

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	m, err := migration.New(sqlDB, a.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			a.log.Debug("Migrator close", zap.Error(err))
		}
	}()

	return fn(m)
}
