package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bizportal/backend/internal/infrastructure/config"
	"github.com/bizportal/backend/internal/infrastructure/logger"
	"github.com/bizportal/backend/internal/infrastructure/persistence"
)

// app carries what every subcommand needs once PersistentPreRunE has run
type app struct {
	envFile  string
	logLevel string

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "bizctl",
		Short:         "Administer the business portal database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before configuration (ignored when missing)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		newMigrateCmd(a),
		newSeedCmd(a),
		newFixupCmd(a),
		newDemoCmd(a),
	)
	return root
}

// init loads the dotenv file, configuration and logger
func (a *app) init() error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load %s: %w", a.envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.cfg = cfg
	a.log = log.With(zap.String("component", "bizctl"))
	return nil
}

// openDatabase connects with the configured driver; the caller closes it
func (a *app) openDatabase() (*persistence.Database, error) {
	gormLog := logger.NewSQLLogger(a.log, logger.MapGormLogLevel(a.cfg.Log.Level))
	db, err := persistence.NewDatabase(&a.cfg.Database, gormLog)
	if err != nil {
		return nil, err
	}
	a.log.Debug("Database connected", zap.String("driver", db.Driver))
	return db, nil
}

// signalContext is cancelled on SIGINT/SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// closeDB closes db, logging failures
func (a *app) closeDB(db *persistence.Database) {
	if err := db.Close(); err != nil {
		a.log.Error("Error closing database", zap.Error(err))
	}
}
