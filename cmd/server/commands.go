package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tracker/internal/config"
	"tracker/internal/logger"
	"tracker/internal/repository"
	"tracker/internal/server"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func newMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage the postgres schema (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all up migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(log *zap.Logger, cfg *config.Config) error {
				db, err := server.Connect(cfg, log)
				if err != nil {
					return err
				}
				if err := repository.Migrate(db); err != nil {
					return err
				}
				cmd.Println("Migration up completed successfully")
				return nil
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(log *zap.Logger, cfg *config.Config) error {
				db, err := server.Connect(cfg, log)
				if err != nil {
					return err
				}
				if err := repository.MigrateDown(db); err != nil {
					return err
				}
				cmd.Println("Migration down completed successfully")
				return nil
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(log *zap.Logger, cfg *config.Config) error {
				db, err := server.Connect(cfg, log)
				if err != nil {
					return err
				}
				version, dirty, err := repository.MigrationVersion(db)
				if err != nil {
					return err
				}
				cmd.Printf("Current migration version: %d\n", version)
				cmd.Printf("Dirty: %t\n", dirty)
				return nil
			})
		},
	})

	return migrateCmd
}

func runServer(ctx context.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	s, err := server.Init(cfg, log)
	if err != nil {
		log.Error("server initialization failed", zap.Error(err))
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

func withDatabase(fn func(log *zap.Logger, cfg *config.Config) error) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.StorageDriver != config.StorageDriverPostgres {
		return errors.New("migrations only apply to the postgres storage driver")
	}
	return fn(log, cfg)
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(log)
	return cfg, log, nil
}
