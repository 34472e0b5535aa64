// Package main runs the task board API server. With -migrate it applies or
// inspects the embedded schema migrations and exits instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/devtracker-api/internal/redact"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults to ./config.yaml when present)")
	migrateCmd := flag.String("migrate", "", "migration command to run and exit: up, down, status, version, reset")
	verbose := flag.Bool("verbose", false, "log every migration step")
	flag.Parse()

	if err := run(context.Background(), *configPath, *migrateCmd, *verbose); err != nil {
		slog.Error("server exited with error", "error", redact.Error(err))
		os.Exit(1)
	}
}

// run loads configuration and either executes a migration command or serves
// the API until a shutdown signal arrives.
func run(ctx context.Context, configPath, migrateCmd string, verbose bool) error {
	cfg, err := loadAppConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		return runMigrations(ctx, cfg, logger, migrateCmd, verbose)
	}

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, logger, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
