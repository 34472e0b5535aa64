package main

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/devtracker-api/internal/config"
	"github.com/phrazzld/devtracker-api/internal/platform/postgres/migrations"
	"github.com/pressly/goose/v3"
)

// migrationTableName is the goose version table.
const migrationTableName = "schema_migrations"

// migrationCommands lists the goose commands accepted by -migrate.
var migrationCommands = []string{"up", "down", "status", "version", "reset"}

// slogGooseLogger routes goose output through slog. Fatalf logs at error
// level and returns so the caller can handle the failure.
type slogGooseLogger struct {
	logger *slog.Logger
}

var _ goose.Logger = (*slogGooseLogger)(nil)

func (l *slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// validateMigrationCommand reports whether command can be run with -migrate.
func validateMigrationCommand(command string) error {
	if !slices.Contains(migrationCommands, command) {
		return fmt.Errorf("unknown migration command %q (want one of %s)",
			command, strings.Join(migrationCommands, ", "))
	}
	return nil
}

// configureGoose points goose at the embedded migrations.
func configureGoose(logger *slog.Logger, verbose bool) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(&slogGooseLogger{logger: logger})
	goose.SetVerbose(verbose)
	goose.SetTableName(migrationTableName)
	return goose.SetDialect("postgres")
}

// runMigrations executes one goose command against the configured database.
func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger, command string, verbose bool) error {
	if err := validateMigrationCommand(command); err != nil {
		return err
	}

	log := logger.With(
		"component", "migrations",
		"command", command,
		"correlation_id", uuid.NewString(),
	)
	if err := configureGoose(log, verbose); err != nil {
		return fmt.Errorf("failed to configure migrations: %w", err)
	}

	db, err := openDatabase(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database connection", "error", err)
		}
	}()

	start := time.Now()
	log.Info("starting migration")
	if err := goose.RunContext(ctx, command, db, "."); err != nil {
		log.Error("migration failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	log.Info("migration completed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
