package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/devtracker-api/internal/config"
	"github.com/phrazzld/devtracker-api/internal/domain/ordering"
	"github.com/phrazzld/devtracker-api/internal/events"
	"github.com/phrazzld/devtracker-api/internal/platform/postgres"
	"github.com/phrazzld/devtracker-api/internal/platform/tracing"
	"github.com/phrazzld/devtracker-api/internal/service"
	"github.com/phrazzld/devtracker-api/internal/service/auth"
	"go.opentelemetry.io/otel/trace"
)

// application holds the shared dependencies of the server and releases them
// on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	tracerProvider  trace.TracerProvider
	shutdownTracing tracing.ShutdownFunc

	jwtService   auth.JWTService
	gateway      auth.Gateway
	eventEmitter *events.InMemoryEventEmitter
	taskService  service.TaskService
}

// newApplication wires stores, services and the event emitter around an
// already-open database.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.tracerProvider, app.shutdownTracing = tracing.NewProvider(cfg.Tracing, logger)

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.gateway = auth.NewGateway(app.jwtService)
	logger.Info("JWT authentication initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	engine, err := ordering.NewEngineWithParams(ordering.NewParams(ordering.ParamsConfig{
		Gap:    cfg.Ordering.Gap,
		MinGap: cfg.Ordering.MinGap,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create ordering engine: %w", err)
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(newAuditHandler(logger))

	taskStore := postgres.NewPostgresTaskStore(db, logger)
	app.taskService, err = service.NewTaskService(
		service.NewTaskRepositoryAdapter(taskStore, db),
		engine,
		app.eventEmitter,
		logger,
		service.WithMaxAttempts(cfg.Ordering.MaxAttempts),
		service.WithTracerProvider(app.tracerProvider),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	logger.Info("application initialized")
	return app, nil
}

// newAuditHandler logs every committed board change.
func newAuditHandler(logger *slog.Logger) events.EventHandler {
	log := logger.With("component", "board_audit")
	return events.HandlerFunc(func(ctx context.Context, event *events.BoardEvent) error {
		log.InfoContext(ctx, "board changed",
			"event_id", event.ID.String(),
			"event_type", event.Type,
			"owner_id", event.OwnerID.String(),
			"task_id", event.TaskID.String(),
			"payload", string(event.Payload))
		return nil
	})
}

// Run serves the API until ctx is cancelled or a shutdown signal arrives.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup flushes spans and closes the database.
func (app *application) cleanup(ctx context.Context) {
	if app.shutdownTracing != nil {
		if err := app.shutdownTracing(ctx); err != nil {
			app.logger.Error("error shutting down tracing", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
