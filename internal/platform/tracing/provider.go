// Package tracing builds the OpenTelemetry tracer provider used by the
// service layer and the HTTP middleware.
package tracing

import (
	"context"
	"log/slog"

	"github.com/phrazzld/devtracker-api/internal/config"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ShutdownFunc flushes buffered spans and releases the provider.
type ShutdownFunc func(ctx context.Context) error

// NewProvider returns a tracer provider configured from cfg. When tracing is
// disabled a no-op provider is returned and shutdown does nothing.
func NewProvider(cfg config.TracingConfig, logger *slog.Logger) (trace.TracerProvider, ShutdownFunc) {
	if !cfg.Enabled {
		return noop.NewTracerProvider(), func(context.Context) error { return nil }
	}
	if logger == nil {
		logger = slog.Default()
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(NewLogExporter(logger)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	logger.Info("tracing enabled", slog.Float64("sample_ratio", cfg.SampleRatio))
	return tp, tp.Shutdown
}
