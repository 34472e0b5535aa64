package tracing

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// LogExporter writes finished spans to a structured logger.
type LogExporter struct {
	logger *slog.Logger

	mu      sync.Mutex
	stopped bool
}

var _ sdktrace.SpanExporter = (*LogExporter)(nil)

// NewLogExporter creates an exporter that logs one record per span.
func NewLogExporter(logger *slog.Logger) *LogExporter {
	return &LogExporter{logger: logger.With(slog.String("component", "tracing"))}
}

// ExportSpans logs each span at debug level, or warn when the span ended in error.
func (e *LogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	stopped := e.stopped
	e.mu.Unlock()
	if stopped {
		return nil
	}

	for _, s := range spans {
		attrs := []slog.Attr{
			slog.String("span", s.Name()),
			slog.String("trace_id", s.SpanContext().TraceID().String()),
			slog.String("span_id", s.SpanContext().SpanID().String()),
			slog.Duration("duration", s.EndTime().Sub(s.StartTime())),
		}
		if s.Parent().IsValid() {
			attrs = append(attrs, slog.String("parent_span_id", s.Parent().SpanID().String()))
		}
		for _, kv := range s.Attributes() {
			attrs = append(attrs, slog.String(string(kv.Key), kv.Value.Emit()))
		}

		level := slog.LevelDebug
		if status := s.Status(); status.Code == codes.Error {
			level = slog.LevelWarn
			attrs = append(attrs, slog.String("status", status.Description))
		}
		e.logger.LogAttrs(ctx, level, "span finished", attrs...)
	}
	return nil
}

// Shutdown stops the exporter. Later exports are dropped.
func (e *LogExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	e.stopped = true
	e.mu.Unlock()
	return nil
}
