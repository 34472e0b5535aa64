package tracing

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/phrazzld/devtracker-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func newBufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLogExporter(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewLogExporter(newBufferLogger(&buf))
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	tracer := tp.Tracer("test")

	t.Run("successful span", func(t *testing.T) {
		buf.Reset()
		_, span := tracer.Start(context.Background(), "TaskService.GetTask")
		span.SetAttributes(attribute.String("task_id", "abc"))
		span.End()

		out := buf.String()
		assert.Contains(t, out, `"level":"DEBUG"`)
		assert.Contains(t, out, `"span":"TaskService.GetTask"`)
		assert.Contains(t, out, `"task_id":"abc"`)
		assert.Contains(t, out, `"trace_id"`)
	})

	t.Run("failed span", func(t *testing.T) {
		buf.Reset()
		_, span := tracer.Start(context.Background(), "TaskService.DeleteTask")
		span.RecordError(errors.New("boom"))
		span.SetStatus(codes.Error, "not_found")
		span.End()

		out := buf.String()
		assert.Contains(t, out, `"level":"WARN"`)
		assert.Contains(t, out, `"status":"not_found"`)
	})

	t.Run("child span records parent", func(t *testing.T) {
		buf.Reset()
		ctx, parent := tracer.Start(context.Background(), "parent")
		_, child := tracer.Start(ctx, "child")
		child.End()
		parent.End()
		assert.Contains(t, buf.String(), `"parent_span_id"`)
	})

	t.Run("shutdown drops later spans", func(t *testing.T) {
		require.NoError(t, exporter.Shutdown(context.Background()))
		buf.Reset()
		require.NoError(t, exporter.ExportSpans(context.Background(), nil))
		assert.Empty(t, buf.String())
	})
}

func TestNewProvider(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		tp, shutdown := NewProvider(config.TracingConfig{}, nil)
		_, span := tp.Tracer("test").Start(context.Background(), "noop")
		assert.False(t, span.SpanContext().IsValid())
		span.End()
		assert.NoError(t, shutdown(context.Background()))
	})

	t.Run("enabled", func(t *testing.T) {
		var buf bytes.Buffer
		tp, shutdown := NewProvider(config.TracingConfig{Enabled: true, SampleRatio: 1}, newBufferLogger(&buf))
		_, span := tp.Tracer("test").Start(context.Background(), "sampled")
		assert.True(t, span.SpanContext().IsSampled())
		span.End()

		require.NoError(t, shutdown(context.Background()))
		assert.Contains(t, buf.String(), `"span":"sampled"`)
	})
}
