package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogExporter(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(NewLogExporter(zap.New(core))))
	defer tp.Shutdown(context.Background())

	ctx, parent := tp.Tracer("test").Start(context.Background(), "replay")
	_, child := tp.Tracer("test").Start(ctx, "chat.stream")
	child.SetAttributes(attribute.Int("chunk_count", 3))
	child.End()

	_, failed := tp.Tracer("test").Start(context.Background(), "chat.stream")
	failed.RecordError(errors.New("boom"))
	failed.SetStatus(codes.Error, "errorString: boom")
	failed.End()
	parent.End()

	entries := logs.All()
	require.Len(t, entries, 3)

	first := entries[0].ContextMap()
	assert.Equal(t, "span completed", entries[0].Message)
	assert.Equal(t, "chat.stream", first["operation"])
	assert.Equal(t, int64(3), first["chunk_count"])
	assert.Equal(t, parent.SpanContext().SpanID().String(), first["parent_id"])
	assert.Equal(t, OTelTraceID(parent), first["trace_id"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "span completed with error", entries[1].Message)
	assert.Equal(t, "errorString: boom", entries[1].ContextMap()["description"])
	assert.Equal(t, int64(1), entries[1].ContextMap()["events"])

	_, hasParent := entries[2].ContextMap()["parent_id"]
	assert.False(t, hasParent)
}

func TestLogExporterShutdown(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	exp := NewLogExporter(zap.New(core))
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	defer tp.Shutdown(context.Background())

	require.NoError(t, exp.Shutdown(context.Background()))

	_, span := tp.Tracer("test").Start(context.Background(), "late")
	span.End()
	assert.Zero(t, logs.Len())
}

func TestNewTracerProviderFlushes(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	tp := NewTracerProvider(zap.New(core))

	_, span := tp.Tracer("test").Start(context.Background(), "chat.stream")
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "chat.stream", logs.All()[0].ContextMap()["operation"])
}
