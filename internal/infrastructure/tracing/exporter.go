package tracing

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var _ sdktrace.SpanExporter = (*LogExporter)(nil)

// LogExporter exports OpenTelemetry spans as zap entries, in the same shape
// the Tracer collector logs its own spans.
type LogExporter struct {
	logger *zap.Logger

	mu       sync.RWMutex
	shutdown bool
}

// NewLogExporter creates an exporter writing to logger
func NewLogExporter(logger *zap.Logger) *LogExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogExporter{logger: logger}
}

// ExportSpans logs each span
func (e *LogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.shutdown {
		return nil
	}

	for _, span := range spans {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.export(span)
	}
	return nil
}

func (e *LogExporter) export(span sdktrace.ReadOnlySpan) {
	sc := span.SpanContext()
	fields := []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
		zap.String("operation", span.Name()),
		zap.Duration("duration", span.EndTime().Sub(span.StartTime())),
		zap.String("status", span.Status().Code.String()),
		zap.Int("events", len(span.Events())),
	}
	if parent := span.Parent(); parent.IsValid() {
		fields = append(fields, zap.String("parent_id", parent.SpanID().String()))
	}
	if res := span.Resource(); res != nil {
		if name, ok := res.Set().Value("service.name"); ok {
			fields = append(fields, zap.String("service", name.AsString()))
		}
	}
	for _, kv := range span.Attributes() {
		fields = append(fields, zap.Any(string(kv.Key), kv.Value.AsInterface()))
	}

	if span.Status().Code == codes.Error {
		fields = append(fields, zap.String("description", span.Status().Description))
		e.logger.Error("span completed with error", fields...)
		return
	}
	e.logger.Info("span completed", fields...)
}

// Shutdown stops exporting. Later exports are dropped.
func (e *LogExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	e.shutdown = true
	e.mu.Unlock()
	return nil
}

// NewTracerProvider returns an SDK provider that batches spans into a
// LogExporter
func NewTracerProvider(logger *zap.Logger, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	opts = append([]sdktrace.TracerProviderOption{
		sdktrace.WithBatcher(NewLogExporter(logger)),
	}, opts...)
	return sdktrace.NewTracerProvider(opts...)
}

// OTelTraceID returns the hex trace id of span, or "" when it has none
func OTelTraceID(span trace.Span) string {
	sc := span.SpanContext()
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
