package replay

import (
	"context"

	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/stream"
	"go.opentelemetry.io/otel/trace"
)

// SpanFactory starts the span a replayed stream reports to. It returns the
// span, its trace id and the derived context.
type SpanFactory func(ctx context.Context, name string) (stream.Span, string, context.Context)

// TracerSpans starts spans on the zap-backed tracer
func TracerSpans(tracer *tracing.Tracer) SpanFactory {
	return func(ctx context.Context, name string) (stream.Span, string, context.Context) {
		span, ctx := tracer.StartSpan(ctx, name)
		return span, string(span.TraceID), ctx
	}
}

// OTelSpans starts spans on an OpenTelemetry tracer
func OTelSpans(tracer trace.Tracer) SpanFactory {
	return func(ctx context.Context, name string) (stream.Span, string, context.Context) {
		span, ctx := tracing.StartOTelSpan(ctx, tracer, name)
		return span, tracing.OTelTraceID(span.Span()), ctx
	}
}
