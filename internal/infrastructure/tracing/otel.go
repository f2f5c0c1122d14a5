package tracing

import (
	"context"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/stream"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var _ stream.Span = (*OTelSpan)(nil)

// OTelSpan adapts an OpenTelemetry span to stream.Span
type OTelSpan struct {
	span trace.Span

	mu    sync.Mutex
	ended bool
}

// NewOTelSpan wraps span. The caller hands ending the span over to the
// returned value.
func NewOTelSpan(span trace.Span) *OTelSpan {
	return &OTelSpan{span: span}
}

// StartOTelSpan starts a span on tracer and wraps it
func StartOTelSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (*OTelSpan, context.Context) {
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return NewOTelSpan(span), ctx
}

// Span returns the wrapped span
func (s *OTelSpan) Span() trace.Span {
	return s.span
}

// IsFinished reports whether Finish has been called
func (s *OTelSpan) IsFinished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// AddEvent adds a span event
func (s *OTelSpan) AddEvent(name string) error {
	if s.IsFinished() {
		return fmt.Errorf("add event %q: %w", name, ErrSpanFinished)
	}
	s.span.AddEvent(name)
	return nil
}

// RecordError records err as an exception event
func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
}

// Finish sets the attributes and status and ends the span
func (s *OTelSpan) Finish(status stream.Status, attributes, extraAttributes []attribute.KeyValue) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	s.mu.Unlock()

	s.span.SetAttributes(attributes...)
	s.span.SetAttributes(extraAttributes...)
	s.span.SetStatus(status.Code, status.Description)
	s.span.End()
}
