package tracing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/stream"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var _ stream.Span = (*Span)(nil)

// ErrSpanFinished is returned when an event is added to a finished span
var ErrSpanFinished = errors.New("span already finished")

// TraceID represents a unique trace identifier
type TraceID string

// SpanID represents a unique span identifier
type SpanID string

// Event represents a timestamped event within a span
type Event struct {
	Timestamp time.Time
	Name      string
	Fields    map[string]interface{}
}

// Span represents a single operation in a trace. It implements stream.Span.
type Span struct {
	TraceID         TraceID
	SpanID          SpanID
	ParentID        SpanID
	Name            string
	Service         string
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
	Tags            map[string]string
	Attributes      []attribute.KeyValue
	ExtraAttributes []attribute.KeyValue
	Events          []Event
	Errors          []error
	Status          stream.Status

	mu       sync.Mutex
	finished bool
	tracer   *Tracer
}

// Tracer manages tracing for one service
type Tracer struct {
	service string
	logger  *zap.Logger
	spans   chan *Span

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// New creates a new tracer instance with a span buffer of the given size
func New(service string, logger *zap.Logger, buffer int) *Tracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = 1000
	}
	t := &Tracer{
		service: service,
		logger:  logger,
		spans:   make(chan *Span, buffer),
		done:    make(chan struct{}),
	}

	// Start span collector
	go t.collectSpans()

	return t
}

// StartSpan creates a new span as a child of the span in ctx, if any
func (t *Tracer) StartSpan(ctx context.Context, name string) (*Span, context.Context) {
	traceID, _ := ctx.Value(traceIDKey).(TraceID)
	if traceID == "" {
		traceID = TraceID(id.NewTraceID())
	}

	parentID, _ := ctx.Value(spanIDKey).(SpanID)

	span := &Span{
		TraceID:   traceID,
		SpanID:    SpanID(id.NewSpanID()),
		ParentID:  parentID,
		Name:      name,
		Service:   t.service,
		StartTime: time.Now(),
		Tags:      make(map[string]string),
		tracer:    t,
	}

	newCtx := context.WithValue(ctx, traceIDKey, traceID)
	newCtx = context.WithValue(newCtx, spanIDKey, span.SpanID)

	return span, newCtx
}

// IsFinished reports whether Finish has been called
func (s *Span) IsFinished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// AddEvent appends a timestamped event
func (s *Span) AddEvent(name string) error {
	return s.Log(name, nil)
}

// Log appends a timestamped event with fields
func (s *Span) Log(name string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return fmt.Errorf("add event %q: %w", name, ErrSpanFinished)
	}
	s.Events = append(s.Events, Event{
		Timestamp: time.Now(),
		Name:      name,
		Fields:    fields,
	})
	return nil
}

// RecordError records an error as an exception event
func (s *Span) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.Errors = append(s.Errors, err)
	s.Events = append(s.Events, Event{
		Timestamp: time.Now(),
		Name:      "exception",
		Fields: map[string]interface{}{
			"exception.type":    stream.Category(err),
			"exception.message": err.Error(),
		},
	})
}

// SetTag adds a tag to an unfinished span
func (s *Span) SetTag(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.Tags[key] = value
}

// Finish closes the span and submits it to its tracer. Only the first call
// has an effect.
func (s *Span) Finish(status stream.Status, attributes, extraAttributes []attribute.KeyValue) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
	s.Status = status
	s.Attributes = attributes
	s.ExtraAttributes = extraAttributes
	s.mu.Unlock()

	if s.tracer != nil {
		s.tracer.Submit(s)
	}
}

// collectSpans processes completed spans
func (t *Tracer) collectSpans() {
	defer close(t.done)
	for span := range t.spans {
		t.processSpan(span)
	}
}

// processSpan logs span data
func (t *Tracer) processSpan(span *Span) {
	fields := []zap.Field{
		zap.String("trace_id", string(span.TraceID)),
		zap.String("span_id", string(span.SpanID)),
		zap.String("operation", span.Name),
		zap.Duration("duration", span.Duration),
		zap.String("service", span.Service),
		zap.String("status", span.Status.Code.String()),
		zap.Int("events", len(span.Events)),
	}

	if span.ParentID != "" {
		fields = append(fields, zap.String("parent_id", string(span.ParentID)))
	}
	for k, v := range span.Tags {
		fields = append(fields, zap.String(k, v))
	}
	for _, kv := range span.Attributes {
		fields = append(fields, zap.Any(string(kv.Key), kv.Value.AsInterface()))
	}
	for _, kv := range span.ExtraAttributes {
		fields = append(fields, zap.Any(string(kv.Key), kv.Value.AsInterface()))
	}

	if span.Status.Code == codes.Error {
		fields = append(fields, zap.String("description", span.Status.Description))
		t.logger.Error("span completed with error", fields...)
	} else {
		t.logger.Info("span completed", fields...)
	}
}

// Submit sends a finished span to the collector
func (t *Tracer) Submit(span *Span) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		t.logger.Warn("tracer closed, dropping span",
			zap.String("trace_id", string(span.TraceID)),
			zap.String("span_id", string(span.SpanID)),
		)
		return
	}

	select {
	case t.spans <- span:
	default:
		t.logger.Warn("span buffer full, dropping span",
			zap.String("trace_id", string(span.TraceID)),
			zap.String("span_id", string(span.SpanID)),
		)
	}
}

// Close stops accepting spans and waits until buffered spans are processed
func (t *Tracer) Close() {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.spans)
	}
	t.mu.Unlock()
	<-t.done
}

// Trace propagation headers
const (
	TraceIDHeader = "X-Trace-ID"
	SpanIDHeader  = "X-Span-ID"
)

// ExtractTraceContext reads the propagated trace and parent span from h
func ExtractTraceContext(h http.Header) (TraceID, SpanID) {
	return TraceID(h.Get(TraceIDHeader)), SpanID(h.Get(SpanIDHeader))
}

// InjectTraceContext writes the trace and span carried by ctx into h.
// Missing IDs are left unset.
func InjectTraceContext(ctx context.Context, h http.Header) {
	if traceID := GetTraceID(ctx); traceID != "" {
		h.Set(TraceIDHeader, string(traceID))
	}
	if spanID := GetSpanID(ctx); spanID != "" {
		h.Set(SpanIDHeader, string(spanID))
	}
}

// Context keys for trace propagation
type contextKey string

const (
	traceIDKey contextKey = "trace_id"
	spanIDKey  contextKey = "span_id"
)

// ContextWithTrace returns ctx carrying the given trace and parent span
func ContextWithTrace(ctx context.Context, traceID TraceID, spanID SpanID) context.Context {
	if traceID != "" {
		ctx = context.WithValue(ctx, traceIDKey, traceID)
	}
	if spanID != "" {
		ctx = context.WithValue(ctx, spanIDKey, spanID)
	}
	return ctx
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) TraceID {
	if traceID, ok := ctx.Value(traceIDKey).(TraceID); ok {
		return traceID
	}
	return ""
}

// GetSpanID retrieves the span ID from context
func GetSpanID(ctx context.Context) SpanID {
	if spanID, ok := ctx.Value(spanIDKey).(SpanID); ok {
		return spanID
	}
	return ""
}
