package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"

	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/accumulator"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/source"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/stream"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	ModeSync  = types.ReplaySync
	ModeAsync = types.ReplayAsync

	defaultBuffer = 64
)

// ErrInvalidMode is returned by ParseMode for unknown modes
var ErrInvalidMode = errors.New("invalid replay mode")

// ParseMode parses a mode name. The empty string selects ModeSync.
func ParseMode(s string) (types.ReplayMode, error) {
	switch types.ReplayMode(s) {
	case "", ModeSync:
		return ModeSync, nil
	case ModeAsync:
		return ModeAsync, nil
	}
	return "", fmt.Errorf("%w %q: want %q or %q", ErrInvalidMode, s, ModeSync, ModeAsync)
}

// Result describes a finished replay
type Result struct {
	Mode            types.ReplayMode
	Chunks          int
	Status          stream.Status
	Attributes      []attribute.KeyValue
	ExtraAttributes []attribute.KeyValue
	Err             error
}

// Runner replays completion streams
type Runner struct {
	logger   *zap.Logger
	observer stream.Observer
	buffer   int
}

// NewRunner creates a Runner. observer may be nil.
func NewRunner(logger *zap.Logger, observer stream.Observer) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		logger:   logger,
		observer: observer,
		buffer:   defaultBuffer,
	}
}

// proxy is what both stream proxies expose once consumed
type proxy interface {
	stream.AttributeSource
	Iterations() int
	Close() error
}

// Run consumes src through the proxy for mode and reports to span. The
// span is finalized when Run returns.
func (r *Runner) Run(ctx context.Context, mode types.ReplayMode, src stream.Source[types.CompletionEvent], span stream.Span) Result {
	result := Result{Mode: mode}

	// Record the status the span was finalized with
	finisher := stream.FinisherFunc(func(s stream.Span, status stream.Status, attrs stream.AttributeSource) {
		result.Status = status
		stream.FinishTracing(s, status, attrs)
	})
	opts := []stream.Option{
		stream.WithLogger(r.logger),
		stream.WithFinisher(finisher),
	}
	if r.observer != nil {
		opts = append(opts, stream.WithObserver(r.observer))
	}

	acc := accumulator.NewCompletion()
	var p proxy
	switch mode {
	case ModeAsync:
		p, result.Err = r.runAsync(ctx, src, span, acc, opts)
	default:
		p, result.Err = runSync(src, span, acc, opts)
	}

	if err := p.Close(); err != nil {
		r.logger.Warn("Failed to close replay source", zap.Error(err))
	}

	result.Chunks = p.Iterations()
	result.Attributes = slices.Collect(p.Attributes())
	result.ExtraAttributes = slices.Collect(p.ExtraAttributes())

	r.logger.Info("Replay finished",
		zap.String("mode", string(mode)),
		zap.Int("chunks", result.Chunks),
		zap.String("status", statusName(result.Status)),
	)
	return result
}

func runSync(src stream.Source[types.CompletionEvent], span stream.Span, acc *accumulator.Completion, opts []stream.Option) (proxy, error) {
	s := stream.New[types.CompletionEvent](src, span, acc, opts...)
	for _, err := range s.All() {
		if err != nil {
			return s, err
		}
	}
	return s, nil
}

func (r *Runner) runAsync(ctx context.Context, src stream.Source[types.CompletionEvent], span stream.Span, acc *accumulator.Completion, opts []stream.Option) (proxy, error) {
	ctx, cancel := context.WithCancel(ctx)
	ch := source.NewChannel[types.CompletionEvent](r.buffer)

	pumped := make(chan struct{})
	go func() {
		defer close(pumped)
		source.Pump(ctx, src, ch)
	}()
	// The producer owns src until it returns
	defer func() {
		cancel()
		<-pumped
		if c, ok := src.(io.Closer); ok {
			if err := c.Close(); err != nil {
				r.logger.Warn("Failed to close replay source", zap.Error(err))
			}
		}
	}()

	s := stream.NewAsync[types.CompletionEvent](ch.Opener(), span, acc, opts...)
	for _, err := range s.Chunks(ctx) {
		if err != nil {
			return s, err
		}
	}
	return s, nil
}

// Response converts r for the HTTP API
func (r Result) Response(traceID string) types.ReplayResponse {
	resp := types.ReplayResponse{
		TraceID:         traceID,
		Mode:            r.Mode,
		Chunks:          r.Chunks,
		Status:          statusName(r.Status),
		Attributes:      attributeMap(slices.Values(r.Attributes)),
		ExtraAttributes: attributeMap(slices.Values(r.ExtraAttributes)),
	}
	if r.Err != nil {
		resp.Error = stream.Describe(r.Err)
	}
	return resp
}

func statusName(status stream.Status) string {
	return strings.ToLower(status.Code.String())
}

func attributeMap(attrs iter.Seq[attribute.KeyValue]) map[string]any {
	m := make(map[string]any)
	for kv := range attrs {
		m[string(kv.Key)] = kv.Value.AsInterface()
	}
	return m
}
