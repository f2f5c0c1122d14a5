package stream

import (
	"fmt"
	"iter"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// tracker holds the per-stream bookkeeping shared by both proxies. It is
// owned by a single proxy and never locked.
type tracker[T any] struct {
	span        Span
	accumulator Accumulator[T]
	opts        options

	started    time.Time
	iterations int
	finished   bool
}

func newTracker[T any](span Span, accumulator Accumulator[T], opts []Option) tracker[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	t := tracker[T]{
		span:        span,
		accumulator: accumulator,
		opts:        o,
		started:     time.Now(),
		finished:    span.IsFinished(),
	}
	// A span finished before the stream starts is never reported
	if !t.finished {
		o.observer.StreamStarted()
	}
	return t
}

// processChunk runs the first-token event and accumulation for one chunk.
// Neither step can fail the stream.
func (t *tracker[T]) processChunk(chunk T) {
	if t.iterations == 0 {
		// The event only decorates the span; losing it is acceptable.
		t.bestEffort("event", "Failed to add event to span", func() error {
			return t.span.AddEvent(FirstTokenEvent)
		})
	}
	t.iterations++
	t.opts.observer.ChunkReceived(t.iterations, time.Since(t.started))

	if t.accumulator != nil {
		// The chunk reaches the caller whether or not it was accumulated.
		t.bestEffort("accumulate", "Failed to accumulate response", func() error {
			return t.accumulator.ProcessChunk(chunk)
		})
	}
}

// bestEffort runs fn, logging any error or panic instead of returning it.
func (t *tracker[T]) bestEffort(stage, msg string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			t.opts.logger.Error(msg,
				zap.Error(fmt.Errorf("panic: %v", r)),
				zap.Int("chunk", t.iterations),
			)
			t.opts.observer.TelemetryFailure(stage)
		}
	}()
	if err := fn(); err != nil {
		t.opts.logger.Error(msg,
			zap.Error(err),
			zap.Int("chunk", t.iterations),
		)
		t.opts.observer.TelemetryFailure(stage)
	}
}

// done reports whether the span must not be finalized again. The first
// time it sees a span finished outside the proxy, the observer is told the
// stream ended with an unset status.
func (t *tracker[T]) done() bool {
	if t.finished {
		return true
	}
	if !t.span.IsFinished() {
		return false
	}
	t.finished = true
	t.opts.observer.StreamFinished(Status{Code: codes.Unset, Description: FinishedElsewhere})
	return true
}

// finish finalizes the span. Callers check done first.
func (t *tracker[T]) finish(status Status) {
	t.opts.finisher.Finish(t.span, status, t)
	t.finished = true
	t.opts.observer.StreamFinished(status)
}

// fail records err on the span and finalizes it with a failure status.
func (t *tracker[T]) fail(err error) {
	if t.done() {
		return
	}
	status := ErrorStatus(err)
	t.span.RecordError(err)
	t.finish(status)
}

// Attributes yields the accumulator's attributes, or nothing without one.
func (t *tracker[T]) Attributes() iter.Seq[attribute.KeyValue] {
	if t.accumulator == nil {
		return noAttributes
	}
	return t.accumulator.Attributes()
}

// ExtraAttributes yields the accumulator's extra attributes, or nothing
// without one.
func (t *tracker[T]) ExtraAttributes() iter.Seq[attribute.KeyValue] {
	if t.accumulator == nil {
		return noAttributes
	}
	return t.accumulator.ExtraAttributes()
}

// Iterations returns how many chunks have been obtained so far.
func (t *tracker[T]) Iterations() int {
	return t.iterations
}

// Finished reports whether this proxy has finalized its span, or found it
// already finalized.
func (t *tracker[T]) Finished() bool {
	return t.done()
}
