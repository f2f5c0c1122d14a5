package stream

import (
	"context"
	"errors"
	"io"
	"iter"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// recordingSpan is a Span that remembers every call made on it.
type recordingSpan struct {
	finished    bool
	events      []string
	errs        []error
	finishes    []Status
	attributes  []attribute.KeyValue
	extra       []attribute.KeyValue
	addEventErr error
	calls       []string
}

func (s *recordingSpan) IsFinished() bool { return s.finished }

func (s *recordingSpan) AddEvent(name string) error {
	s.calls = append(s.calls, "event")
	if s.addEventErr != nil {
		return s.addEventErr
	}
	s.events = append(s.events, name)
	return nil
}

func (s *recordingSpan) RecordError(err error) {
	s.calls = append(s.calls, "error")
	s.errs = append(s.errs, err)
}

func (s *recordingSpan) Finish(status Status, attributes, extra []attribute.KeyValue) {
	s.calls = append(s.calls, "finish")
	s.finishes = append(s.finishes, status)
	s.attributes = attributes
	s.extra = extra
	s.finished = true
}

// sliceSource yields chunks and then err, or io.EOF when err is nil.
type sliceSource[T any] struct {
	chunks []T
	err    error
	pos    int
	closed bool
}

func (s *sliceSource[T]) Next() (T, error) {
	var zero T
	if s.pos < len(s.chunks) {
		c := s.chunks[s.pos]
		s.pos++
		return c, nil
	}
	if s.err != nil {
		return zero, s.err
	}
	return zero, io.EOF
}

func (s *sliceSource[T]) Recv(ctx context.Context) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	return s.Next()
}

func (s *sliceSource[T]) Close() error {
	s.closed = true
	return nil
}

func openSlice[T any](src *sliceSource[T]) Opener[T] {
	return func(context.Context) (AsyncSource[T], error) {
		return src, nil
	}
}

// countingAccumulator counts chunks and can fail or panic on a given one.
type countingAccumulator struct {
	seen    []string
	failOn  int
	panicOn int
}

func (a *countingAccumulator) ProcessChunk(chunk string) error {
	n := len(a.seen) + 1
	if n == a.panicOn {
		a.seen = append(a.seen, chunk)
		panic("accumulator exploded")
	}
	if n == a.failOn {
		a.seen = append(a.seen, chunk)
		return errors.New("cannot accumulate " + chunk)
	}
	a.seen = append(a.seen, chunk)
	return nil
}

func (a *countingAccumulator) Attributes() iter.Seq[attribute.KeyValue] {
	return func(yield func(attribute.KeyValue) bool) {
		yield(attribute.Int("chunk_count", len(a.seen)))
	}
}

func (a *countingAccumulator) ExtraAttributes() iter.Seq[attribute.KeyValue] {
	return func(yield func(attribute.KeyValue) bool) {
		for i, c := range a.seen {
			if !yield(attribute.String("chunk."+strconv.Itoa(i), c)) {
				return
			}
		}
	}
}

// ValueError mirrors a typed application error.
type ValueError struct {
	msg string
}

func (e ValueError) Error() string { return e.msg }

// choiceChunk carries an optional finish reason.
type choiceChunk struct {
	text   string
	reason string
}

func (c choiceChunk) FinishReason() (string, bool) {
	return c.reason, c.reason != ""
}

// countingObserver tallies Observer callbacks.
type countingObserver struct {
	started  int
	chunks   int
	finished []Status
	failures []string
}

func (o *countingObserver) StreamStarted() { o.started++ }

func (o *countingObserver) ChunkReceived(int, time.Duration) { o.chunks++ }

func (o *countingObserver) StreamFinished(status Status) {
	o.finished = append(o.finished, status)
}

func (o *countingObserver) TelemetryFailure(stage string) {
	o.failures = append(o.failures, stage)
}
