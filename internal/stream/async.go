package stream

import (
	"context"
	"errors"
	"io"
	"iter"

	"go.opentelemetry.io/otel/codes"
)

// AsyncSource is an await-based chunk source. Recv blocks until a chunk is
// available, the source ends (io.EOF), or ctx is done.
type AsyncSource[T any] interface {
	Recv(ctx context.Context) (T, error)
}

// Opener obtains the AsyncSource. Opening may itself block.
type Opener[T any] func(ctx context.Context) (AsyncSource[T], error)

// AsyncStream wraps an AsyncSource. Besides finalizing on errors it
// finalizes as soon as a chunk reports a finish reason, since some
// upstreams keep the connection open after the response is complete.
type AsyncStream[T any] struct {
	tracker[T]
	open Opener[T]
}

// NewAsync wraps the source produced by open. span must not be nil;
// accumulator may be.
func NewAsync[T any](open Opener[T], span Span, accumulator Accumulator[T], opts ...Option) *AsyncStream[T] {
	return &AsyncStream[T]{
		tracker: newTracker(span, accumulator, opts),
		open:    open,
	}
}

// Chunks opens the source and yields its chunks in order. An error from
// opening or receiving is recorded, finalizes the span, and is yielded as
// the last element. Chunks should be ranged over once.
func (s *AsyncStream[T]) Chunks(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		if s.open == nil {
			yield(zero, ErrNilOpener)
			return
		}

		src, err := s.open(ctx)
		if err != nil {
			s.fail(err)
			yield(zero, err)
			return
		}

		for {
			chunk, err := src.Recv(ctx)
			if errors.Is(err, io.EOF) {
				if !s.done() {
					s.finish(StatusOK)
				}
				return
			}
			if err != nil {
				s.fail(err)
				yield(zero, err)
				return
			}

			s.processChunk(chunk)
			more := yield(chunk, nil)
			// Checked after the consumer has the chunk, and even if it
			// stopped on it.
			if s.opts.completed(chunk) && !s.done() {
				s.finish(StatusOK)
			}
			if !more {
				return
			}
		}
	}
}

// Close finalizes the span of an abandoned stream with an unset status.
func (s *AsyncStream[T]) Close() error {
	if !s.done() {
		s.finish(Status{Code: codes.Unset})
	}
	return nil
}
