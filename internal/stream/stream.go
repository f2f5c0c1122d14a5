package stream

import (
	"errors"
	"io"
	"iter"

	"go.opentelemetry.io/otel/codes"
)

// Source is a pull-based chunk source. Next returns io.EOF once the stream
// is exhausted.
type Source[T any] interface {
	Next() (T, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func() (T, error)

// Next calls f.
func (f SourceFunc[T]) Next() (T, error) {
	return f()
}

// Stream wraps a Source and finalizes its span when the source ends.
type Stream[T any] struct {
	tracker[T]
	source Source[T]
}

// New wraps source. span must not be nil; accumulator may be.
func New[T any](source Source[T], span Span, accumulator Accumulator[T], opts ...Option) *Stream[T] {
	return &Stream[T]{
		tracker: newTracker(span, accumulator, opts),
		source:  source,
	}
}

// Next returns the next chunk of the wrapped source.
//
// On io.EOF the span is finalized with an OK status and io.EOF is returned.
// Any other error is recorded on the span, the span is finalized with an
// error status, and the error is returned unchanged.
func (s *Stream[T]) Next() (T, error) {
	if s.source == nil {
		var zero T
		return zero, ErrNilSource
	}

	chunk, err := s.source.Next()
	if err != nil {
		if !s.done() {
			if errors.Is(err, io.EOF) {
				s.finish(StatusOK)
			} else {
				s.fail(err)
			}
		}
		return chunk, err
	}

	s.processChunk(chunk)
	return chunk, nil
}

// All ranges over the remaining chunks. A terminal error other than io.EOF
// is yielded once as the last element.
func (s *Stream[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			chunk, err := s.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(chunk, err) || err != nil {
				return
			}
		}
	}
}

// Close finalizes the span of an abandoned stream with an unset status and
// closes the source if it is an io.Closer.
func (s *Stream[T]) Close() error {
	if !s.done() {
		s.finish(Status{Code: codes.Unset})
	}
	if c, ok := s.source.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
