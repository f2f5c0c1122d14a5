package source

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/stream"
)

// ErrChannelClosed is returned by Send after the channel was closed
var ErrChannelClosed = errors.New("channel closed")

// Channel is an await-based source fed by a producer goroutine. Each
// Channel has one producer and one consumer.
type Channel[T any] struct {
	chunks chan T
	err    error
	once   sync.Once
	closed chan struct{}
}

// NewChannel creates a Channel buffering up to size chunks
func NewChannel[T any](size int) *Channel[T] {
	return &Channel[T]{
		chunks: make(chan T, size),
		closed: make(chan struct{}),
	}
}

// Send delivers chunk, blocking until there is room or ctx is done
func (c *Channel[T]) Send(ctx context.Context, chunk T) error {
	select {
	case <-c.closed:
		return ErrChannelClosed
	default:
	}

	select {
	case c.chunks <- chunk:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CloseWithError ends the stream. Buffered chunks are still received;
// after them Recv returns err, or io.EOF when err is nil. Only the first
// call has an effect. It must not be called concurrently with Send.
func (c *Channel[T]) CloseWithError(err error) {
	c.once.Do(func() {
		c.err = err
		close(c.closed)
		close(c.chunks)
	})
}

// Recv waits for the next chunk
func (c *Channel[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	select {
	case chunk, ok := <-c.chunks:
		if ok {
			return chunk, nil
		}
		if c.err != nil {
			return zero, c.err
		}
		return zero, io.EOF
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Pump sends every chunk of src into c and closes c with the terminal
// error of src, or with the context error if ctx ends first.
func Pump[T any](ctx context.Context, src stream.Source[T], c *Channel[T]) {
	for {
		chunk, err := src.Next()
		if errors.Is(err, io.EOF) {
			c.CloseWithError(nil)
			return
		}
		if err != nil {
			c.CloseWithError(err)
			return
		}
		if err := c.Send(ctx, chunk); err != nil {
			c.CloseWithError(err)
			return
		}
	}
}

// Opener returns a stream.Opener that hands out c
func (c *Channel[T]) Opener() stream.Opener[T] {
	return func(ctx context.Context) (stream.AsyncSource[T], error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return c, nil
	}
}
