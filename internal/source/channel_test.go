package source

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/stream"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelDrainsBeforeEOF(t *testing.T) {
	ctx := context.Background()
	c := NewChannel[int](3)

	for i := range 3 {
		require.NoError(t, c.Send(ctx, i))
	}
	c.CloseWithError(nil)

	for i := range 3 {
		got, err := c.Recv(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}
	_, err := c.Recv(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestChannelCloseWithError(t *testing.T) {
	boom := errors.New("upstream reset")
	c := NewChannel[int](1)
	c.CloseWithError(boom)
	c.CloseWithError(nil)

	_, err := c.Recv(context.Background())
	assert.Same(t, boom, err)

	assert.ErrorIs(t, c.Send(context.Background(), 1), ErrChannelClosed)
}

func TestChannelRecvCancel(t *testing.T) {
	c := NewChannel[int](0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Recv(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChannelSendCancel(t *testing.T) {
	c := NewChannel[int](0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.Send(ctx, 1), context.Canceled)
}

func TestPump(t *testing.T) {
	chunks := []int{1, 2, 3}
	i := 0
	src := stream.SourceFunc[int](func() (int, error) {
		if i == len(chunks) {
			return 0, io.EOF
		}
		i++
		return chunks[i-1], nil
	})

	c := NewChannel[int](0)
	go Pump(context.Background(), src, c)

	var got []int
	for {
		chunk, err := c.Recv(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, chunk)
	}
	assert.Equal(t, chunks, got)
}

func TestPumpPropagatesError(t *testing.T) {
	boom := errors.New("read failed")
	src := stream.SourceFunc[int](func() (int, error) {
		return 0, boom
	})

	c := NewChannel[int](1)
	Pump(context.Background(), src, c)

	_, err := c.Recv(context.Background())
	assert.Same(t, boom, err)
}

func TestChannelThroughAsyncStream(t *testing.T) {
	c := NewChannel[string](2)
	require.NoError(t, c.Send(context.Background(), "a"))
	require.NoError(t, c.Send(context.Background(), "b"))
	c.CloseWithError(nil)

	tracer := tracing.New("test", zap.NewNop(), 1)
	defer tracer.Close()
	span, _ := tracer.StartSpan(context.Background(), "replay")

	s := stream.NewAsync(c.Opener(), span, nil)
	var got []string
	for chunk, err := range s.Chunks(context.Background()) {
		require.NoError(t, err)
		got = append(got, chunk)
	}
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 2, s.Iterations())
	assert.True(t, span.IsFinished())
	assert.Equal(t, codes.Ok, span.Status.Code)
}
