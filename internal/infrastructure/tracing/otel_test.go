package tracing

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/accumulator"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestProvider(t *testing.T) (*sdktrace.TracerProvider, *tracetest.InMemoryExporter) {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, exp
}

func hasAttr(span tracetest.SpanStub, want attribute.KeyValue) bool {
	for _, a := range span.Attributes {
		if a == want {
			return true
		}
	}
	return false
}

func TestOTelSpan_StreamSuccess(t *testing.T) {
	tp, exp := newTestProvider(t)
	span, _ := StartOTelSpan(context.Background(), tp.Tracer("test"), "chat.stream")

	chunks := []string{"c1", "c2", "c3"}
	i := 0
	src := stream.SourceFunc[string](func() (string, error) {
		if i == len(chunks) {
			return "", io.EOF
		}
		i++
		return chunks[i-1], nil
	})
	s := stream.New[string](src, span, accumulator.NewCounter[string]())

	for {
		if _, err := s.Next(); err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}
	}

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, "chat.stream", got.Name)
	assert.Equal(t, codes.Ok, got.Status.Code)
	assert.True(t, hasAttr(got, attribute.Int(accumulator.ChunkCountKey, 3)))
	require.Len(t, got.Events, 1)
	assert.Equal(t, stream.FirstTokenEvent, got.Events[0].Name)
	assert.True(t, span.IsFinished())
}

func TestOTelSpan_StreamFailure(t *testing.T) {
	tp, exp := newTestProvider(t)
	span, _ := StartOTelSpan(context.Background(), tp.Tracer("test"), "chat.stream")

	s := stream.New[string](stream.SourceFunc[string](func() (string, error) {
		return "", errors.New("boom")
	}), span, nil)

	_, err := s.Next()
	require.EqualError(t, err, "boom")

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "errorString: boom", spans[0].Status.Description)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}

func TestOTelSpan_FinishOnce(t *testing.T) {
	tp, exp := newTestProvider(t)
	span, _ := StartOTelSpan(context.Background(), tp.Tracer("test"), "chat.stream")

	span.Finish(stream.StatusOK, nil, nil)
	span.Finish(stream.StatusOK, nil, nil)

	assert.Len(t, exp.GetSpans(), 1)
	assert.ErrorIs(t, span.AddEvent("late"), ErrSpanFinished)
}
