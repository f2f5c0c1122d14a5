/*
Package tracing provides the span handles streamtrace reports to.

# Overview

Two implementations of stream.Span are provided:

- Span, from the built-in lightweight Tracer. Finished spans are handed to
  a buffered collector that writes them to the structured log.
- OTelSpan, which adapts an OpenTelemetry trace.Span so streams can be
  exported through any configured OpenTelemetry pipeline.

Both are safe to finish at most once; later Finish calls are ignored and
AddEvent on a finished span returns ErrSpanFinished.

LogExporter is an OpenTelemetry SpanExporter that writes spans to the log in
the same shape as the Tracer collector. NewTracerProvider batches into it.

# Features

- Trace context propagation via X-Trace-ID / X-Span-ID headers
- Parent-child spans through context
- ULID trace and span IDs
- Gin middleware for request spans
- Buffered span collection with drop-on-full

# Usage

	tracer := tracing.New("streamtrace", logger, 1000)
	defer tracer.Close()

	span, ctx := tracer.StartSpan(ctx, "mistralai.chat.stream")
	s := stream.New(src, span, accumulator.NewCompletion())

	// OpenTelemetry
	tp := tracing.NewTracerProvider(logger)
	defer tp.Shutdown(ctx)
	otelSpan, ctx := tracing.StartOTelSpan(ctx, tp.Tracer("streamtrace"), "mistralai.chat.stream")
	s := stream.New(src, otelSpan, accumulator.NewCompletion())

# Performance

- Buffered span collection (default 1000 spans)
- Async span processing
- Spans are immutable once finished, so the collector reads them without locking
*/
package tracing
