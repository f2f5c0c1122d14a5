// Package replay runs captured chat completion streams through the
// instrumented stream proxies.
//
// A replay feeds an SSE capture to stream.Stream (sync mode) or, through a
// source.Channel pumped by a producer goroutine, to stream.AsyncStream
// (async mode). Chunks are accumulated with accumulator.Completion and the
// span is finalized exactly as it would be for a live response.
//
// Example Usage:
//
//	runner := replay.NewRunner(logger, metrics)
//	span, traceID, ctx := replay.TracerSpans(tracer)(ctx, "chat.stream")
//	result := runner.Run(ctx, replay.ModeAsync, source.NewSSE(body), span)
//	resp := result.Response(traceID)
//
// The HTTP replay endpoint and the -replay flag of cmd/streamtrace both use
// this package.
package replay
