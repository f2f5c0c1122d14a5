// Package main is the entry point of the streamtrace replay service.
//
// streamtrace instruments streamed chat completions: every chunk that passes
// through its stream proxies is accumulated and the span is finalized once,
// when the stream ends or fails.
//
// The server provides:
//   - POST /v1/replay to replay an SSE capture through the proxies
//   - Prometheus metrics on /metrics
//   - Health and stream counters on /health and /v1/stats
//
// Configuration:
//   - Environment variables (12-factor)
//   - Optional YAML file (-config), applied over the environment
//   - CLI flags (override both)
//
// Usage:
//
//	# Serve
//	./streamtrace -port 8000
//
//	# Development mode (colored logs, debug level)
//	./streamtrace -dev
//
//	# Replay a capture once and print the finalized span
//	./streamtrace -replay capture.sse.gz -mode async
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
