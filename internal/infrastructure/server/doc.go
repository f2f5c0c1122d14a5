// Package server assembles the replay service.
//
// This package wires the components together:
//   - stream metrics on a private Prometheus registry
//   - the log tracer for request spans, plus an OpenTelemetry provider
//     when the otel exporter is configured
//   - gin routing with tracing, metrics, CORS and rate limiting middleware
//
// Server Lifecycle:
//  1. Load configuration (cmd/streamtrace)
//  2. Build the logger
//  3. NewServer wires metrics, tracing and routes
//  4. Run serves until Close
//  5. Close drains HTTP connections and flushes spans
package server
