// Package http provides the HTTP handlers of the replay service.
//
// Routes:
//   - GET  /health     service status and stream counters
//   - GET  /v1/stats   stream counters as JSON
//   - POST /v1/replay  replay an SSE capture through the instrumented proxies
//
// The replay body is the raw event stream, optionally sent with
// "Content-Encoding: gzip". The "mode" query parameter selects the sync
// (default) or async proxy.
package http
