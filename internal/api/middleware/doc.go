// Package middleware provides gin middleware for the replay API: CORS and
// per-client or global rate limiting backed by golang.org/x/time/rate.
package middleware
