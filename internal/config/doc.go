// Package config provides 12-factor configuration management for streamtrace.
//
// Configuration is loaded from environment variables with sensible defaults.
// An optional YAML file can override them, and CLI flags override both.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - Tracing: Service name, span buffer, exporter (log or otel)
//   - Metrics: Prometheus toggle and namespace
//   - RateLimit: per-client and global request limits
//   - CORS: allowed origins
//
// Example Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Server running on %s\n", cfg.Address())
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - TRACE_SERVICE, TRACE_BUFFER, TRACE_EXPORTER
//   - METRICS_ENABLED, METRICS_NAMESPACE
//   - RATE_LIMIT_ENABLED, RATE_LIMIT_RPS, RATE_LIMIT_BURST
//   - RATE_LIMIT_GLOBAL_RPS, RATE_LIMIT_GLOBAL_BURST
//   - CORS_ORIGINS
package config
