/*
Package monitoring provides Prometheus metrics for instrumented streams.

# Overview

Metrics implements stream.Observer, so passing it to a proxy with
stream.WithObserver records every stream's lifecycle:

- streams started, active and finished (by status)
- chunks forwarded
- time to first chunk
- best-effort telemetry failures (by stage)

HTTP request metrics for the replay server are recorded by Middleware.

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg, "streamtrace")

	s := stream.New(src, span, acc, stream.WithObserver(metrics))

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
*/
package monitoring
