// Package logging provides structured logging using uber/zap.
//
// This package offers logging with two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Stream proxies take a *zap.Logger; Component hands out named children so
// entries from the replay server, the tracer and the proxies can be told
// apart.
//
// Example Usage:
//
//	logger, err := logging.New(logging.Config{Level: "info", Service: "streamtrace"})
//	if err != nil {
//		return err
//	}
//	s := stream.New(src, span, acc, stream.WithLogger(logger.Component("stream")))
package logging
