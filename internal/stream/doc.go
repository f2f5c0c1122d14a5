/*
Package stream instruments streamed completion responses.

# Overview

A completion API that streams its output hands back a sequence of chunks.
This package wraps that sequence in a proxy which forwards every chunk to
the caller unchanged while recording the lifecycle of the stream on a span:

  - a "First Token Stream Event" when the first chunk arrives
  - success when the stream is exhausted or reports a finish reason
  - failure, with the error recorded, when retrieving a chunk fails
  - final attributes pulled from a pluggable Accumulator

The span is finalized exactly once. Telemetry failures (adding an event,
accumulating a chunk) are logged and never reach the caller.

# Proxies

Stream wraps a pull-based Source:

	s := stream.New(src, span, accumulator.NewCounter[Chunk](),
		stream.WithLogger(logger),
	)
	for {
		chunk, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		render(chunk)
	}

AsyncStream wraps an await-based AsyncSource that is obtained through an
Opener, and exposes it as a range-over-func sequence:

	s := stream.NewAsync(open, span, acc)
	for chunk, err := range s.Chunks(ctx) {
		if err != nil {
			return err
		}
		render(chunk)
	}

Callers that stop consuming early should Close the proxy so its span is
not left open.
*/
package stream
