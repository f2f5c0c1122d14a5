package stream

import (
	"iter"

	"go.opentelemetry.io/otel/attribute"
)

// Accumulator aggregates the chunks of one stream into span attributes.
//
// ProcessChunk is called once per chunk in arrival order. Errors it returns
// are logged by the proxy and otherwise ignored. Attributes and
// ExtraAttributes must be safe to call any number of times, including on an
// accumulator that never saw a chunk.
type Accumulator[T any] interface {
	ProcessChunk(chunk T) error
	Attributes() iter.Seq[attribute.KeyValue]
	ExtraAttributes() iter.Seq[attribute.KeyValue]
}

func noAttributes(func(attribute.KeyValue) bool) {}
