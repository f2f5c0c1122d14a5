package accumulator

import (
	"iter"

	"go.opentelemetry.io/otel/attribute"
)

// Counter counts the chunks of a stream.
type Counter[T any] struct {
	count int
}

// NewCounter creates a Counter.
func NewCounter[T any]() *Counter[T] {
	return &Counter[T]{}
}

// ProcessChunk counts chunk.
func (c *Counter[T]) ProcessChunk(T) error {
	c.count++
	return nil
}

// Count returns the number of chunks seen.
func (c *Counter[T]) Count() int {
	return c.count
}

// Attributes yields chunk_count.
func (c *Counter[T]) Attributes() iter.Seq[attribute.KeyValue] {
	return func(yield func(attribute.KeyValue) bool) {
		yield(attribute.Int(ChunkCountKey, c.count))
	}
}

// ExtraAttributes yields nothing.
func (c *Counter[T]) ExtraAttributes() iter.Seq[attribute.KeyValue] {
	return func(func(attribute.KeyValue) bool) {}
}
