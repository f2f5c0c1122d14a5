// Package accumulator provides stream.Accumulator implementations.
//
//   - Counter: counts chunks of any type (chunk_count)
//   - Completion: assembles streamed chat completion events into the
//     response attributes used by LLM tracing (model, token counts,
//     output messages, tool calls)
package accumulator
