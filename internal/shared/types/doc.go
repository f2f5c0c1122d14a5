// Package types provides shared data structures for streamtrace.
//
// Completion Types:
//   - CompletionEvent: One streamed chat completion event
//   - CompletionChunk, CompletionResponseStreamChoice, DeltaMessage
//   - ToolCall, FunctionCall: Incremental tool invocations
//   - UsageInfo: Token usage
//
// Replay Types:
//   - ReplayMode: sync or async proxy
//   - ReplayResponse: Result of an instrumented replay
//   - ErrorResponse: Rejected request
//
// CompletionEvent implements FinishReason, which lets the async stream
// proxy recognize the end of a response.
package types
