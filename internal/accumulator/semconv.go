package accumulator

import "strconv"

// Attribute keys, following OpenInference naming.
const (
	ChunkCountKey = "chunk_count"

	OutputValueKey          = "output.value"
	OutputMimeTypeKey       = "output.mime_type"
	ModelNameKey            = "llm.model_name"
	TokenCountPromptKey     = "llm.token_count.prompt"
	TokenCountCompletionKey = "llm.token_count.completion"
	TokenCountTotalKey      = "llm.token_count.total"

	MimeTypeJSON = "application/json"
)

func outputMessageKey(i int, suffix string) string {
	return "llm.output_messages." + strconv.Itoa(i) + ".message." + suffix
}

func toolCallKey(i, j int, suffix string) string {
	return outputMessageKey(i, "tool_calls."+strconv.Itoa(j)+".tool_call."+suffix)
}
