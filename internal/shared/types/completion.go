package types

// CompletionEvent is one server-sent event of a streamed chat completion.
type CompletionEvent struct {
	Data CompletionChunk `json:"data"`
}

// CompletionChunk is the payload of a CompletionEvent
type CompletionChunk struct {
	ID      string                           `json:"id"`
	Object  string                           `json:"object,omitempty"`
	Created int64                            `json:"created,omitempty"`
	Model   string                           `json:"model"`
	Choices []CompletionResponseStreamChoice `json:"choices"`
	Usage   *UsageInfo                       `json:"usage,omitempty"`
}

// CompletionResponseStreamChoice is the delta for one choice
type CompletionResponseStreamChoice struct {
	Index        int          `json:"index"`
	Delta        DeltaMessage `json:"delta"`
	FinishReason *string      `json:"finish_reason"`
}

// DeltaMessage is the incremental part of an assistant message
type DeltaMessage struct {
	Role      string     `json:"role,omitempty"`
	Content   string     `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is a (possibly partial) tool invocation
type ToolCall struct {
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type,omitempty"`
	Index    int          `json:"index"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names the function a tool call invokes
type FunctionCall struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// UsageInfo reports token usage, usually on the last chunk
type UsageInfo struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// FinishReason returns the finish reason of the first choice, if set.
func (e CompletionEvent) FinishReason() (string, bool) {
	if len(e.Data.Choices) == 0 || e.Data.Choices[0].FinishReason == nil {
		return "", false
	}
	return *e.Data.Choices[0].FinishReason, true
}
