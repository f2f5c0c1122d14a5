package accumulator

import (
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/shared/types"
	"github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/attribute"
)

// Completion assembles streamed chat completion events.
type Completion struct {
	id      string
	object  string
	created int64
	model   string
	usage   *types.UsageInfo
	choices map[int]*choice
	chunks  int
}

type choice struct {
	role         string
	content      strings.Builder
	finishReason string
	toolCalls    map[int]*types.ToolCall
}

// NewCompletion creates an empty Completion accumulator.
func NewCompletion() *Completion {
	return &Completion{choices: make(map[int]*choice)}
}

// ProcessChunk merges one event. Chunks without choices only contribute
// metadata and usage.
func (c *Completion) ProcessChunk(event types.CompletionEvent) error {
	chunk := event.Data
	c.chunks++

	// Metadata comes from the first chunk that carries it
	if c.id == "" {
		c.id = chunk.ID
	}
	if c.model == "" {
		c.model = chunk.Model
	}
	if c.object == "" {
		c.object = chunk.Object
	}
	if c.created == 0 {
		c.created = chunk.Created
	}
	if chunk.Usage != nil {
		c.usage = chunk.Usage
	}

	for _, delta := range chunk.Choices {
		ch, ok := c.choices[delta.Index]
		if !ok {
			ch = &choice{toolCalls: make(map[int]*types.ToolCall)}
			c.choices[delta.Index] = ch
		}
		if delta.Delta.Role != "" {
			ch.role = delta.Delta.Role
		}
		ch.content.WriteString(delta.Delta.Content)
		for _, tc := range delta.Delta.ToolCalls {
			ch.addToolCall(tc)
		}
		if delta.FinishReason != nil {
			ch.finishReason = *delta.FinishReason
		}
	}
	return nil
}

// addToolCall merges a tool call delta. ID and name arrive once, arguments
// are appended.
func (ch *choice) addToolCall(delta types.ToolCall) {
	existing, ok := ch.toolCalls[delta.Index]
	if !ok {
		existing = &types.ToolCall{Index: delta.Index}
		ch.toolCalls[delta.Index] = existing
	}
	if delta.ID != "" {
		existing.ID = delta.ID
	}
	if delta.Type != "" {
		existing.Type = delta.Type
	}
	if delta.Function.Name != "" {
		existing.Function.Name = delta.Function.Name
	}
	existing.Function.Arguments += delta.Function.Arguments
}

// Response is the completion assembled from all chunks so far.
type Response struct {
	ID      string           `json:"id,omitempty"`
	Object  string           `json:"object,omitempty"`
	Created int64            `json:"created,omitempty"`
	Model   string           `json:"model,omitempty"`
	Choices []ResponseChoice `json:"choices"`
	Usage   *types.UsageInfo `json:"usage,omitempty"`
}

// ResponseChoice is one assembled choice.
type ResponseChoice struct {
	Index        int             `json:"index"`
	Message      ResponseMessage `json:"message"`
	FinishReason string          `json:"finish_reason,omitempty"`
}

// ResponseMessage is an assembled assistant message.
type ResponseMessage struct {
	Role      string           `json:"role,omitempty"`
	Content   string           `json:"content"`
	ToolCalls []types.ToolCall `json:"tool_calls,omitempty"`
}

// Response assembles the chunks seen so far, choices in index order.
func (c *Completion) Response() Response {
	resp := Response{
		ID:      c.id,
		Object:  c.object,
		Created: c.created,
		Model:   c.model,
		Usage:   c.usage,
		Choices: []ResponseChoice{},
	}
	for _, idx := range slices.Sorted(maps.Keys(c.choices)) {
		ch := c.choices[idx]
		msg := ResponseMessage{Role: ch.role, Content: ch.content.String()}
		for _, j := range slices.Sorted(maps.Keys(ch.toolCalls)) {
			msg.ToolCalls = append(msg.ToolCalls, *ch.toolCalls[j])
		}
		resp.Choices = append(resp.Choices, ResponseChoice{
			Index:        idx,
			Message:      msg,
			FinishReason: ch.finishReason,
		})
	}
	return resp
}

// Attributes yields the serialized response, model name and token counts.
// Nothing is yielded before the first chunk.
func (c *Completion) Attributes() iter.Seq[attribute.KeyValue] {
	return func(yield func(attribute.KeyValue) bool) {
		if c.chunks == 0 {
			return
		}
		if out, err := sonic.MarshalString(c.Response()); err == nil {
			if !yield(attribute.String(OutputValueKey, out)) {
				return
			}
			if !yield(attribute.String(OutputMimeTypeKey, MimeTypeJSON)) {
				return
			}
		}
		if c.model != "" {
			if !yield(attribute.String(ModelNameKey, c.model)) {
				return
			}
		}
		if c.usage == nil {
			return
		}
		for _, kv := range []attribute.KeyValue{
			attribute.Int(TokenCountPromptKey, c.usage.PromptTokens),
			attribute.Int(TokenCountCompletionKey, c.usage.CompletionTokens),
			attribute.Int(TokenCountTotalKey, c.usage.TotalTokens),
		} {
			if !yield(kv) {
				return
			}
		}
	}
}

// ExtraAttributes yields one group of output message attributes per choice.
func (c *Completion) ExtraAttributes() iter.Seq[attribute.KeyValue] {
	return func(yield func(attribute.KeyValue) bool) {
		for i, rc := range c.Response().Choices {
			for _, kv := range messageAttributes(i, rc.Message) {
				if !yield(kv) {
					return
				}
			}
		}
	}
}

func messageAttributes(i int, msg ResponseMessage) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if msg.Role != "" {
		attrs = append(attrs, attribute.String(outputMessageKey(i, "role"), msg.Role))
	}
	if msg.Content != "" {
		attrs = append(attrs, attribute.String(outputMessageKey(i, "content"), msg.Content))
	}
	for j, tc := range msg.ToolCalls {
		if tc.Function.Name != "" {
			attrs = append(attrs, attribute.String(toolCallKey(i, j, "function.name"), tc.Function.Name))
		}
		if tc.Function.Arguments != "" {
			attrs = append(attrs, attribute.String(toolCallKey(i, j, "function.arguments"), tc.Function.Arguments))
		}
	}
	return attrs
}
