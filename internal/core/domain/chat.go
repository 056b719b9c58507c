package domain

import (
	"encoding/json"
	"strings"
)

// Message roles as they appear in OpenAI-shaped requests.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    string
	Content string
}

// ToolDefinition is a caller-declared callable function. Names must be
// unique within a single request.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// Tool choice values accepted on requests.
const (
	ToolChoiceAuto     = "auto"
	ToolChoiceNone     = "none"
	ToolChoiceRequired = "required"
)

// ToolCallOptions carries the caller's tool declarations and execution
// preferences into the formatter and parser.
type ToolCallOptions struct {
	ToolChoice        string
	Tools             []ToolDefinition
	ParallelToolCalls bool
}

// HasTools reports whether any tools were declared.
func (o *ToolCallOptions) HasTools() bool {
	return o != nil && len(o.Tools) > 0
}

// FindTool resolves a declared tool by name, case-insensitively. The
// parser uses this to discard calls to hallucinated functions.
func (o *ToolCallOptions) FindTool(name string) (ToolDefinition, bool) {
	if o == nil {
		return ToolDefinition{}, false
	}
	for _, t := range o.Tools {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return ToolDefinition{}, false
}

// ParsedToolCall is one structured call recovered from generated text.
// ArgumentsJSON is always syntactically valid JSON; "{}" when argument
// extraction failed. The ID is generated host-side, never model-supplied.
type ParsedToolCall struct {
	ID            string
	FunctionName  string
	ArgumentsJSON string
}

// Completion finish reasons surfaced to API callers.
const (
	FinishReasonStop      = "stop"
	FinishReasonLength    = "length"
	FinishReasonToolCalls = "tool_calls"
)

// CompletionResult is what the completion service hands back to the
// HTTP layer after formatting, generation and parsing.
type CompletionResult struct {
	Model        string
	Content      string
	FinishReason string
	ToolCalls    []ParsedToolCall
}
