package template

import (
	"encoding/json"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/davoram/hearth/internal/core/domain"
)

var compactJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// toolEnvelope is the OpenAI function-tool wire shape the tool block
// embeds into the prompt.
type toolEnvelope struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// renderToolsJSON serialises the declared tools as one compact JSON
// array. Models were tuned on compact arrays; pretty-printing wastes
// context and hurts recall.
func renderToolsJSON(tools *domain.ToolCallOptions) string {
	envelopes := make([]toolEnvelope, 0, len(tools.Tools))
	for _, t := range tools.Tools {
		envelopes = append(envelopes, toolEnvelope{
			Type: "function",
			Function: toolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	out, err := compactJSON.MarshalToString(envelopes)
	if err != nil {
		return "[]"
	}
	return out
}

// phiToolsBlock wraps the tool list in phi's expected instructions,
// telling the model to answer inside <|tool|> markers.
func phiToolsBlock(tools *domain.ToolCallOptions) string {
	var b strings.Builder
	b.WriteString("You have access to the following tools:\n")
	b.WriteString(renderToolsJSON(tools))
	b.WriteString("\nTo use a tool, respond with <|tool|>{\"name\": \"...\", \"arguments\": {...}}<|end|>\n")
	return b.String()
}

// llamaToolsBlock states the available tools as plain text ahead of the
// user turn, the convention llama-family instruction tunes follow.
func llamaToolsBlock(tools *domain.ToolCallOptions) string {
	var b strings.Builder
	b.WriteString("Available tools: ")
	b.WriteString(renderToolsJSON(tools))
	b.WriteString("\nCall a tool with [TOOL_CALL]{\"name\": \"...\", \"arguments\": {...}}[/TOOL_CALL]\n")
	return b.String()
}

// chatmlToolsBlock follows the qwen convention of a dedicated tools
// section with <tool_call> response markers.
func chatmlToolsBlock(tools *domain.ToolCallOptions) string {
	var b strings.Builder
	b.WriteString("# Tools\n\nYou may call one or more functions:\n")
	b.WriteString(renderToolsJSON(tools))
	b.WriteString("\nFor each call, return <tool_call>{\"name\": \"...\", \"arguments\": {...}}</tool_call>\n")
	return b.String()
}
