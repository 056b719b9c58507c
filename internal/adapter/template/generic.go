package template

import (
	"strings"

	"github.com/davoram/hearth/internal/core/domain"
)

// genericFormatter is the last resort for architectures with no
// dedicated formatter: uppercase role labels and plain newlines. Ugly
// but every instruction-tuned model copes with it.
type genericFormatter struct{}

func (genericFormatter) Format(b *strings.Builder, meta *domain.ModelMetadata, messages []domain.ChatMessage, addGenerationPrompt bool, tools *domain.ToolCallOptions) {
	if tools.HasTools() {
		b.WriteString("Available tools: ")
		b.WriteString(renderToolsJSON(tools))
		b.WriteString("\n\n")
	}

	for _, msg := range messages {
		b.WriteString(strings.ToUpper(msg.Role))
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}

	if addGenerationPrompt {
		b.WriteString("ASSISTANT: ")
	}
}
