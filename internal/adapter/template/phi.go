package template

import (
	"strings"

	"github.com/davoram/hearth/internal/core/domain"
)

// phiFormatter renders phi-family prompts: <|role|> headers, <|end|>
// terminators, tool list inlined ahead of the first user message.
type phiFormatter struct{}

func (phiFormatter) Format(b *strings.Builder, meta *domain.ModelMetadata, messages []domain.ChatMessage, addGenerationPrompt bool, tools *domain.ToolCallOptions) {
	toolsPending := tools.HasTools()

	for _, msg := range messages {
		b.WriteString("<|")
		b.WriteString(msg.Role)
		b.WriteString("|>\n")

		if toolsPending && msg.Role == domain.RoleUser {
			b.WriteString(phiToolsBlock(tools))
			toolsPending = false
		}

		b.WriteString(msg.Content)
		b.WriteString("<|end|>\n")
	}

	if addGenerationPrompt {
		b.WriteString("<|assistant|>\n")
	}
}
