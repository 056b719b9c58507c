package template

import (
	"strings"

	"github.com/davoram/hearth/internal/core/domain"
)

// chatmlFormatter renders the <|im_start|>/<|im_end|> convention used
// by qwen and other ChatML-trained families. Tools go into the system
// turn, creating one if the caller supplied none.
type chatmlFormatter struct{}

func (chatmlFormatter) Format(b *strings.Builder, meta *domain.ModelMetadata, messages []domain.ChatMessage, addGenerationPrompt bool, tools *domain.ToolCallOptions) {
	toolsPending := tools.HasTools()

	if toolsPending && !hasSystemTurn(messages) {
		writeChatMLTurn(b, domain.RoleSystem, chatmlToolsBlock(tools))
		toolsPending = false
	}

	for _, msg := range messages {
		content := msg.Content
		if toolsPending && msg.Role == domain.RoleSystem {
			content = content + "\n\n" + chatmlToolsBlock(tools)
			toolsPending = false
		}
		writeChatMLTurn(b, msg.Role, content)
	}

	if addGenerationPrompt {
		b.WriteString("<|im_start|>assistant\n")
	}
}

func writeChatMLTurn(b *strings.Builder, role, content string) {
	b.WriteString("<|im_start|>")
	b.WriteString(role)
	b.WriteString("\n")
	b.WriteString(content)
	b.WriteString("<|im_end|>\n")
}

func hasSystemTurn(messages []domain.ChatMessage) bool {
	for _, msg := range messages {
		if msg.Role == domain.RoleSystem {
			return true
		}
	}
	return false
}
