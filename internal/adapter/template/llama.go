package template

import (
	"strings"

	"github.com/davoram/hearth/internal/core/constants"
	"github.com/davoram/hearth/internal/core/domain"
)

// llamaFormatter renders the [INST] wire format shared by llama 2,
// mistral and mixtral instruction tunes. BOS once at the front when the
// tokenizer declares one, EOS after each assistant turn, system content
// wrapped in <<SYS>> inside the first instruction block.
type llamaFormatter struct{}

func (llamaFormatter) Format(b *strings.Builder, meta *domain.ModelMetadata, messages []domain.ChatMessage, addGenerationPrompt bool, tools *domain.ToolCallOptions) {
	if bos, ok := meta.SpecialTokenText(constants.TokenBOS); ok {
		b.WriteString(bos)
	}

	toolsPending := tools.HasTools()

	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleSystem:
			b.WriteString("[INST] <<SYS>>\n")
			b.WriteString(msg.Content)
			b.WriteString("\n<</SYS>>\n\n[/INST]")
		case domain.RoleUser:
			b.WriteString("[INST] ")
			if toolsPending {
				b.WriteString(llamaToolsBlock(tools))
				toolsPending = false
			}
			b.WriteString(msg.Content)
			b.WriteString(" [/INST]")
		case domain.RoleAssistant:
			b.WriteString(" ")
			b.WriteString(msg.Content)
			if eos, ok := meta.SpecialTokenText(constants.TokenEOS); ok {
				b.WriteString(eos)
			}
		default:
			// tool results and anything unexpected travel as plain
			// instruction content
			b.WriteString("[INST] ")
			b.WriteString(msg.Content)
			b.WriteString(" [/INST]")
		}
	}
}
