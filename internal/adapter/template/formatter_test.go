package template

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davoram/hearth/internal/core/constants"
	"github.com/davoram/hearth/internal/core/domain"
	"github.com/davoram/hearth/internal/logger"
)

func newTestFormatter() *Formatter {
	return NewFormatter(logger.NewDiscard())
}

func conversation() []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: "You are helpful."},
		{Role: domain.RoleUser, Content: "What's the weather in Tokyo?"},
	}
}

func searchTools() *domain.ToolCallOptions {
	return &domain.ToolCallOptions{
		Tools: []domain.ToolDefinition{{
			Name:        "get_weather",
			Description: "Current weather",
			Parameters:  json.RawMessage(`{"type":"object","properties":{"location":{"type":"string"}}}`),
		}},
	}
}

func TestFormat_NativeTemplate(t *testing.T) {
	f := newTestFormatter()

	meta := &domain.ModelMetadata{
		Architecture: constants.ArchLlama,
		ChatTemplate: "{{ bos_token }}{% for message in messages %}[{{ message.role }}] {{ message.content }}\n{% endfor %}{% if add_generation_prompt %}[assistant] {% endif %}",
		SpecialTokens: map[string]domain.SpecialToken{
			constants.TokenBOS: {Text: "<s>", ID: 1},
		},
	}

	out, err := f.Format(context.Background(), meta, conversation(), true, nil)
	require.NoError(t, err)

	assert.Equal(t, "<s>[system] You are helpful.\n[user] What's the weather in Tokyo?\n[assistant] ", out)
}

func TestFormat_NativeKeepsDollarSigns(t *testing.T) {
	f := newTestFormatter()

	meta := &domain.ModelMetadata{
		Architecture: constants.ArchLlama,
		ChatTemplate: "{% for message in messages %}{{ message.role }}: {{ message.content }}\n{% endfor %}{% if add_generation_prompt %}assistant: {% endif %}",
	}
	messages := []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "I paid $1 and then $2 for the tickets, total ${total}"},
	}

	out, err := f.Format(context.Background(), meta, messages, true, nil)
	require.NoError(t, err)

	// dollar sequences must survive verbatim, not read as capture refs
	assert.Equal(t, "user: I paid $1 and then $2 for the tickets, total ${total}\nassistant: ", out)
}

func TestFormat_NativeGenerationPromptStripped(t *testing.T) {
	f := newTestFormatter()

	meta := &domain.ModelMetadata{
		Architecture: constants.ArchLlama,
		ChatTemplate: "{% for message in messages %}{{ message.content }}{% endfor %}{% if add_generation_prompt %}GO:{% endif %}",
	}

	out, err := f.Format(context.Background(), meta, []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}}, false, nil)
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
}

func TestFormat_UnsupportedConstructFallsBack(t *testing.T) {
	f := newTestFormatter()

	// nested conditional the minimal engine cannot handle
	meta := &domain.ModelMetadata{
		Architecture: constants.ArchPhi3,
		ChatTemplate: "{% for message in messages %}{% if message.role == 'user' %}{{ message.content }}{% endif %}{% endfor %}",
	}

	out, err := f.Format(context.Background(), meta, conversation(), true, nil)
	require.NoError(t, err, "fallback is silent, never an error")

	// phi fallback output: role-tagged and non-empty
	assert.Contains(t, out, "<|system|>")
	assert.Contains(t, out, "<|user|>")
	assert.Contains(t, out, "You are helpful.")
	assert.True(t, strings.HasSuffix(out, "<|assistant|>\n"))
}

func TestFormat_PhiWithTools(t *testing.T) {
	f := newTestFormatter()

	meta := &domain.ModelMetadata{Architecture: constants.ArchPhi3}

	out, err := f.Format(context.Background(), meta, conversation(), true, searchTools())
	require.NoError(t, err)

	assert.Contains(t, out, `"name":"get_weather"`)
	assert.Contains(t, out, "<|tool|>")
	assert.Contains(t, out, "<|end|>")
	// tool block rides inside the user turn, before the question
	assert.Less(t, strings.Index(out, "get_weather"), strings.Index(out, "What's the weather"))
}

func TestFormat_ToolsBypassNativeTemplate(t *testing.T) {
	f := newTestFormatter()

	meta := &domain.ModelMetadata{
		Architecture: constants.ArchPhi3,
		ChatTemplate: "{% for message in messages %}{{ message.content }}{% endfor %}",
	}

	out, err := f.Format(context.Background(), meta, conversation(), true, searchTools())
	require.NoError(t, err)
	// the native template has nowhere to put tools, so the architecture
	// formatter renders instead
	assert.Contains(t, out, "get_weather")
	assert.Contains(t, out, "<|user|>")
}

func TestFormat_LlamaStyle(t *testing.T) {
	f := newTestFormatter()

	meta := &domain.ModelMetadata{
		Architecture: constants.ArchLlama,
		SpecialTokens: map[string]domain.SpecialToken{
			constants.TokenBOS: {Text: "<s>", ID: 1},
			constants.TokenEOS: {Text: "</s>", ID: 2},
		},
	}

	messages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: "Be brief."},
		{Role: domain.RoleUser, Content: "Hello"},
		{Role: domain.RoleAssistant, Content: "Hi!"},
	}

	out, err := f.Format(context.Background(), meta, messages, true, nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<s>"))
	assert.Contains(t, out, "<<SYS>>\nBe brief.\n<</SYS>>")
	assert.Contains(t, out, "[INST] Hello [/INST]")
	assert.Contains(t, out, "Hi!</s>")
}

func TestFormat_MixtralDelegatesToLlama(t *testing.T) {
	f := newTestFormatter()

	llamaOut, err := f.Format(context.Background(),
		&domain.ModelMetadata{Architecture: constants.ArchLlama}, conversation(), true, nil)
	require.NoError(t, err)

	mixtralOut, err := f.Format(context.Background(),
		&domain.ModelMetadata{Architecture: constants.ArchMixtral}, conversation(), true, nil)
	require.NoError(t, err)

	assert.Equal(t, llamaOut, mixtralOut)
}

func TestFormat_ChatML(t *testing.T) {
	f := newTestFormatter()

	meta := &domain.ModelMetadata{Architecture: constants.ArchQwen2}

	out, err := f.Format(context.Background(), meta, conversation(), true, nil)
	require.NoError(t, err)

	assert.Contains(t, out, "<|im_start|>system\nYou are helpful.<|im_end|>")
	assert.Contains(t, out, "<|im_start|>user\n")
	assert.True(t, strings.HasSuffix(out, "<|im_start|>assistant\n"))
}

func TestFormat_ChatMLToolsCreateSystemTurn(t *testing.T) {
	f := newTestFormatter()

	meta := &domain.ModelMetadata{Architecture: constants.ArchQwen}
	messages := []domain.ChatMessage{{Role: domain.RoleUser, Content: "Weather in Oslo?"}}

	out, err := f.Format(context.Background(), meta, messages, true, searchTools())
	require.NoError(t, err)

	assert.Contains(t, out, "<|im_start|>system")
	assert.Contains(t, out, "<tool_call>")
	assert.Contains(t, out, "get_weather")
}

func TestFormat_GenericFallbackNeverEmpty(t *testing.T) {
	f := newTestFormatter()

	meta := &domain.ModelMetadata{Architecture: "mysterynet"}

	out, err := f.Format(context.Background(), meta, conversation(), true, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, out)
	assert.Contains(t, out, "SYSTEM: You are helpful.")
	assert.Contains(t, out, "USER: What's the weather in Tokyo?")
	assert.True(t, strings.HasSuffix(out, "ASSISTANT: "))
}

func TestFormat_CancelledContext(t *testing.T) {
	f := newTestFormatter()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Format(ctx, &domain.ModelMetadata{Architecture: constants.ArchLlama}, conversation(), true, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

type bannerFormatter struct{}

func (bannerFormatter) Format(b *strings.Builder, _ *domain.ModelMetadata, _ []domain.ChatMessage, _ bool, _ *domain.ToolCallOptions) {
	b.WriteString("BANNER")
}

func TestRegister_ReplacesFormatter(t *testing.T) {
	f := newTestFormatter()
	f.Register(constants.ArchPhi3, bannerFormatter{})

	out, err := f.Format(context.Background(), &domain.ModelMetadata{Architecture: constants.ArchPhi3}, conversation(), true, nil)
	require.NoError(t, err)
	assert.Equal(t, "BANNER", out)
}

func TestRegister_ConcurrentWithFormat(t *testing.T) {
	f := newTestFormatter()
	meta := &domain.ModelMetadata{Architecture: "customnet"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			f.Register("customnet", bannerFormatter{})
		}()
		go func() {
			defer wg.Done()
			_, err := f.Format(context.Background(), meta, conversation(), true, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	out, err := f.Format(context.Background(), meta, conversation(), true, nil)
	require.NoError(t, err)
	assert.Equal(t, "BANNER", out)
}

func TestRenderToolsJSON_Compact(t *testing.T) {
	out := renderToolsJSON(searchTools())

	assert.True(t, strings.HasPrefix(out, `[{"type":"function"`))
	assert.NotContains(t, out, "\n")
}
