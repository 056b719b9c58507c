package template

import (
	"context"
	"strings"
	"sync"

	"github.com/davoram/hearth/internal/core/constants"
	"github.com/davoram/hearth/internal/core/domain"
	"github.com/davoram/hearth/internal/logger"
	"github.com/davoram/hearth/pkg/pool"
)

// ArchFormatter renders a message list into one architecture family's
// wire format. Implementations write into the supplied builder and must
// not retain it.
type ArchFormatter interface {
	Format(b *strings.Builder, meta *domain.ModelMetadata, messages []domain.ChatMessage, addGenerationPrompt bool, tools *domain.ToolCallOptions)
}

// Formatter renders prompts native-first: the model's own chat template
// when it has one and the minimal engine can handle it, otherwise the
// registered architecture formatter, otherwise the generic fallback.
// Adding an architecture means registering a formatter, not growing a
// switch.
type Formatter struct {
	formatters map[string]ArchFormatter
	fallback   ArchFormatter
	builders   *pool.Pool[*strings.Builder]
	logger     *logger.StyledLogger
	mu         sync.RWMutex
}

func NewFormatter(log *logger.StyledLogger) *Formatter {
	builders, _ := pool.NewLitePool(func() *strings.Builder {
		return &strings.Builder{}
	})

	llama := llamaFormatter{}
	chatml := chatmlFormatter{}

	return &Formatter{
		formatters: map[string]ArchFormatter{
			constants.ArchLlama:    llama,
			constants.ArchMistral:  llama,
			constants.ArchMixtral:  llama,
			constants.ArchPhi3:     phiFormatter{},
			constants.ArchQwen:     chatml,
			constants.ArchQwen2:    chatml,
			constants.ArchDeepseek: chatml,
		},
		fallback: genericFormatter{},
		builders: builders,
		logger:   log,
	}
}

// Register installs or replaces the formatter for an architecture name.
// Safe to call while requests are in flight.
func (f *Formatter) Register(architecture string, formatter ArchFormatter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.formatters[architecture] = formatter
}

func (f *Formatter) Format(ctx context.Context, meta *domain.ModelMetadata, messages []domain.ChatMessage, addGenerationPrompt bool, tools *domain.ToolCallOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Native templates carry no tool-list construct the minimal engine
	// could fill, so tool-bearing requests go straight to the
	// architecture formatter.
	if meta.HasChatTemplate() && !tools.HasTools() {
		out, err := renderNative(meta, messages, addGenerationPrompt)
		if err == nil {
			return out, nil
		}
		f.logger.Warn("Native chat template unsupported, using architecture formatter",
			"architecture", meta.Architecture, "error", err)
	}

	b := f.builders.Get()
	defer f.builders.Put(b)

	f.archFormatter(meta.Architecture).Format(b, meta, messages, addGenerationPrompt, tools)
	return b.String(), nil
}

func (f *Formatter) archFormatter(architecture string) ArchFormatter {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if formatter, ok := f.formatters[architecture]; ok {
		return formatter
	}
	return f.fallback
}
