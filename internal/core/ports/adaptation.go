package ports

import (
	"context"

	"github.com/davoram/hearth/internal/core/domain"
)

// MetadataExtractor turns a model's raw metadata and tokenizer into a
// normalised, immutable ModelMetadata snapshot.
type MetadataExtractor interface {
	Extract(ctx context.Context, modelID string) (*domain.ModelMetadata, error)

	// Invalidate drops any cached snapshot, forcing re-extraction on the
	// next request. Called when a model is unregistered or replaced.
	Invalidate(modelID string)
}

// PromptFormatter renders a message list into the exact text a model
// expects, preferring the model's native template over built-in formats.
type PromptFormatter interface {
	Format(ctx context.Context, meta *domain.ModelMetadata, messages []domain.ChatMessage, addGenerationPrompt bool, tools *domain.ToolCallOptions) (string, error)
}

// ToolCapabilityDetector decides whether a model supports tool calling
// and which wire convention it expects, from its chat template text and
// raw metadata key set.
type ToolCapabilityDetector interface {
	Detect(chatTemplate string, rawMetadata map[string]string, architecture, modelName string) domain.ToolCapabilities
}

// StopTokenOptimizer produces the prioritised, capped stop-sequence set
// for one generation request. Pure given its architecture table.
type StopTokenOptimizer interface {
	Optimize(ctx context.Context, architecture string, requestStops []string, genCtx domain.GenerationContext) *domain.OptimizedStopTokens
}

// ToolCallParser recovers structured tool calls from generated free
// text, matched against the caller's declared tool set. The model's
// detected capabilities steer which delimiters are tried first.
type ToolCallParser interface {
	Parse(ctx context.Context, text string, caps domain.ToolCapabilities, tools *domain.ToolCallOptions) ([]domain.ParsedToolCall, error)
}
