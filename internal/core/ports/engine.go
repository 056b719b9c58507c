package ports

import "context"

// GenerationParams is the slice of sampling configuration this layer
// influences. Everything else about sampling is the engine's business.
type GenerationParams struct {
	StopSequences []string
	MaxTokens     int
	Temperature   float64
}

// InferenceEngine is the opaque "generate text given a formatted prompt"
// capability. Weight loading, context management and sampling live behind
// this boundary.
type InferenceEngine interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)

	// GenerateStream yields incremental chunks; the channel closes when
	// generation finishes or ctx is cancelled.
	GenerateStream(ctx context.Context, prompt string, params GenerationParams) (<-chan string, error)
}
