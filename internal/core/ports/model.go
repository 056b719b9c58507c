package ports

import "context"

// MetadataSource exposes a loaded model's raw GGUF key-value store.
// Values are the stringified form the loader produced; array-typed values
// carry their shape descriptor (e.g. "arr[str,32000]") rather than data.
type MetadataSource interface {
	// All returns every key-value pair in one read. A failure here is the
	// only metadata error that propagates to callers.
	All(ctx context.Context) (map[string]string, error)
}

// Tokenizer is the read-only slice of the model runtime the extractor
// needs: tokenizing candidate strings and resolving named specials.
type Tokenizer interface {
	// Tokenize returns the token IDs for text. Probing accepts a literal
	// only when it tokenizes to exactly one ID.
	Tokenize(text string) ([]int, error)

	// SpecialToken resolves a named token (constants.TokenBOS etc.) to its
	// literal text and ID. ok is false when the model has no such token.
	SpecialToken(name string) (text string, id int, ok bool)
}

// ModelProvider hands out the per-model collaborators owned by the
// registry. This layer only ever reads through these.
type ModelProvider interface {
	MetadataSource(modelID string) (MetadataSource, error)
	Tokenizer(modelID string) (Tokenizer, error)
	Engine(modelID string) (InferenceEngine, error)
	ListModels() []string
}
