package extractor

import (
	"context"
	"strings"
	"time"

	"github.com/davoram/hearth/internal/adapter/archset"
	"github.com/davoram/hearth/internal/core/constants"
	"github.com/davoram/hearth/internal/core/domain"
	"github.com/davoram/hearth/internal/core/ports"
	"github.com/davoram/hearth/internal/logger"
)

// Extractor normalises a model's raw GGUF key-value store and tokenizer
// into a ModelMetadata snapshot. Individual field misses degrade to
// defaults; only a total failure to read the store is an error.
type Extractor struct {
	provider ports.ModelProvider
	detector ports.ToolCapabilityDetector
	registry *archset.Registry
	logger   *logger.StyledLogger
}

func New(provider ports.ModelProvider, detector ports.ToolCapabilityDetector, registry *archset.Registry, log *logger.StyledLogger) *Extractor {
	return &Extractor{
		provider: provider,
		detector: detector,
		registry: registry,
		logger:   log,
	}
}

func (e *Extractor) Extract(ctx context.Context, modelID string) (*domain.ModelMetadata, error) {
	source, err := e.provider.MetadataSource(modelID)
	if err != nil {
		return nil, domain.NewMetadataError("metadata source lookup", modelID, err)
	}

	raw, err := source.All(ctx)
	if err != nil {
		return nil, domain.NewMetadataError("metadata read", modelID, err)
	}

	meta := &domain.ModelMetadata{
		Architecture:    stringOrDefault(raw, constants.GGUFKeyArchitecture, constants.ArchUnknown),
		ModelName:       stringOrDefault(raw, constants.GGUFKeyModelName, constants.ArchUnknown),
		ModelType:       stringOrDefault(raw, constants.GGUFKeyModelType, constants.ArchUnknown),
		ChatTemplate:    raw[constants.GGUFKeyChatTemplate],
		RawMetadata:     raw,
		VocabularySize:  e.vocabularySize(raw, modelID),
		ContextLength:   e.probeIntKey(raw, constants.GGUFSuffixContextLength, constants.DefaultContextLength),
		EmbeddingLength: e.probeIntKey(raw, constants.GGUFSuffixEmbeddingLength, 0),
		ExtractedAt:     time.Now(),
	}
	meta.Architecture = strings.ToLower(meta.Architecture)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	meta.SpecialTokens = e.probeSpecialTokens(modelID, meta.Architecture)
	meta.ToolCapabilities = e.detector.Detect(meta.ChatTemplate, raw, meta.Architecture, meta.ModelName)
	meta.StopTokens = e.collectStopTokens(meta.ChatTemplate, meta.Architecture)

	e.logger.InfoWithModel("Extracted metadata for", modelID,
		"architecture", meta.Architecture,
		"context_length", meta.ContextLength,
		"vocabulary_size", meta.VocabularySize,
		"has_chat_template", meta.HasChatTemplate(),
		"supports_tools", meta.ToolCapabilities.SupportsToolCalling)

	return meta, nil
}

// Invalidate is a no-op; the stateless extractor keeps nothing to drop.
// CachingExtractor layers the actual eviction on top.
func (e *Extractor) Invalidate(modelID string) {}

func stringOrDefault(raw map[string]string, key, fallback string) string {
	if v, ok := raw[key]; ok && v != "" {
		return v
	}
	return fallback
}

// probeSpecialTokens asks the tokenizer for its named tokens, then tests
// the architecture's candidate literals. A candidate only counts when it
// tokenizes to exactly one ID, which proves it is a real vocabulary
// entry rather than a multi-token approximation.
func (e *Extractor) probeSpecialTokens(modelID, architecture string) map[string]domain.SpecialToken {
	tokens := make(map[string]domain.SpecialToken)

	tok, err := e.provider.Tokenizer(modelID)
	if err != nil {
		e.logger.Debug("No tokenizer available for special-token probing", "model", modelID, "error", err)
		return tokens
	}

	for _, name := range []string{constants.TokenBOS, constants.TokenEOS, constants.TokenNL} {
		if text, id, ok := tok.SpecialToken(name); ok {
			tokens[name] = domain.SpecialToken{Text: text, ID: id}
		}
	}

	for _, candidate := range e.registry.CandidateTokens(architecture) {
		ids, err := tok.Tokenize(candidate)
		if err != nil {
			continue
		}
		if len(ids) == 1 {
			tokens[candidate] = domain.SpecialToken{Text: candidate, ID: ids[0]}
		}
	}

	return tokens
}

// collectStopTokens unions the regex-bank hits from the chat template
// with the architecture's static stop rows, deduplicated, blanks dropped.
func (e *Extractor) collectStopTokens(chatTemplate, architecture string) []string {
	seen := make(map[string]struct{})
	var stops []string

	add := func(tok string) {
		if tok == "" {
			return
		}
		if _, dup := seen[tok]; dup {
			return
		}
		seen[tok] = struct{}{}
		stops = append(stops, tok)
	}

	if chatTemplate != "" {
		for _, re := range e.registry.StopPatterns() {
			for _, match := range re.FindAllString(chatTemplate, -1) {
				add(match)
			}
		}
	}

	def := e.registry.Lookup(architecture)
	for _, tok := range def.PrimaryStops {
		add(tok)
	}
	for _, tok := range def.ToolStops {
		add(tok)
	}

	return stops
}
