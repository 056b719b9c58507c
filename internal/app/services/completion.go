package services

import (
	"context"
	"strings"

	"github.com/davoram/hearth/internal/config"
	"github.com/davoram/hearth/internal/core/domain"
	"github.com/davoram/hearth/internal/core/ports"
	"github.com/davoram/hearth/internal/logger"
)

// CompletionRequest is the HTTP layer's view of one chat completion,
// already lifted out of wire JSON.
type CompletionRequest struct {
	ModelID     string
	Messages    []domain.ChatMessage
	Tools       *domain.ToolCallOptions
	Stops       []string
	MaxTokens   int
	Temperature *float64
}

// CompletionService runs the whole adaptation pipeline for one request:
// metadata snapshot, prompt formatting, stop optimization, generation,
// tool-call parsing. Stateless per request; safe for concurrent use.
type CompletionService struct {
	provider  ports.ModelProvider
	extractor ports.MetadataExtractor
	formatter ports.PromptFormatter
	optimizer ports.StopTokenOptimizer
	parser    ports.ToolCallParser
	defaults  config.GenerationConfig
	logger    *logger.StyledLogger
}

func NewCompletionService(
	provider ports.ModelProvider,
	extractor ports.MetadataExtractor,
	formatter ports.PromptFormatter,
	optimizer ports.StopTokenOptimizer,
	parser ports.ToolCallParser,
	defaults config.GenerationConfig,
	log *logger.StyledLogger,
) *CompletionService {
	return &CompletionService{
		provider:  provider,
		extractor: extractor,
		formatter: formatter,
		optimizer: optimizer,
		parser:    parser,
		defaults:  defaults,
		logger:    log,
	}
}

func (s *CompletionService) Complete(ctx context.Context, req *CompletionRequest) (*domain.CompletionResult, error) {
	meta, prompt, params, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	engine, err := s.provider.Engine(req.ModelID)
	if err != nil {
		return nil, err
	}

	text, err := engine.Generate(ctx, prompt, params)
	if err != nil {
		return nil, err
	}

	return s.assembleResult(ctx, req, meta, text)
}

// CompleteStream runs the same pipeline but hands back the engine's raw
// chunk stream. Tool-call parsing needs the whole response, so streamed
// completions skip it; callers wanting tool calls use Complete.
func (s *CompletionService) CompleteStream(ctx context.Context, req *CompletionRequest) (<-chan string, error) {
	_, prompt, params, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	engine, err := s.provider.Engine(req.ModelID)
	if err != nil {
		return nil, err
	}

	return engine.GenerateStream(ctx, prompt, params)
}

func (s *CompletionService) prepare(ctx context.Context, req *CompletionRequest) (*domain.ModelMetadata, string, ports.GenerationParams, error) {
	meta, err := s.extractor.Extract(ctx, req.ModelID)
	if err != nil {
		return nil, "", ports.GenerationParams{}, err
	}

	tools := s.effectiveTools(req)

	prompt, err := s.formatter.Format(ctx, meta, req.Messages, true, tools)
	if err != nil {
		return nil, "", ports.GenerationParams{}, err
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.defaults.DefaultMaxTokens
	}
	temperature := s.defaults.DefaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	genCtx := domain.GenerationContext{
		Temperature:         temperature,
		ExpectedLength:      expectedLength(maxTokens),
		Strategy:            domain.ParseStopStrategy(s.defaults.DefaultStopStrategy),
		SupportsToolCalling: meta.ToolCapabilities.SupportsToolCalling && tools.HasTools(),
	}

	stops := s.optimizer.Optimize(ctx, meta.Architecture, req.Stops, genCtx)
	s.logger.Debug("Stop set optimised", "model", req.ModelID, "reasoning", stops.Reasoning)

	params := ports.GenerationParams{
		StopSequences: stops.Active(),
		MaxTokens:     maxTokens,
		Temperature:   temperature,
	}
	return meta, prompt, params, nil
}

func (s *CompletionService) assembleResult(ctx context.Context, req *CompletionRequest, meta *domain.ModelMetadata, text string) (*domain.CompletionResult, error) {
	result := &domain.CompletionResult{
		Model:        req.ModelID,
		Content:      text,
		FinishReason: domain.FinishReasonStop,
	}

	tools := s.effectiveTools(req)
	if !tools.HasTools() {
		return result, nil
	}

	calls, err := s.parser.Parse(ctx, text, meta.ToolCapabilities, tools)
	if err != nil {
		return nil, err
	}
	calls = filterByToolChoice(calls, req.Tools.ToolChoice)

	if len(calls) > 0 {
		if !req.Tools.ParallelToolCalls && len(calls) > 1 {
			calls = calls[:1]
		}
		result.ToolCalls = calls
		result.FinishReason = domain.FinishReasonToolCalls
		result.Content = ""
	}
	return result, nil
}

// effectiveTools suppresses the declared tool set entirely when the
// caller asked for tool_choice "none": the model never sees the tools
// and nothing gets parsed.
func (s *CompletionService) effectiveTools(req *CompletionRequest) *domain.ToolCallOptions {
	if !req.Tools.HasTools() || req.Tools.ToolChoice == domain.ToolChoiceNone {
		return nil
	}
	return req.Tools
}

// filterByToolChoice applies a named-function tool choice: only calls
// to that function survive. "auto" and "required" pass everything.
func filterByToolChoice(calls []domain.ParsedToolCall, choice string) []domain.ParsedToolCall {
	switch choice {
	case "", domain.ToolChoiceAuto, domain.ToolChoiceRequired:
		return calls
	case domain.ToolChoiceNone:
		return nil
	}

	var kept []domain.ParsedToolCall
	for _, call := range calls {
		if strings.EqualFold(call.FunctionName, choice) {
			kept = append(kept, call)
		}
	}
	return kept
}

// expectedLength buckets a token budget into the optimizer's coarse
// length hint.
func expectedLength(maxTokens int) domain.ExpectedLength {
	switch {
	case maxTokens <= 128:
		return domain.LengthShort
	case maxTokens <= 1024:
		return domain.LengthMedium
	case maxTokens <= 4096:
		return domain.LengthLong
	default:
		return domain.LengthVeryLong
	}
}
