package toolcall

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"

	"github.com/davoram/hearth/internal/core/domain"
	"github.com/davoram/hearth/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// tagPair delimits a tool-call block in generated text.
type tagPair struct {
	start string
	end   string
}

// genericTagPairs are tried for every model on top of whatever the
// model's own tool tokens are. Different fine-tunes of the same family
// disagree about delimiters often enough that trying a few is cheaper
// than being wrong.
var genericTagPairs = []tagPair{
	{"<|tool_call|>", "<|/tool_call|>"},
	{"<|tool|>", "<|/tool|>"},
	{"<tool_call>", "</tool_call>"},
	{"[TOOL_CALL]", "[/TOOL_CALL]"},
	{"[TOOL_CALLS]", "[/TOOL_CALLS]"},
}

var (
	callSyntaxRe = regexp.MustCompile(`TOOL_CALL:\s*([A-Za-z0-9_.\-]+)\s*\((.*?)\)`)
	nameCallRe   = regexp.MustCompile(`(?s)^\s*([A-Za-z0-9_.\-]+)\s*\((.*)\)\s*$`)
)

// Parser recovers structured tool calls from generated free text. The
// extraction strategies run in order; the first one yielding a valid
// call wins, but all matches within that strategy are collected, so one
// response can carry many calls.
type Parser struct {
	logger *logger.StyledLogger
}

func NewParser(log *logger.StyledLogger) *Parser {
	return &Parser{logger: log}
}

func (p *Parser) Parse(ctx context.Context, text string, caps domain.ToolCapabilities, tools *domain.ToolCallOptions) ([]domain.ParsedToolCall, error) {
	if !tools.HasTools() || text == "" {
		return nil, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if calls := p.parseTagged(text, caps, tools); len(calls) > 0 {
		return calls, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if calls := p.parseCallSyntax(text, tools); len(calls) > 0 {
		return calls, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if calls := p.parseEmbeddedJSON(text, tools); len(calls) > 0 {
		return calls, nil
	}

	// No recognisable tool call is the normal case, not an error.
	return nil, nil
}

// parseTagged extracts every non-overlapping span between known tag
// pairs. Each span is parsed as JSON first, then as name(args) call
// syntax for bracket-style formats.
func (p *Parser) parseTagged(text string, caps domain.ToolCapabilities, tools *domain.ToolCallOptions) []domain.ParsedToolCall {
	var calls []domain.ParsedToolCall

	for _, pair := range p.tagPairs(caps) {
		rest := text
		for {
			start := strings.Index(rest, pair.start)
			if start < 0 {
				break
			}
			rest = rest[start+len(pair.start):]
			end := strings.Index(rest, pair.end)
			if end < 0 {
				break
			}
			span := strings.TrimSpace(rest[:end])
			rest = rest[end+len(pair.end):]

			if call, ok := p.callFromSpan(span, tools); ok {
				calls = append(calls, call)
			}
		}
		if len(calls) > 0 {
			// one delimiter convention per response; mixing would
			// double-count the same span
			return calls
		}
	}
	return calls
}

// tagPairs puts the model's own delimiters at the front of the queue,
// then falls back to the generic conventions.
func (p *Parser) tagPairs(caps domain.ToolCapabilities) []tagPair {
	start := caps.ToolTokens["start"]
	end := caps.ToolTokens["end"]
	if start == "" || end == "" {
		return genericTagPairs
	}

	pairs := make([]tagPair, 0, len(genericTagPairs)+1)
	pairs = append(pairs, tagPair{start: start, end: end})
	for _, p := range genericTagPairs {
		if p.start != start || p.end != end {
			pairs = append(pairs, p)
		}
	}
	return pairs
}

// callFromSpan interprets one delimited span as a single tool call.
func (p *Parser) callFromSpan(span string, tools *domain.ToolCallOptions) (domain.ParsedToolCall, bool) {
	if span == "" {
		return domain.ParsedToolCall{}, false
	}

	if strings.HasPrefix(span, "{") {
		return p.callFromJSON(span, tools)
	}

	if m := nameCallRe.FindStringSubmatch(span); m != nil {
		return p.buildCall(m[1], m[2], tools)
	}

	return domain.ParsedToolCall{}, false
}

// taggedPayload is the strict shape expected inside a tagged-JSON span.
type taggedPayload struct {
	Name       string              `json:"name"`
	Arguments  jsoniter.RawMessage `json:"arguments"`
	Parameters jsoniter.RawMessage `json:"parameters"`
	Args       jsoniter.RawMessage `json:"args"`
}

func (p *Parser) callFromJSON(span string, tools *domain.ToolCallOptions) (domain.ParsedToolCall, bool) {
	var payload taggedPayload
	if err := json.UnmarshalFromString(span, &payload); err != nil {
		p.logger.Debug("Tagged span is not valid JSON", "error", err)
		return domain.ParsedToolCall{}, false
	}
	if payload.Name == "" {
		return domain.ParsedToolCall{}, false
	}

	args := firstRawMessage(payload.Arguments, payload.Parameters, payload.Args)
	return p.buildCall(payload.Name, string(args), tools)
}

// parseCallSyntax handles the TOOL_CALL: name(args) convention.
func (p *Parser) parseCallSyntax(text string, tools *domain.ToolCallOptions) []domain.ParsedToolCall {
	var calls []domain.ParsedToolCall
	for _, m := range callSyntaxRe.FindAllStringSubmatch(text, -1) {
		if call, ok := p.buildCall(m[1], m[2], tools); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

// parseEmbeddedJSON is the last resort: take the outermost brace span
// and probe it for a tool_call shape.
func (p *Parser) parseEmbeddedJSON(text string, tools *domain.ToolCallOptions) []domain.ParsedToolCall {
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first < 0 || last <= first {
		return nil
	}
	span := text[first : last+1]
	if !gjson.Valid(span) {
		return nil
	}

	name := gjson.Get(span, "tool_call.name")
	if !name.Exists() {
		return nil
	}

	args := gjson.Get(span, "tool_call.arguments")
	if !args.Exists() {
		args = gjson.Get(span, "tool_call.args")
	}

	argText := ""
	if args.Exists() {
		argText = args.Raw
	}

	if call, ok := p.buildCall(name.String(), argText, tools); ok {
		return []domain.ParsedToolCall{call}
	}
	return nil
}

// buildCall validates the function name against the declared set and
// normalises arguments into guaranteed-valid JSON. Calls naming unknown
// functions are dropped outright; models hallucinate tool names.
func (p *Parser) buildCall(name, rawArgs string, tools *domain.ToolCallOptions) (domain.ParsedToolCall, bool) {
	tool, ok := tools.FindTool(name)
	if !ok {
		p.logger.Debug("Dropping call to undeclared tool", "function", name)
		return domain.ParsedToolCall{}, false
	}

	return domain.ParsedToolCall{
		ID:            newCallID(),
		FunctionName:  tool.Name,
		ArgumentsJSON: normaliseArguments(rawArgs, tool),
	}, true
}

func firstRawMessage(candidates ...jsoniter.RawMessage) jsoniter.RawMessage {
	for _, c := range candidates {
		if len(c) > 0 && string(c) != "null" {
			return c
		}
	}
	return nil
}

func newCallID() string {
	return "call_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}
