package toolcall

import (
	"strings"

	"github.com/davoram/hearth/internal/adapter/archset"
	"github.com/davoram/hearth/internal/core/constants"
	"github.com/davoram/hearth/internal/core/domain"
	"github.com/davoram/hearth/internal/logger"
)

// Detector decides whether a model supports tool calling and which wire
// convention it expects. Two tiers: the chat-template pattern bank is
// authoritative; vocabulary key names are the fallback when a model
// ships no template or the template says nothing.
type Detector struct {
	registry *archset.Registry
	logger   *logger.StyledLogger
}

func NewDetector(registry *archset.Registry, log *logger.StyledLogger) *Detector {
	return &Detector{
		registry: registry,
		logger:   log,
	}
}

// weakSignalKeywords mark a template as probably tool-aware when at
// least two of them appear, even if no family pattern matched.
var weakSignalKeywords = []string{"tool", "function", "call", "invoke", "execute"}

func (d *Detector) Detect(chatTemplate string, rawMetadata map[string]string, architecture, modelName string) domain.ToolCapabilities {
	if chatTemplate != "" {
		if caps, ok := d.detectFromTemplate(chatTemplate, architecture, modelName); ok {
			return caps
		}
	}

	if caps, ok := d.detectFromVocabulary(rawMetadata, architecture, modelName); ok {
		return caps
	}

	return domain.ToolCapabilities{}
}

// detectFromTemplate runs the ordered pattern bank; the first match wins
// and supplies format, syntax and tool tokens.
func (d *Detector) detectFromTemplate(chatTemplate, architecture, modelName string) (domain.ToolCapabilities, bool) {
	for _, p := range d.registry.ToolPatterns() {
		if p.Regex.MatchString(chatTemplate) {
			return domain.ToolCapabilities{
				SupportsToolCalling: true,
				ToolCallFormat:      p.Format,
				ToolCallSyntax:      p.Syntax,
				ToolTokens:          cloneTokens(p.ToolTokens),
			}, true
		}
	}

	if d.registry.GenericToolPattern().MatchString(chatTemplate) {
		format := d.formatForArchitecture(architecture, modelName)
		def := d.registry.Lookup(architecture)
		return domain.ToolCapabilities{
			SupportsToolCalling: true,
			ToolCallFormat:      format,
			ToolCallSyntax:      constants.ToolSyntaxJSON,
			ToolTokens:          cloneTokens(def.ToolTokens),
		}, true
	}

	// Weak positive: enough tool-ish vocabulary in the template to take
	// the hint, with architecture-inferred format and json syntax.
	lower := strings.ToLower(chatTemplate)
	hits := 0
	for _, kw := range weakSignalKeywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	if hits >= 2 {
		d.logger.Debug("Weak tool-support signal in chat template",
			"architecture", architecture, "keyword_hits", hits)
		return domain.ToolCapabilities{
			SupportsToolCalling: true,
			ToolCallFormat:      d.formatForArchitecture(architecture, modelName),
			ToolCallSyntax:      constants.ToolSyntaxJSON,
			ToolTokens:          cloneTokens(d.registry.Lookup(architecture).ToolTokens),
		}, true
	}

	return domain.ToolCapabilities{}, false
}

// detectFromVocabulary scans metadata key names for tool-token entries.
func (d *Detector) detectFromVocabulary(rawMetadata map[string]string, architecture, modelName string) (domain.ToolCapabilities, bool) {
	found := false
	for key := range rawMetadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "tool") && (strings.Contains(lower, "token") || strings.Contains(lower, "id")) {
			found = true
			break
		}
	}
	if !found {
		return domain.ToolCapabilities{}, false
	}

	return domain.ToolCapabilities{
		SupportsToolCalling: true,
		ToolCallFormat:      d.formatForArchitecture(architecture, modelName),
		ToolCallSyntax:      constants.ToolSyntaxJSON,
		ToolTokens:          cloneTokens(d.registry.Lookup(architecture).ToolTokens),
	}, true
}

// formatForArchitecture maps an architecture to its native tool format.
// Phi variants are split by model name because general.architecture says
// "phi3" for all of them. Unrecognised architectures keep their own name
// as the format so downstream code can still key off it.
func (d *Detector) formatForArchitecture(architecture, modelName string) string {
	name := strings.ToLower(modelName)

	switch architecture {
	case constants.ArchPhi3:
		switch {
		case strings.Contains(name, "phi-4"), strings.Contains(name, "phi4"):
			return constants.ToolFormatPhi4
		case strings.Contains(name, "phi-3.5"), strings.Contains(name, "phi3.5"):
			return constants.ToolFormatPhi35
		default:
			return constants.ToolFormatPhi3
		}
	case constants.ArchLlama:
		return constants.ToolFormatLlamaNative
	case constants.ArchMistral, constants.ArchMixtral:
		return constants.ToolFormatMistral
	case constants.ArchQwen, constants.ArchQwen2:
		return constants.ToolFormatChatML
	case constants.ArchGemma:
		return constants.ToolFormatGemma
	case constants.ArchDeepseek:
		return constants.ToolFormatDeepseek
	default:
		return architecture
	}
}

func cloneTokens(tokens map[string]string) map[string]string {
	if tokens == nil {
		return nil
	}
	out := make(map[string]string, len(tokens))
	for k, v := range tokens {
		out[k] = v
	}
	return out
}
