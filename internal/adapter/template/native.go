package template

import (
	"regexp"
	"strings"

	"github.com/davoram/hearth/internal/core/constants"
	"github.com/davoram/hearth/internal/core/domain"
)

// The native engine is a deliberately minimal substitution pass over a
// model's embedded chat template: one message loop, one generation
// prompt conditional, BOS/EOS placeholders. Anything richer trips
// ErrUnsupportedConstruct and the caller falls back to the
// architecture-specific formatter. Real templates are Jinja2-family and
// can nest arbitrarily; interpreting that language is not this host's
// job.
var (
	nativeForRe = regexp.MustCompile(`(?s)\{%-?\s*for\s+message\s+in\s+messages\s*-?%\}(.*?)\{%-?\s*endfor\s*-?%\}`)
	nativeIfRe  = regexp.MustCompile(`(?s)\{%-?\s*if\s+add_generation_prompt\s*-?%\}(.*?)\{%-?\s*endif\s*-?%\}`)

	nativeRoleRe    = regexp.MustCompile(`\{\{-?\s*message\.role\s*-?\}\}`)
	nativeContentRe = regexp.MustCompile(`\{\{-?\s*message\.content\s*-?\}\}`)
	nativeBosRe     = regexp.MustCompile(`\{\{-?\s*bos_token\s*-?\}\}`)
	nativeEosRe     = regexp.MustCompile(`\{\{-?\s*eos_token\s*-?\}\}`)
)

// renderNative applies the minimal engine to the model's own template.
func renderNative(meta *domain.ModelMetadata, messages []domain.ChatMessage, addGenerationPrompt bool) (string, error) {
	tpl := meta.ChatTemplate

	tpl = nativeForRe.ReplaceAllStringFunc(tpl, func(match string) string {
		body := nativeForRe.FindStringSubmatch(match)[1]
		var b strings.Builder
		for _, msg := range messages {
			expanded := nativeRoleRe.ReplaceAllString(body, literal(msg.Role))
			expanded = nativeContentRe.ReplaceAllString(expanded, literal(msg.Content))
			b.WriteString(expanded)
		}
		return b.String()
	})

	tpl = nativeIfRe.ReplaceAllStringFunc(tpl, func(match string) string {
		if !addGenerationPrompt {
			return ""
		}
		return nativeIfRe.FindStringSubmatch(match)[1]
	})

	bos, _ := meta.SpecialTokenText(constants.TokenBOS)
	eos, _ := meta.SpecialTokenText(constants.TokenEOS)
	tpl = nativeBosRe.ReplaceAllString(tpl, literal(bos))
	tpl = nativeEosRe.ReplaceAllString(tpl, literal(eos))

	if construct, unsupported := leftoverConstruct(tpl); unsupported {
		return "", domain.NewTemplateError(meta.Architecture, construct, domain.ErrUnsupportedConstruct)
	}

	return tpl, nil
}

// literal escapes a substitution value so the regexp engine inserts it
// verbatim. Without this, "$1" in message content reads as a capture
// reference and disappears.
func literal(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

// leftoverConstruct finds the first template directive that survived
// substitution, which means the engine does not understand it.
func leftoverConstruct(rendered string) (string, bool) {
	idx := strings.Index(rendered, "{%")
	if brace := strings.Index(rendered, "{{"); brace >= 0 && (idx < 0 || brace < idx) {
		idx = brace
	}
	if idx < 0 {
		return "", false
	}

	end := idx + 40
	if end > len(rendered) {
		end = len(rendered)
	}
	snippet := rendered[idx:end]
	if cut := strings.IndexAny(snippet, "\n"); cut >= 0 {
		snippet = snippet[:cut]
	}
	return snippet, true
}
