package stops

import (
	"fmt"
	"strings"
	"unicode"
)

// ConflictKind classifies why a stop token clashed with generated text.
type ConflictKind string

const (
	// ConflictPrematureStop means the token appeared inside what looks
	// like real content, so generation halted mid-answer.
	ConflictPrematureStop ConflictKind = "premature_stop"

	// ConflictTemplateInterference means the token landed next to chat
	// template structure rather than inside prose.
	ConflictTemplateInterference ConflictKind = "template_interference"
)

// StopConflict records one occurrence of a stop token in generated
// text, with a classification of the damage it likely did.
type StopConflict struct {
	Token    string
	Kind     ConflictKind
	Position int
	Detail   string
}

// templateMarkerFragments appear inside chat-template control tokens.
var templateMarkerFragments = []string{"<|", "|>", "<im_", "header_id"}

// markerWindow is how far around an occurrence we look for template
// markers when classifying it.
const markerWindow = 12

// DetectConflicts scans generated text for occurrences of the given
// stop tokens and classifies each hit. Diagnostics only; nothing here
// filters or rewrites anything.
func (o *Optimizer) DetectConflicts(generatedText string, tokens []string) []StopConflict {
	var conflicts []StopConflict

	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		offset := 0
		rest := generatedText
		for {
			idx := strings.Index(rest, tok)
			if idx < 0 {
				break
			}
			pos := offset + idx
			conflicts = append(conflicts, classifyOccurrence(generatedText, tok, pos))
			advance := idx + len(tok)
			rest = rest[advance:]
			offset += advance
		}
	}

	return conflicts
}

func classifyOccurrence(text, tok string, pos int) StopConflict {
	windowStart := pos - markerWindow
	if windowStart < 0 {
		windowStart = 0
	}
	windowEnd := pos + len(tok) + markerWindow
	if windowEnd > len(text) {
		windowEnd = len(text)
	}
	window := strings.ToLower(text[windowStart:windowEnd])

	for _, fragment := range templateMarkerFragments {
		if strings.Contains(window, fragment) {
			return StopConflict{
				Token:    tok,
				Kind:     ConflictTemplateInterference,
				Position: pos,
				Detail:   fmt.Sprintf("occurrence at %d sits next to template marker %q", pos, fragment),
			}
		}
	}

	detail := fmt.Sprintf("occurrence at %d", pos)
	if insideContent(text, tok, pos) {
		detail = fmt.Sprintf("occurrence at %d is flanked by content; generation likely stopped mid-answer", pos)
	}
	return StopConflict{
		Token:    tok,
		Kind:     ConflictPrematureStop,
		Position: pos,
		Detail:   detail,
	}
}

// insideContent reports whether the occurrence is flanked by letters,
// digits or quotes, the signature of a stop token firing inside prose.
func insideContent(text, tok string, pos int) bool {
	before := rune(0)
	if pos > 0 {
		before = rune(text[pos-1])
	}
	after := rune(0)
	if end := pos + len(tok); end < len(text) {
		after = rune(text[end])
	}
	return isContentRune(before) || isContentRune(after)
}

func isContentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '"' || r == '\''
}
