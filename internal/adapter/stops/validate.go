package stops

import (
	"fmt"
	"strings"
	"unicode"
)

// IssueSeverity ranks validation findings. Errors mean the token will
// actively break generation; warnings mean it probably does something
// the caller didn't intend.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// ValidationIssue describes one suspect stop token.
type ValidationIssue struct {
	Token    string
	Severity IssueSeverity
	Reason   string
}

// shortStopWhitelist holds the short tokens that are legitimately used
// as stops despite their length.
var shortStopWhitelist = map[string]struct{}{
	"\n":   {},
	"\r\n": {},
	"</s>": {},
	"<|":   {},
	"|>":   {},
}

// ValidateStopTokens inspects a candidate stop set against an
// architecture's known problem tokens and some general hygiene rules.
// It reports, it never mutates.
func (o *Optimizer) ValidateStopTokens(architecture string, tokens []string) []ValidationIssue {
	def := o.registry.Lookup(architecture)
	var issues []ValidationIssue

	for _, tok := range tokens {
		if containsFold(def.ProblematicTokens, tok) {
			issues = append(issues, ValidationIssue{
				Token:    tok,
				Severity: SeverityError,
				Reason:   fmt.Sprintf("known problematic stop token for %s models", def.Name),
			})
			continue
		}

		if ctrl, has := firstControlChar(tok); has {
			issues = append(issues, ValidationIssue{
				Token:    tok,
				Severity: SeverityWarning,
				Reason:   fmt.Sprintf("contains control character %#U, likely an encoding problem", ctrl),
			})
			continue
		}

		if len(tok) <= 2 {
			if _, ok := shortStopWhitelist[tok]; !ok {
				issues = append(issues, ValidationIssue{
					Token:    tok,
					Severity: SeverityWarning,
					Reason:   "very short stop token will match overly broadly",
				})
			}
		}
	}

	return issues
}

// firstControlChar reports the first control rune other than the usual
// whitespace (newline, carriage return, tab).
func firstControlChar(tok string) (rune, bool) {
	for _, r := range tok {
		if r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		if unicode.IsControl(r) {
			return r, true
		}
	}
	return 0, false
}

// describeIssues renders issues for log output, one token per clause.
func describeIssues(issues []ValidationIssue) string {
	parts := make([]string, 0, len(issues))
	for _, issue := range issues {
		parts = append(parts, fmt.Sprintf("%q (%s: %s)", issue.Token, issue.Severity, issue.Reason))
	}
	return strings.Join(parts, "; ")
}
