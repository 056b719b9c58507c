package archset

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/davoram/hearth/internal/core/constants"
)

// ToolPattern is one compiled tier-1 detection entry. The bank is
// ordered; the first pattern matching a chat template wins and supplies
// the format, syntax and tool tokens.
type ToolPattern struct {
	Regex      *regexp.Regexp
	ToolTokens map[string]string
	Format     string
	Syntax     string
}

// Registry owns the architecture capability table: built-in rows,
// optional YAML overrides, and the regex banks compiled from them.
// Lookups for unknown architectures fall back to the llama row.
type Registry struct {
	defs          map[string]*Definition
	toolPatterns  []ToolPattern
	stopPatterns  []*regexp.Regexp
	genericToolRe *regexp.Regexp
	mu            sync.RWMutex
}

// detectionOrder fixes the tier-1 bank ordering. More specific markers
// come before the generic function-call pattern.
var detectionOrder = []string{
	constants.ArchLlama,
	constants.ArchPhi3,
	constants.ArchQwen,
	constants.ArchMistral,
	constants.ArchDeepseek,
	constants.ArchGemma,
}

func NewRegistry() *Registry {
	r := &Registry{
		defs: builtInDefinitions(),
	}
	r.compile()
	return r
}

// NewRegistryWithOverrides loads YAML rows from overridesDir on top of
// the built-ins. A missing directory is fine; built-ins cover the common
// families.
func NewRegistryWithOverrides(overridesDir string) (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadOverrides(overridesDir); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) compile() {
	r.toolPatterns = r.toolPatterns[:0]
	for _, name := range detectionOrder {
		def, ok := r.defs[name]
		if !ok {
			continue
		}
		for _, src := range def.TemplateToolPatterns {
			re, err := regexp.Compile(src)
			if err != nil {
				continue
			}
			r.toolPatterns = append(r.toolPatterns, ToolPattern{
				Regex:      re,
				Format:     def.ToolFormat,
				Syntax:     def.ToolSyntax,
				ToolTokens: def.ToolTokens,
			})
		}
	}

	r.genericToolRe = regexp.MustCompile(`(?i)function.*?call`)

	r.stopPatterns = r.stopPatterns[:0]
	for _, src := range templateStopPatterns {
		if re, err := regexp.Compile(src); err == nil {
			r.stopPatterns = append(r.stopPatterns, re)
		}
	}
}

// Lookup returns the definition for an architecture, falling back to the
// llama row for anything unrecognised. Never returns nil.
func (r *Registry) Lookup(architecture string) *Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if def, ok := r.defs[strings.ToLower(architecture)]; ok {
		return def
	}
	return r.defs[constants.ArchLlama]
}

// Has reports whether the architecture has its own row (no fallback).
func (r *Registry) Has(architecture string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.defs[strings.ToLower(architecture)]
	return ok
}

// Names lists the registered architecture rows, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ToolPatterns returns the ordered tier-1 detection bank.
func (r *Registry) ToolPatterns() []ToolPattern {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.toolPatterns
}

// GenericToolPattern is the last-resort function-call regex used when no
// family-specific pattern matched.
func (r *Registry) GenericToolPattern() *regexp.Regexp {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.genericToolRe
}

// StopPatterns is the shared regex bank harvesting stop literals from
// chat-template text.
func (r *Registry) StopPatterns() []*regexp.Regexp {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stopPatterns
}

// CandidateTokens returns the special-token probe list for an
// architecture: its family-specific literals plus the generic markers.
func (r *Registry) CandidateTokens(architecture string) []string {
	def := r.Lookup(architecture)

	seen := make(map[string]struct{}, len(def.CandidateTokens)+len(genericCandidateTokens))
	out := make([]string, 0, len(def.CandidateTokens)+len(genericCandidateTokens))
	for _, lists := range [][]string{def.CandidateTokens, genericCandidateTokens} {
		for _, tok := range lists {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}
	return out
}
