package domain

import "time"

// SpecialToken is a literal vocabulary entry the tokenizer resolved to a
// single token ID. Multi-token approximations never make it in here.
type SpecialToken struct {
	Text string
	ID   int
}

// ToolCapabilities describes whether and how a model expects tool calls
// on the wire. SupportsToolCalling == false implies an empty format.
type ToolCapabilities struct {
	ToolTokens          map[string]string
	ToolCallFormat      string
	ToolCallSyntax      string
	SupportsToolCalling bool
}

// ModelMetadata is the normalised, per-model view of a GGUF key-value
// store plus tokenizer probing. It is built once per registration and
// treated as an immutable snapshot afterwards; re-extraction replaces it
// wholesale so readers never observe a partial mix of fields.
type ModelMetadata struct {
	ExtractedAt      time.Time
	SpecialTokens    map[string]SpecialToken
	RawMetadata      map[string]string
	Architecture     string
	ModelName        string
	ModelType        string
	ChatTemplate     string
	StopTokens       []string
	ToolCapabilities ToolCapabilities
	ContextLength    int
	VocabularySize   int
	EmbeddingLength  int
}

// HasChatTemplate reports whether the model embeds its own template text.
func (m *ModelMetadata) HasChatTemplate() bool {
	return m.ChatTemplate != ""
}

// SpecialTokenText returns the literal text for a named or probed token.
func (m *ModelMetadata) SpecialTokenText(name string) (string, bool) {
	tok, ok := m.SpecialTokens[name]
	if !ok {
		return "", false
	}
	return tok.Text, true
}

// Clone deep-copies the metadata so callers can hand copies out without
// sharing the underlying maps and slices.
func (m *ModelMetadata) Clone() *ModelMetadata {
	if m == nil {
		return nil
	}

	c := *m

	if m.SpecialTokens != nil {
		c.SpecialTokens = make(map[string]SpecialToken, len(m.SpecialTokens))
		for k, v := range m.SpecialTokens {
			c.SpecialTokens[k] = v
		}
	}

	if m.RawMetadata != nil {
		c.RawMetadata = make(map[string]string, len(m.RawMetadata))
		for k, v := range m.RawMetadata {
			c.RawMetadata[k] = v
		}
	}

	if m.StopTokens != nil {
		c.StopTokens = make([]string, len(m.StopTokens))
		copy(c.StopTokens, m.StopTokens)
	}

	if m.ToolCapabilities.ToolTokens != nil {
		c.ToolCapabilities.ToolTokens = make(map[string]string, len(m.ToolCapabilities.ToolTokens))
		for k, v := range m.ToolCapabilities.ToolTokens {
			c.ToolCapabilities.ToolTokens[k] = v
		}
	}

	return &c
}
