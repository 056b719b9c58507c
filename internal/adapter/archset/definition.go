package archset

// Definition is one architecture family's capability row. A single table
// of these drives the metadata extractor, the tool-capability detector,
// the stop-token optimizer and the prompt formatter, so the three can
// never disagree about what a family supports.
type Definition struct {
	// Name matches general.architecture (lowercased).
	Name string `yaml:"name"`

	// ToolFormat and ToolSyntax describe the wire convention the family
	// uses for tool calls; empty when the family has no native convention.
	ToolFormat string `yaml:"tool_format"`
	ToolSyntax string `yaml:"tool_syntax"`

	// ToolTokens are the delimiters wrapping a tool call in generated
	// text, keyed "start"/"end".
	ToolTokens map[string]string `yaml:"tool_tokens"`

	// PrimaryStops always terminate generation for this family.
	PrimaryStops []string `yaml:"primary_stops"`

	// SafetyStops guard against role bleed-through; how many are applied
	// depends on the request's stop strategy.
	SafetyStops []string `yaml:"safety_stops"`

	// ProblematicTokens are structural markers that must never be used as
	// stop sequences. Caller-supplied stops matching these get filtered.
	ProblematicTokens []string `yaml:"problematic_tokens"`

	// ToolStops terminate generation at the end of a tool-call block.
	ToolStops []string `yaml:"tool_stops"`

	// TemplateToolPatterns are regex sources run against a model's chat
	// template text to detect native tool support (tier-1 detection).
	TemplateToolPatterns []string `yaml:"template_tool_patterns"`

	// CandidateTokens are literal strings probed against the tokenizer;
	// accepted only when they tokenize to exactly one ID.
	CandidateTokens []string `yaml:"candidate_tokens"`

	// MaxStops caps the active stop set before strategy adjustment.
	MaxStops int `yaml:"max_stops"`
}

// merge overlays non-zero fields from an override onto the built-in row.
func (d *Definition) merge(o *Definition) {
	if o.ToolFormat != "" {
		d.ToolFormat = o.ToolFormat
	}
	if o.ToolSyntax != "" {
		d.ToolSyntax = o.ToolSyntax
	}
	if len(o.ToolTokens) > 0 {
		d.ToolTokens = o.ToolTokens
	}
	if len(o.PrimaryStops) > 0 {
		d.PrimaryStops = o.PrimaryStops
	}
	if len(o.SafetyStops) > 0 {
		d.SafetyStops = o.SafetyStops
	}
	if len(o.ProblematicTokens) > 0 {
		d.ProblematicTokens = o.ProblematicTokens
	}
	if len(o.ToolStops) > 0 {
		d.ToolStops = o.ToolStops
	}
	if len(o.TemplateToolPatterns) > 0 {
		d.TemplateToolPatterns = o.TemplateToolPatterns
	}
	if len(o.CandidateTokens) > 0 {
		d.CandidateTokens = o.CandidateTokens
	}
	if o.MaxStops > 0 {
		d.MaxStops = o.MaxStops
	}
}
