package archset

import "github.com/davoram/hearth/internal/core/constants"

// builtInDefinitions returns the shipped architecture rows. YAML files in
// the overrides directory can replace individual fields per family.
func builtInDefinitions() map[string]*Definition {
	defs := []*Definition{
		{
			Name:       constants.ArchLlama,
			ToolFormat: constants.ToolFormatLlamaNative,
			ToolSyntax: constants.ToolSyntaxBracket,
			ToolTokens: map[string]string{
				"start": "[TOOL_CALL]",
				"end":   "[/TOOL_CALL]",
			},
			PrimaryStops:      []string{"<|eot_id|>", "</s>"},
			SafetyStops:       []string{"<|start_header_id|>", "<|end_header_id|>", "[INST]"},
			ProblematicTokens: []string{"\n", "<|begin_of_text|>"},
			ToolStops:         []string{"[/TOOL_CALL]"},
			TemplateToolPatterns: []string{
				`(?is)tools.*?function`,
			},
			CandidateTokens: []string{
				"<|begin_of_text|>", "<|start_header_id|>", "<|end_header_id|>", "<|eot_id|>",
			},
			MaxStops: 4,
		},
		{
			Name:       constants.ArchPhi3,
			ToolFormat: constants.ToolFormatPhi3,
			ToolSyntax: constants.ToolSyntaxJSON,
			ToolTokens: map[string]string{
				"start": "<|tool|>",
				"end":   "<|/tool|>",
			},
			PrimaryStops: []string{"<|end|>", "<|endoftext|>"},
			SafetyStops:  []string{"<|user|>", "<|system|>"},
			// Stopping on the assistant marker halts generation before it
			// produces anything; it is the generation prompt itself.
			ProblematicTokens: []string{"<|assistant|>", "\n"},
			ToolStops:         []string{"<|/tool|>"},
			TemplateToolPatterns: []string{
				`<\|tool\|>`,
			},
			CandidateTokens: []string{
				"<|end|>", "<|user|>", "<|assistant|>", "<|system|>", "<|endoftext|>",
			},
			MaxStops: 4,
		},
		{
			Name:       constants.ArchQwen,
			ToolFormat: constants.ToolFormatChatML,
			ToolSyntax: constants.ToolSyntaxChatML,
			ToolTokens: map[string]string{
				"start": "<tool_call>",
				"end":   "</tool_call>",
			},
			PrimaryStops:      []string{"<|im_end|>", "<|endoftext|>"},
			SafetyStops:       []string{"<|im_start|>"},
			ProblematicTokens: []string{"\n"},
			ToolStops:         []string{"</tool_call>"},
			TemplateToolPatterns: []string{
				`<\|im_start\|>tool`,
			},
			CandidateTokens: []string{
				"<|im_start|>", "<|im_end|>",
			},
			MaxStops: 4,
		},
		{
			Name:       constants.ArchMistral,
			ToolFormat: constants.ToolFormatMistral,
			ToolSyntax: constants.ToolSyntaxJSON,
			ToolTokens: map[string]string{
				"start": "[TOOL_CALLS]",
				"end":   "[/TOOL_CALLS]",
			},
			PrimaryStops:      []string{"</s>"},
			SafetyStops:       []string{"[INST]", "[/INST]"},
			ProblematicTokens: []string{"\n", "<s>"},
			ToolStops:         []string{"[/TOOL_CALLS]"},
			TemplateToolPatterns: []string{
				`\[TOOL_CALLS\]`,
			},
			CandidateTokens: []string{
				"[INST]", "[/INST]", "<s>", "</s>",
			},
			MaxStops: 3,
		},
		{
			Name:       constants.ArchGemma,
			ToolFormat: constants.ToolFormatGemma,
			ToolSyntax: constants.ToolSyntaxMarkdown,
			ToolTokens: map[string]string{
				"start": "```tool_code",
				"end":   "```",
			},
			PrimaryStops:      []string{"<end_of_turn>"},
			SafetyStops:       []string{"<start_of_turn>"},
			ProblematicTokens: []string{"\n"},
			ToolStops:         []string{"```"},
			TemplateToolPatterns: []string{
				`<start_of_turn>tool`,
			},
			CandidateTokens: []string{
				"<start_of_turn>", "<end_of_turn>",
			},
			MaxStops: 3,
		},
		{
			Name:       constants.ArchDeepseek,
			ToolFormat: constants.ToolFormatDeepseek,
			ToolSyntax: constants.ToolSyntaxMarkdown,
			ToolTokens: map[string]string{
				"start": "```tool_call",
				"end":   "```",
			},
			PrimaryStops:      []string{"<|end_of_sentence|>", "</s>"},
			SafetyStops:       []string{"User:", "Assistant:"},
			ProblematicTokens: []string{"\n"},
			ToolStops:         []string{"```"},
			TemplateToolPatterns: []string{
				"```tool_call",
			},
			CandidateTokens: []string{
				"User:", "Assistant:", "<|end_of_sentence|>",
			},
			MaxStops: 4,
		},
		{
			Name:              constants.ArchFalcon,
			PrimaryStops:      []string{"<|endoftext|>"},
			SafetyStops:       []string{"User:", "Falcon:"},
			ProblematicTokens: []string{"\n"},
			CandidateTokens: []string{
				"User:", "Falcon:", "<|endoftext|>",
			},
			MaxStops: 3,
		},
	}

	table := make(map[string]*Definition, len(defs)+2)
	for _, d := range defs {
		table[d.Name] = d
	}

	// Families that share another family's wire format wholesale.
	mixtral := *table[constants.ArchMistral]
	mixtral.Name = constants.ArchMixtral
	table[constants.ArchMixtral] = &mixtral

	qwen2 := *table[constants.ArchQwen]
	qwen2.Name = constants.ArchQwen2
	table[constants.ArchQwen2] = &qwen2

	return table
}

// genericCandidateTokens are probed for every architecture on top of the
// family-specific candidates.
var genericCandidateTokens = []string{
	"### Instruction:",
	"### Response:",
	"<|tool|>",
	"<|/tool|>",
	"<tool_call>",
	"</tool_call>",
}

// templateStopPatterns is the fixed regex bank run over chat-template
// text to harvest literal stop markers the template itself emits.
var templateStopPatterns = []string{
	`<\|eot_id\|>`,
	`<\|end\|>`,
	`<\|im_end\|>`,
	`<\|endoftext\|>`,
	`</s>`,
	`<end_of_turn>`,
	`\[/INST\]`,
}
