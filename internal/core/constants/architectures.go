package constants

// Architecture identifiers as they appear in general.architecture.
const (
	ArchLlama    = "llama"
	ArchPhi3     = "phi3"
	ArchQwen     = "qwen"
	ArchQwen2    = "qwen2"
	ArchMistral  = "mistral"
	ArchMixtral  = "mixtral"
	ArchGemma    = "gemma"
	ArchDeepseek = "deepseek"
	ArchFalcon   = "falcon"

	// ArchUnknown is the sentinel for models whose metadata carries no
	// recognisable architecture. Never empty, never nil.
	ArchUnknown = "unknown"
)

// Tool-call wire formats a model may expect.
const (
	ToolFormatLlamaNative = "llama-native"
	ToolFormatPhi3        = "phi-3"
	ToolFormatPhi35       = "phi-3.5"
	ToolFormatPhi4        = "phi-4"
	ToolFormatChatML      = "chatml"
	ToolFormatMistral     = "mistral"
	ToolFormatDeepseek    = "deepseek"
	ToolFormatGemma       = "gemma"
)

// Tool-call syntaxes: how calls are encoded inside the wire format.
const (
	ToolSyntaxJSON     = "json"
	ToolSyntaxBracket  = "bracket"
	ToolSyntaxMarkdown = "markdown"
	ToolSyntaxChatML   = "chatml"
)
