package constants

// GGUF metadata key namespace. These names must match the on-disk
// key-value store verbatim or extraction silently misses them.
const (
	GGUFKeyArchitecture = "general.architecture"
	GGUFKeyModelName    = "general.name"
	GGUFKeyModelType    = "general.type"

	GGUFKeyChatTemplate = "tokenizer.chat_template"
	GGUFKeyTokens       = "tokenizer.ggml.tokens"

	GGUFSuffixContextLength   = ".context_length"
	GGUFSuffixEmbeddingLength = ".embedding_length"
)

// Named special tokens the tokenizer can resolve natively.
const (
	TokenBOS = "bos"
	TokenEOS = "eos"
	TokenNL  = "nl"
)

const (
	DefaultVocabularySize = 32000
	DefaultContextLength  = 2048
)
