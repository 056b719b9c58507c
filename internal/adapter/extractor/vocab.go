package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/davoram/hearth/internal/core/constants"
)

// Array-typed GGUF values arrive as a shape descriptor rather than data,
// e.g. "arr[str,32000]" for the token list.
var arrayShapeRe = regexp.MustCompile(`arr\[\w+,\s*(\d+)\]`)

// vocabularySize parses the token-list shape descriptor; 32000 when the
// key is missing or malformed.
func (e *Extractor) vocabularySize(raw map[string]string, modelID string) int {
	value, ok := raw[constants.GGUFKeyTokens]
	if !ok {
		return constants.DefaultVocabularySize
	}

	matches := arrayShapeRe.FindStringSubmatch(value)
	if matches == nil {
		e.logger.Debug("Unparseable token-list descriptor", "model", modelID, "value", value)
		return constants.DefaultVocabularySize
	}

	n, err := strconv.Atoi(matches[1])
	if err != nil || n <= 0 {
		return constants.DefaultVocabularySize
	}
	return n
}

// contextKeyPrefixes orders the architecture prefixes probed for
// context/embedding lengths when the model's own prefix yields nothing.
var contextKeyPrefixes = []string{
	"general",
	constants.ArchLlama,
	constants.ArchPhi3,
	constants.ArchQwen2,
	constants.ArchMistral,
	constants.ArchGemma,
}

// probeIntKey tries "<arch><suffix>" first, then the fixed prefix list,
// taking the first value that parses as a positive integer.
func (e *Extractor) probeIntKey(raw map[string]string, suffix string, fallback int) int {
	arch := strings.ToLower(raw[constants.GGUFKeyArchitecture])

	candidates := make([]string, 0, len(contextKeyPrefixes)+1)
	if arch != "" {
		candidates = append(candidates, arch+suffix)
	}
	for _, prefix := range contextKeyPrefixes {
		candidates = append(candidates, prefix+suffix)
	}

	for _, key := range candidates {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
