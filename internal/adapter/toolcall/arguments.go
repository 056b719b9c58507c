package toolcall

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/davoram/hearth/internal/core/domain"
)

// emptyArguments is the fallback whenever argument extraction fails.
// The parser never emits malformed JSON arguments.
const emptyArguments = "{}"

var keyValuePairRe = regexp.MustCompile(`([A-Za-z0-9_]+)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^,\s)]+))`)

// normaliseArguments turns whatever argument text a strategy recovered
// into valid JSON object text.
func normaliseArguments(raw string, tool domain.ToolDefinition) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return emptyArguments
	}

	// Already a JSON object? Take it as-is.
	if strings.HasPrefix(raw, "{") && gjson.Valid(raw) {
		return raw
	}

	// Heuristic pass: key="value" pairs for parameters the tool
	// actually declares. Anything unrecognised yields empty arguments
	// rather than failing the whole parse.
	pairs := keyValuePairRe.FindAllStringSubmatch(raw, -1)
	if len(pairs) == 0 {
		return emptyArguments
	}

	declared := declaredParameters(tool)
	args := make(map[string]string, len(pairs))
	for _, m := range pairs {
		key := m[1]
		value := firstNonEmpty(m[2], m[3], m[4])
		if len(declared) > 0 {
			if _, known := declared[strings.ToLower(key)]; !known {
				continue
			}
		}
		args[key] = value
	}

	if len(args) == 0 {
		return emptyArguments
	}

	out, err := json.MarshalToString(args)
	if err != nil {
		return emptyArguments
	}
	return out
}

// declaredParameters pulls the property names out of the tool's JSON
// schema, lowercased for case-insensitive matching. An empty map means
// the schema was absent or shapeless and any key is accepted.
func declaredParameters(tool domain.ToolDefinition) map[string]struct{} {
	if len(tool.Parameters) == 0 {
		return nil
	}

	props := gjson.GetBytes(tool.Parameters, "properties")
	if !props.Exists() || !props.IsObject() {
		return nil
	}

	declared := make(map[string]struct{})
	props.ForEach(func(key, _ gjson.Result) bool {
		declared[strings.ToLower(key.String())] = struct{}{}
		return true
	})
	return declared
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
