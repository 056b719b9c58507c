package archset

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davoram/hearth/internal/core/constants"
)

func TestLookup_KnownFamilies(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		architecture string
		primaryStop  string
	}{
		{constants.ArchLlama, "<|eot_id|>"},
		{constants.ArchPhi3, "<|end|>"},
		{constants.ArchQwen, "<|im_end|>"},
		{constants.ArchMistral, "</s>"},
		{constants.ArchGemma, "<end_of_turn>"},
		{constants.ArchFalcon, "<|endoftext|>"},
	}

	for _, tt := range tests {
		t.Run(tt.architecture, func(t *testing.T) {
			def := r.Lookup(tt.architecture)
			require.NotNil(t, def)
			assert.Equal(t, tt.architecture, def.Name)
			assert.Contains(t, def.PrimaryStops, tt.primaryStop)
			assert.Positive(t, def.MaxStops)
		})
	}
}

func TestLookup_UnknownFallsBackToLlama(t *testing.T) {
	r := NewRegistry()

	def := r.Lookup("starfleet-9b")
	require.NotNil(t, def)
	assert.Equal(t, constants.ArchLlama, def.Name)
	assert.False(t, r.Has("starfleet-9b"))
}

func TestLookup_CaseInsensitive(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, constants.ArchPhi3, r.Lookup("Phi3").Name)
	assert.True(t, r.Has("QWEN"))
}

func TestCandidateTokens_IncludesGenericsWithoutDuplicates(t *testing.T) {
	r := NewRegistry()

	candidates := r.CandidateTokens(constants.ArchPhi3)
	assert.Contains(t, candidates, "### Instruction:")
	assert.Contains(t, candidates, "<|tool|>")

	seen := make(map[string]int)
	for _, c := range candidates {
		seen[c]++
	}
	for tok, count := range seen {
		assert.Equal(t, 1, count, "candidate %q appears more than once", tok)
	}
}

func TestToolPatterns_MatchFamilyTemplates(t *testing.T) {
	r := NewRegistry()
	require.NotEmpty(t, r.ToolPatterns())

	templates := map[string]string{
		constants.ToolFormatPhi3:   "{% if tools %}<|tool|>{% endif %}",
		constants.ToolFormatChatML: "{% for m in messages %}<|im_start|>tool{% endfor %}",
	}

	for wantFormat, tpl := range templates {
		matched := ""
		for _, p := range r.ToolPatterns() {
			if p.Regex.MatchString(tpl) {
				matched = p.Format
				break
			}
		}
		assert.Equal(t, wantFormat, matched, "template %q", tpl)
	}
}

func TestLoadOverrides_MergesExistingFamily(t *testing.T) {
	dir := t.TempDir()
	override := `name: qwen
max_stops: 7
safety_stops:
  - "<|im_start|>"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "qwen.yaml"), []byte(override), 0o644))

	r, err := NewRegistryWithOverrides(dir)
	require.NoError(t, err)

	def := r.Lookup(constants.ArchQwen)
	assert.Equal(t, 7, def.MaxStops)
	assert.Equal(t, []string{"<|im_start|>"}, def.SafetyStops)
	// untouched fields keep their built-in values
	assert.Contains(t, def.PrimaryStops, "<|im_end|>")
}

func TestLoadOverrides_AddsNewFamily(t *testing.T) {
	dir := t.TempDir()
	override := `name: starcoder
primary_stops:
  - "<|endoftext|>"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "starcoder.yaml"), []byte(override), 0o644))

	r, err := NewRegistryWithOverrides(dir)
	require.NoError(t, err)

	require.True(t, r.Has("starcoder"))
	def := r.Lookup("starcoder")
	assert.Equal(t, []string{"<|endoftext|>"}, def.PrimaryStops)
	assert.Equal(t, 4, def.MaxStops)
}

func TestLoadOverrides_BadFileDoesNotFailTheRest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("::: not yaml"), 0o644))
	good := `name: rwkv
primary_stops:
  - "\n\n"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rwkv.yaml"), []byte(good), 0o644))

	var logged bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logged, nil)))
	defer slog.SetDefault(previous)

	r, err := NewRegistryWithOverrides(dir)
	require.NoError(t, err)
	assert.True(t, r.Has("rwkv"))
	assert.Contains(t, logged.String(), "Failed to load architecture override")
	assert.Contains(t, logged.String(), "broken.yaml")
}

func TestLoadOverrides_MissingDirIsFine(t *testing.T) {
	r, err := NewRegistryWithOverrides(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.True(t, r.Has(constants.ArchLlama))
}
