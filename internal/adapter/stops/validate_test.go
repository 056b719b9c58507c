package stops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davoram/hearth/internal/core/constants"
)

func TestValidateStopTokens_ProblematicIsError(t *testing.T) {
	o := newTestOptimizer()

	issues := o.ValidateStopTokens(constants.ArchPhi3, []string{"<|assistant|>"})
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Severity)
	assert.Equal(t, "<|assistant|>", issues[0].Token)
}

func TestValidateStopTokens_ControlCharactersWarn(t *testing.T) {
	o := newTestOptimizer()

	issues := o.ValidateStopTokens(constants.ArchLlama, []string{"stop\x00here"})
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Contains(t, issues[0].Reason, "control character")
}

func TestValidateStopTokens_UsualWhitespaceIsNotControl(t *testing.T) {
	o := newTestOptimizer()

	// tab inside a longer token is fine; \n \r \t are exempt
	issues := o.ValidateStopTokens(constants.ArchLlama, []string{"END\tEND"})
	assert.Empty(t, issues)
}

func TestValidateStopTokens_ShortTokens(t *testing.T) {
	o := newTestOptimizer()

	tests := []struct {
		token     string
		wantIssue bool
	}{
		{"\r\n", false},
		{"</s>", false},
		{"<|", false},
		{"|>", false},
		{"ab", true},
		{".", true},
		{"a reasonable stop", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			issues := o.ValidateStopTokens(constants.ArchGemma, []string{tt.token})
			if tt.wantIssue {
				require.Len(t, issues, 1)
				assert.Equal(t, SeverityWarning, issues[0].Severity)
			} else {
				assert.Empty(t, issues)
			}
		})
	}
}

func TestDetectConflicts_TemplateInterference(t *testing.T) {
	o := newTestOptimizer()

	text := "Sure thing.<|start_header_id|>assistant<|end_header_id|>The answer is 4."
	conflicts := o.DetectConflicts(text, []string{"assistant"})

	require.NotEmpty(t, conflicts)
	assert.Equal(t, ConflictTemplateInterference, conflicts[0].Kind)
	assert.Equal(t, "assistant", conflicts[0].Token)
}

func TestDetectConflicts_PrematureStop(t *testing.T) {
	o := newTestOptimizer()

	text := `The word "stop" appears mid-sentence and keeps going.`
	conflicts := o.DetectConflicts(text, []string{"stop"})

	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictPrematureStop, conflicts[0].Kind)
	assert.Positive(t, conflicts[0].Position)
}

func TestDetectConflicts_NoOccurrencesNoConflicts(t *testing.T) {
	o := newTestOptimizer()

	conflicts := o.DetectConflicts("Nothing suspicious here.", []string{"<|end|>", ""})
	assert.Empty(t, conflicts)
}

func TestDetectConflicts_MultipleOccurrences(t *testing.T) {
	o := newTestOptimizer()

	text := "alpha STOP beta STOP gamma"
	conflicts := o.DetectConflicts(text, []string{"STOP"})
	assert.Len(t, conflicts, 2)
}
