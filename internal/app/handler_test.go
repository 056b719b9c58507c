package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davoram/hearth/internal/app/services"
	"github.com/davoram/hearth/internal/config"
	"github.com/davoram/hearth/internal/core/constants"
	"github.com/davoram/hearth/internal/core/domain"
	"github.com/davoram/hearth/internal/core/ports"
	"github.com/davoram/hearth/internal/logger"
)

type stubMetadataSource struct {
	raw map[string]string
}

func (s *stubMetadataSource) All(context.Context) (map[string]string, error) {
	return s.raw, nil
}

// stubTokenizer treats the configured literals as single vocabulary
// entries and everything else as one token per byte.
type stubTokenizer struct {
	singletons map[string]int
}

func (s *stubTokenizer) Tokenize(text string) ([]int, error) {
	if id, ok := s.singletons[text]; ok {
		return []int{id}, nil
	}
	ids := make([]int, len(text))
	for i := range text {
		ids[i] = int(text[i])
	}
	return ids, nil
}

func (s *stubTokenizer) SpecialToken(name string) (string, int, bool) {
	switch name {
	case constants.TokenBOS:
		return "<s>", 1, true
	case constants.TokenEOS:
		return "<|end|>", 32000, true
	}
	return "", 0, false
}

type stubEngine struct {
	response  string
	chunks    []string
	gotPrompt string
}

func (e *stubEngine) Generate(_ context.Context, prompt string, _ ports.GenerationParams) (string, error) {
	e.gotPrompt = prompt
	return e.response, nil
}

func (e *stubEngine) GenerateStream(_ context.Context, prompt string, _ ports.GenerationParams) (<-chan string, error) {
	e.gotPrompt = prompt
	ch := make(chan string, len(e.chunks))
	for _, chunk := range e.chunks {
		ch <- chunk
	}
	close(ch)
	return ch, nil
}

func newTestApp(t *testing.T, engine *stubEngine) *Application {
	t.Helper()

	a, err := New(config.DefaultConfig(), logger.NewDiscard())
	require.NoError(t, err)

	handle := &services.ModelHandle{
		Metadata: &stubMetadataSource{raw: map[string]string{
			constants.GGUFKeyArchitecture: "phi3",
			constants.GGUFKeyModelName:    "Phi-3-mini",
			constants.GGUFKeyChatTemplate: "{% if tools %}<|tool|>{{ tools }}<|/tool|>{% endif %}",
			constants.GGUFKeyTokens:       "arr[str,32064]",
			"phi3.context_length":         "4096",
		}},
		Tokenizer: &stubTokenizer{singletons: map[string]int{
			"<|end|>":       32000,
			"<|user|>":      32010,
			"<|assistant|>": 32001,
		}},
		Engine: engine,
	}
	require.NoError(t, a.Registry().Register("phi-3-mini", handle))
	return a
}

func postChat(t *testing.T, a *Application, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	w := httptest.NewRecorder()
	a.chatCompletionsHandler(w, req)
	return w
}

func TestChatCompletions_HappyPath(t *testing.T) {
	engine := &stubEngine{response: "Mild and sunny."}
	a := newTestApp(t, engine)

	w := postChat(t, a, `{
		"model": "phi-3-mini",
		"messages": [{"role": "user", "content": "Weather in Tokyo?"}]
	}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ContentTypeJSON, w.Header().Get(ContentTypeHeader))

	var resp chatCompletionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, strings.HasPrefix(resp.ID, "chatcmpl-"))
	assert.Equal(t, "chat.completion", resp.Object)
	assert.Equal(t, "phi-3-mini", resp.Model)
	require.Len(t, resp.Choices, 1)
	require.NotNil(t, resp.Choices[0].Message.Content)
	assert.Equal(t, "Mild and sunny.", *resp.Choices[0].Message.Content)
	assert.Equal(t, domain.FinishReasonStop, resp.Choices[0].FinishReason)

	assert.Contains(t, engine.gotPrompt, "<|user|>")
}

func TestChatCompletions_ToolCalls(t *testing.T) {
	engine := &stubEngine{
		response: `<|tool|>{"name": "get_weather", "arguments": {"location": "Tokyo"}}<|/tool|>`,
	}
	a := newTestApp(t, engine)

	w := postChat(t, a, `{
		"model": "phi-3-mini",
		"messages": [{"role": "user", "content": "Weather in Tokyo?"}],
		"tools": [{"type": "function", "function": {
			"name": "get_weather",
			"parameters": {"type": "object", "properties": {"location": {"type": "string"}}}
		}}]
	}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp chatCompletionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Choices, 1)
	choice := resp.Choices[0]
	assert.Equal(t, domain.FinishReasonToolCalls, choice.FinishReason)
	assert.Nil(t, choice.Message.Content, "content is null alongside tool calls")
	require.Len(t, choice.Message.ToolCalls, 1)
	call := choice.Message.ToolCalls[0]
	assert.Equal(t, "function", call.Type)
	assert.Equal(t, "get_weather", call.Function.Name)
	assert.JSONEq(t, `{"location":"Tokyo"}`, call.Function.Arguments)
}

func TestChatCompletions_Validation(t *testing.T) {
	a := newTestApp(t, &stubEngine{response: "ok"})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"model": `},
		{"missing model", `{"messages": [{"role": "user", "content": "hi"}]}`},
		{"empty messages", `{"model": "phi-3-mini", "messages": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postChat(t, a, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "invalid_request_error", resp.Error.Type)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestChatCompletions_ModelNotFound(t *testing.T) {
	a := newTestApp(t, &stubEngine{response: "ok"})

	w := postChat(t, a, `{
		"model": "no-such-model",
		"messages": [{"role": "user", "content": "hi"}]
	}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChatCompletions_Streaming(t *testing.T) {
	engine := &stubEngine{chunks: []string{"Mild ", "and ", "sunny."}}
	a := newTestApp(t, engine)

	w := postChat(t, a, `{
		"model": "phi-3-mini",
		"messages": [{"role": "user", "content": "Weather?"}],
		"stream": true
	}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ContentTypeEventStream, w.Header().Get(ContentTypeHeader))

	body := w.Body.String()
	assert.Contains(t, body, `"role":"assistant"`)
	assert.Contains(t, body, `"content":"Mild "`)
	assert.Contains(t, body, `"finish_reason":"stop"`)
	assert.True(t, strings.HasSuffix(body, "data: [DONE]\n\n"))
}

func TestModelsHandler(t *testing.T) {
	a := newTestApp(t, &stubEngine{})

	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	w := httptest.NewRecorder()
	a.modelsHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp modelListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "list", resp.Object)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "phi-3-mini", resp.Data[0].ID)
	assert.Equal(t, "hearth", resp.Data[0].OwnedBy)
}

func TestHealthHandler(t *testing.T) {
	a := newTestApp(t, &stubEngine{})

	req := httptest.NewRequest(http.MethodGet, "/internal/health", nil)
	w := httptest.NewRecorder()
	a.healthHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.EqualValues(t, 1, resp["models"])
}

func TestVersionHandler(t *testing.T) {
	a := newTestApp(t, &stubEngine{})

	req := httptest.NewRequest(http.MethodGet, "/internal/version", nil)
	w := httptest.NewRecorder()
	a.versionHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp VersionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "hearth", resp.Name)
	assert.NotEmpty(t, resp.Version)
	assert.NotEmpty(t, resp.Capabilities)
}

func TestParseToolChoice(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"absent", "", domain.ToolChoiceAuto},
		{"bare auto", `"auto"`, domain.ToolChoiceAuto},
		{"bare none", `"none"`, domain.ToolChoiceNone},
		{"bare required", `"required"`, domain.ToolChoiceRequired},
		{"named function", `{"type": "function", "function": {"name": "get_weather"}}`, "get_weather"},
		{"object without name", `{"type": "function"}`, domain.ToolChoiceAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseToolChoice(json.RawMessage(tt.raw)))
		})
	}
}

func TestParseStops(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"absent", "", nil},
		{"single string", `"\n\n"`, []string{"\n\n"}},
		{"array", `["STOP", "END"]`, []string{"STOP", "END"}},
		{"empty array", `[]`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseStops(json.RawMessage(tt.raw)))
		})
	}
}
