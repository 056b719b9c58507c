package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/davoram/hearth/internal/app/services"
	"github.com/davoram/hearth/internal/core/domain"
)

// chatCompletionsHandler is the OpenAI-compatible chat endpoint. It
// translates the wire request into the completion service's shape and
// the result back out, including the tool_calls finish path.
func (a *Application) chatCompletionsHandler(w http.ResponseWriter, r *http.Request) {
	var wire chatCompletionRequest
	if err := wireJSON.NewDecoder(r.Body).Decode(&wire); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid_request_error", fmt.Sprintf("malformed request body: %v", err))
		return
	}

	if wire.Model == "" {
		a.writeError(w, http.StatusBadRequest, "invalid_request_error", "model is required")
		return
	}
	if len(wire.Messages) == 0 {
		a.writeError(w, http.StatusBadRequest, "invalid_request_error", "messages must not be empty")
		return
	}

	req := a.buildCompletionRequest(&wire)

	if wire.Stream {
		a.streamCompletion(w, r, req)
		return
	}

	result, err := a.completion.Complete(r.Context(), req)
	if err != nil {
		a.writeCompletionError(w, err)
		return
	}

	w.Header().Set(ContentTypeHeader, ContentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_ = wireJSON.NewEncoder(w).Encode(buildCompletionResponse(result))
}

func (a *Application) buildCompletionRequest(wire *chatCompletionRequest) *services.CompletionRequest {
	messages := make([]domain.ChatMessage, 0, len(wire.Messages))
	for _, m := range wire.Messages {
		messages = append(messages, domain.ChatMessage{Role: m.Role, Content: m.Content})
	}

	var tools *domain.ToolCallOptions
	if len(wire.Tools) > 0 {
		defs := make([]domain.ToolDefinition, 0, len(wire.Tools))
		for _, t := range wire.Tools {
			defs = append(defs, domain.ToolDefinition{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  t.Function.Parameters,
			})
		}

		parallel := true
		if wire.ParallelToolCalls != nil {
			parallel = *wire.ParallelToolCalls
		}
		tools = &domain.ToolCallOptions{
			Tools:             defs,
			ToolChoice:        parseToolChoice(wire.ToolChoice),
			ParallelToolCalls: parallel,
		}
	}

	return &services.CompletionRequest{
		ModelID:     wire.Model,
		Messages:    messages,
		Tools:       tools,
		Stops:       parseStops(wire.Stop),
		MaxTokens:   wire.MaxTokens,
		Temperature: wire.Temperature,
	}
}

// parseToolChoice handles both wire encodings: a bare string
// ("auto"/"none"/"required") or an object naming one function.
func parseToolChoice(raw json.RawMessage) string {
	if len(raw) == 0 {
		return domain.ToolChoiceAuto
	}

	parsed := gjson.ParseBytes(raw)
	if parsed.Type == gjson.String {
		return parsed.String()
	}
	if name := parsed.Get("function.name"); name.Exists() {
		return name.String()
	}
	return domain.ToolChoiceAuto
}

// parseStops handles the string-or-array wire encoding of stop.
func parseStops(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	parsed := gjson.ParseBytes(raw)
	if parsed.Type == gjson.String {
		return []string{parsed.String()}
	}

	var stops []string
	parsed.ForEach(func(_, value gjson.Result) bool {
		stops = append(stops, value.String())
		return true
	})
	return stops
}

func buildCompletionResponse(result *domain.CompletionResult) *chatCompletionResponse {
	msg := responseMessage{Role: domain.RoleAssistant}

	if result.FinishReason == domain.FinishReasonToolCalls {
		// content is nulled when tool calls are emitted
		msg.ToolCalls = make([]wireToolCall, 0, len(result.ToolCalls))
		for _, call := range result.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, wireToolCall{
				ID:   call.ID,
				Type: "function",
				Function: wireCallFunction{
					Name:      call.FunctionName,
					Arguments: call.ArgumentsJSON,
				},
			})
		}
	} else {
		content := result.Content
		msg.Content = &content
	}

	return &chatCompletionResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   result.Model,
		Choices: []wireChoice{{
			Index:        0,
			Message:      msg,
			FinishReason: result.FinishReason,
		}},
	}
}

// streamCompletion relays engine chunks as SSE deltas. Tool calls are
// not parsed on the streaming path.
func (a *Application) streamCompletion(w http.ResponseWriter, r *http.Request, req *services.CompletionRequest) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		a.writeError(w, http.StatusInternalServerError, "server_error", "streaming unsupported by connection")
		return
	}

	chunks, err := a.completion.CompleteStream(r.Context(), req)
	if err != nil {
		a.writeCompletionError(w, err)
		return
	}

	w.Header().Set(ContentTypeHeader, ContentTypeEventStream)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	id := "chatcmpl-" + uuid.NewString()
	created := time.Now().Unix()

	writeChunk := func(chunk *chatCompletionChunk) {
		payload, err := wireJSON.Marshal(chunk)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}

	writeChunk(&chatCompletionChunk{
		ID: id, Object: "chat.completion.chunk", Created: created, Model: req.ModelID,
		Choices: []wireChunkChoice{{Delta: wireDelta{Role: domain.RoleAssistant}}},
	})

	for text := range chunks {
		writeChunk(&chatCompletionChunk{
			ID: id, Object: "chat.completion.chunk", Created: created, Model: req.ModelID,
			Choices: []wireChunkChoice{{Delta: wireDelta{Content: text}}},
		})
	}

	finish := domain.FinishReasonStop
	writeChunk(&chatCompletionChunk{
		ID: id, Object: "chat.completion.chunk", Created: created, Model: req.ModelID,
		Choices: []wireChunkChoice{{FinishReason: &finish}},
	})
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func (a *Application) writeCompletionError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrModelNotFound) {
		a.writeError(w, http.StatusNotFound, "invalid_request_error", err.Error())
		return
	}

	var metaErr *domain.MetadataError
	if errors.As(err, &metaErr) {
		a.logger.Error("Metadata extraction failed", "model", metaErr.ModelID, "error", err)
		a.writeError(w, http.StatusInternalServerError, "server_error", "model metadata unavailable")
		return
	}

	a.logger.Error("Completion failed", "error", err)
	a.writeError(w, http.StatusInternalServerError, "server_error", "completion failed")
}

func (a *Application) writeError(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set(ContentTypeHeader, ContentTypeJSON)
	w.WriteHeader(status)
	_ = wireJSON.NewEncoder(w).Encode(errorResponse{
		Error: errorBody{Message: message, Type: errType},
	})
}
