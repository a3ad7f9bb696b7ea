package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/searchagent/internal/utils"
	"github.com/leofalp/searchagent/providers/ai"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New("")
	assert.True(t, errors.Is(err, ai.ErrMissingAPIKey))
}

func TestSendMessageToolCallRoundTrip(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-2024-08-06",
			"choices": [{
				"index": 0,
				"message": {
					"role": "assistant",
					"content": null,
					"tool_calls": [{
						"id": "call_1",
						"type": "function",
						"function": {"name": "search_brave", "arguments": "{\"query\":\"go\"}"}
					}]
				},
				"finish_reason": "tool_calls"
			}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15,
				"prompt_tokens_details": {"cached_tokens": 2}}
		}`)
	}))
	defer server.Close()

	p, err := New("test-key", WithBaseURL(server.URL+"/v1/"), WithHTTPClient(server.Client()), WithModel("gpt-4o-2024-08-06"))
	require.NoError(t, err)

	schema := &jsonschema.Schema{Type: "object"}
	resp, err := p.SendMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{
			ai.NewSystemMessage("sys"),
			ai.NewUserMessage("question"),
		},
		Tools:            []ai.ToolDescription{{Name: "search_brave", Description: "search", Parameters: schema}},
		GenerationConfig: &ai.GenerationConfig{MaxTokens: 4096, Temperature: 0.8},
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-2024-08-06", body["model"])
	assert.Equal(t, "auto", body["tool_choice"])
	assert.Equal(t, 0.8, body["temperature"])
	assert.Equal(t, float64(4096), body["max_tokens"])
	tools := body["tools"].([]any)
	require.Len(t, tools, 1)
	fn := tools[0].(map[string]any)["function"].(map[string]any)
	assert.Equal(t, "search_brave", fn["name"])

	assert.Equal(t, "chatcmpl-1", resp.Id)
	assert.Equal(t, "tool_calls", resp.FinishReason)
	require.True(t, resp.HasToolCalls())
	assert.Equal(t, "call_1", resp.ToolCalls[0].ID)
	assert.Equal(t, `{"query":"go"}`, resp.ToolCalls[0].Function.Arguments)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
	assert.Equal(t, 2, resp.Usage.CachedTokens)
}

func TestSendMessageHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":{"message":"overloaded"}}`)
	}))
	defer server.Close()

	p, err := New("k", WithBaseURL(server.URL), WithModel("m"))
	require.NoError(t, err)

	_, err = p.SendMessage(context.Background(), ai.ChatRequest{Messages: []ai.Message{ai.NewUserMessage("q")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")

	code, ok := utils.StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestSendMessageNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"x","choices":[]}`)
	}))
	defer server.Close()

	p, err := New("k", WithBaseURL(server.URL), WithModel("m"))
	require.NoError(t, err)

	_, err = p.SendMessage(context.Background(), ai.ChatRequest{})
	assert.ErrorContains(t, err, "no choices")
}

func TestSendMessageRequiresModel(t *testing.T) {
	p, err := New("k")
	require.NoError(t, err)

	_, err = p.SendMessage(context.Background(), ai.ChatRequest{})
	assert.ErrorContains(t, err, "no model set")
}
