package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/searchagent/internal/utils"
	"github.com/leofalp/searchagent/providers/ai"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New("")
	assert.True(t, errors.Is(err, ai.ErrMissingAPIKey))
}

func TestSendMessageMapsToolUse(t *testing.T) {
	var body map[string]any
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		gotKey = r.Header.Get("X-Api-Key")
		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-5",`+
			`"content":[{"type":"text","text":"Let me search."},`+
			`{"type":"tool_use","id":"toolu_1","name":"search_brave","input":{"query":"go"}}],`+
			`"stop_reason":"tool_use","usage":{"input_tokens":12,"output_tokens":8,"cache_read_input_tokens":4}}`)
	}))
	defer server.Close()

	p, err := New("test-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()), WithModel("claude-sonnet-4-5"))
	require.NoError(t, err)

	resp, err := p.SendMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{
			ai.NewSystemMessage("be helpful"),
			ai.NewUserMessage("what is go?"),
		},
		Tools:            []ai.ToolDescription{{Name: "search_brave", Description: "search"}},
		GenerationConfig: &ai.GenerationConfig{MaxTokens: 1000, Temperature: 0.8},
	})
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "claude-sonnet-4-5", body["model"])
	assert.Equal(t, float64(1000), body["max_tokens"])
	assert.Equal(t, 0.8, body["temperature"])
	system := body["system"].([]any)
	require.Len(t, system, 1)
	assert.Equal(t, "be helpful", system[0].(map[string]any)["text"])
	assert.Len(t, body["messages"], 1)

	assert.Equal(t, "msg_1", resp.Id)
	assert.Equal(t, "Let me search.", resp.Content)
	assert.Equal(t, "tool_calls", resp.FinishReason)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "toolu_1", resp.ToolCalls[0].ID)
	assert.Equal(t, "search_brave", resp.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"query":"go"}`, resp.ToolCalls[0].Function.Arguments)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 16, resp.Usage.PromptTokens)
	assert.Equal(t, 24, resp.Usage.TotalTokens)
	assert.Equal(t, 4, resp.Usage.CachedTokens)
}

func TestSendMessageHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`)
	}))
	defer server.Close()

	p, err := New("k", WithBaseURL(server.URL), WithModel("claude-sonnet-4-5"))
	require.NoError(t, err)

	_, err = p.SendMessage(context.Background(), ai.ChatRequest{Messages: []ai.Message{ai.NewUserMessage("q")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	code, ok := utils.StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, code)
}

func TestSendMessageRequiresModel(t *testing.T) {
	p, err := New("k")
	require.NoError(t, err)

	_, err = p.SendMessage(context.Background(), ai.ChatRequest{})
	assert.ErrorContains(t, err, "no model set")
}
