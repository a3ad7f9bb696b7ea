package openai

import (
	"github.com/leofalp/searchagent/internal/utils"
	"github.com/leofalp/searchagent/providers/ai"
)

/*
	CHAT COMPLETIONS API - INPUT
*/

// chatCompletionRequest represents the /v1/chat/completions request format
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Tools       []chatTool    `json:"tools,omitempty"`
	ToolChoice  string        `json:"tool_choice,omitempty"` // "auto" whenever tools are sent
}

type chatMessage struct {
	Role       string         `json:"role"`                   // system, user, assistant, tool
	Content    *string        `json:"content"`                // null only for assistant tool-call turns
	Name       string         `json:"name,omitempty"`         // For role=tool
	ToolCallID string         `json:"tool_call_id,omitempty"` // For role=tool
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`   // For role=assistant
}

type chatTool struct {
	Type     string       `json:"type"` // "function"
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters"`
}

type chatToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"` // "function"
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"` // JSON string, decoded by the tool
	} `json:"function"`
}

/*
	CHAT COMPLETIONS API - OUTPUT
*/

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"` // "chat.completion"
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

type chatChoice struct {
	Index        int                 `json:"index"`
	Message      chatResponseMessage `json:"message"`
	FinishReason string              `json:"finish_reason"` // "stop", "length", "tool_calls", "content_filter"
}

type chatResponseMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	ToolCalls []chatToolCall `json:"tool_calls,omitempty"`
	Refusal   string         `json:"refusal,omitempty"`
}

type chatUsage struct {
	PromptTokens        int `json:"prompt_tokens"`
	CompletionTokens    int `json:"completion_tokens"`
	TotalTokens         int `json:"total_tokens"`
	PromptTokensDetails *struct {
		CachedTokens int `json:"cached_tokens"`
	} `json:"prompt_tokens_details,omitempty"`
}

/*
	CONVERSION FUNCTIONS
*/

// emptyObjectSchema is advertised for tools without parameters; the API
// rejects a function tool whose parameters are missing.
var emptyObjectSchema = map[string]any{"type": "object", "properties": map[string]any{}}

// requestToChatCompletion converts ai.ChatRequest to chat completions format
func requestToChatCompletion(request ai.ChatRequest) chatCompletionRequest {
	req := chatCompletionRequest{
		Model:    request.Model,
		Messages: make([]chatMessage, 0, len(request.Messages)),
	}

	for _, msg := range request.Messages {
		req.Messages = append(req.Messages, messageToChat(msg))
	}

	if cfg := request.GenerationConfig; cfg != nil {
		if cfg.Temperature > 0 {
			temp := utils.Float32ToFloat64(cfg.Temperature)
			req.Temperature = &temp
		}
		if cfg.MaxTokens > 0 {
			maxTokens := cfg.MaxTokens
			req.MaxTokens = &maxTokens
		}
	}

	for _, tool := range request.Tools {
		fn := chatFunction{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  emptyObjectSchema,
		}
		if tool.Parameters != nil {
			fn.Parameters = tool.Parameters
		}
		req.Tools = append(req.Tools, chatTool{Type: ai.ToolTypeFunction, Function: fn})
	}
	if len(req.Tools) > 0 {
		req.ToolChoice = "auto"
	}

	return req
}

func messageToChat(msg ai.Message) chatMessage {
	out := chatMessage{Role: string(msg.Role)}

	content := msg.Content
	if msg.Role != ai.RoleAssistant || content != "" || len(msg.ToolCalls) == 0 {
		out.Content = &content
	}

	switch msg.Role {
	case ai.RoleTool:
		out.ToolCallID = msg.ToolCallID
		out.Name = msg.Name
	case ai.RoleAssistant:
		for _, call := range msg.ToolCalls {
			var tc chatToolCall
			tc.ID = call.ID
			tc.Type = call.Type
			if tc.Type == "" {
				tc.Type = ai.ToolTypeFunction
			}
			tc.Function.Name = call.Function.Name
			tc.Function.Arguments = call.Function.Arguments
			out.ToolCalls = append(out.ToolCalls, tc)
		}
	}

	return out
}

// chatCompletionToGeneric maps the first choice of resp to ai.ChatResponse.
func chatCompletionToGeneric(resp chatCompletionResponse) *ai.ChatResponse {
	choice := resp.Choices[0]

	out := &ai.ChatResponse{
		Id:           resp.ID,
		Model:        resp.Model,
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		Refusal:      choice.Message.Refusal,
	}

	for _, tc := range choice.Message.ToolCalls {
		callType := tc.Type
		if callType == "" {
			callType = ai.ToolTypeFunction
		}
		out.ToolCalls = append(out.ToolCalls, ai.ToolCall{
			ID:   tc.ID,
			Type: callType,
			Function: ai.ToolCallFunction{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}

	if resp.Usage != nil {
		out.Usage = &ai.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
		if resp.Usage.PromptTokensDetails != nil {
			out.Usage.CachedTokens = resp.Usage.PromptTokensDetails.CachedTokens
		}
	}

	return out
}
