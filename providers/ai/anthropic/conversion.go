package anthropic

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/leofalp/searchagent/internal/utils"
	"github.com/leofalp/searchagent/providers/ai"
)

// requestToAnthropic converts an ai.ChatRequest into Messages API params.
func requestToAnthropic(request ai.ChatRequest) (anthropic.MessageNewParams, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(request.Model),
		MaxTokens: defaultMaxTokens,
	}

	if cfg := request.GenerationConfig; cfg != nil {
		if cfg.MaxTokens > 0 {
			params.MaxTokens = int64(cfg.MaxTokens)
		}
		if cfg.Temperature > 0 {
			// The Messages API caps temperature at 1.0.
			params.Temperature = anthropic.Float(min(utils.Float32ToFloat64(cfg.Temperature), 1.0))
		}
	}

	var pendingResults []anthropic.ContentBlockParamUnion
	flushResults := func() {
		if len(pendingResults) > 0 {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(pendingResults...))
			pendingResults = nil
		}
	}

	for _, msg := range request.Messages {
		if msg.Role != ai.RoleTool {
			flushResults()
		}

		switch msg.Role {
		case ai.RoleSystem:
			if msg.Content != "" {
				params.System = append(params.System, anthropic.TextBlockParam{Text: msg.Content})
			}
		case ai.RoleUser:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case ai.RoleAssistant:
			blocks, err := assistantBlocks(msg)
			if err != nil {
				return anthropic.MessageNewParams{}, err
			}
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(blocks...))
		case ai.RoleTool:
			pendingResults = append(pendingResults, toolResultBlock(msg))
		default:
			return anthropic.MessageNewParams{}, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}
	flushResults()

	for _, tool := range request.Tools {
		schema, err := inputSchema(tool)
		if err != nil {
			return anthropic.MessageNewParams{}, fmt.Errorf("tool %s: %w", tool.Name, err)
		}
		params.Tools = append(params.Tools, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        tool.Name,
			Description: anthropic.String(tool.Description),
			InputSchema: schema,
		}})
	}
	if len(params.Tools) > 0 {
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	}

	return params, nil
}

func assistantBlocks(msg ai.Message) ([]anthropic.ContentBlockParamUnion, error) {
	var blocks []anthropic.ContentBlockParamUnion
	if msg.Content != "" {
		blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
	}

	for _, call := range msg.ToolCalls {
		input := json.RawMessage(strings.TrimSpace(call.Function.Arguments))
		if len(input) == 0 || !json.Valid(input) {
			// tool_use input must be an object; malformed arguments are
			// still reported back to the model through the tool result.
			input = json.RawMessage("{}")
		}
		blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, input, call.Function.Name))
	}

	if len(blocks) == 0 {
		return nil, fmt.Errorf("assistant message has neither content nor tool calls")
	}
	return blocks, nil
}

func toolResultBlock(msg ai.Message) anthropic.ContentBlockParamUnion {
	if msg.Content == "" {
		// Empty text blocks are rejected by the API; send a result without content.
		return anthropic.ContentBlockParamUnion{OfToolResult: &anthropic.ToolResultBlockParam{ToolUseID: msg.ToolCallID}}
	}
	return anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, false)
}

// inputSchema maps an invopop schema to the SDK's object schema param.
func inputSchema(tool ai.ToolDescription) (anthropic.ToolInputSchemaParam, error) {
	schema := anthropic.ToolInputSchemaParam{Properties: map[string]any{}}
	if tool.Parameters == nil {
		return schema, nil
	}

	raw, err := json.Marshal(tool.Parameters)
	if err != nil {
		return schema, fmt.Errorf("marshal schema: %w", err)
	}

	var decoded struct {
		Properties map[string]any `json:"properties"`
		Required   []string       `json:"required"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return schema, fmt.Errorf("decode schema: %w", err)
	}

	if decoded.Properties != nil {
		schema.Properties = decoded.Properties
	}
	schema.Required = decoded.Required
	return schema, nil
}

// anthropicToGeneric maps a Messages API reply to ai.ChatResponse.
func anthropicToGeneric(msg *anthropic.Message) *ai.ChatResponse {
	out := &ai.ChatResponse{
		Id:           msg.ID,
		Model:        string(msg.Model),
		FinishReason: mapStopReason(msg.StopReason),
	}

	var text strings.Builder
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(v.Text)
		case anthropic.ToolUseBlock:
			out.ToolCalls = append(out.ToolCalls, ai.ToolCall{
				ID:   v.ID,
				Type: ai.ToolTypeFunction,
				Function: ai.ToolCallFunction{
					Name:      v.Name,
					Arguments: v.JSON.Input.Raw(),
				},
			})
		}
	}
	out.Content = text.String()

	// input_tokens excludes cache reads; fold them in so PromptTokens always
	// contains CachedTokens, as it does for OpenAI.
	prompt := int(msg.Usage.InputTokens + msg.Usage.CacheReadInputTokens)
	out.Usage = &ai.Usage{
		PromptTokens:     prompt,
		CompletionTokens: int(msg.Usage.OutputTokens),
		TotalTokens:      prompt + int(msg.Usage.OutputTokens),
		CachedTokens:     int(msg.Usage.CacheReadInputTokens),
	}

	return out
}

// mapStopReason translates Anthropic stop reasons into the finish reasons
// used across providers.
func mapStopReason(reason anthropic.StopReason) string {
	switch reason {
	case anthropic.StopReasonEndTurn, anthropic.StopReasonStopSequence:
		return "stop"
	case anthropic.StopReasonMaxTokens:
		return "length"
	case anthropic.StopReasonToolUse:
		return "tool_calls"
	default:
		return string(reason)
	}
}
