package overview

import (
	"log/slog"
	"time"

	"github.com/leofalp/searchagent/core/cost"
	"github.com/leofalp/searchagent/providers/ai"
)

// Overview aggregates execution statistics for one run.
type Overview struct {
	Turns     int            `json:"turns"`                // Model calls made
	ToolCalls map[string]int `json:"tool_calls,omitempty"` // Tool calls requested, by tool name
	Usage     ai.Usage       `json:"usage"`                // Summed over every model call that reported usage
	// ModelCost is the pricing used for EstimatedCost (optional)
	ModelCost *cost.ModelCost `json:"model_cost,omitempty"`

	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// Start resets o and marks the run as started at now.
func (o *Overview) Start(now time.Time) {
	*o = Overview{
		ToolCalls: make(map[string]int),
		ModelCost: o.ModelCost,
		StartedAt: now,
	}
}

// IncludeResponse counts one model call and accumulates its usage.
func (o *Overview) IncludeResponse(response *ai.ChatResponse) {
	o.Turns++
	if response != nil {
		o.Usage.Add(response.Usage)
	}
}

// AddToolCall counts one requested call of the named tool.
func (o *Overview) AddToolCall(name string) {
	if o.ToolCalls == nil {
		o.ToolCalls = make(map[string]int)
	}
	o.ToolCalls[name]++
}

// TotalToolCalls returns the number of tool calls across all tools.
func (o *Overview) TotalToolCalls() int {
	total := 0
	for _, n := range o.ToolCalls {
		total += n
	}
	return total
}

// Finish marks the run as finished at now.
func (o *Overview) Finish(now time.Time) {
	o.FinishedAt = now
}

// Duration is the time between Start and Finish, or zero when either is
// unset.
func (o *Overview) Duration() time.Duration {
	if o.StartedAt.IsZero() || o.FinishedAt.IsZero() {
		return 0
	}
	return o.FinishedAt.Sub(o.StartedAt)
}

// EstimatedCost prices the accumulated usage. ok is false without a
// ModelCost.
func (o *Overview) EstimatedCost() (usd float64, ok bool) {
	if o.ModelCost == nil || o.ModelCost.IsZero() {
		return 0, false
	}
	return o.ModelCost.CalculateUsageCost(o.Usage), true
}

// LogAttrs summarizes o for a log record.
func (o *Overview) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.Int("turns", o.Turns),
		slog.Int("tool_calls", o.TotalToolCalls()),
		slog.Int("prompt_tokens", o.Usage.PromptTokens),
		slog.Int("completion_tokens", o.Usage.CompletionTokens),
		slog.Int("total_tokens", o.Usage.TotalTokens),
		slog.Duration("duration", o.Duration()),
	}
	if usd, ok := o.EstimatedCost(); ok {
		attrs = append(attrs, slog.Float64("estimated_cost_usd", usd))
	}
	return attrs
}
