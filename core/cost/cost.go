package cost

import (
	"fmt"
	"strings"

	"github.com/leofalp/searchagent/providers/ai"
)

// ModelCost is the per-million-token pricing of a model, in USD.
type ModelCost struct {
	InputCostPerMillion  float64 `json:"input_cost_per_million" yaml:"input_cost_per_million"`
	OutputCostPerMillion float64 `json:"output_cost_per_million" yaml:"output_cost_per_million"`
	// CachedInputCostPerMillion prices prompt tokens served from the
	// provider's cache. Zero bills them at the input rate.
	CachedInputCostPerMillion float64 `json:"cached_input_cost_per_million,omitempty" yaml:"cached_input_cost_per_million,omitempty"`
}

// IsZero reports whether no price is set.
func (mc ModelCost) IsZero() bool {
	return mc.InputCostPerMillion == 0 && mc.OutputCostPerMillion == 0 && mc.CachedInputCostPerMillion == 0
}

// CalculateInputCost returns the cost of tokens prompt tokens.
func (mc ModelCost) CalculateInputCost(tokens int) float64 {
	return perMillion(tokens, mc.InputCostPerMillion)
}

// CalculateOutputCost returns the cost of tokens completion tokens.
func (mc ModelCost) CalculateOutputCost(tokens int) float64 {
	return perMillion(tokens, mc.OutputCostPerMillion)
}

// CalculateCachedCost returns the cost of tokens cached prompt tokens.
func (mc ModelCost) CalculateCachedCost(tokens int) float64 {
	return perMillion(tokens, mc.CachedInputCostPerMillion)
}

// CalculateUsageCost prices usage. Cached tokens are a subset of the prompt
// tokens and are billed at the cached rate when one is set.
func (mc ModelCost) CalculateUsageCost(usage ai.Usage) float64 {
	input := usage.PromptTokens
	total := 0.0

	if mc.CachedInputCostPerMillion > 0 && usage.CachedTokens > 0 {
		cached := min(usage.CachedTokens, input)
		input -= cached
		total += mc.CalculateCachedCost(cached)
	}

	total += mc.CalculateInputCost(input)
	total += mc.CalculateOutputCost(usage.CompletionTokens)
	return total
}

func (mc ModelCost) String() string {
	return fmt.Sprintf("Input: $%.6f/M, Output: $%.6f/M",
		mc.InputCostPerMillion, mc.OutputCostPerMillion)
}

func perMillion(tokens int, price float64) float64 {
	return (float64(tokens) / 1_000_000.0) * price
}

// Published list prices for the default models.
var knownModels = map[string]ModelCost{
	"gpt-4o-2024-08-06": {InputCostPerMillion: 2.50, OutputCostPerMillion: 10.00, CachedInputCostPerMillion: 1.25},
	"gpt-4o":            {InputCostPerMillion: 2.50, OutputCostPerMillion: 10.00, CachedInputCostPerMillion: 1.25},
	"gpt-4o-mini":       {InputCostPerMillion: 0.15, OutputCostPerMillion: 0.60, CachedInputCostPerMillion: 0.075},
	"claude-sonnet-4-5": {InputCostPerMillion: 3.00, OutputCostPerMillion: 15.00, CachedInputCostPerMillion: 0.30},
	"claude-haiku-4-5":  {InputCostPerMillion: 1.00, OutputCostPerMillion: 5.00, CachedInputCostPerMillion: 0.10},
}

// Lookup returns the built-in pricing for model. Dated snapshots of a known
// model ("claude-sonnet-4-5-20250929") resolve to the undated entry.
func Lookup(model string) (ModelCost, bool) {
	model = strings.ToLower(strings.TrimSpace(model))
	if mc, ok := knownModels[model]; ok {
		return mc, true
	}

	best := ""
	for name := range knownModels {
		if strings.HasPrefix(model, name+"-") && len(name) > len(best) {
			best = name
		}
	}
	if best == "" {
		return ModelCost{}, false
	}
	return knownModels[best], true
}
