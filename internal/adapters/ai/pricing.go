package ai

import "github.com/shopspring/decimal"

// ModelPricing carries USD costs per 1K tokens for a model.
type ModelPricing struct {
	InputPer1K  decimal.Decimal
	OutputPer1K decimal.Decimal
}

// pricing is keyed by model prefix; longest match wins. Prices track the
// public OpenAI price list; unknown models cost zero rather than guessing.
var pricing = map[string]ModelPricing{
	"gpt-4o-mini": {
		InputPer1K:  decimal.RequireFromString("0.00015"),
		OutputPer1K: decimal.RequireFromString("0.0006"),
	},
	"gpt-4o": {
		InputPer1K:  decimal.RequireFromString("0.0025"),
		OutputPer1K: decimal.RequireFromString("0.01"),
	},
}

var thousand = decimal.NewFromInt(1000)

// CostUSD computes the cost of a completion from its token usage.
func CostUSD(model string, usage Usage) decimal.Decimal {
	p, ok := lookupPricing(model)
	if !ok {
		return decimal.Zero
	}

	in := p.InputPer1K.Mul(decimal.NewFromInt(int64(usage.PromptTokens))).Div(thousand)
	out := p.OutputPer1K.Mul(decimal.NewFromInt(int64(usage.CompletionTokens))).Div(thousand)
	return in.Add(out)
}

func lookupPricing(model string) (ModelPricing, bool) {
	if p, ok := pricing[model]; ok {
		return p, true
	}

	// Prefix match, longest first, so "gpt-4o-mini-2024-07-18" resolves to
	// "gpt-4o-mini" and not "gpt-4o".
	best := ""
	for prefix := range pricing {
		if len(prefix) > len(best) && len(model) >= len(prefix) && model[:len(prefix)] == prefix {
			best = prefix
		}
	}
	if best == "" {
		return ModelPricing{}, false
	}
	return pricing[best], true
}
