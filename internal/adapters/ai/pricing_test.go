package ai

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCostUSD(t *testing.T) {
	usage := Usage{PromptTokens: 1000, CompletionTokens: 1000}

	t.Run("exact model", func(t *testing.T) {
		cost := CostUSD("gpt-4o", usage)
		assert.True(t, cost.Equal(decimal.RequireFromString("0.0125")), "got %s", cost)
	})

	t.Run("dated snapshot resolves by longest prefix", func(t *testing.T) {
		mini := CostUSD("gpt-4o-mini-2024-07-18", usage)
		assert.True(t, mini.Equal(decimal.RequireFromString("0.00075")), "got %s", mini)
	})

	t.Run("unknown model costs zero", func(t *testing.T) {
		assert.True(t, CostUSD("llama-3-70b", usage).IsZero())
	})

	t.Run("zero usage costs zero", func(t *testing.T) {
		assert.True(t, CostUSD("gpt-4o", Usage{}).IsZero())
	})
}
