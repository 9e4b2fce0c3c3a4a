package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsage_Add(t *testing.T) {
	var total Usage
	total.Add(Usage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120})
	total.Add(Usage{PromptTokens: 50, CompletionTokens: 5, TotalTokens: 55})

	assert.Equal(t, 150, total.PromptTokens)
	assert.Equal(t, 25, total.CompletionTokens)
	assert.Equal(t, 175, total.TotalTokens)
}
