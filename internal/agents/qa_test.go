package agents

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/internal/adapters/ai"
	"minerva/internal/domain/report"
)

func qaUnderTest(provider ai.ChatProvider, data *memMarketData, reports *memReports) *QA {
	return NewQA(provider, data, reports, QAConfig{Model: "gpt-4o", Temperature: 0.3, MaxTokens: 2000})
}

func TestQA_Execute(t *testing.T) {
	ctx := context.Background()

	var prompt string
	provider := &fakeProvider{
		chatFunc: func(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
			prompt = req.Messages[len(req.Messages)-1].Content
			return &ai.ChatResponse{
				Content: "The market is worth €5.2 billion, per the Industry Report.",
				Usage:   ai.Usage{PromptTokens: 900, CompletionTokens: 60},
			}, nil
		},
	}

	data := seededMarketData()
	reports := &memReports{reports: []report.Report{{
		ID: uuid.New(), Title: "French Leasing Market", Sector: "leasing",
		Summary: "Steady growth.", Content: "The market is worth €5.2 billion.",
		CreatedAt: time.Now().UTC(),
	}}}

	agent := qaUnderTest(provider, data, reports)

	res, err := agent.Execute(ctx, Parameters{"question": "how big is the leasing market?", "sector": "leasing"})
	require.NoError(t, err)
	require.True(t, res.Success)

	assert.Contains(t, res.Answer, "€5.2 billion")
	assert.Len(t, res.ReportsUsed, 1)
	assert.Len(t, res.MarketDataUsed, 2)
	assert.True(t, strings.Contains(prompt, "French Leasing Market"), "report content grounds the prompt")
	assert.True(t, strings.Contains(prompt, "market_size"), "data points ground the prompt")
}

func TestQA_QuestionRequired(t *testing.T) {
	agent := qaUnderTest(&fakeProvider{}, &memMarketData{}, &memReports{})

	res, err := agent.Execute(context.Background(), Parameters{})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "question is required")
}

func TestQA_NoContextFails(t *testing.T) {
	provider := &fakeProvider{}
	agent := qaUnderTest(provider, &memMarketData{}, &memReports{})

	res, err := agent.Execute(context.Background(), Parameters{"question": "anything?"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "no market data or reports")
	assert.Equal(t, 0, provider.calls, "the backend is never asked to answer from nothing")
}

func TestQA_FilteredEmptyFails(t *testing.T) {
	ctx := context.Background()

	// Data exists only for "leasing"; the question filters on "insurance".
	// The agent must not widen the search to unrelated records.
	provider := &fakeProvider{}
	agent := qaUnderTest(provider, seededMarketData(), &memReports{})

	res, err := agent.Execute(ctx, Parameters{"question": "what do we know?", "sector": "insurance"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "no market data or reports")
	assert.Equal(t, 0, provider.calls)
}
