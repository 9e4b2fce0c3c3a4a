package agents

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/internal/adapters/ai"
	"minerva/internal/domain/marketdata"
)

func seededMarketData() *memMarketData {
	return &memMarketData{points: []marketdata.Point{
		{
			ID: uuid.New(), Sector: "leasing", Country: "France",
			DataPoint: "market_size", Value: "€5.2 billion",
			Source: "Industry Report", Date: "2024-01-01", CreatedAt: time.Now().UTC(),
		},
		{
			ID: uuid.New(), Sector: "leasing", Country: "France",
			DataPoint: "growth_rate", Value: "4.1% CAGR",
			Source: "Analyst Note", Date: "2024-06-15", CreatedAt: time.Now().UTC(),
		},
	}}
}

func TestReportGenerator_Execute(t *testing.T) {
	ctx := context.Background()

	provider := &fakeProvider{
		chatFunc: func(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
			return &ai.ChatResponse{
				Content: `{"title": "French Leasing Market", "summary": "Steady growth.", "content": "# French Leasing Market\n\nThe market is worth €5.2 billion."}`,
				Usage:   ai.Usage{PromptTokens: 600, CompletionTokens: 300},
			}, nil
		},
	}

	data := seededMarketData()
	reports := &memReports{}
	agent := NewReportGenerator(provider, data, reports, ReporterConfig{Model: "gpt-4o", Temperature: 0.5, MaxTokens: 4000})

	res, err := agent.Execute(ctx, Parameters{"sector": "leasing", "country": "France"})
	require.NoError(t, err)
	require.True(t, res.Success)

	require.Len(t, reports.reports, 1)
	stored := reports.reports[0]
	assert.Equal(t, "French Leasing Market", stored.Title)
	assert.Equal(t, "leasing", stored.Sector)
	assert.Contains(t, stored.Content, "€5.2 billion")

	assert.Equal(t, stored.ID.String(), res.Outputs["report_id"])
	assert.Equal(t, 2, res.Outputs["data_points_used"])
	assert.Len(t, res.MarketDataUsed, 2)
}

func TestReportGenerator_NoData(t *testing.T) {
	agent := NewReportGenerator(&fakeProvider{}, &memMarketData{}, &memReports{}, ReporterConfig{Model: "gpt-4o"})

	res, err := agent.Execute(context.Background(), Parameters{"sector": "leasing"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "no market data")
}

func TestReportGenerator_EmptyContentFails(t *testing.T) {
	provider := &fakeProvider{
		chatFunc: func(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
			return &ai.ChatResponse{Content: `{"title": "x", "summary": "y", "content": ""}`}, nil
		},
	}
	reports := &memReports{}
	agent := NewReportGenerator(provider, seededMarketData(), reports, ReporterConfig{Model: "gpt-4o"})

	res, err := agent.Execute(context.Background(), Parameters{"sector": "leasing"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, reports.reports)
}
