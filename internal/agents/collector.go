package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"minerva/internal/adapters/ai"
	"minerva/internal/domain/marketdata"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

// CollectorConfig carries the model settings for the data collector.
type CollectorConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// DataCollector gathers market data points through the backend and persists
// them to the market_data store.
type DataCollector struct {
	provider ai.ChatProvider
	store    marketdata.Repository
	cfg      CollectorConfig
	log      *logger.Logger
}

// NewDataCollector constructs the data collection agent.
func NewDataCollector(provider ai.ChatProvider, store marketdata.Repository, cfg CollectorConfig) *DataCollector {
	return &DataCollector{
		provider: provider,
		store:    store,
		cfg:      cfg,
		log:      logger.Get().With("agent", AgentDataCollector),
	}
}

// Kind identifies the agent.
func (a *DataCollector) Kind() Kind { return AgentDataCollector }

const collectorSystemPrompt = `You are an expert financial analyst specializing in equipment financing markets.
Your task is to collect accurate and up-to-date market data: market size, growth rate, key players, market trends, regulatory factors, and economic indicators.
For each data point provide the specific value, the source, and the date.
Your response MUST be a JSON object with a "data_points" array. Each entry must have "name", "value", "source", and "date" fields.`

// collectedPoint is the constrained per-point output contract.
type collectedPoint struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
	Date   string `json:"date"`
}

// Execute collects data points for the sector described by the parameters
// and stores each one. Sector is required.
func (a *DataCollector) Execute(ctx context.Context, params Parameters) (*Result, error) {
	sector := params.String("sector")
	if sector == "" {
		return Failure(AgentDataCollector, "sector is required for data collection"), nil
	}

	country := params.String("country")
	product := params.String("financial_product")
	keyword := params.String("custom_keyword")

	resp, err := a.provider.Chat(ctx, ai.ChatRequest{
		Model:       a.cfg.Model,
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
		JSONOnly:    true,
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: collectorSystemPrompt},
			{Role: ai.RoleUser, Content: collectionPrompt(sector, country, product, keyword)},
		},
	})
	if err != nil {
		a.log.Warnf("Backend call failed: %v", err)
		return Failure(AgentDataCollector, fmt.Sprintf("data collection backend failed: %v", err)), nil
	}

	points, err := parseCollectedPoints(resp.Content)
	if err != nil {
		a.log.Warnf("Unparseable collection response: %v", err)
		res := Failure(AgentDataCollector, fmt.Sprintf("backend returned unparseable data: %v", err))
		res.Usage = resp.Usage
		res.CostUSD = ai.CostUSD(a.cfg.Model, resp.Usage)
		return res, nil
	}

	stored := make([]marketdata.Point, 0, len(points))
	for _, p := range points {
		if p.Name == "" || p.Value == "" {
			continue
		}

		point := &marketdata.Point{
			ID:               uuid.New(),
			Sector:           sector,
			Country:          country,
			FinancialProduct: product,
			CustomKeyword:    keyword,
			DataPoint:        p.Name,
			Value:            p.Value,
			Source:           defaultString(p.Source, "backend response"),
			Date:             normalizeDate(p.Date),
			CreatedAt:        time.Now().UTC(),
		}

		if err := a.store.Store(ctx, point); err != nil {
			return nil, errors.Wrapf(errors.ErrStorageUnavailable, "store data point %q: %v", p.Name, err)
		}
		stored = append(stored, *point)
	}

	a.log.Infof("Collected %d data points for sector %q", len(stored), sector)

	return &Result{
		Kind:       AgentDataCollector,
		Success:    true,
		DataPoints: stored,
		Usage:      resp.Usage,
		CostUSD:    ai.CostUSD(a.cfg.Model, resp.Usage),
		Outputs: map[string]interface{}{
			"sector":            sector,
			"country":           country,
			"financial_product": product,
			"custom_keyword":    keyword,
			"collected":         len(stored),
		},
	}, nil
}

func collectionPrompt(sector, country, product, keyword string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Collect key market data points (market_size, growth_rate, key_players, market_trends) for the %s sector", sector)
	if country != "" {
		fmt.Fprintf(&b, " in %s", country)
	}
	if product != "" {
		fmt.Fprintf(&b, ", focusing on %s products", product)
	}
	if keyword != "" {
		fmt.Fprintf(&b, ", specifically regarding %s", keyword)
	}
	b.WriteString(`.

Respond with a JSON object of the form:
{"data_points": [{"name": "market_size", "value": "€5.2 billion", "source": "Example Report 2024", "date": "2024"}]}`)
	return b.String()
}

// parseCollectedPoints accepts either the documented object shape or a bare
// array, with or without markdown fences.
func parseCollectedPoints(content string) ([]collectedPoint, error) {
	cleaned := stripJSONFences(content)
	if cleaned == "" {
		return nil, errors.Wrap(errors.ErrMalformedResponse, "empty response")
	}

	var wrapped struct {
		DataPoints []collectedPoint `json:"data_points"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapped); err == nil && len(wrapped.DataPoints) > 0 {
		return wrapped.DataPoints, nil
	}

	var list []collectedPoint
	if err := json.Unmarshal([]byte(cleaned), &list); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedResponse, err.Error())
	}
	return list, nil
}

var yearPattern = regexp.MustCompile(`\b(20\d{2})\b`)

// normalizeDate turns year-only values into YYYY-01-01 and fills in the
// current date when the backend returned none.
func normalizeDate(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Now().UTC().Format("2006-01-02")
	}

	if len(date) == 4 {
		if _, err := time.Parse("2006", date); err == nil {
			return date + "-01-01"
		}
	}
	if m := yearPattern.FindString(date); m != "" && len(date) < 10 {
		return m + "-01-01"
	}
	return date
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
