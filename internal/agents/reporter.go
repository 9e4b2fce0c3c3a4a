package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"minerva/internal/adapters/ai"
	"minerva/internal/domain/marketdata"
	"minerva/internal/domain/report"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

// ReporterConfig carries the model settings for the report generator.
type ReporterConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// ReportGenerator composes structured market reports from previously
// collected data points.
type ReportGenerator struct {
	provider ai.ChatProvider
	data     marketdata.Repository
	reports  report.Repository
	cfg      ReporterConfig
	log      *logger.Logger
}

// NewReportGenerator constructs the report generation agent.
func NewReportGenerator(provider ai.ChatProvider, data marketdata.Repository, reports report.Repository, cfg ReporterConfig) *ReportGenerator {
	return &ReportGenerator{
		provider: provider,
		data:     data,
		reports:  reports,
		cfg:      cfg,
		log:      logger.Get().With("agent", AgentReportGenerator),
	}
}

// Kind identifies the agent.
func (a *ReportGenerator) Kind() Kind { return AgentReportGenerator }

const reporterSystemPrompt = `You are an expert market analyst who writes clear, well-structured market intelligence reports.
Ground every claim in the market data provided. Do not invent figures.
Your response MUST be a JSON object with "title", "summary", and "content" fields. "content" is the full report in markdown.`

type generatedReport struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Content string `json:"content"`
}

// Execute generates and stores a report grounded in the stored market data
// matching the given filters. Data collected by an earlier workflow step is
// picked up automatically through the shared store.
func (a *ReportGenerator) Execute(ctx context.Context, params Parameters) (*Result, error) {
	sector := params.String("sector")
	country := params.String("country")
	product := params.String("financial_product")
	keyword := params.String("custom_keyword")

	points, err := a.data.List(ctx, marketdata.Filter{
		Sector:           sector,
		Country:          country,
		FinancialProduct: product,
		CustomKeyword:    keyword,
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrStorageUnavailable, "list market data: %v", err)
	}
	if len(points) == 0 {
		return Failure(AgentReportGenerator, "no market data available to generate a report from"), nil
	}

	resp, err := a.provider.Chat(ctx, ai.ChatRequest{
		Model:       a.cfg.Model,
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
		JSONOnly:    true,
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: reporterSystemPrompt},
			{Role: ai.RoleUser, Content: reportPrompt(sector, country, product, keyword, points)},
		},
	})
	if err != nil {
		a.log.Warnf("Backend call failed: %v", err)
		return Failure(AgentReportGenerator, fmt.Sprintf("report generation backend failed: %v", err)), nil
	}

	var gen generatedReport
	if err := json.Unmarshal([]byte(stripJSONFences(resp.Content)), &gen); err != nil {
		a.log.Warnf("Unparseable report response: %v", err)
		res := Failure(AgentReportGenerator, fmt.Sprintf("backend returned unparseable report: %v", err))
		res.Usage = resp.Usage
		res.CostUSD = ai.CostUSD(a.cfg.Model, resp.Usage)
		return res, nil
	}
	if gen.Content == "" {
		res := Failure(AgentReportGenerator, "backend returned an empty report")
		res.Usage = resp.Usage
		res.CostUSD = ai.CostUSD(a.cfg.Model, resp.Usage)
		return res, nil
	}
	if gen.Title == "" {
		gen.Title = defaultReportTitle(sector, country)
	}

	rec := &report.Report{
		ID:               uuid.New(),
		Title:            gen.Title,
		Sector:           sector,
		Country:          country,
		FinancialProduct: product,
		CustomKeyword:    keyword,
		Summary:          gen.Summary,
		Content:          gen.Content,
		CreatedAt:        time.Now().UTC(),
	}
	if err := a.reports.Store(ctx, rec); err != nil {
		return nil, errors.Wrapf(errors.ErrStorageUnavailable, "store report: %v", err)
	}

	used := make([]uuid.UUID, 0, len(points))
	for _, p := range points {
		used = append(used, p.ID)
	}

	a.log.Infof("Generated report %s (%q) from %d data points", rec.ID, rec.Title, len(points))

	return &Result{
		Kind:           AgentReportGenerator,
		Success:        true,
		Report:         rec,
		MarketDataUsed: used,
		Usage:          resp.Usage,
		CostUSD:        ai.CostUSD(a.cfg.Model, resp.Usage),
		Outputs: map[string]interface{}{
			"report_id":         rec.ID.String(),
			"title":             rec.Title,
			"sector":            sector,
			"country":           country,
			"financial_product": product,
			"data_points_used":  len(points),
		},
	}, nil
}

func reportPrompt(sector, country, product, keyword string, points []marketdata.Point) string {
	var b strings.Builder
	b.WriteString("Write a market intelligence report")
	if sector != "" {
		fmt.Fprintf(&b, " on the %s sector", sector)
	}
	if country != "" {
		fmt.Fprintf(&b, " in %s", country)
	}
	if product != "" {
		fmt.Fprintf(&b, " covering %s products", product)
	}
	if keyword != "" {
		fmt.Fprintf(&b, " with attention to %s", keyword)
	}
	b.WriteString(".\n\nAvailable market data:\n")
	for _, p := range points {
		fmt.Fprintf(&b, "- %s: %s (source: %s, date: %s)\n", p.DataPoint, p.Value, p.Source, p.Date)
	}
	b.WriteString("\nRespond with a JSON object: {\"title\": ..., \"summary\": ..., \"content\": ...}")
	return b.String()
}

func defaultReportTitle(sector, country string) string {
	switch {
	case sector != "" && country != "":
		return fmt.Sprintf("Market report: %s (%s)", sector, country)
	case sector != "":
		return fmt.Sprintf("Market report: %s", sector)
	default:
		return "Market report"
	}
}
