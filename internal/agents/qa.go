package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"minerva/internal/adapters/ai"
	"minerva/internal/domain/marketdata"
	"minerva/internal/domain/report"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

// QAConfig carries the model settings for the question answering agent.
type QAConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// QA answers questions grounded exclusively in stored reports and market
// data. It never answers from the model's own knowledge.
type QA struct {
	provider ai.ChatProvider
	data     marketdata.Repository
	reports  report.Repository
	cfg      QAConfig
	log      *logger.Logger
}

// NewQA constructs the question answering agent.
func NewQA(provider ai.ChatProvider, data marketdata.Repository, reports report.Repository, cfg QAConfig) *QA {
	return &QA{
		provider: provider,
		data:     data,
		reports:  reports,
		cfg:      cfg,
		log:      logger.Get().With("agent", AgentQA),
	}
}

// Kind identifies the agent.
func (a *QA) Kind() Kind { return AgentQA }

const qaSystemPrompt = `You are a market intelligence assistant. Answer the user's question using ONLY the reports and market data provided in the context.
If the context does not contain enough information to answer, say so explicitly rather than guessing.
Answer in plain prose. Cite the report titles or data point sources you relied on.`

// Execute answers the question in the parameters from stored context. A
// question is required; with no stored reports or data the agent fails
// rather than hallucinating an answer.
func (a *QA) Execute(ctx context.Context, params Parameters) (*Result, error) {
	question := params.String("question")
	if question == "" {
		return Failure(AgentQA, "question is required"), nil
	}

	filter := marketdata.Filter{
		Sector:           params.String("sector"),
		Country:          params.String("country"),
		FinancialProduct: params.String("financial_product"),
		CustomKeyword:    params.String("custom_keyword"),
	}

	points, err := a.data.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrStorageUnavailable, "list market data: %v", err)
	}
	reports, err := a.reports.List(ctx, report.Filter{
		Sector:           filter.Sector,
		Country:          filter.Country,
		FinancialProduct: filter.FinancialProduct,
		CustomKeyword:    filter.CustomKeyword,
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrStorageUnavailable, "list reports: %v", err)
	}

	if len(points) == 0 && len(reports) == 0 {
		return Failure(AgentQA, "no market data or reports found to answer from"), nil
	}

	resp, err := a.provider.Chat(ctx, ai.ChatRequest{
		Model:       a.cfg.Model,
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: qaSystemPrompt},
			{Role: ai.RoleUser, Content: qaPrompt(question, reports, points)},
		},
	})
	if err != nil {
		a.log.Warnf("Backend call failed: %v", err)
		return Failure(AgentQA, fmt.Sprintf("question answering backend failed: %v", err)), nil
	}

	answer := strings.TrimSpace(resp.Content)
	if answer == "" {
		res := Failure(AgentQA, "backend returned an empty answer")
		res.Usage = resp.Usage
		res.CostUSD = ai.CostUSD(a.cfg.Model, resp.Usage)
		return res, nil
	}

	usedReports := make([]uuid.UUID, 0, len(reports))
	for _, r := range reports {
		usedReports = append(usedReports, r.ID)
	}
	usedData := make([]uuid.UUID, 0, len(points))
	for _, p := range points {
		usedData = append(usedData, p.ID)
	}

	a.log.Infof("Answered question from %d reports and %d data points", len(reports), len(points))

	return &Result{
		Kind:           AgentQA,
		Success:        true,
		Answer:         answer,
		ReportsUsed:    usedReports,
		MarketDataUsed: usedData,
		Usage:          resp.Usage,
		CostUSD:        ai.CostUSD(a.cfg.Model, resp.Usage),
		Outputs: map[string]interface{}{
			"answer":           answer,
			"reports_used":     len(reports),
			"data_points_used": len(points),
		},
	}, nil
}

func qaPrompt(question string, reports []report.Report, points []marketdata.Point) string {
	var b strings.Builder
	b.WriteString("Context:\n\n")
	for _, r := range reports {
		fmt.Fprintf(&b, "## Report: %s\n", r.Title)
		if r.Summary != "" {
			fmt.Fprintf(&b, "Summary: %s\n", r.Summary)
		}
		fmt.Fprintf(&b, "%s\n\n", r.Content)
	}
	if len(points) > 0 {
		b.WriteString("## Market data\n")
		for _, p := range points {
			fmt.Fprintf(&b, "- %s: %s (source: %s, date: %s)\n", p.DataPoint, p.Value, p.Source, p.Date)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Question: %s", question)
	return b.String()
}
