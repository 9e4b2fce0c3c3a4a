package agents

import (
	"context"

	"github.com/shopspring/decimal"

	"minerva/internal/adapters/ai"
	"minerva/internal/domain/marketdata"
	"minerva/internal/domain/query"
	"minerva/internal/domain/report"
)

// Agent is the capability contract every specialization satisfies. Expected
// failure modes (upstream unreachable, no data found) are reported on the
// Result, not as an error; a non-nil error means the outcome could not be
// determined at all and is treated as a failed result by the engine.
type Agent interface {
	Kind() Kind
	Execute(ctx context.Context, params Parameters) (*Result, error)
}

// Result is the outcome of one agent invocation.
type Result struct {
	Kind       Kind
	Success    bool
	Error      string
	DurationMs int64

	// Kind-specific payloads
	DataPoints     []marketdata.Point
	Report         *report.Report
	Answer         string
	ReportsUsed    query.UUIDList
	MarketDataUsed query.UUIDList

	// Outputs are the named fields later steps may reference.
	Outputs map[string]interface{}

	// Backend accounting
	Usage   ai.Usage
	CostUSD decimal.Decimal
}

// Failure builds a failed result with a human-readable reason.
func Failure(kind Kind, reason string) *Result {
	return &Result{Kind: kind, Success: false, Error: reason}
}
