package query

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"minerva/pkg/errors"
)

// Entities are the structured fields extracted from free text (or supplied
// explicitly by the caller).
type Entities struct {
	Sector           string `json:"sector,omitempty"`
	Country          string `json:"country,omitempty"`
	FinancialProduct string `json:"financial_product,omitempty"`
	CustomKeyword    string `json:"custom_keyword,omitempty"`
	Question         string `json:"question,omitempty"`
}

// Merge returns the receiver overridden field-by-field by explicit values.
// Explicit caller input is authoritative over extracted entities.
func (e Entities) Merge(explicit Entities) Entities {
	if explicit.Sector != "" {
		e.Sector = explicit.Sector
	}
	if explicit.Country != "" {
		e.Country = explicit.Country
	}
	if explicit.FinancialProduct != "" {
		e.FinancialProduct = explicit.FinancialProduct
	}
	if explicit.CustomKeyword != "" {
		e.CustomKeyword = explicit.CustomKeyword
	}
	if explicit.Question != "" {
		e.Question = explicit.Question
	}
	return e
}

// Value implements driver.Valuer for JSONB storage
func (e Entities) Value() (driver.Value, error) {
	return json.Marshal(e)
}

// Scan implements sql.Scanner for JSONB storage
func (e *Entities) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, e)
	case string:
		return json.Unmarshal([]byte(v), e)
	case nil:
		*e = Entities{}
		return nil
	default:
		return errors.Newf("cannot scan %T into Entities", src)
	}
}

// Resolution is the outcome of classifying a raw text: the agent kind it
// routes to and the entities extracted from the text itself (before any
// explicit caller filters are applied).
type Resolution struct {
	AgentKind string   `json:"agent_kind"`
	Entities  Entities `json:"entities"`
}

// UUIDList is a JSONB-stored list of record identifiers.
type UUIDList []uuid.UUID

// Value implements driver.Valuer for JSONB storage
func (l UUIDList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]uuid.UUID{})
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB storage
func (l *UUIDList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = nil
		return nil
	default:
		return errors.Newf("cannot scan %T into UUIDList", src)
	}
}

// Query is one user-submitted free-text request and its outcome. Immutable
// once persisted; the creation timestamp is assigned when the orchestrator
// accepts the request, not when execution completes.
type Query struct {
	ID               uuid.UUID       `db:"id"`
	Text             string          `db:"text"`
	Intent           string          `db:"intent"`
	Entities         Entities        `db:"entities"`
	Answer           string          `db:"answer"`
	ReportsUsed      UUIDList        `db:"reports_used"`
	MarketDataUsed   UUIDList        `db:"market_data_used"`
	PromptTokens     int             `db:"prompt_tokens"`
	CompletionTokens int             `db:"completion_tokens"`
	CostUSD          decimal.Decimal `db:"cost_usd"`
	CreatedAt        time.Time       `db:"created_at"`
}
