package report

import (
	"time"

	"github.com/google/uuid"
)

// Report is a generated market report built from previously collected data.
type Report struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Title            string    `db:"title" json:"title"`
	Sector           string    `db:"sector" json:"sector"`
	Country          string    `db:"country" json:"country,omitempty"`
	FinancialProduct string    `db:"financial_product" json:"financial_product,omitempty"`
	CustomKeyword    string    `db:"custom_keyword" json:"custom_keyword,omitempty"`
	Summary          string    `db:"summary" json:"summary"`
	Content          string    `db:"content" json:"content"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Filter selects reports by equality on tagged fields. Zero-valued fields
// mean "no constraint".
type Filter struct {
	Sector           string
	Country          string
	FinancialProduct string
	CustomKeyword    string
	Limit            int
}
