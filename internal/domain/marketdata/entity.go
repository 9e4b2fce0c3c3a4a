package marketdata

import (
	"time"

	"github.com/google/uuid"
)

// Point is a single collected market data point. The value is free text as
// produced by the collector ("€5.2 billion", "4.7% CAGR"); the core never
// does arithmetic on it.
type Point struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Sector           string    `db:"sector" json:"sector"`
	Country          string    `db:"country" json:"country,omitempty"`
	FinancialProduct string    `db:"financial_product" json:"financial_product,omitempty"`
	CustomKeyword    string    `db:"custom_keyword" json:"custom_keyword,omitempty"`
	DataPoint        string    `db:"data_point" json:"data_point"`
	Value            string    `db:"value" json:"value"`
	Source           string    `db:"source" json:"source"`
	Date             string    `db:"date" json:"date"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Filter selects points by equality on tagged fields. Zero-valued fields
// mean "no constraint".
type Filter struct {
	Sector           string
	Country          string
	FinancialProduct string
	CustomKeyword    string
	DataPoint        string
	Limit            int
}
