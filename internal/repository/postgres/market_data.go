package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"minerva/internal/domain/marketdata"
)

// Compile-time check
var _ marketdata.Repository = (*MarketDataRepository)(nil)

// MarketDataRepository implements marketdata.Repository using sqlx
type MarketDataRepository struct {
	db *sqlx.DB
}

// NewMarketDataRepository creates a new market data repository
func NewMarketDataRepository(db *sqlx.DB) *MarketDataRepository {
	return &MarketDataRepository{db: db}
}

// Store inserts a collected data point
func (r *MarketDataRepository) Store(ctx context.Context, point *marketdata.Point) error {
	query := `
		INSERT INTO market_data (
			id, sector, country, financial_product, custom_keyword,
			data_point, value, source, date, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		point.ID, point.Sector, point.Country, point.FinancialProduct, point.CustomKeyword,
		point.DataPoint, point.Value, point.Source, point.Date, point.CreatedAt,
	)

	return err
}

// List returns data points matching the filter, newest first. Results are
// ordered deterministically so identical filters return identical sequences.
func (r *MarketDataRepository) List(ctx context.Context, filter marketdata.Filter) ([]marketdata.Point, error) {
	conds := []string{}
	args := []interface{}{}

	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	add("sector", filter.Sector)
	add("country", filter.Country)
	add("financial_product", filter.FinancialProduct)
	add("custom_keyword", filter.CustomKeyword)
	add("data_point", filter.DataPoint)

	query := `SELECT * FROM market_data`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	var points []marketdata.Point
	if err := r.db.SelectContext(ctx, &points, query, args...); err != nil {
		return nil, err
	}

	return points, nil
}
