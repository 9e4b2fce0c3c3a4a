package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"minerva/internal/domain/query"
	"minerva/pkg/errors"
)

// Compile-time check
var _ query.Repository = (*QueryRepository)(nil)

// QueryRepository implements query.Repository using sqlx
type QueryRepository struct {
	db *sqlx.DB
}

// NewQueryRepository creates a new query repository
func NewQueryRepository(db *sqlx.DB) *QueryRepository {
	return &QueryRepository{db: db}
}

// Store inserts a query record
func (r *QueryRepository) Store(ctx context.Context, q *query.Query) error {
	stmt := `
		INSERT INTO queries (
			id, text, intent, entities, answer, reports_used, market_data_used,
			prompt_tokens, completion_tokens, cost_usd, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, stmt,
		q.ID, q.Text, q.Intent, q.Entities, q.Answer, q.ReportsUsed, q.MarketDataUsed,
		q.PromptTokens, q.CompletionTokens, q.CostUSD, q.CreatedAt,
	)

	return err
}

// GetByID retrieves a query record by ID
func (r *QueryRepository) GetByID(ctx context.Context, id uuid.UUID) (*query.Query, error) {
	var q query.Query

	stmt := `SELECT * FROM queries WHERE id = $1`

	err := r.db.GetContext(ctx, &q, stmt, id)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "query %s", id)
	}
	if err != nil {
		return nil, err
	}

	return &q, nil
}

// List returns query records, optionally filtered by resolved intent,
// newest first.
func (r *QueryRepository) List(ctx context.Context, intent string, limit int) ([]query.Query, error) {
	if limit <= 0 {
		limit = 100
	}

	var queries []query.Query
	var err error

	if intent == "" {
		stmt := `SELECT * FROM queries ORDER BY created_at DESC, id DESC LIMIT $1`
		err = r.db.SelectContext(ctx, &queries, stmt, limit)
	} else {
		stmt := `SELECT * FROM queries WHERE intent = $1 ORDER BY created_at DESC, id DESC LIMIT $2`
		err = r.db.SelectContext(ctx, &queries, stmt, intent, limit)
	}
	if err != nil {
		return nil, err
	}

	return queries, nil
}
