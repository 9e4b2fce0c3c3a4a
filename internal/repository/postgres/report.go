package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"minerva/internal/domain/report"
	"minerva/pkg/errors"
)

// Compile-time check
var _ report.Repository = (*ReportRepository)(nil)

// ReportRepository implements report.Repository using sqlx
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Store inserts a generated report
func (r *ReportRepository) Store(ctx context.Context, rep *report.Report) error {
	query := `
		INSERT INTO reports (
			id, title, sector, country, financial_product, custom_keyword,
			summary, content, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		rep.ID, rep.Title, rep.Sector, rep.Country, rep.FinancialProduct, rep.CustomKeyword,
		rep.Summary, rep.Content, rep.CreatedAt,
	)

	return err
}

// GetByID retrieves a report by ID
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*report.Report, error) {
	var rep report.Report

	query := `SELECT * FROM reports WHERE id = $1`

	err := r.db.GetContext(ctx, &rep, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "report %s", id)
	}
	if err != nil {
		return nil, err
	}

	return &rep, nil
}

// List returns reports matching the filter, newest first.
func (r *ReportRepository) List(ctx context.Context, filter report.Filter) ([]report.Report, error) {
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

	query := `SELECT * FROM reports`
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

	var reports []report.Report
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, err
	}

	return reports, nil
}
