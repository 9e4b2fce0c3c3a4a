package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"minerva/internal/domain/workflow"
	"minerva/pkg/errors"
)

// Compile-time check
var _ workflow.Repository = (*WorkflowRepository)(nil)

// WorkflowRepository implements workflow.Repository using sqlx
type WorkflowRepository struct {
	db *sqlx.DB
}

// NewWorkflowRepository creates a new workflow repository
func NewWorkflowRepository(db *sqlx.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

// Create inserts a pending workflow record
func (r *WorkflowRepository) Create(ctx context.Context, wf *workflow.Workflow) error {
	stmt := `
		INSERT INTO workflows (
			id, name, policy, steps, results, status, created_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, stmt,
		wf.ID, wf.Name, wf.Policy, wf.Steps, wf.Results, wf.Status, wf.CreatedAt, wf.CompletedAt,
	)

	return err
}

// Update persists the workflow's results and status after execution
func (r *WorkflowRepository) Update(ctx context.Context, wf *workflow.Workflow) error {
	stmt := `
		UPDATE workflows
		SET results = $2, status = $3, completed_at = $4
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, stmt, wf.ID, wf.Results, wf.Status, wf.CompletedAt)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.Wrapf(errors.ErrNotFound, "workflow %s", wf.ID)
	}

	return nil
}

// GetByID retrieves a workflow record by ID
func (r *WorkflowRepository) GetByID(ctx context.Context, id uuid.UUID) (*workflow.Workflow, error) {
	var wf workflow.Workflow

	stmt := `SELECT * FROM workflows WHERE id = $1`

	err := r.db.GetContext(ctx, &wf, stmt, id)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "workflow %s", id)
	}
	if err != nil {
		return nil, err
	}

	return &wf, nil
}
