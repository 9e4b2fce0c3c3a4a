package workflow

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for workflow record access
type Repository interface {
	Create(ctx context.Context, wf *Workflow) error
	Update(ctx context.Context, wf *Workflow) error
	GetByID(ctx context.Context, id uuid.UUID) (*Workflow, error)
}
