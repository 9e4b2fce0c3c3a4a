package report

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for report access
type Repository interface {
	Store(ctx context.Context, rep *Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*Report, error)
	List(ctx context.Context, filter Filter) ([]Report, error)
}
