package query

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for query record access
type Repository interface {
	Store(ctx context.Context, q *Query) error
	GetByID(ctx context.Context, id uuid.UUID) (*Query, error)
	List(ctx context.Context, intent string, limit int) ([]Query, error)
}
