package marketdata

import "context"

// Repository defines the interface for market data access
type Repository interface {
	Store(ctx context.Context, point *Point) error
	List(ctx context.Context, filter Filter) ([]Point, error)
}
