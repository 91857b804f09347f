package order

import "context"

// Repository is the persistence port for canonical orders.
// Implementations live in the infrastructure layer (Ports & Adapters).
type Repository interface {
	// Upsert inserts or updates an order keyed by OrderID.
	// Calling it twice with the same OrderID must never create a
	// duplicate row; the stored row reflects the latest call.
	Upsert(ctx context.Context, o *Order) error

	// FindByOrderID returns the stored order or ErrNotFound
	FindByOrderID(ctx context.Context, orderID string) (*Order, error)

	// List returns stored orders ordered by OrderedAt descending
	List(ctx context.Context, limit, offset int) ([]Order, error)

	// CountByStatus returns the stored count per canonical status
	CountByStatus(ctx context.Context) (map[CanonicalStatus]int, error)
}
