package purchase

import (
	"context"
	"time"

	"costbook/internal/core/id"
	"costbook/internal/domain"
)

// Filter narrows purchase listings.
type Filter struct {
	// ProductID restricts to one product
	ProductID *id.ID

	// From and To bound PurchasedAt (inclusive)
	From *time.Time
	To   *time.Time

	IncludeDeleted bool

	// OrderBy specifies sorting (e.g., "purchased_at", "-purchased_at")
	OrderBy string

	Limit  int
	Offset int
}

// DefaultFilter returns sensible listing defaults.
func DefaultFilter() Filter {
	return Filter{
		Limit:   50,
		OrderBy: "-purchased_at",
	}
}

// Repository defines the interface for Purchase persistence.
type Repository interface {
	// Create inserts a new purchase
	Create(ctx context.Context, p *Purchase) error

	// CreateMany bulk-inserts purchases (COPY based, used by seeding)
	CreateMany(ctx context.Context, purchases []*Purchase) error

	// GetByID retrieves a purchase by ID
	GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error)

	// Update modifies an existing purchase (optimistic locking)
	Update(ctx context.Context, p *Purchase) error

	// SetDeletionMark sets or clears the soft-delete mark
	SetDeletionMark(ctx context.Context, purchaseID id.ID, marked bool) error

	// List retrieves purchases with filtering and pagination
	List(ctx context.Context, filter Filter) (domain.ListResult[*Purchase], error)
}
