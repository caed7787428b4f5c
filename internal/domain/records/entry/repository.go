package entry

import (
	"context"
	"time"

	"costbook/internal/core/id"
	"costbook/internal/domain"
)

// Filter narrows entry listings.
type Filter struct {
	// AccountIDs restricts to the given accounts (required in practice;
	// the service always fills it with caller-owned accounts)
	AccountIDs []id.ID

	// CategoryID restricts to one category
	CategoryID *id.ID

	// ProductID restricts to one product
	ProductID *id.ID

	// From and To bound OccurredAt (inclusive)
	From *time.Time
	To   *time.Time

	IncludeDeleted bool

	// OrderBy specifies sorting (e.g., "occurred_at", "-occurred_at")
	OrderBy string

	Limit  int
	Offset int
}

// DefaultFilter returns sensible listing defaults.
func DefaultFilter() Filter {
	return Filter{
		Limit:   50,
		OrderBy: "-occurred_at",
	}
}

// Repository defines the interface for Entry persistence.
type Repository interface {
	// Create inserts a new entry
	Create(ctx context.Context, e *Entry) error

	// CreateMany bulk-inserts entries (COPY based, used by seeding)
	CreateMany(ctx context.Context, entries []*Entry) error

	// GetByID retrieves an entry by ID
	GetByID(ctx context.Context, entryID id.ID) (*Entry, error)

	// Update modifies an existing entry (optimistic locking)
	Update(ctx context.Context, e *Entry) error

	// SetDeletionMark sets or clears the soft-delete mark
	SetDeletionMark(ctx context.Context, entryID id.ID, marked bool) error

	// List retrieves entries with filtering and pagination
	List(ctx context.Context, filter Filter) (domain.ListResult[*Entry], error)
}
