package sharelink

import (
	"context"
	"time"
)

// Repository defines the interface for ShareLink persistence.
type Repository interface {
	// Create inserts a new share link
	Create(ctx context.Context, link *ShareLink) error

	// GetByLookupToken retrieves a link by its public token
	GetByLookupToken(ctx context.Context, lookupToken string) (*ShareLink, error)

	// DeleteExpired hard-deletes links past their expiry,
	// returning the number removed
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
