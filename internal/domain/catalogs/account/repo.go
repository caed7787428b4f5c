package account

import (
	"context"

	"costbook/internal/core/id"
	"costbook/internal/domain"
)

// Repository defines the interface for Account persistence.
type Repository interface {
	domain.CatalogRepository[*Account]

	// OwnedBy reports whether the account exists and belongs to the user.
	// Soft-deleted accounts are not owned.
	OwnedBy(ctx context.Context, accountID, userID id.ID) (bool, error)

	// ListOwnedIDs returns the IDs of all live accounts owned by the user.
	ListOwnedIDs(ctx context.Context, userID id.ID) ([]id.ID, error)
}
