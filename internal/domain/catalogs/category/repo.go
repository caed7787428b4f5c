package category

import (
	"context"

	"costbook/internal/domain"
)

// Repository defines the interface for Category persistence.
type Repository interface {
	domain.CatalogRepository[*Category]

	// FindByKind returns live categories of the given kind,
	// oldest first. An empty result is not an error.
	FindByKind(ctx context.Context, kind Kind) ([]*Category, error)
}
