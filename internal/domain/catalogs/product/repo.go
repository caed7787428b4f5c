package product

import (
	"context"

	"costbook/internal/core/id"
	"costbook/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// FindBySKU retrieves a product by SKU.
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// NamesByIDs returns display names for the given product IDs.
	// Unknown IDs are simply absent from the result.
	NamesByIDs(ctx context.Context, ids []id.ID) (map[id.ID]string, error)
}
