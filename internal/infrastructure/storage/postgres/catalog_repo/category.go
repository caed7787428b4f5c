package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"costbook/internal/domain/catalogs/category"
	"costbook/internal/infrastructure/storage/postgres"
)

const categoryTable = "categories"

// CategoryRepo implements category.Repository.
type CategoryRepo struct {
	*BaseCatalogRepo[*category.Category]
}

// NewCategoryRepo creates a new category repository.
func NewCategoryRepo(txManager *postgres.TxManager) *CategoryRepo {
	return &CategoryRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			categoryTable,
			postgres.ExtractDBColumns[category.Category](),
			func() *category.Category { return &category.Category{} },
		),
	}
}

// FindByKind returns live categories of the given kind, oldest first.
// IDs are UUIDv7 so id order is creation order.
func (r *CategoryRepo) FindByKind(ctx context.Context, kind category.Kind) ([]*category.Category, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[category.Category]()...).
		From(categoryTable).
		Where(squirrel.Eq{"kind": kind}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("id ASC")

	return r.FindMany(ctx, q)
}
