package record_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"costbook/internal/domain"
	"costbook/internal/domain/records/purchase"
	"costbook/internal/infrastructure/storage/postgres"
)

const purchaseTable = "purchases"

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct {
	*BaseRecordRepo[*purchase.Purchase]
}

// NewPurchaseRepo creates a new purchase repository.
func NewPurchaseRepo(txManager *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		BaseRecordRepo: NewBaseRecordRepo(
			txManager,
			purchaseTable,
			postgres.ExtractDBColumns[purchase.Purchase](),
			"purchased_at DESC",
			func() *purchase.Purchase { return &purchase.Purchase{} },
		),
	}
}

// List retrieves purchases with filtering and pagination.
func (r *PurchaseRepo) List(ctx context.Context, filter purchase.Filter) (domain.ListResult[*purchase.Purchase], error) {
	result := domain.ListResult[*purchase.Purchase]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"purchased_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.LtOrEq{"purchased_at": *filter.To})
	}

	err := r.countAndPage(ctx, q, filter.OrderBy, filter.Limit, filter.Offset, &result.TotalCount, &result.Items)
	if err != nil {
		return domain.ListResult[*purchase.Purchase]{}, err
	}

	return result, nil
}
