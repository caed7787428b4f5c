package record_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"costbook/internal/domain"
	"costbook/internal/domain/records/entry"
	"costbook/internal/infrastructure/storage/postgres"
)

const entryTable = "entries"

// EntryRepo implements entry.Repository.
type EntryRepo struct {
	*BaseRecordRepo[*entry.Entry]
}

// NewEntryRepo creates a new ledger entry repository.
func NewEntryRepo(txManager *postgres.TxManager) *EntryRepo {
	return &EntryRepo{
		BaseRecordRepo: NewBaseRecordRepo(
			txManager,
			entryTable,
			postgres.ExtractDBColumns[entry.Entry](),
			"occurred_at DESC",
			func() *entry.Entry { return &entry.Entry{} },
		),
	}
}

// List retrieves entries with filtering and pagination.
func (r *EntryRepo) List(ctx context.Context, filter entry.Filter) (domain.ListResult[*entry.Entry], error) {
	result := domain.ListResult[*entry.Entry]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if len(filter.AccountIDs) > 0 {
		q = q.Where(squirrel.Eq{"account_id": filter.AccountIDs})
	}
	if filter.CategoryID != nil {
		q = q.Where(squirrel.Eq{"category_id": *filter.CategoryID})
	}
	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"occurred_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.LtOrEq{"occurred_at": *filter.To})
	}

	err := r.countAndPage(ctx, q, filter.OrderBy, filter.Limit, filter.Offset, &result.TotalCount, &result.Items)
	if err != nil {
		return domain.ListResult[*entry.Entry]{}, err
	}

	return result, nil
}
