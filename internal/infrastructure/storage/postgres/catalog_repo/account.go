package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"costbook/internal/core/id"
	"costbook/internal/domain/catalogs/account"
	"costbook/internal/infrastructure/storage/postgres"
)

const accountTable = "accounts"

// AccountRepo implements account.Repository.
type AccountRepo struct {
	*BaseCatalogRepo[*account.Account]
}

// NewAccountRepo creates a new account repository.
func NewAccountRepo(txManager *postgres.TxManager) *AccountRepo {
	return &AccountRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			accountTable,
			postgres.ExtractDBColumns[account.Account](),
			func() *account.Account { return &account.Account{} },
		),
	}
}

// OwnedBy reports whether the account exists and belongs to the user.
// Soft-deleted accounts are not owned.
func (r *AccountRepo) OwnedBy(ctx context.Context, accountID, userID id.ID) (bool, error) {
	q := r.Builder().
		Select("1").
		From(accountTable).
		Where(squirrel.Eq{"id": accountID}).
		Where(squirrel.Eq{"owner_id": userID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("owned by: %w", err)
	}

	return true, nil
}

// ListOwnedIDs returns the IDs of all live accounts owned by the user.
func (r *AccountRepo) ListOwnedIDs(ctx context.Context, userID id.ID) ([]id.ID, error) {
	q := r.Builder().
		Select("id").
		From(accountTable).
		Where(squirrel.Eq{"owner_id": userID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ids []id.ID
	if err := pgxscan.Select(ctx, r.Querier(ctx), &ids, sql, args...); err != nil {
		return nil, fmt.Errorf("list owned ids: %w", err)
	}

	return ids, nil
}
