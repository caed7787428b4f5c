// Package metrics_repo provides the PostgreSQL read-side for the
// costing replay. All queries are read-only and ordered so that event
// assembly preserves insertion order for equal timestamps.
package metrics_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"costbook/internal/core/id"
	"costbook/internal/domain/metrics"
	"costbook/internal/infrastructure/storage/postgres"
)

// MetricsRepo implements metrics.Repository.
type MetricsRepo struct {
	txManager *postgres.TxManager
}

// NewMetricsRepo creates a new metrics read repository.
func NewMetricsRepo(txManager *postgres.TxManager) *MetricsRepo {
	return &MetricsRepo{txManager: txManager}
}

func (r *MetricsRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// PurchasesThrough returns all live purchase records with purchased_at <= end.
// No start or account filter: cost basis accumulates from the beginning of time.
func (r *MetricsRepo) PurchasesThrough(ctx context.Context, end time.Time) ([]metrics.PurchaseRecord, error) {
	q := r.builder().
		Select("product_id", "purchased_at", "quantity", "total_cost").
		From("purchases").
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.LtOrEq{"purchased_at": end}).
		OrderBy("purchased_at ASC", "id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build purchases query: %w", err)
	}

	var records []metrics.PurchaseRecord
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &records, sql, args...); err != nil {
		return nil, fmt.Errorf("select purchases: %w", err)
	}

	return records, nil
}

// SalesThrough returns all live product-linked sale-category ledger
// lines with occurred_at <= end for the given accounts.
func (r *MetricsRepo) SalesThrough(ctx context.Context, accountIDs []id.ID, saleCategoryID id.ID, end time.Time) ([]metrics.SaleRecord, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}

	q := r.builder().
		Select("product_id", "account_id", "occurred_at", "amount", "unit_price").
		From("entries").
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Eq{"account_id": accountIDs}).
		Where(squirrel.Eq{"category_id": saleCategoryID}).
		Where(squirrel.NotEq{"product_id": nil}).
		Where(squirrel.LtOrEq{"occurred_at": end}).
		OrderBy("occurred_at ASC", "id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sales query: %w", err)
	}

	var records []metrics.SaleRecord
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &records, sql, args...); err != nil {
		return nil, fmt.Errorf("select sales: %w", err)
	}

	return records, nil
}

// CountEntries counts live ledger lines of any category for the given
// accounts inside the window.
func (r *MetricsRepo) CountEntries(ctx context.Context, accountIDs []id.ID, window metrics.Window) (int64, error) {
	if len(accountIDs) == 0 {
		return 0, nil
	}

	q := r.builder().
		Select("COUNT(*)").
		From("entries").
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Eq{"account_id": accountIDs}).
		Where(squirrel.GtOrEq{"occurred_at": window.Start}).
		Where(squirrel.LtOrEq{"occurred_at": window.End})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build entry count query: %w", err)
	}

	var count int64
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}

	return count, nil
}

// CountPurchases counts live purchase records inside the window,
// organization-wide.
func (r *MetricsRepo) CountPurchases(ctx context.Context, window metrics.Window) (int64, error) {
	q := r.builder().
		Select("COUNT(*)").
		From("purchases").
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.GtOrEq{"purchased_at": window.Start}).
		Where(squirrel.LtOrEq{"purchased_at": window.End})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build purchase count query: %w", err)
	}

	var count int64
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count purchases: %w", err)
	}

	return count, nil
}
