// Package record_repo provides PostgreSQL implementations for dated
// record repositories (ledger entries, purchases).
package record_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"costbook/internal/core/apperror"
	"costbook/internal/core/id"
	"costbook/internal/infrastructure/storage/postgres"
)

// BaseRecordRepo provides common CRUD operations for dated records.
// Embed this in specific record repositories.
type BaseRecordRepo[T any] struct {
	txManager    *postgres.TxManager
	tableName    string
	selectCols   []string
	defaultOrder string
	newFn        func() T
}

// NewBaseRecordRepo creates a new base record repository.
func NewBaseRecordRepo[T any](
	txManager *postgres.TxManager,
	tableName string,
	selectCols []string,
	defaultOrder string,
	newFn func() T,
) *BaseRecordRepo[T] {
	return &BaseRecordRepo[T]{
		txManager:    txManager,
		tableName:    tableName,
		selectCols:   selectCols,
		defaultOrder: defaultOrder,
		newFn:        newFn,
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BaseRecordRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Querier returns the active transaction querier or the pool.
func (r *BaseRecordRepo[T]) Querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// Create inserts a new record using its "db" tags.
func (r *BaseRecordRepo[T]) Create(ctx context.Context, entity T) error {
	data := postgres.StructToMap(entity)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.Builder().
		Insert(r.tableName).
		SetMap(filteredData)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	_, err = r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}

	return nil
}

// CreateMany bulk-inserts records via the COPY protocol.
// Runs inside a transaction; COPY requires one.
func (r *BaseRecordRepo[T]) CreateMany(ctx context.Context, entities []T) error {
	if len(entities) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(entities))
	for _, entity := range entities {
		data := postgres.StructToMap(entity)
		row := make([]any, len(r.selectCols))
		for i, col := range r.selectCols {
			row[i] = data[col]
		}
		rows = append(rows, row)
	}

	inserter := postgres.NewBatchInserter(r.txManager)
	return r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inserted, err := inserter.CopyFromSlice(ctx, r.tableName, r.selectCols, rows)
		if err != nil {
			return fmt.Errorf("copy into %s: %w", r.tableName, err)
		}
		if inserted != int64(len(rows)) {
			return fmt.Errorf("copy into %s: inserted %d of %d rows", r.tableName, inserted, len(rows))
		}
		return nil
	})
}

// Update modifies an existing record with optimistic locking.
func (r *BaseRecordRepo[T]) Update(ctx context.Context, entity T) error {
	data := postgres.StructToMap(entity)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	entityID, ok := data["id"]
	if !ok {
		return fmt.Errorf("entity has no 'id' field")
	}

	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("entity has no 'version' field or it is not an int")
	}

	// Exclude immutable fields
	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if col == "id" || col == "created_at" || col == "created_by" {
			continue
		}
		if col == "version" || col == "updated_at" {
			continue // version/updated_at are managed by repo
		}
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.Builder().
		Update(r.tableName).
		SetMap(filteredData).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"version": version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.tableName, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.tableName, entityID)
	}

	return nil
}

// SetDeletionMark sets or clears the soft-delete mark.
func (r *BaseRecordRepo[T]) SetDeletionMark(ctx context.Context, entityID id.ID, marked bool) error {
	q := r.Builder().
		Update(r.tableName).
		Set("deletion_mark", marked).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entityID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build set deletion mark: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set deletion mark %s: %w", r.tableName, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.tableName, entityID.String())
	}

	return nil
}

// baseSelect creates a SELECT builder.
func (r *BaseRecordRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.selectCols...).
		From(r.tableName)
}

// GetByID retrieves a record by ID.
func (r *BaseRecordRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	entity := r.newFn()
	q := r.baseSelect().
		Where(squirrel.Eq{"id": entityID})

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.Querier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.tableName, entityID.String())
		}
		return entity, fmt.Errorf("get by id: %w", err)
	}

	return entity, nil
}

// countAndPage counts the filtered query, then applies ordering and
// pagination and scans the page into items.
func (r *BaseRecordRepo[T]) countAndPage(
	ctx context.Context,
	q squirrel.SelectBuilder,
	orderBy string,
	limit, offset int,
	totalCount *int64,
	items *[]T,
) error {
	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return fmt.Errorf("build count: %w", err)
	}

	querier := r.Querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(totalCount); err != nil {
		return fmt.Errorf("count: %w", err)
	}

	order, err := r.parseOrderBy(orderBy)
	if err != nil {
		return err
	}
	q = q.OrderBy(order)

	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, items, sql, args...); err != nil {
		return fmt.Errorf("list: %w", err)
	}

	return nil
}

func (r *BaseRecordRepo[T]) parseOrderBy(orderBy string) (string, error) {
	allowed := make(map[string]struct{}, len(r.selectCols)+2)
	for _, col := range r.selectCols {
		allowed[col] = struct{}{}
	}
	allowed["id"] = struct{}{}

	if strings.TrimSpace(orderBy) == "" {
		return r.defaultOrder, nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = strings.TrimSpace(field)
	if field == "" {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy)
	}

	if _, ok := allowed[field]; !ok {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy).WithDetail("field", field)
	}

	return field + " " + direction, nil
}
