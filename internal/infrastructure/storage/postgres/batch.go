package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BatchInserter loads rows through the COPY protocol, which beats
// per-row INSERTs once a write carries more than a handful of rows.
// COPY only runs inside a transaction, so callers wrap bulk writes in
// RunInTransaction.
type BatchInserter struct {
	txManager *TxManager
}

// NewBatchInserter creates a batch inserter bound to the tx manager.
func NewBatchInserter(txManager *TxManager) *BatchInserter {
	return &BatchInserter{txManager: txManager}
}

// CopyFromSlice bulk-inserts rows into table. Each row must match
// columns positionally. Returns the number of rows written.
func (b *BatchInserter) CopyFromSlice(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	tx := b.txManager.GetTx(ctx)
	if tx == nil {
		return 0, fmt.Errorf("CopyFromSlice requires a transaction context")
	}

	return tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
}
