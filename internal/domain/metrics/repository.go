package metrics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"costbook/internal/core/id"
)

// PurchaseRecord is a purchase row as fetched for event assembly.
type PurchaseRecord struct {
	ProductID   id.ID           `db:"product_id"`
	PurchasedAt time.Time       `db:"purchased_at"`
	Quantity    decimal.Decimal `db:"quantity"`
	TotalCost   decimal.Decimal `db:"total_cost"`
}

// SaleRecord is a sale-category ledger line as fetched for event
// assembly, still carrying the signed ledger amount.
type SaleRecord struct {
	ProductID  id.ID           `db:"product_id"`
	AccountID  id.ID           `db:"account_id"`
	OccurredAt time.Time       `db:"occurred_at"`
	Amount     decimal.Decimal `db:"amount"`
	UnitPrice  decimal.Decimal `db:"unit_price"`
}

// Repository is the record-store contract of the engine.
//
// Purchases are fetched with no start or account filter: a purchase
// from before the window still defines the cost basis consumed inside
// it. Sales are fetched for the full set of caller-owned accounts up
// to end for the same reason; the scope restriction happens in the
// replay's accumulation step, never in the fetch.
type Repository interface {
	// PurchasesThrough returns all live purchase records with
	// purchased_at <= end.
	PurchasesThrough(ctx context.Context, end time.Time) ([]PurchaseRecord, error)

	// SalesThrough returns all live product-linked ledger lines in the
	// sale category with occurred_at <= end for the given accounts.
	SalesThrough(ctx context.Context, accountIDs []id.ID, saleCategoryID id.ID, end time.Time) ([]SaleRecord, error)

	// CountEntries counts live ledger lines of any category for the
	// given accounts inside the window.
	CountEntries(ctx context.Context, accountIDs []id.ID, window Window) (int64, error)

	// CountPurchases counts live purchase records inside the window,
	// organization-wide.
	CountPurchases(ctx context.Context, window Window) (int64, error)
}

// AccountGuard answers ownership questions, failing closed on error.
type AccountGuard interface {
	OwnedBy(ctx context.Context, accountID, userID id.ID) (bool, error)
	ListOwnedIDs(ctx context.Context, userID id.ID) ([]id.ID, error)
}

// CategoryCatalog locates the sale category. Absence is a valid
// non-error state: found is false and the report is all zeros.
type CategoryCatalog interface {
	FindSaleCategory(ctx context.Context) (id.ID, bool, error)
}

// ProductDirectory resolves product display names for the breakdown.
type ProductDirectory interface {
	NamesByIDs(ctx context.Context, ids []id.ID) (map[id.ID]string, error)
}
