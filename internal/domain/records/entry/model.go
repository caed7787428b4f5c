// Package entry provides ledger entries, the append-oriented lines
// that record money movement on an account. Entries in a sale-kind
// category double as the sale events of the costing replay; the
// replay itself never mutates them.
package entry

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"costbook/internal/core/apperror"
	"costbook/internal/core/entity"
	"costbook/internal/core/id"
)

// Entry represents a single ledger line.
type Entry struct {
	entity.BaseRecord

	// AccountID is the owning ledger account
	AccountID id.ID `db:"account_id" json:"accountId"`

	// CategoryID classifies the entry
	CategoryID id.ID `db:"category_id" json:"categoryId"`

	// ProductID links a sale entry to inventory (optional)
	ProductID *id.ID `db:"product_id" json:"productId,omitempty"`

	// Amount is the signed quantity moved. Sales are conventionally
	// negative; the replay works off the absolute value.
	Amount decimal.Decimal `db:"amount" json:"amount"`

	// UnitPrice is the price per unit at the time of the entry
	UnitPrice decimal.Decimal `db:"unit_price" json:"unitPrice"`

	// OccurredAt is the business timestamp the replay orders by
	OccurredAt time.Time `db:"occurred_at" json:"occurredAt"`

	// Memo is an optional free-text note
	Memo *string `db:"memo" json:"memo,omitempty"`
}

// New creates a new Entry with generated ID and timestamps.
func New(accountID, categoryID id.ID, amount, unitPrice decimal.Decimal, occurredAt time.Time) *Entry {
	return &Entry{
		BaseRecord: entity.NewBaseRecord(),
		AccountID:  accountID,
		CategoryID: categoryID,
		Amount:     amount,
		UnitPrice:  unitPrice,
		OccurredAt: occurredAt,
	}
}

// Validate implements the entity.Validatable interface.
func (e *Entry) Validate(ctx context.Context) error {
	if id.IsNil(e.AccountID) {
		return apperror.NewValidation("account is required").
			WithDetail("field", "accountId")
	}
	if id.IsNil(e.CategoryID) {
		return apperror.NewValidation("category is required").
			WithDetail("field", "categoryId")
	}
	if e.ProductID != nil && id.IsNil(*e.ProductID) {
		return apperror.NewValidation("product id cannot be empty").
			WithDetail("field", "productId")
	}
	if e.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}
	if e.OccurredAt.IsZero() {
		return apperror.NewValidation("occurred date is required").
			WithDetail("field", "occurredAt")
	}
	return nil
}

// Quantity returns the unsigned quantity of the entry.
func (e *Entry) Quantity() decimal.Decimal {
	return e.Amount.Abs()
}

// Revenue returns the unsigned revenue of the entry.
func (e *Entry) Revenue() decimal.Decimal {
	return e.Amount.Mul(e.UnitPrice).Abs()
}
