// Package purchase provides inventory purchase records.
// Purchases are organization-wide: they build the cost basis every
// account's sales draw from, so they carry no account reference.
package purchase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"costbook/internal/core/apperror"
	"costbook/internal/core/entity"
	"costbook/internal/core/id"
)

// Purchase represents an inventory acquisition.
type Purchase struct {
	entity.BaseRecord

	// ProductID is the acquired product
	ProductID id.ID `db:"product_id" json:"productId"`

	// Quantity is the number of units acquired (non-negative)
	Quantity decimal.Decimal `db:"quantity" json:"quantity"`

	// TotalCost is the total acquisition cost (non-negative)
	TotalCost decimal.Decimal `db:"total_cost" json:"totalCost"`

	// PurchasedAt is the business timestamp the replay orders by
	PurchasedAt time.Time `db:"purchased_at" json:"purchasedAt"`

	// Supplier is an optional supplier name
	Supplier *string `db:"supplier" json:"supplier,omitempty"`

	// Memo is an optional free-text note
	Memo *string `db:"memo" json:"memo,omitempty"`
}

// New creates a new Purchase with generated ID and timestamps.
func New(productID id.ID, quantity, totalCost decimal.Decimal, purchasedAt time.Time) *Purchase {
	return &Purchase{
		BaseRecord:  entity.NewBaseRecord(),
		ProductID:   productID,
		Quantity:    quantity,
		TotalCost:   totalCost,
		PurchasedAt: purchasedAt,
	}
}

// Validate implements the entity.Validatable interface.
func (p *Purchase) Validate(ctx context.Context) error {
	if id.IsNil(p.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if p.Quantity.IsNegative() {
		return apperror.NewValidation("quantity cannot be negative").
			WithDetail("field", "quantity")
	}
	if p.TotalCost.IsNegative() {
		return apperror.NewValidation("total cost cannot be negative").
			WithDetail("field", "totalCost")
	}
	if p.PurchasedAt.IsZero() {
		return apperror.NewValidation("purchase date is required").
			WithDetail("field", "purchasedAt")
	}
	return nil
}

// UnitCost returns the average cost per unit of this purchase,
// zero when the quantity is zero.
func (p *Purchase) UnitCost() decimal.Decimal {
	if p.Quantity.IsZero() {
		return decimal.Zero
	}
	return p.TotalCost.Div(p.Quantity)
}
