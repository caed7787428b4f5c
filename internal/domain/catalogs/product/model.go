// Package product provides the product catalog.
// Products are the sellable items that purchases and sale entries refer to.
package product

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"costbook/internal/core/apperror"
	"costbook/internal/core/entity"
)

// Product represents a sellable item shared across all accounts.
type Product struct {
	entity.Catalog

	// SKU is the stock keeping unit (optional, unique when set)
	SKU *string `db:"sku" json:"sku,omitempty"`

	// UnitPrice is the default selling price per unit
	UnitPrice decimal.Decimal `db:"unit_price" json:"unitPrice"`

	// Description is a detailed description
	Description *string `db:"description" json:"description,omitempty"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(code, name string) *Product {
	return &Product{
		Catalog:   entity.NewCatalog(code, name),
		UnitPrice: decimal.Zero,
	}
}

// Validate implements the entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}

	if p.SKU != nil && strings.TrimSpace(*p.SKU) == "" {
		return apperror.NewValidation("sku cannot be blank").
			WithDetail("field", "sku")
	}

	return nil
}
