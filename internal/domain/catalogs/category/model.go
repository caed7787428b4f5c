// Package category provides the ledger entry category catalog.
// A category's Kind drives how the costing replay interprets entries:
// only entries in a category of kind "sale" produce sale events.
package category

import (
	"context"

	"costbook/internal/core/apperror"
	"costbook/internal/core/entity"
)

// Kind classifies what a category's entries represent.
type Kind string

const (
	KindSale       Kind = "sale"
	KindPurchase   Kind = "purchase"
	KindAdjustment Kind = "adjustment"
	KindOther      Kind = "other"
)

// Category represents a ledger entry category.
type Category struct {
	entity.Catalog

	// Kind classifies entries filed under this category
	Kind Kind `db:"kind" json:"kind"`

	// Description is an optional note
	Description *string `db:"description" json:"description,omitempty"`
}

// NewCategory creates a new Category with required fields.
func NewCategory(code, name string, kind Kind) *Category {
	return &Category{
		Catalog: entity.NewCatalog(code, name),
		Kind:    kind,
	}
}

// Validate implements the entity.Validatable interface.
func (c *Category) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidKind(c.Kind) {
		return apperror.NewValidation("invalid category kind").
			WithDetail("field", "kind").
			WithDetail("value", string(c.Kind))
	}

	return nil
}

func isValidKind(k Kind) bool {
	switch k {
	case KindSale, KindPurchase, KindAdjustment, KindOther:
		return true
	}
	return false
}
