// Package account provides the ledger account catalog.
// Every account belongs to exactly one user; all entry and report
// access is checked against that ownership.
package account

import (
	"context"

	"costbook/internal/core/apperror"
	"costbook/internal/core/entity"
	"costbook/internal/core/id"
)

// Account represents a user-owned ledger account.
type Account struct {
	entity.Catalog

	// OwnerID is the owning user
	OwnerID id.ID `db:"owner_id" json:"ownerId"`

	// Currency is an ISO 4217 code for display purposes
	Currency string `db:"currency" json:"currency"`

	// Description is an optional note
	Description *string `db:"description" json:"description,omitempty"`
}

// NewAccount creates a new Account for the given owner.
func NewAccount(code, name string, ownerID id.ID) *Account {
	return &Account{
		Catalog:  entity.NewCatalog(code, name),
		OwnerID:  ownerID,
		Currency: "USD",
	}
}

// Validate implements the entity.Validatable interface.
func (a *Account) Validate(ctx context.Context) error {
	if err := a.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(a.OwnerID) {
		return apperror.NewValidation("owner is required").
			WithDetail("field", "ownerId")
	}

	if len(a.Currency) != 3 {
		return apperror.NewValidation("currency must be a 3-letter ISO code").
			WithDetail("field", "currency").
			WithDetail("value", a.Currency)
	}

	return nil
}

// OwnedBy reports whether the account belongs to the given user.
func (a *Account) OwnedBy(userID id.ID) bool {
	return a.OwnerID == userID
}
