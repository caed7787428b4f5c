package dto

import (
	"costbook/internal/core/id"
	"costbook/internal/domain/catalogs/account"
)

// --- Request DTOs ---

// CreateAccountRequest is the request body for creating an account.
// The owner is always the authenticated caller.
type CreateAccountRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	Currency    string  `json:"currency"`
	Description *string `json:"description"`
}

// ToEntity converts DTO to domain entity. The service fills OwnerID.
func (r *CreateAccountRequest) ToEntity() *account.Account {
	a := account.NewAccount(r.Code, r.Name, id.Nil())
	if r.Currency != "" {
		a.Currency = r.Currency
	}
	a.Description = r.Description
	return a
}

// UpdateAccountRequest is the request body for updating an account.
type UpdateAccountRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	Currency    string  `json:"currency" binding:"required"`
	Description *string `json:"description"`
	Version     int     `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity. OwnerID is never touched.
func (r *UpdateAccountRequest) ApplyTo(a *account.Account) {
	a.Code = r.Code
	a.Name = r.Name
	a.Currency = r.Currency
	a.Description = r.Description
	a.Version = r.Version
}

// --- Response DTOs ---

// AccountResponse is the response body for an account.
type AccountResponse struct {
	ID           string  `json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	OwnerID      string  `json:"ownerId"`
	Currency     string  `json:"currency"`
	Description  *string `json:"description,omitempty"`
	DeletionMark bool    `json:"deletionMark"`
	Version      int     `json:"version"`
}

// FromAccount creates response DTO from domain entity.
func FromAccount(a *account.Account) *AccountResponse {
	return &AccountResponse{
		ID:           a.ID.String(),
		Code:         a.Code,
		Name:         a.Name,
		OwnerID:      a.OwnerID.String(),
		Currency:     a.Currency,
		Description:  a.Description,
		DeletionMark: a.DeletionMark,
		Version:      a.Version,
	}
}
