package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"costbook/internal/core/apperror"
	"costbook/internal/core/id"
	"costbook/internal/domain/records/entry"
)

// --- Request DTOs ---

// CreateEntryRequest is the request body for creating a ledger entry.
type CreateEntryRequest struct {
	AccountID  string          `json:"accountId" binding:"required,uuid"`
	CategoryID string          `json:"categoryId" binding:"required,uuid"`
	ProductID  *string         `json:"productId" binding:"omitempty,uuid"`
	Amount     decimal.Decimal `json:"amount"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	OccurredAt time.Time       `json:"occurredAt" binding:"required"`
	Memo       *string         `json:"memo"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateEntryRequest) ToEntity() (*entry.Entry, error) {
	accountID, err := id.Parse(r.AccountID)
	if err != nil {
		return nil, apperror.NewValidation("invalid account id").WithDetail("field", "accountId")
	}
	categoryID, err := id.Parse(r.CategoryID)
	if err != nil {
		return nil, apperror.NewValidation("invalid category id").WithDetail("field", "categoryId")
	}

	e := entry.New(accountID, categoryID, r.Amount, r.UnitPrice, r.OccurredAt)
	e.Memo = r.Memo

	if r.ProductID != nil {
		productID, err := id.Parse(*r.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid product id").WithDetail("field", "productId")
		}
		e.ProductID = &productID
	}

	return e, nil
}

// UpdateEntryRequest is the request body for updating a ledger entry.
type UpdateEntryRequest struct {
	CategoryID string          `json:"categoryId" binding:"required,uuid"`
	ProductID  *string         `json:"productId" binding:"omitempty,uuid"`
	Amount     decimal.Decimal `json:"amount"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	OccurredAt time.Time       `json:"occurredAt" binding:"required"`
	Memo       *string         `json:"memo"`
	Version    int             `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
// The owning account is never reassigned.
func (r *UpdateEntryRequest) ApplyTo(e *entry.Entry) error {
	categoryID, err := id.Parse(r.CategoryID)
	if err != nil {
		return apperror.NewValidation("invalid category id").WithDetail("field", "categoryId")
	}
	e.CategoryID = categoryID

	e.ProductID = nil
	if r.ProductID != nil {
		productID, err := id.Parse(*r.ProductID)
		if err != nil {
			return apperror.NewValidation("invalid product id").WithDetail("field", "productId")
		}
		e.ProductID = &productID
	}

	e.Amount = r.Amount
	e.UnitPrice = r.UnitPrice
	e.OccurredAt = r.OccurredAt
	e.Memo = r.Memo
	e.Version = r.Version
	return nil
}

// ListEntriesRequest contains entry listing query parameters.
type ListEntriesRequest struct {
	AccountIDs []string   `form:"accountId"`
	CategoryID *string    `form:"categoryId"`
	ProductID  *string    `form:"productId"`
	From       *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To         *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	OrderBy    string     `form:"orderBy"`
	Limit      int        `form:"limit"`
	Offset     int        `form:"offset"`
}

// ToFilter converts query parameters to a domain filter.
func (r *ListEntriesRequest) ToFilter() (entry.Filter, error) {
	filter := entry.DefaultFilter()

	for _, raw := range r.AccountIDs {
		accountID, err := id.Parse(raw)
		if err != nil {
			return filter, apperror.NewValidation("invalid account id").WithDetail("value", raw)
		}
		filter.AccountIDs = append(filter.AccountIDs, accountID)
	}

	if r.CategoryID != nil {
		categoryID, err := id.Parse(*r.CategoryID)
		if err != nil {
			return filter, apperror.NewValidation("invalid category id").WithDetail("value", *r.CategoryID)
		}
		filter.CategoryID = &categoryID
	}

	if r.ProductID != nil {
		productID, err := id.Parse(*r.ProductID)
		if err != nil {
			return filter, apperror.NewValidation("invalid product id").WithDetail("value", *r.ProductID)
		}
		filter.ProductID = &productID
	}

	filter.From = r.From
	filter.To = r.To
	if r.OrderBy != "" {
		filter.OrderBy = r.OrderBy
	}
	if r.Limit > 0 {
		filter.Limit = r.Limit
	}
	if r.Offset > 0 {
		filter.Offset = r.Offset
	}

	return filter, nil
}

// --- Response DTOs ---

// EntryResponse is the response body for a ledger entry.
type EntryResponse struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"accountId"`
	CategoryID   string          `json:"categoryId"`
	ProductID    *string         `json:"productId,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	OccurredAt   time.Time       `json:"occurredAt"`
	Memo         *string         `json:"memo,omitempty"`
	DeletionMark bool            `json:"deletionMark"`
	Version      int             `json:"version"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// FromEntry creates response DTO from domain entity.
func FromEntry(e *entry.Entry) *EntryResponse {
	resp := &EntryResponse{
		ID:           e.ID.String(),
		AccountID:    e.AccountID.String(),
		CategoryID:   e.CategoryID.String(),
		Amount:       e.Amount,
		UnitPrice:    e.UnitPrice,
		OccurredAt:   e.OccurredAt,
		Memo:         e.Memo,
		DeletionMark: e.DeletionMark,
		Version:      e.Version,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if e.ProductID != nil {
		s := e.ProductID.String()
		resp.ProductID = &s
	}
	return resp
}
