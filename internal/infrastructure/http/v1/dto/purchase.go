package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"costbook/internal/core/apperror"
	"costbook/internal/core/id"
	"costbook/internal/domain/records/purchase"
)

// --- Request DTOs ---

// CreatePurchaseRequest is the request body for creating a purchase.
type CreatePurchaseRequest struct {
	ProductID   string          `json:"productId" binding:"required,uuid"`
	Quantity    decimal.Decimal `json:"quantity"`
	TotalCost   decimal.Decimal `json:"totalCost"`
	PurchasedAt time.Time       `json:"purchasedAt" binding:"required"`
	Supplier    *string         `json:"supplier"`
	Memo        *string         `json:"memo"`
}

// ToEntity converts DTO to domain entity.
func (r *CreatePurchaseRequest) ToEntity() (*purchase.Purchase, error) {
	productID, err := id.Parse(r.ProductID)
	if err != nil {
		return nil, apperror.NewValidation("invalid product id").WithDetail("field", "productId")
	}

	p := purchase.New(productID, r.Quantity, r.TotalCost, r.PurchasedAt)
	p.Supplier = r.Supplier
	p.Memo = r.Memo
	return p, nil
}

// UpdatePurchaseRequest is the request body for updating a purchase.
type UpdatePurchaseRequest struct {
	ProductID   string          `json:"productId" binding:"required,uuid"`
	Quantity    decimal.Decimal `json:"quantity"`
	TotalCost   decimal.Decimal `json:"totalCost"`
	PurchasedAt time.Time       `json:"purchasedAt" binding:"required"`
	Supplier    *string         `json:"supplier"`
	Memo        *string         `json:"memo"`
	Version     int             `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdatePurchaseRequest) ApplyTo(p *purchase.Purchase) error {
	productID, err := id.Parse(r.ProductID)
	if err != nil {
		return apperror.NewValidation("invalid product id").WithDetail("field", "productId")
	}

	p.ProductID = productID
	p.Quantity = r.Quantity
	p.TotalCost = r.TotalCost
	p.PurchasedAt = r.PurchasedAt
	p.Supplier = r.Supplier
	p.Memo = r.Memo
	p.Version = r.Version
	return nil
}

// ListPurchasesRequest contains purchase listing query parameters.
type ListPurchasesRequest struct {
	ProductID *string    `form:"productId"`
	From      *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To        *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	OrderBy   string     `form:"orderBy"`
	Limit     int        `form:"limit"`
	Offset    int        `form:"offset"`
}

// ToFilter converts query parameters to a domain filter.
func (r *ListPurchasesRequest) ToFilter() (purchase.Filter, error) {
	filter := purchase.DefaultFilter()

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

// PurchaseResponse is the response body for a purchase.
type PurchaseResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"productId"`
	Quantity     decimal.Decimal `json:"quantity"`
	TotalCost    decimal.Decimal `json:"totalCost"`
	UnitCost     decimal.Decimal `json:"unitCost"`
	PurchasedAt  time.Time       `json:"purchasedAt"`
	Supplier     *string         `json:"supplier,omitempty"`
	Memo         *string         `json:"memo,omitempty"`
	DeletionMark bool            `json:"deletionMark"`
	Version      int             `json:"version"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// FromPurchase creates response DTO from domain entity.
func FromPurchase(p *purchase.Purchase) *PurchaseResponse {
	return &PurchaseResponse{
		ID:           p.ID.String(),
		ProductID:    p.ProductID.String(),
		Quantity:     p.Quantity,
		TotalCost:    p.TotalCost,
		UnitCost:     p.UnitCost(),
		PurchasedAt:  p.PurchasedAt,
		Supplier:     p.Supplier,
		Memo:         p.Memo,
		DeletionMark: p.DeletionMark,
		Version:      p.Version,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
