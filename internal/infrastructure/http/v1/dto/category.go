package dto

import (
	"costbook/internal/domain/catalogs/category"
)

// --- Request DTOs ---

// CreateCategoryRequest is the request body for creating a category.
type CreateCategoryRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	Kind        string  `json:"kind" binding:"required"`
	Description *string `json:"description"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCategoryRequest) ToEntity() *category.Category {
	c := category.NewCategory(r.Code, r.Name, category.Kind(r.Kind))
	c.Description = r.Description
	return c
}

// UpdateCategoryRequest is the request body for updating a category.
type UpdateCategoryRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	Kind        string  `json:"kind" binding:"required"`
	Description *string `json:"description"`
	Version     int     `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateCategoryRequest) ApplyTo(c *category.Category) {
	c.Code = r.Code
	c.Name = r.Name
	c.Kind = category.Kind(r.Kind)
	c.Description = r.Description
	c.Version = r.Version
}

// --- Response DTOs ---

// CategoryResponse is the response body for a category.
type CategoryResponse struct {
	ID           string  `json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Kind         string  `json:"kind"`
	Description  *string `json:"description,omitempty"`
	DeletionMark bool    `json:"deletionMark"`
	Version      int     `json:"version"`
}

// FromCategory creates response DTO from domain entity.
func FromCategory(c *category.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:           c.ID.String(),
		Code:         c.Code,
		Name:         c.Name,
		Kind:         string(c.Kind),
		Description:  c.Description,
		DeletionMark: c.DeletionMark,
		Version:      c.Version,
	}
}
