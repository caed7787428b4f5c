package handlers

import (
	"costbook/internal/domain/catalogs/category"
	"costbook/internal/infrastructure/http/v1/dto"
)

// CategoryHTTPHandler is a type alias to shorten signatures.
type CategoryHTTPHandler = CatalogHandler[
	*category.Category,
	dto.CreateCategoryRequest,
	dto.UpdateCategoryRequest,
]

// NewCategoryHandler builds the configured generic handler.
func NewCategoryHandler(
	base *BaseHandler,
	service *category.Service,
) *CategoryHTTPHandler {

	config := CatalogHandlerConfig[
		*category.Category,
		dto.CreateCategoryRequest,
		dto.UpdateCategoryRequest,
	]{
		Service:    service,
		EntityName: "category",

		MapCreateDTO: func(req dto.CreateCategoryRequest) *category.Category {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateCategoryRequest, existing *category.Category) *category.Category {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *category.Category) any {
			return dto.FromCategory(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
