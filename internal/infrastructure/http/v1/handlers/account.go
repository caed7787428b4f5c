package handlers

import (
	"costbook/internal/domain/catalogs/account"
	"costbook/internal/infrastructure/http/v1/dto"
)

// AccountHTTPHandler is a type alias to shorten signatures.
type AccountHTTPHandler = CatalogHandler[
	*account.Account,
	dto.CreateAccountRequest,
	dto.UpdateAccountRequest,
]

// NewAccountHandler builds the configured generic handler. The account
// service is owner-scoped, so every operation behind this handler runs
// the ownership checks before touching data.
func NewAccountHandler(
	base *BaseHandler,
	service *account.Service,
) *AccountHTTPHandler {

	config := CatalogHandlerConfig[
		*account.Account,
		dto.CreateAccountRequest,
		dto.UpdateAccountRequest,
	]{
		Service:    service,
		EntityName: "account",

		MapCreateDTO: func(req dto.CreateAccountRequest) *account.Account {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateAccountRequest, existing *account.Account) *account.Account {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *account.Account) any {
			return dto.FromAccount(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
