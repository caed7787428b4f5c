package category

import (
	"context"
	"strings"

	"costbook/internal/core/id"
	"costbook/internal/core/tx"
	"costbook/internal/domain"
)

// Service provides business logic for the Category catalog.
type Service struct {
	*domain.CatalogService[*Category]
	repo Repository
}

// NewService creates a new Category service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Category]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "category",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().On(domain.BeforeCreate, svc.prepareForCreate)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, item *Category) error {
	if item.Code == "" {
		item.Code = "CT-" + strings.ToUpper(item.ID.String()[:8])
	}
	return nil
}

// FindSaleCategory returns the ID of the sale category when one exists.
// A catalog without a sale category is a valid state, not an error:
// found is false and the caller decides what that means.
func (s *Service) FindSaleCategory(ctx context.Context) (id.ID, bool, error) {
	cats, err := s.repo.FindByKind(ctx, KindSale)
	if err != nil {
		return id.Nil(), false, err
	}
	if len(cats) == 0 {
		return id.Nil(), false, nil
	}
	// Oldest sale category wins when several exist
	return cats[0].ID, true, nil
}
