package product

import (
	"context"
	"strings"

	"costbook/internal/core/apperror"
	"costbook/internal/core/id"
	"costbook/internal/core/tx"
	"costbook/internal/domain"
)

// Service provides business logic for the Product catalog.
// Composes domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Product]
	repo Repository
}

// NewService creates a new Product service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().On(domain.BeforeCreate, svc.prepareForCreate)
	base.Hooks().On(domain.BeforeUpdate, svc.checkSKUUnique)

	return svc
}

// prepareForCreate generates a code when absent and checks SKU uniqueness.
func (s *Service) prepareForCreate(ctx context.Context, item *Product) error {
	if item.Code == "" {
		// Derive a short code from the time-ordered ID
		item.Code = "PR-" + strings.ToUpper(item.ID.String()[:8])
	}
	return s.checkSKUUnique(ctx, item)
}

func (s *Service) checkSKUUnique(ctx context.Context, item *Product) error {
	if item.SKU == nil || *item.SKU == "" {
		return nil
	}
	existing, err := s.repo.FindBySKU(ctx, *item.SKU)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != item.ID {
		return apperror.NewDuplicate("product", "sku", *item.SKU)
	}
	return nil
}

// FindBySKU retrieves a product by SKU.
func (s *Service) FindBySKU(ctx context.Context, sku string) (*Product, error) {
	return s.repo.FindBySKU(ctx, sku)
}

// NamesByIDs returns display names for the given product IDs.
func (s *Service) NamesByIDs(ctx context.Context, ids []id.ID) (map[id.ID]string, error) {
	return s.repo.NamesByIDs(ctx, ids)
}
