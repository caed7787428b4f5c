package purchase

import (
	"context"

	"costbook/internal/core/apperror"
	"costbook/internal/core/id"
	"costbook/internal/core/security"
	"costbook/internal/core/tx"
	"costbook/internal/domain"
	"costbook/pkg/logger"
)

// ProductLookup checks that a referenced product exists.
type ProductLookup interface {
	Exists(ctx context.Context, productID id.ID) (bool, error)
}

// Service provides business logic for purchase records.
// Purchases are organization-wide, so any authenticated user may
// manage them; only authentication is required.
type Service struct {
	repo      Repository
	products  ProductLookup
	txManager tx.Manager
}

// NewService creates a new Purchase service.
func NewService(repo Repository, products ProductLookup, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		txManager: txManager,
	}
}

func (s *Service) requireAuth(ctx context.Context) error {
	if security.GetUserID(ctx) == "" {
		return apperror.NewUnauthorized("authentication required")
	}
	return nil
}

// Create records a new inventory purchase.
func (s *Service) Create(ctx context.Context, p *Purchase) error {
	if err := s.requireAuth(ctx); err != nil {
		return err
	}
	if err := p.Validate(ctx); err != nil {
		return err
	}

	exists, err := s.products.Exists(ctx, p.ProductID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NewNotFound("product", p.ProductID.String())
	}

	p.CreatedBy = security.GetUserID(ctx)
	p.UpdatedBy = p.CreatedBy

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, p)
	})
	if err != nil {
		return err
	}

	logger.Debug(ctx, "purchase recorded",
		"purchase_id", p.ID,
		"product_id", p.ProductID,
		"quantity", p.Quantity,
		"total_cost", p.TotalCost)
	return nil
}

// GetByID retrieves a purchase by ID.
func (s *Service) GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	if err := s.requireAuth(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, purchaseID)
}

// Update modifies an existing purchase.
func (s *Service) Update(ctx context.Context, p *Purchase) error {
	if err := s.requireAuth(ctx); err != nil {
		return err
	}
	if err := p.Validate(ctx); err != nil {
		return err
	}

	existing, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = existing.CreatedAt
	p.CreatedBy = existing.CreatedBy
	p.UpdatedBy = security.GetUserID(ctx)

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, p)
	})
}

// Delete soft-deletes a purchase.
func (s *Service) Delete(ctx context.Context, purchaseID id.ID) error {
	if err := s.requireAuth(ctx); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, purchaseID); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SetDeletionMark(ctx, purchaseID, true)
	})
}

// List retrieves purchases with filtering.
func (s *Service) List(ctx context.Context, filter Filter) (domain.ListResult[*Purchase], error) {
	if err := s.requireAuth(ctx); err != nil {
		return domain.ListResult[*Purchase]{}, err
	}
	return s.repo.List(ctx, filter)
}
