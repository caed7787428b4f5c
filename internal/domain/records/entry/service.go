package entry

import (
	"context"

	"costbook/internal/core/apperror"
	"costbook/internal/core/id"
	"costbook/internal/core/security"
	"costbook/internal/core/tx"
	"costbook/internal/domain"
	"costbook/pkg/logger"
)

// AccountGuard answers ownership questions about ledger accounts.
// Both methods fail closed: an error denies access.
type AccountGuard interface {
	OwnedBy(ctx context.Context, accountID, userID id.ID) (bool, error)
	ListOwnedIDs(ctx context.Context, userID id.ID) ([]id.ID, error)
}

// CategoryLookup checks that a referenced category exists.
type CategoryLookup interface {
	Exists(ctx context.Context, categoryID id.ID) (bool, error)
}

// Service provides business logic for ledger entries.
// Every operation is scoped to accounts owned by the caller.
type Service struct {
	repo       Repository
	accounts   AccountGuard
	categories CategoryLookup
	txManager  tx.Manager
}

// NewService creates a new Entry service.
func NewService(repo Repository, accounts AccountGuard, categories CategoryLookup, txManager tx.Manager) *Service {
	return &Service{
		repo:       repo,
		accounts:   accounts,
		categories: categories,
		txManager:  txManager,
	}
}

func (s *Service) callerID(ctx context.Context) (id.ID, error) {
	raw := security.GetUserID(ctx)
	if raw == "" {
		return id.Nil(), apperror.NewUnauthorized("authentication required")
	}
	userID, err := id.Parse(raw)
	if err != nil {
		return id.Nil(), apperror.NewUnauthorized("invalid user identity")
	}
	return userID, nil
}

func (s *Service) requireOwnership(ctx context.Context, accountID id.ID) error {
	userID, err := s.callerID(ctx)
	if err != nil {
		return err
	}
	owned, err := s.accounts.OwnedBy(ctx, accountID, userID)
	if err != nil {
		return apperror.NewForbidden("account access could not be verified").WithCause(err)
	}
	if !owned {
		return apperror.NewForbidden("account belongs to another user")
	}
	return nil
}

// Create appends a new ledger entry to a caller-owned account.
func (s *Service) Create(ctx context.Context, e *Entry) error {
	if err := e.Validate(ctx); err != nil {
		return err
	}
	if err := s.requireOwnership(ctx, e.AccountID); err != nil {
		return err
	}

	exists, err := s.categories.Exists(ctx, e.CategoryID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NewNotFound("category", e.CategoryID.String())
	}

	e.CreatedBy = security.GetUserID(ctx)
	e.UpdatedBy = e.CreatedBy

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, e)
	})
	if err != nil {
		return err
	}

	logger.Debug(ctx, "entry created",
		"entry_id", e.ID,
		"account_id", e.AccountID,
		"amount", e.Amount)
	return nil
}

// GetByID retrieves an entry on a caller-owned account.
func (s *Service) GetByID(ctx context.Context, entryID id.ID) (*Entry, error) {
	e, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnership(ctx, e.AccountID); err != nil {
		return nil, err
	}
	return e, nil
}

// Update modifies an entry. Moving an entry to a different account
// requires the caller to own both accounts.
func (s *Service) Update(ctx context.Context, e *Entry) error {
	if err := e.Validate(ctx); err != nil {
		return err
	}

	existing, err := s.repo.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	if err := s.requireOwnership(ctx, existing.AccountID); err != nil {
		return err
	}
	if existing.AccountID != e.AccountID {
		if err := s.requireOwnership(ctx, e.AccountID); err != nil {
			return err
		}
	}

	e.CreatedAt = existing.CreatedAt
	e.CreatedBy = existing.CreatedBy
	e.UpdatedBy = security.GetUserID(ctx)

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, e)
	})
}

// Delete soft-deletes an entry on a caller-owned account.
func (s *Service) Delete(ctx context.Context, entryID id.ID) error {
	existing, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if err := s.requireOwnership(ctx, existing.AccountID); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SetDeletionMark(ctx, entryID, true)
	})
}

// List retrieves entries on caller-owned accounts. An explicit account
// filter is checked against ownership; without one, all owned accounts
// are queried.
func (s *Service) List(ctx context.Context, filter Filter) (domain.ListResult[*Entry], error) {
	userID, err := s.callerID(ctx)
	if err != nil {
		return domain.ListResult[*Entry]{}, err
	}

	if len(filter.AccountIDs) > 0 {
		for _, accountID := range filter.AccountIDs {
			owned, err := s.accounts.OwnedBy(ctx, accountID, userID)
			if err != nil || !owned {
				return domain.ListResult[*Entry]{}, apperror.NewForbidden("account belongs to another user")
			}
		}
	} else {
		owned, err := s.accounts.ListOwnedIDs(ctx, userID)
		if err != nil {
			return domain.ListResult[*Entry]{}, err
		}
		if len(owned) == 0 {
			return domain.ListResult[*Entry]{
				Items:  []*Entry{},
				Limit:  filter.Limit,
				Offset: filter.Offset,
			}, nil
		}
		filter.AccountIDs = owned
	}

	return s.repo.List(ctx, filter)
}
