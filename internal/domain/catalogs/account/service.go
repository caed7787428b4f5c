package account

import (
	"context"
	"strings"

	"costbook/internal/core/apperror"
	"costbook/internal/core/id"
	"costbook/internal/core/security"
	"costbook/internal/core/tx"
	"costbook/internal/domain"
)

// Service provides business logic for the Account catalog.
// Unlike the shared catalogs, every operation is scoped to the
// authenticated owner. Ownership checks fail closed: any error while
// resolving the caller or the account denies access.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new Account service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// callerID resolves the authenticated user from context.
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

// authorize loads the account and verifies the caller owns it.
func (s *Service) authorize(ctx context.Context, accountID id.ID) (*Account, error) {
	userID, err := s.callerID(ctx)
	if err != nil {
		return nil, err
	}
	acc, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("account", accountID.String())
		}
		return nil, err
	}
	if !acc.OwnedBy(userID) {
		return nil, apperror.NewForbidden("account belongs to another user")
	}
	return acc, nil
}

// Create creates a new account owned by the caller.
func (s *Service) Create(ctx context.Context, acc *Account) error {
	userID, err := s.callerID(ctx)
	if err != nil {
		return err
	}
	acc.OwnerID = userID

	if acc.Code == "" {
		acc.Code = "AC-" + strings.ToUpper(acc.ID.String()[:8])
	}

	if err := acc.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, acc)
	})
}

// GetByID retrieves an account owned by the caller.
func (s *Service) GetByID(ctx context.Context, accountID id.ID) (*Account, error) {
	return s.authorize(ctx, accountID)
}

// Update updates an account owned by the caller.
// The owner cannot be reassigned.
func (s *Service) Update(ctx context.Context, acc *Account) error {
	existing, err := s.authorize(ctx, acc.ID)
	if err != nil {
		return err
	}
	acc.OwnerID = existing.OwnerID

	if err := acc.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, acc)
	})
}

// Delete soft-deletes an account owned by the caller.
func (s *Service) Delete(ctx context.Context, accountID id.ID) error {
	if _, err := s.authorize(ctx, accountID); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SetDeletionMark(ctx, accountID, true)
	})
}

// SetDeletionMark sets or clears the soft-delete mark on an account
// owned by the caller.
func (s *Service) SetDeletionMark(ctx context.Context, accountID id.ID, marked bool) error {
	if _, err := s.authorize(ctx, accountID); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SetDeletionMark(ctx, accountID, marked)
	})
}

// List retrieves the caller's accounts.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Account], error) {
	userID, err := s.callerID(ctx)
	if err != nil {
		return domain.ListResult[*Account]{}, err
	}
	filter.OwnerID = &userID
	return s.repo.List(ctx, filter)
}

// OwnedBy reports whether the account exists and belongs to the user.
func (s *Service) OwnedBy(ctx context.Context, accountID, userID id.ID) (bool, error) {
	return s.repo.OwnedBy(ctx, accountID, userID)
}

// ListOwnedIDs returns the IDs of all live accounts owned by the user.
func (s *Service) ListOwnedIDs(ctx context.Context, userID id.ID) ([]id.ID, error) {
	return s.repo.ListOwnedIDs(ctx, userID)
}
