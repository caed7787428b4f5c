// Package sharelink_repo provides the PostgreSQL implementation for
// share link persistence.
package sharelink_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"costbook/internal/core/apperror"
	"costbook/internal/domain/sharelink"
	"costbook/internal/infrastructure/storage/postgres"
)

// ShareLinkRepo implements sharelink.Repository.
type ShareLinkRepo struct {
	txManager *postgres.TxManager
}

// NewShareLinkRepo creates a new share link repository.
func NewShareLinkRepo(txManager *postgres.TxManager) *ShareLinkRepo {
	return &ShareLinkRepo{txManager: txManager}
}

// Create inserts a new share link.
func (r *ShareLinkRepo) Create(ctx context.Context, link *sharelink.ShareLink) error {
	q := r.txManager.GetQuerier(ctx)

	query := `
		INSERT INTO share_links (id, lookup_token, ciphertext, expires_at, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := q.Exec(ctx, query,
		link.ID, link.LookupToken, link.Ciphertext,
		link.ExpiresAt, link.CreatedAt, link.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert share link: %w", err)
	}

	return nil
}

// GetByLookupToken retrieves a link by its public token.
func (r *ShareLinkRepo) GetByLookupToken(ctx context.Context, lookupToken string) (*sharelink.ShareLink, error) {
	q := r.txManager.GetQuerier(ctx)

	query := `
		SELECT id, lookup_token, ciphertext, expires_at, created_at, created_by
		FROM share_links WHERE lookup_token = $1
	`

	var link sharelink.ShareLink
	err := q.QueryRow(ctx, query, lookupToken).Scan(
		&link.ID, &link.LookupToken, &link.Ciphertext,
		&link.ExpiresAt, &link.CreatedAt, &link.CreatedBy,
	)
	if err == pgx.ErrNoRows {
		return nil, apperror.NewNotFound("share link", "")
	}
	if err != nil {
		return nil, fmt.Errorf("query share link: %w", err)
	}

	return &link, nil
}

// DeleteExpired hard-deletes links past their expiry.
func (r *ShareLinkRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	q := r.txManager.GetQuerier(ctx)

	result, err := q.Exec(ctx, `DELETE FROM share_links WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired share links: %w", err)
	}

	return result.RowsAffected(), nil
}

// Ensure interface compliance
var _ sharelink.Repository = (*ShareLinkRepo)(nil)
