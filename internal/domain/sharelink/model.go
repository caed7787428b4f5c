// Package sharelink provides read-only report sharing. A share link
// snapshots a metrics report, compresses and encrypts it, and stores
// only the ciphertext; the decryption key lives in the link itself
// and is never persisted, so the stored row alone reveals nothing.
package sharelink

import (
	"time"

	"costbook/internal/core/id"
)

// ShareLink is the stored, encrypted report snapshot.
type ShareLink struct {
	ID id.ID `db:"id" json:"id"`

	// LookupToken is the public, random identifier in the link
	LookupToken string `db:"lookup_token" json:"-"`

	// Ciphertext is nonce-prefixed XChaCha20-Poly1305 output over the
	// zstd-compressed report JSON
	Ciphertext []byte `db:"ciphertext" json:"-"`

	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	CreatedBy string    `db:"created_by" json:"-"`
}

// Expired reports whether the link has passed its expiry.
func (l *ShareLink) Expired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}
