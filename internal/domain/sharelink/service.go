package sharelink

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/chacha20poly1305"

	"costbook/internal/core/apperror"
	"costbook/internal/core/id"
	"costbook/internal/core/security"
	"costbook/internal/core/tx"
	"costbook/internal/domain/metrics"
	"costbook/pkg/logger"
)

const (
	// DefaultTTL is used when the caller does not pick an expiry.
	DefaultTTL = 7 * 24 * time.Hour

	// MaxTTL caps how long a snapshot may stay resolvable.
	MaxTTL = 90 * 24 * time.Hour

	lookupTokenBytes = 16
)

var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

// Service creates and resolves encrypted report share links.
// Expired, tampered or unknown links all resolve to not-found; the
// caller cannot distinguish the cases.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new ShareLink service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// Create snapshots the report and returns the opaque link token.
// The token carries both the lookup identifier and the decryption
// key; the key half is never stored.
func (s *Service) Create(ctx context.Context, report *metrics.Report, ttl time.Duration) (string, error) {
	caller := security.GetUserID(ctx)
	if caller == "" {
		return "", apperror.NewUnauthorized("authentication required")
	}
	if report == nil {
		return "", apperror.NewValidation("report is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if ttl > MaxTTL {
		return "", apperror.NewValidation("expiry too far in the future").
			WithDetail("max_days", int(MaxTTL.Hours()/24))
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return "", apperror.NewInternal(err)
	}
	compressed := zstdEncoder.EncodeAll(payload, nil)

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", apperror.NewInternal(err)
	}
	ciphertext, err := seal(key, compressed)
	if err != nil {
		return "", apperror.NewInternal(err)
	}

	lookupRaw := make([]byte, lookupTokenBytes)
	if _, err := rand.Read(lookupRaw); err != nil {
		return "", apperror.NewInternal(err)
	}

	now := time.Now().UTC()
	link := &ShareLink{
		ID:          id.New(),
		LookupToken: hex.EncodeToString(lookupRaw),
		Ciphertext:  ciphertext,
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
		CreatedBy:   caller,
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, link)
	})
	if err != nil {
		return "", err
	}

	logger.Info(ctx, "share link created",
		"link_id", link.ID,
		"expires_at", link.ExpiresAt)

	return link.LookupToken + "." + base64.RawURLEncoding.EncodeToString(key), nil
}

// Resolve decrypts a link token back into the shared report.
// Resolution is public: no authentication is required, possession of
// the full token is the capability.
func (s *Service) Resolve(ctx context.Context, token string) (*metrics.Report, error) {
	lookupToken, key, err := splitToken(token)
	if err != nil {
		return nil, notFound()
	}

	link, err := s.repo.GetByLookupToken(ctx, lookupToken)
	if err != nil {
		return nil, notFound()
	}
	if link.Expired(time.Now().UTC()) {
		return nil, notFound()
	}

	compressed, err := open(key, link.Ciphertext)
	if err != nil {
		// Wrong key or tampered ciphertext
		return nil, notFound()
	}
	payload, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, notFound()
	}

	var report metrics.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, notFound()
	}
	return &report, nil
}

// PurgeExpired removes expired links. Called periodically from the
// server bootstrap.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	var removed int64
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		removed, err = s.repo.DeleteExpired(ctx, time.Now().UTC())
		return err
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		logger.Info(ctx, "expired share links purged", "count", removed)
	}
	return removed, nil
}

func notFound() error {
	return apperror.NewNotFound("share link", nil)
}

func splitToken(token string) (lookupToken string, key []byte, err error) {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 || len(parts[0]) != lookupTokenBytes*2 {
		return "", nil, apperror.NewValidation("malformed token")
	}
	key, err = base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil || len(key) != chacha20poly1305.KeySize {
		return "", nil, apperror.NewValidation("malformed token")
	}
	return parts[0], key, nil
}

// seal encrypts plaintext with XChaCha20-Poly1305 under key,
// prefixing the random nonce to the returned ciphertext.
func seal(key, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// open reverses seal.
func open(key, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < chacha20poly1305.NonceSizeX {
		return nil, apperror.NewValidation("ciphertext too short")
	}
	nonce, sealed := ciphertext[:chacha20poly1305.NonceSizeX], ciphertext[chacha20poly1305.NonceSizeX:]
	return aead.Open(nil, nonce, sealed, nil)
}
