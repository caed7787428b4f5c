package sharelink

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costbook/internal/core/apperror"
	"costbook/internal/core/id"
	"costbook/internal/core/security"
	"costbook/internal/domain/metrics"
)

type memoryRepo struct {
	links map[string]*ShareLink
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{links: make(map[string]*ShareLink)}
}

func (r *memoryRepo) Create(ctx context.Context, link *ShareLink) error {
	r.links[link.LookupToken] = link
	return nil
}

func (r *memoryRepo) GetByLookupToken(ctx context.Context, lookupToken string) (*ShareLink, error) {
	link, ok := r.links[lookupToken]
	if !ok {
		return nil, apperror.NewNotFound("share link", nil)
	}
	return link, nil
}

func (r *memoryRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var removed int64
	for token, link := range r.links {
		if link.Expired(now) {
			delete(r.links, token)
			removed++
		}
	}
	return removed, nil
}

type noopTxManager struct{}

func (noopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func authedCtx() context.Context {
	return security.WithUserID(context.Background(), id.New().String())
}

func sampleReport() *metrics.Report {
	return &metrics.Report{
		Revenue:       300,
		Cost:          133.33,
		Profit:        166.67,
		EntryCount:    4,
		PurchaseCount: 2,
		Products: []metrics.ProductMetrics{
			{ProductID: id.New(), ProductName: "Widget", QuantitySold: 100, Revenue: 300, Cost: 133.33, Profit: 166.67},
		},
	}
}

func TestShareLinkRoundTrip(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, noopTxManager{})
	ctx := authedCtx()
	report := sampleReport()

	token, err := svc.Create(ctx, report, time.Hour)
	require.NoError(t, err)
	require.Contains(t, token, ".")

	resolved, err := svc.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, report, resolved)
}

func TestShareLinkKeyNeverStored(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, noopTxManager{})

	token, err := svc.Create(authedCtx(), sampleReport(), time.Hour)
	require.NoError(t, err)

	keyPart := strings.SplitN(token, ".", 2)[1]
	for _, link := range repo.links {
		assert.NotContains(t, link.LookupToken, keyPart)
		assert.NotContains(t, string(link.Ciphertext), keyPart)
	}
}

func TestShareLinkWrongKeyResolvesNotFound(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, noopTxManager{})

	token, err := svc.Create(authedCtx(), sampleReport(), time.Hour)
	require.NoError(t, err)

	// Same lookup half, key from a different link
	other, err := svc.Create(authedCtx(), sampleReport(), time.Hour)
	require.NoError(t, err)
	forged := strings.SplitN(token, ".", 2)[0] + "." + strings.SplitN(other, ".", 2)[1]

	_, err = svc.Resolve(context.Background(), forged)
	assert.True(t, apperror.IsNotFound(err))
}

func TestShareLinkTamperedCiphertextResolvesNotFound(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, noopTxManager{})

	token, err := svc.Create(authedCtx(), sampleReport(), time.Hour)
	require.NoError(t, err)

	for _, link := range repo.links {
		link.Ciphertext[len(link.Ciphertext)-1] ^= 0xff
	}

	_, err = svc.Resolve(context.Background(), token)
	assert.True(t, apperror.IsNotFound(err))
}

func TestShareLinkExpiredResolvesNotFound(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, noopTxManager{})

	token, err := svc.Create(authedCtx(), sampleReport(), time.Hour)
	require.NoError(t, err)

	for _, link := range repo.links {
		link.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	}

	_, err = svc.Resolve(context.Background(), token)
	assert.True(t, apperror.IsNotFound(err))
}

func TestShareLinkMalformedTokens(t *testing.T) {
	svc := NewService(newMemoryRepo(), noopTxManager{})

	for _, token := range []string{"", "nodot", "short.key", "deadbeef.!!!not-base64!!!"} {
		_, err := svc.Resolve(context.Background(), token)
		assert.True(t, apperror.IsNotFound(err), "token %q", token)
	}
}

func TestShareLinkCreateRequiresAuth(t *testing.T) {
	svc := NewService(newMemoryRepo(), noopTxManager{})

	_, err := svc.Create(context.Background(), sampleReport(), time.Hour)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestPurgeExpired(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, noopTxManager{})

	_, err := svc.Create(authedCtx(), sampleReport(), time.Hour)
	require.NoError(t, err)
	expired, err := svc.Create(authedCtx(), sampleReport(), time.Hour)
	require.NoError(t, err)
	repo.links[strings.SplitN(expired, ".", 2)[0]].ExpiresAt = time.Now().UTC().Add(-time.Minute)

	removed, err := svc.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Len(t, repo.links, 1)
}
