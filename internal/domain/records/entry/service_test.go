package entry

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costbook/internal/core/apperror"
	"costbook/internal/core/id"
	"costbook/internal/core/security"
	"costbook/internal/domain"
)

// --- in-memory fakes ---

type memoryRepo struct {
	entries map[id.ID]*Entry
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{entries: make(map[id.ID]*Entry)}
}

func (r *memoryRepo) Create(ctx context.Context, e *Entry) error {
	stored := *e
	r.entries[e.ID] = &stored
	return nil
}

func (r *memoryRepo) CreateMany(ctx context.Context, entries []*Entry) error {
	for _, e := range entries {
		if err := r.Create(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, entryID id.ID) (*Entry, error) {
	e, ok := r.entries[entryID]
	if !ok {
		return nil, apperror.NewNotFound("entry", entryID.String())
	}
	found := *e
	return &found, nil
}

func (r *memoryRepo) Update(ctx context.Context, e *Entry) error {
	if _, ok := r.entries[e.ID]; !ok {
		return apperror.NewNotFound("entry", e.ID.String())
	}
	stored := *e
	r.entries[e.ID] = &stored
	return nil
}

func (r *memoryRepo) SetDeletionMark(ctx context.Context, entryID id.ID, marked bool) error {
	e, ok := r.entries[entryID]
	if !ok {
		return apperror.NewNotFound("entry", entryID.String())
	}
	e.DeletionMark = marked
	return nil
}

func (r *memoryRepo) List(ctx context.Context, filter Filter) (domain.ListResult[*Entry], error) {
	allowed := make(map[id.ID]bool, len(filter.AccountIDs))
	for _, accountID := range filter.AccountIDs {
		allowed[accountID] = true
	}

	result := domain.ListResult[*Entry]{
		Items:  []*Entry{},
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	for _, e := range r.entries {
		if !allowed[e.AccountID] || (e.DeletionMark && !filter.IncludeDeleted) {
			continue
		}
		found := *e
		result.Items = append(result.Items, &found)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

type fakeGuard struct {
	owned map[id.ID]id.ID // account -> owner
	err   error
}

func (g *fakeGuard) OwnedBy(ctx context.Context, accountID, userID id.ID) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	return g.owned[accountID] == userID, nil
}

func (g *fakeGuard) ListOwnedIDs(ctx context.Context, userID id.ID) ([]id.ID, error) {
	if g.err != nil {
		return nil, g.err
	}
	var out []id.ID
	for accountID, owner := range g.owned {
		if owner == userID {
			out = append(out, accountID)
		}
	}
	return out, nil
}

type fakeCategories struct {
	exists bool
	err    error
}

func (c *fakeCategories) Exists(ctx context.Context, categoryID id.ID) (bool, error) {
	return c.exists, c.err
}

type noopTxManager struct{}

func (noopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- fixtures ---

var (
	userAlice = id.MustParse("01890000-0000-7000-8000-000000000001")
	userBob   = id.MustParse("01890000-0000-7000-8000-000000000002")
	acctAlice = id.MustParse("01890000-0000-7000-8000-0000000000aa")
	acctBob   = id.MustParse("01890000-0000-7000-8000-0000000000bb")
	salesCat  = id.MustParse("01890000-0000-7000-8000-0000000000ca")
)

func authedCtx(userID id.ID) context.Context {
	return security.WithUserID(context.Background(), userID.String())
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, code, appErr.Code)
}

func newTestService(repo *memoryRepo) *Service {
	guard := &fakeGuard{owned: map[id.ID]id.ID{
		acctAlice: userAlice,
		acctBob:   userBob,
	}}
	return NewService(repo, guard, &fakeCategories{exists: true}, noopTxManager{})
}

func sampleEntry(accountID id.ID) *Entry {
	occurred := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return New(accountID, salesCat, decimal.NewFromInt(50), decimal.RequireFromString("3.00"), occurred)
}

// --- tests ---

func TestCreateRequiresAuthentication(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	err := svc.Create(context.Background(), sampleEntry(acctAlice))

	require.Error(t, err)
	assertCode(t, err, apperror.CodeUnauthorized)
}

func TestCreateForeignAccountForbidden(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	err := svc.Create(authedCtx(userBob), sampleEntry(acctAlice))

	require.Error(t, err)
	assertCode(t, err, apperror.CodeForbidden)
	assert.Empty(t, repo.entries)
}

func TestCreateGuardErrorFailsClosed(t *testing.T) {
	repo := newMemoryRepo()
	guard := &fakeGuard{err: assert.AnError}
	svc := NewService(repo, guard, &fakeCategories{exists: true}, noopTxManager{})

	err := svc.Create(authedCtx(userAlice), sampleEntry(acctAlice))

	require.Error(t, err)
	assertCode(t, err, apperror.CodeForbidden)
}

func TestCreateUnknownCategoryNotFound(t *testing.T) {
	repo := newMemoryRepo()
	guard := &fakeGuard{owned: map[id.ID]id.ID{acctAlice: userAlice}}
	svc := NewService(repo, guard, &fakeCategories{exists: false}, noopTxManager{})

	err := svc.Create(authedCtx(userAlice), sampleEntry(acctAlice))

	require.Error(t, err)
	assertCode(t, err, apperror.CodeNotFound)
}

func TestCreateStampsAuditFields(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	e := sampleEntry(acctAlice)
	require.NoError(t, svc.Create(authedCtx(userAlice), e))

	assert.Equal(t, userAlice.String(), e.CreatedBy)
	assert.Equal(t, userAlice.String(), e.UpdatedBy)
	assert.Contains(t, repo.entries, e.ID)
}

func TestGetByIDForeignAccountForbidden(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	e := sampleEntry(acctAlice)
	require.NoError(t, svc.Create(authedCtx(userAlice), e))

	_, err := svc.GetByID(authedCtx(userBob), e.ID)

	require.Error(t, err)
	assertCode(t, err, apperror.CodeForbidden)
}

func TestUpdateMoveToForeignAccountForbidden(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	e := sampleEntry(acctAlice)
	require.NoError(t, svc.Create(authedCtx(userAlice), e))

	moved := *e
	moved.AccountID = acctBob
	err := svc.Update(authedCtx(userAlice), &moved)

	require.Error(t, err)
	assertCode(t, err, apperror.CodeForbidden)
}

func TestUpdatePreservesCreationAudit(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	e := sampleEntry(acctAlice)
	require.NoError(t, svc.Create(authedCtx(userAlice), e))

	changed := *e
	changed.Amount = decimal.NewFromInt(75)
	changed.CreatedBy = "someone-else"
	require.NoError(t, svc.Update(authedCtx(userAlice), &changed))

	assert.Equal(t, e.CreatedBy, changed.CreatedBy)
	assert.Equal(t, e.CreatedAt, changed.CreatedAt)
	assert.Equal(t, userAlice.String(), changed.UpdatedBy)
}

func TestDeleteSetsDeletionMark(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	e := sampleEntry(acctAlice)
	require.NoError(t, svc.Create(authedCtx(userAlice), e))
	require.NoError(t, svc.Delete(authedCtx(userAlice), e.ID))

	assert.True(t, repo.entries[e.ID].DeletionMark)
}

func TestListDefaultsToOwnedAccounts(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	require.NoError(t, svc.Create(authedCtx(userAlice), sampleEntry(acctAlice)))
	require.NoError(t, svc.Create(authedCtx(userBob), sampleEntry(acctBob)))

	result, err := svc.List(authedCtx(userAlice), DefaultFilter())

	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, acctAlice, result.Items[0].AccountID)
}

func TestListExplicitForeignAccountForbidden(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	filter := DefaultFilter()
	filter.AccountIDs = []id.ID{acctBob}
	_, err := svc.List(authedCtx(userAlice), filter)

	require.Error(t, err)
	assertCode(t, err, apperror.CodeForbidden)
}

func TestListNoOwnedAccountsEmptyResult(t *testing.T) {
	repo := newMemoryRepo()
	guard := &fakeGuard{owned: map[id.ID]id.ID{}}
	svc := NewService(repo, guard, &fakeCategories{exists: true}, noopTxManager{})

	result, err := svc.List(authedCtx(userAlice), DefaultFilter())

	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Zero(t, result.TotalCount)
}
