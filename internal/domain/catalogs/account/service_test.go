package account

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costbook/internal/core/apperror"
	"costbook/internal/core/id"
	"costbook/internal/core/security"
	"costbook/internal/domain"
)

// --- in-memory fakes ---

type memoryRepo struct {
	accounts map[id.ID]*Account
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{accounts: make(map[id.ID]*Account)}
}

func (r *memoryRepo) Create(ctx context.Context, a *Account) error {
	stored := *a
	r.accounts[a.ID] = &stored
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, accountID id.ID) (*Account, error) {
	a, ok := r.accounts[accountID]
	if !ok {
		return nil, apperror.NewNotFound("account", accountID.String())
	}
	found := *a
	return &found, nil
}

func (r *memoryRepo) GetByCode(ctx context.Context, code string) (*Account, error) {
	for _, a := range r.accounts {
		if a.Code == code {
			found := *a
			return &found, nil
		}
	}
	return nil, apperror.NewNotFound("account", code)
}

func (r *memoryRepo) Update(ctx context.Context, a *Account) error {
	if _, ok := r.accounts[a.ID]; !ok {
		return apperror.NewNotFound("account", a.ID.String())
	}
	stored := *a
	r.accounts[a.ID] = &stored
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, accountID id.ID) error {
	return r.SetDeletionMark(ctx, accountID, true)
}

func (r *memoryRepo) SetDeletionMark(ctx context.Context, accountID id.ID, marked bool) error {
	a, ok := r.accounts[accountID]
	if !ok {
		return apperror.NewNotFound("account", accountID.String())
	}
	a.DeletionMark = marked
	return nil
}

func (r *memoryRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Account], error) {
	result := domain.ListResult[*Account]{
		Items:  []*Account{},
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	for _, a := range r.accounts {
		if filter.OwnerID != nil && a.OwnerID != *filter.OwnerID {
			continue
		}
		if a.DeletionMark && !filter.IncludeDeleted {
			continue
		}
		found := *a
		result.Items = append(result.Items, &found)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

func (r *memoryRepo) Exists(ctx context.Context, accountID id.ID) (bool, error) {
	_, ok := r.accounts[accountID]
	return ok, nil
}

func (r *memoryRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	for _, a := range r.accounts {
		if a.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) OwnedBy(ctx context.Context, accountID, userID id.ID) (bool, error) {
	a, ok := r.accounts[accountID]
	if !ok || a.DeletionMark {
		return false, nil
	}
	return a.OwnerID == userID, nil
}

func (r *memoryRepo) ListOwnedIDs(ctx context.Context, userID id.ID) ([]id.ID, error) {
	var out []id.ID
	for accountID, a := range r.accounts {
		if a.OwnerID == userID && !a.DeletionMark {
			out = append(out, accountID)
		}
	}
	return out, nil
}

type noopTxManager struct{}

func (noopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- fixtures ---

var (
	userAlice = id.MustParse("01890000-0000-7000-8000-000000000001")
	userBob   = id.MustParse("01890000-0000-7000-8000-000000000002")
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

// --- tests ---

func TestCreateRequiresAuthentication(t *testing.T) {
	svc := NewService(newMemoryRepo(), noopTxManager{})

	err := svc.Create(context.Background(), NewAccount("AC-1", "Main", id.Nil()))

	require.Error(t, err)
	assertCode(t, err, apperror.CodeUnauthorized)
}

func TestCreateAssignsCallerAsOwner(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, noopTxManager{})

	acc := NewAccount("AC-1", "Main", id.Nil())
	require.NoError(t, svc.Create(authedCtx(userAlice), acc))

	assert.Equal(t, userAlice, acc.OwnerID)
	assert.Equal(t, userAlice, repo.accounts[acc.ID].OwnerID)
}

func TestCreateGeneratesCodeWhenAbsent(t *testing.T) {
	svc := NewService(newMemoryRepo(), noopTxManager{})

	acc := NewAccount("", "Main", id.Nil())
	require.NoError(t, svc.Create(authedCtx(userAlice), acc))

	assert.True(t, strings.HasPrefix(acc.Code, "AC-"))
	assert.Len(t, acc.Code, 11)
}

func TestGetByIDForeignAccountForbidden(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, noopTxManager{})

	acc := NewAccount("AC-1", "Main", id.Nil())
	require.NoError(t, svc.Create(authedCtx(userAlice), acc))

	_, err := svc.GetByID(authedCtx(userBob), acc.ID)

	require.Error(t, err)
	assertCode(t, err, apperror.CodeForbidden)
}

func TestUpdateCannotReassignOwner(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, noopTxManager{})

	acc := NewAccount("AC-1", "Main", id.Nil())
	require.NoError(t, svc.Create(authedCtx(userAlice), acc))

	changed := *acc
	changed.Name = "Renamed"
	changed.OwnerID = userBob
	require.NoError(t, svc.Update(authedCtx(userAlice), &changed))

	assert.Equal(t, userAlice, changed.OwnerID)
	assert.Equal(t, userAlice, repo.accounts[acc.ID].OwnerID)
	assert.Equal(t, "Renamed", repo.accounts[acc.ID].Name)
}

func TestDeleteSoftDeletes(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, noopTxManager{})

	acc := NewAccount("AC-1", "Main", id.Nil())
	require.NoError(t, svc.Create(authedCtx(userAlice), acc))
	require.NoError(t, svc.Delete(authedCtx(userAlice), acc.ID))

	assert.True(t, repo.accounts[acc.ID].DeletionMark)

	// Soft-deleted accounts no longer count as owned
	owned, err := svc.OwnedBy(context.Background(), acc.ID, userAlice)
	require.NoError(t, err)
	assert.False(t, owned)
}

func TestListScopedToCaller(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, noopTxManager{})

	require.NoError(t, svc.Create(authedCtx(userAlice), NewAccount("AC-1", "Alice main", id.Nil())))
	require.NoError(t, svc.Create(authedCtx(userBob), NewAccount("AC-2", "Bob main", id.Nil())))

	result, err := svc.List(authedCtx(userAlice), domain.DefaultListFilter())

	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Alice main", result.Items[0].Name)
}
