package category

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costbook/internal/core/apperror"
	"costbook/internal/core/id"
	"costbook/internal/domain"
)

// --- in-memory fake ---

// memoryRepo keeps categories in insertion order so FindByKind can
// honor the repository contract (oldest first).
type memoryRepo struct {
	categories []*Category
}

func (r *memoryRepo) Create(ctx context.Context, c *Category) error {
	stored := *c
	r.categories = append(r.categories, &stored)
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, categoryID id.ID) (*Category, error) {
	for _, c := range r.categories {
		if c.ID == categoryID {
			found := *c
			return &found, nil
		}
	}
	return nil, apperror.NewNotFound("category", categoryID.String())
}

func (r *memoryRepo) GetByCode(ctx context.Context, code string) (*Category, error) {
	for _, c := range r.categories {
		if c.Code == code {
			found := *c
			return &found, nil
		}
	}
	return nil, apperror.NewNotFound("category", code)
}

func (r *memoryRepo) Update(ctx context.Context, c *Category) error {
	for i, existing := range r.categories {
		if existing.ID == c.ID {
			stored := *c
			r.categories[i] = &stored
			return nil
		}
	}
	return apperror.NewNotFound("category", c.ID.String())
}

func (r *memoryRepo) Delete(ctx context.Context, categoryID id.ID) error {
	return r.SetDeletionMark(ctx, categoryID, true)
}

func (r *memoryRepo) SetDeletionMark(ctx context.Context, categoryID id.ID, marked bool) error {
	for _, c := range r.categories {
		if c.ID == categoryID {
			c.DeletionMark = marked
			return nil
		}
	}
	return apperror.NewNotFound("category", categoryID.String())
}

func (r *memoryRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Category], error) {
	result := domain.ListResult[*Category]{
		Items:  []*Category{},
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	for _, c := range r.categories {
		if c.DeletionMark && !filter.IncludeDeleted {
			continue
		}
		found := *c
		result.Items = append(result.Items, &found)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

func (r *memoryRepo) Exists(ctx context.Context, categoryID id.ID) (bool, error) {
	for _, c := range r.categories {
		if c.ID == categoryID && !c.DeletionMark {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	for _, c := range r.categories {
		if c.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) FindByKind(ctx context.Context, kind Kind) ([]*Category, error) {
	var out []*Category
	for _, c := range r.categories {
		if c.Kind == kind && !c.DeletionMark {
			found := *c
			out = append(out, &found)
		}
	}
	return out, nil
}

type noopTxManager struct{}

func (noopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- tests ---

func TestFindSaleCategoryOldestWins(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, noopTxManager{})

	first := NewCategory("CT-1", "Sales", KindSale)
	require.NoError(t, repo.Create(context.Background(), first))
	require.NoError(t, repo.Create(context.Background(), NewCategory("CT-2", "Purchases", KindPurchase)))
	require.NoError(t, repo.Create(context.Background(), NewCategory("CT-3", "Sales (legacy)", KindSale)))

	saleID, found, err := svc.FindSaleCategory(context.Background())

	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, first.ID, saleID)
}

func TestFindSaleCategoryAbsentIsNotAnError(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, noopTxManager{})

	require.NoError(t, repo.Create(context.Background(), NewCategory("CT-1", "Purchases", KindPurchase)))

	saleID, found, err := svc.FindSaleCategory(context.Background())

	require.NoError(t, err)
	assert.False(t, found)
	assert.True(t, id.IsNil(saleID))
}

func TestCreateGeneratesCodeWhenAbsent(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, noopTxManager{})

	cat := NewCategory("", "Adjustments", KindAdjustment)
	require.NoError(t, svc.Create(context.Background(), cat))

	assert.True(t, strings.HasPrefix(cat.Code, "CT-"))
	assert.Len(t, cat.Code, 11)
}
