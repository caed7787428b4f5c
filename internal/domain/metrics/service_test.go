package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costbook/internal/core/apperror"
	"costbook/internal/core/id"
	"costbook/internal/core/security"
)

// --- in-memory fakes ---

type fakeRepo struct {
	purchases []PurchaseRecord
	sales     []SaleRecord

	entryCount    int64
	purchaseCount int64

	queried bool
	err     error
}

func (r *fakeRepo) PurchasesThrough(ctx context.Context, end time.Time) ([]PurchaseRecord, error) {
	r.queried = true
	if r.err != nil {
		return nil, r.err
	}
	var out []PurchaseRecord
	for _, p := range r.purchases {
		if !p.PurchasedAt.After(end) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeRepo) SalesThrough(ctx context.Context, accountIDs []id.ID, saleCategoryID id.ID, end time.Time) ([]SaleRecord, error) {
	r.queried = true
	if r.err != nil {
		return nil, r.err
	}
	allowed := make(map[id.ID]bool, len(accountIDs))
	for _, accountID := range accountIDs {
		allowed[accountID] = true
	}
	var out []SaleRecord
	for _, s := range r.sales {
		if allowed[s.AccountID] && !s.OccurredAt.After(end) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeRepo) CountEntries(ctx context.Context, accountIDs []id.ID, window Window) (int64, error) {
	r.queried = true
	return r.entryCount, r.err
}

func (r *fakeRepo) CountPurchases(ctx context.Context, window Window) (int64, error) {
	r.queried = true
	return r.purchaseCount, r.err
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
	saleID id.ID
	found  bool
	err    error
}

func (c *fakeCategories) FindSaleCategory(ctx context.Context) (id.ID, bool, error) {
	return c.saleID, c.found, c.err
}

type fakeProducts struct {
	names map[id.ID]string
}

func (p *fakeProducts) NamesByIDs(ctx context.Context, ids []id.ID) (map[id.ID]string, error) {
	out := make(map[id.ID]string, len(ids))
	for _, productID := range ids {
		if name, ok := p.names[productID]; ok {
			out[productID] = name
		}
	}
	return out, nil
}

// --- fixtures ---

var (
	userAlice  = id.MustParse("01890000-0000-7000-8000-000000000001")
	userBob    = id.MustParse("01890000-0000-7000-8000-000000000002")
	saleCatID  = id.MustParse("01890000-0000-7000-8000-0000000000ca")
	widgetID   = id.MustParse("01890000-0000-7000-8000-00000000000a")
	acctAlice1 = id.MustParse("01890000-0000-7000-8000-0000000000aa")
	acctAlice2 = id.MustParse("01890000-0000-7000-8000-0000000000ab")
	acctBob    = id.MustParse("01890000-0000-7000-8000-0000000000bb")
)

func authedCtx(userID id.ID) context.Context {
	return security.WithUserID(context.Background(), userID.String())
}

func fullYear() Window {
	return NewWindow(at("2024-01-01T00:00:00Z"), at("2024-12-31T23:59:59Z"))
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newTestService(repo *fakeRepo, guard *fakeGuard) *Service {
	return NewService(
		repo,
		guard,
		&fakeCategories{saleID: saleCatID, found: true},
		&fakeProducts{names: map[id.ID]string{widgetID: "Widget"}},
	)
}

// --- tests ---

func TestReportForAccountRequiresAuthentication(t *testing.T) {
	svc := newTestService(&fakeRepo{}, &fakeGuard{})

	_, err := svc.ReportForAccount(context.Background(), acctAlice1, fullYear())

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestReportForAccountForeignAccountForbidden(t *testing.T) {
	repo := &fakeRepo{}
	guard := &fakeGuard{owned: map[id.ID]id.ID{acctBob: userBob}}
	svc := newTestService(repo, guard)

	_, err := svc.ReportForAccount(authedCtx(userAlice), acctBob, fullYear())

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
	assert.False(t, repo.queried, "no data may be read before authorization passes")
}

func TestReportForAccountGuardErrorFailsClosed(t *testing.T) {
	repo := &fakeRepo{}
	guard := &fakeGuard{err: errors.New("directory offline")}
	svc := newTestService(repo, guard)

	_, err := svc.ReportForAccount(authedCtx(userAlice), acctAlice1, fullYear())

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
	assert.False(t, repo.queried)
}

func TestReportForAllAccountsZeroAccounts(t *testing.T) {
	repo := &fakeRepo{entryCount: 99, purchaseCount: 99}
	svc := newTestService(repo, &fakeGuard{owned: map[id.ID]id.ID{}})

	report, err := svc.ReportForAllAccounts(authedCtx(userAlice), fullYear())

	require.NoError(t, err)
	assert.Equal(t, ZeroReport(), report)
	assert.False(t, repo.queried, "zero owned accounts must not hit the record store")
}

func TestReportMissingSaleCategoryYieldsZeroReport(t *testing.T) {
	guard := &fakeGuard{owned: map[id.ID]id.ID{acctAlice1: userAlice}}
	svc := NewService(&fakeRepo{}, guard, &fakeCategories{found: false}, &fakeProducts{})

	report, err := svc.ReportForAccount(authedCtx(userAlice), acctAlice1, fullYear())

	require.NoError(t, err)
	assert.Equal(t, ZeroReport(), report)
}

func TestReportForAccountAttachesCountsAndTotals(t *testing.T) {
	repo := &fakeRepo{
		purchases: []PurchaseRecord{
			{ProductID: widgetID, PurchasedAt: at("2024-01-05T00:00:00Z"), Quantity: dec("10"), TotalCost: dec("40")},
		},
		sales: []SaleRecord{
			// Sale entries carry the signed ledger amount
			{ProductID: widgetID, AccountID: acctAlice1, OccurredAt: at("2024-02-01T00:00:00Z"), Amount: dec("-4"), UnitPrice: dec("9")},
		},
		entryCount:    7,
		purchaseCount: 1,
	}
	guard := &fakeGuard{owned: map[id.ID]id.ID{acctAlice1: userAlice}}
	svc := newTestService(repo, guard)

	report, err := svc.ReportForAccount(authedCtx(userAlice), acctAlice1, fullYear())

	require.NoError(t, err)
	assert.Equal(t, int64(7), report.EntryCount)
	assert.Equal(t, int64(1), report.PurchaseCount)
	assert.InDelta(t, 36, report.Revenue, 1e-9)
	assert.InDelta(t, 16, report.Cost, 1e-9)
	assert.InDelta(t, 20, report.Profit, 1e-9)

	require.Len(t, report.Products, 1)
	assert.Equal(t, "Widget", report.Products[0].ProductName)
	assert.InDelta(t, 4, report.Products[0].QuantitySold, 1e-9)
}

func TestReportBreakdownSumsMatchTotals(t *testing.T) {
	gadgetID := id.MustParse("01890000-0000-7000-8000-00000000000b")
	repo := &fakeRepo{
		purchases: []PurchaseRecord{
			{ProductID: widgetID, PurchasedAt: at("2024-01-01T00:00:00Z"), Quantity: dec("10"), TotalCost: dec("10")},
			{ProductID: gadgetID, PurchasedAt: at("2024-01-01T00:00:00Z"), Quantity: dec("5"), TotalCost: dec("25")},
		},
		sales: []SaleRecord{
			{ProductID: widgetID, AccountID: acctAlice1, OccurredAt: at("2024-02-01T00:00:00Z"), Amount: dec("-3"), UnitPrice: dec("2")},
			{ProductID: gadgetID, AccountID: acctAlice1, OccurredAt: at("2024-03-01T00:00:00Z"), Amount: dec("-2"), UnitPrice: dec("8")},
		},
	}
	guard := &fakeGuard{owned: map[id.ID]id.ID{acctAlice1: userAlice}}
	svc := newTestService(repo, guard)

	report, err := svc.ReportForAllAccounts(authedCtx(userAlice), fullYear())
	require.NoError(t, err)

	var revenue, cost, profit float64
	for _, p := range report.Products {
		revenue += p.Revenue
		cost += p.Cost
		profit += p.Profit
	}
	assert.InDelta(t, report.Revenue, revenue, 1e-9)
	assert.InDelta(t, report.Cost, cost, 1e-9)
	assert.InDelta(t, report.Profit, profit, 1e-9)
}

func TestReportForAccountReplaysSiblingAccountSales(t *testing.T) {
	// A sibling account's earlier sale consumes the cheap stock, so
	// the scoped account's sale must be costed at the later average.
	repo := &fakeRepo{
		purchases: []PurchaseRecord{
			{ProductID: widgetID, PurchasedAt: at("2024-01-01T00:00:00Z"), Quantity: dec("100"), TotalCost: dec("100")},
			{ProductID: widgetID, PurchasedAt: at("2024-03-01T00:00:00Z"), Quantity: dec("100"), TotalCost: dec("200")},
		},
		sales: []SaleRecord{
			{ProductID: widgetID, AccountID: acctAlice2, OccurredAt: at("2024-02-01T00:00:00Z"), Amount: dec("-100"), UnitPrice: dec("3")},
			{ProductID: widgetID, AccountID: acctAlice1, OccurredAt: at("2024-04-01T00:00:00Z"), Amount: dec("-10"), UnitPrice: dec("3")},
		},
	}
	guard := &fakeGuard{owned: map[id.ID]id.ID{
		acctAlice1: userAlice,
		acctAlice2: userAlice,
	}}
	svc := newTestService(repo, guard)

	report, err := svc.ReportForAccount(authedCtx(userAlice), acctAlice1, fullYear())
	require.NoError(t, err)

	// Only acctAlice1's sale is accumulated
	assert.InDelta(t, 30, report.Revenue, 1e-9)
	// Costed at 2.00 (post-churn), not the naive 1.50 blend
	assert.InDelta(t, 20, report.Cost, 1e-9)
}

func TestReportDeterministicBreakdownOrder(t *testing.T) {
	gadgetID := id.MustParse("01890000-0000-7000-8000-00000000000b")
	repo := &fakeRepo{
		purchases: []PurchaseRecord{
			{ProductID: widgetID, PurchasedAt: at("2024-01-01T00:00:00Z"), Quantity: dec("10"), TotalCost: dec("10")},
			{ProductID: gadgetID, PurchasedAt: at("2024-01-01T00:00:00Z"), Quantity: dec("10"), TotalCost: dec("10")},
		},
		sales: []SaleRecord{
			{ProductID: widgetID, AccountID: acctAlice1, OccurredAt: at("2024-02-01T00:00:00Z"), Amount: dec("-1"), UnitPrice: dec("2")},
			{ProductID: gadgetID, AccountID: acctAlice1, OccurredAt: at("2024-02-01T00:00:00Z"), Amount: dec("-1"), UnitPrice: dec("2")},
		},
	}
	guard := &fakeGuard{owned: map[id.ID]id.ID{acctAlice1: userAlice}}
	svc := NewService(repo, guard, &fakeCategories{saleID: saleCatID, found: true}, &fakeProducts{
		names: map[id.ID]string{widgetID: "Widget", gadgetID: "Gadget"},
	})

	first, err := svc.ReportForAllAccounts(authedCtx(userAlice), fullYear())
	require.NoError(t, err)
	second, err := svc.ReportForAllAccounts(authedCtx(userAlice), fullYear())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first.Products, 2)
	assert.Equal(t, "Gadget", first.Products[0].ProductName)
	assert.Equal(t, "Widget", first.Products[1].ProductName)
}
