package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costbook/internal/core/id"
)

var (
	productA = id.MustParse("01890000-0000-7000-8000-00000000000a")
	productB = id.MustParse("01890000-0000-7000-8000-00000000000b")
	accountX = id.MustParse("01890000-0000-7000-8000-0000000000aa")
	accountY = id.MustParse("01890000-0000-7000-8000-0000000000bb")
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func purchaseEv(productID id.ID, ts time.Time, qty, totalCost float64) Event {
	return Event{
		Kind:       KindPurchase,
		ProductID:  productID,
		OccurredAt: ts,
		Quantity:   qty,
		TotalCost:  totalCost,
	}
}

func saleEv(productID, accountID id.ID, ts time.Time, qty, revenue float64) Event {
	return Event{
		Kind:       KindSale,
		ProductID:  productID,
		AccountID:  accountID,
		OccurredAt: ts,
		Quantity:   qty,
		Revenue:    revenue,
	}
}

func totalsFor(t *testing.T, res replayResult, productID id.ID) productTotals {
	t.Helper()
	totals := res.products[productID]
	require.NotNil(t, totals, "expected accumulated totals for product")
	return *totals
}

func TestReplaySingleLot(t *testing.T) {
	window := NewWindow(at("2024-01-01T00:00:00Z"), at("2024-12-31T23:59:59Z"))
	events := []Event{
		purchaseEv(productA, at("2024-02-01T10:00:00Z"), 10, 40),
		saleEv(productA, accountX, at("2024-03-01T10:00:00Z"), 10, 90),
	}

	res := replay(events, window, ScopeAll())

	totals := totalsFor(t, res, productA)
	assert.InDelta(t, 10, totals.quantitySold, 1e-9)
	assert.InDelta(t, 90, totals.revenue, 1e-9)
	assert.InDelta(t, 40, totals.cost, 1e-9)
	assert.False(t, res.negativeStock)
}

func TestReplayWeightedAverage(t *testing.T) {
	// 10 units at 1.00 plus 30 units at 2.00 averages 1.75 per unit
	window := NewWindow(at("2024-01-01T00:00:00Z"), at("2024-12-31T23:59:59Z"))
	events := []Event{
		purchaseEv(productA, at("2024-02-01T00:00:00Z"), 10, 10),
		purchaseEv(productA, at("2024-02-15T00:00:00Z"), 30, 60),
		saleEv(productA, accountX, at("2024-03-01T00:00:00Z"), 4, 20),
	}

	res := replay(events, window, ScopeAll())

	totals := totalsFor(t, res, productA)
	assert.InDelta(t, 4*1.75, totals.cost, 1e-9)
}

func TestReplayTieBreakPurchaseFirst(t *testing.T) {
	// Same instant: without purchase-first ordering the sale would be
	// costed at the old 1.00 average instead of 1.50.
	instant := at("2024-06-01T12:00:00Z")
	window := NewWindow(at("2024-01-01T00:00:00Z"), at("2024-12-31T23:59:59Z"))
	events := []Event{
		saleEv(productA, accountX, instant, 10, 50),
		purchaseEv(productA, instant, 10, 20),
		purchaseEv(productA, at("2024-05-01T00:00:00Z"), 10, 10),
	}

	res := replay(events, window, ScopeAll())

	totals := totalsFor(t, res, productA)
	assert.InDelta(t, 15, totals.cost, 1e-9, "sale must see the same-instant purchase")
}

func TestReplayPurchaseAfterWindowEndIgnored(t *testing.T) {
	window := NewWindow(at("2024-01-01T00:00:00Z"), at("2024-06-30T23:59:59Z"))
	events := []Event{
		purchaseEv(productA, at("2024-02-01T00:00:00Z"), 10, 10),
		saleEv(productA, accountX, at("2024-03-01T00:00:00Z"), 5, 25),
		// After the window end: must not change the in-window cost
		purchaseEv(productA, at("2024-09-01T00:00:00Z"), 100, 900),
	}

	res := replay(events, window, ScopeAll())

	totals := totalsFor(t, res, productA)
	assert.InDelta(t, 5, totals.cost, 1e-9)
}

func TestReplayStickyAverageAtZeroStock(t *testing.T) {
	window := NewWindow(at("2024-01-01T00:00:00Z"), at("2024-12-31T23:59:59Z"))
	events := []Event{
		purchaseEv(productA, at("2024-02-01T00:00:00Z"), 10, 20),
		saleEv(productA, accountX, at("2024-03-01T00:00:00Z"), 10, 60),
		// Out of stock now, but the 2.00 average is sticky
		saleEv(productA, accountX, at("2024-04-01T00:00:00Z"), 5, 30),
	}

	res := replay(events, window, ScopeAll())

	totals := totalsFor(t, res, productA)
	assert.InDelta(t, 20+10, totals.cost, 1e-9)
	assert.True(t, res.negativeStock)
}

func TestReplayNegativeStockTolerance(t *testing.T) {
	window := NewWindow(at("2024-01-01T00:00:00Z"), at("2024-12-31T23:59:59Z"))
	events := []Event{
		purchaseEv(productA, at("2024-02-01T00:00:00Z"), 5, 10),
		// Sells more than on hand: flagged, costed at the 2.00 average
		saleEv(productA, accountX, at("2024-03-01T00:00:00Z"), 8, 40),
	}

	res := replay(events, window, ScopeAll())

	totals := totalsFor(t, res, productA)
	assert.True(t, res.negativeStock)
	assert.InDelta(t, 16, totals.cost, 1e-9)
}

func TestReplayWindowGatesAccumulationNotState(t *testing.T) {
	// A pre-window sale must move the cost basis but stay out of the totals.
	window := NewWindow(at("2024-06-01T00:00:00Z"), at("2024-06-30T23:59:59Z"))
	events := []Event{
		purchaseEv(productA, at("2024-01-01T00:00:00Z"), 100, 100),
		saleEv(productA, accountX, at("2024-02-01T00:00:00Z"), 100, 300),
		purchaseEv(productA, at("2024-05-01T00:00:00Z"), 100, 200),
		saleEv(productA, accountX, at("2024-06-15T00:00:00Z"), 10, 30),
	}

	res := replay(events, window, ScopeAll())

	totals := totalsFor(t, res, productA)
	assert.InDelta(t, 10, totals.quantitySold, 1e-9)
	assert.InDelta(t, 30, totals.revenue, 1e-9)
	// Average after the pre-window churn is 2.00, not 1.50
	assert.InDelta(t, 20, totals.cost, 1e-9)
}

func TestReplayScopeGatesAccumulationNotState(t *testing.T) {
	window := NewWindow(at("2024-01-01T00:00:00Z"), at("2024-12-31T23:59:59Z"))
	events := []Event{
		purchaseEv(productA, at("2024-01-01T00:00:00Z"), 100, 100),
		// Another account's sale consumes stock before the scoped one
		saleEv(productA, accountY, at("2024-02-01T00:00:00Z"), 100, 300),
		purchaseEv(productA, at("2024-03-01T00:00:00Z"), 100, 200),
		saleEv(productA, accountX, at("2024-04-01T00:00:00Z"), 10, 30),
	}

	res := replay(events, window, ScopeAccount(accountX))

	totals := totalsFor(t, res, productA)
	assert.InDelta(t, 10, totals.quantitySold, 1e-9)
	// Only accountX accumulated, but costed at the post-churn 2.00 average
	assert.InDelta(t, 20, totals.cost, 1e-9)
	_, hasOther := res.products[productB]
	assert.False(t, hasOther)
}

func TestReplayDeterminism(t *testing.T) {
	window := NewWindow(at("2024-01-01T00:00:00Z"), at("2024-12-31T23:59:59Z"))
	events := []Event{
		purchaseEv(productA, at("2024-02-01T00:00:00Z"), 10, 10),
		purchaseEv(productB, at("2024-02-01T00:00:00Z"), 5, 25),
		saleEv(productA, accountX, at("2024-03-01T00:00:00Z"), 4, 12),
		saleEv(productB, accountY, at("2024-03-02T00:00:00Z"), 2, 14),
		purchaseEv(productA, at("2024-04-01T00:00:00Z"), 10, 30),
		saleEv(productA, accountX, at("2024-05-01T00:00:00Z"), 6, 24),
	}

	// The input list arrives pre-shuffled; replay must not care.
	shuffled := []Event{events[5], events[2], events[0], events[4], events[1], events[3]}

	first := replay(events, window, ScopeAll())
	second := replay(shuffled, window, ScopeAll())

	require.Len(t, second.products, len(first.products))
	for productID, totals := range first.products {
		other := second.products[productID]
		require.NotNil(t, other)
		assert.Equal(t, *totals, *other)
	}
	assert.Equal(t, first.negativeStock, second.negativeStock)
}

func TestReplayInputNotMutated(t *testing.T) {
	window := NewWindow(at("2024-01-01T00:00:00Z"), at("2024-12-31T23:59:59Z"))
	events := []Event{
		saleEv(productA, accountX, at("2024-03-01T00:00:00Z"), 4, 12),
		purchaseEv(productA, at("2024-02-01T00:00:00Z"), 10, 10),
	}
	snapshot := make([]Event, len(events))
	copy(snapshot, events)

	replay(events, window, ScopeAll())

	assert.Equal(t, snapshot, events)
}

func TestReplayDocumentedScenario(t *testing.T) {
	// Purchase 100 @ 1.00 in November, 100 @ 2.00 in January;
	// sell 50 @ 3.00 in December and 50 @ 3.00 in January.
	nov := purchaseEv(productA, at("2023-11-15T00:00:00Z"), 100, 100)
	jan := purchaseEv(productA, at("2024-01-05T00:00:00Z"), 100, 200)
	decSale := saleEv(productA, accountX, at("2023-12-10T00:00:00Z"), 50, 150)
	janSale := saleEv(productA, accountX, at("2024-01-20T00:00:00Z"), 50, 150)
	events := []Event{nov, jan, decSale, janSale}

	december := NewWindow(at("2023-12-01T00:00:00Z"), at("2023-12-31T23:59:59Z"))
	january := NewWindow(at("2024-01-01T00:00:00Z"), at("2024-01-31T23:59:59Z"))
	combined := NewWindow(at("2023-12-01T00:00:00Z"), at("2024-01-31T23:59:59Z"))

	tests := []struct {
		name         string
		window       Window
		wantRevenue  float64
		wantCost     float64
		wantQuantity float64
	}{
		{"december alone", december, 150, 50, 50},
		{"january alone", january, 150, 250.0 / 3.0, 50},
		{"december and january", combined, 300, 400.0 / 3.0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := replay(events, tt.window, ScopeAll())
			totals := totalsFor(t, res, productA)
			assert.InDelta(t, tt.wantRevenue, totals.revenue, 1e-9)
			assert.InDelta(t, tt.wantCost, totals.cost, 0.01)
			assert.InDelta(t, tt.wantQuantity, totals.quantitySold, 1e-9)
		})
	}
}

func TestReplayPurchaseRefillingToZeroResetsCostBasis(t *testing.T) {
	// Oversell into negative stock, refill exactly to zero, then buy a
	// fresh lot. The refill must clear the cost basis so the fresh lot
	// alone defines the new average (5.00, not a blend with leftovers).
	window := NewWindow(at("2024-04-01T00:00:00Z"), at("2024-12-31T23:59:59Z"))
	events := []Event{
		purchaseEv(productA, at("2024-01-01T00:00:00Z"), 10, 10),
		saleEv(productA, accountX, at("2024-01-15T00:00:00Z"), 20, 60),
		purchaseEv(productA, at("2024-02-01T00:00:00Z"), 10, 30),
		purchaseEv(productA, at("2024-04-10T00:00:00Z"), 10, 50),
		saleEv(productA, accountX, at("2024-04-20T00:00:00Z"), 10, 90),
	}

	res := replay(events, window, ScopeAll())

	totals := totalsFor(t, res, productA)
	assert.InDelta(t, 50, totals.cost, 1e-9)
	assert.True(t, res.negativeStock)
}

func TestReplayCorruptEventDoesNotPoisonReport(t *testing.T) {
	window := NewWindow(at("2024-01-01T00:00:00Z"), at("2024-12-31T23:59:59Z"))
	events := []Event{
		// Corrupt product: NaN purchase quantity, infinite sale revenue
		purchaseEv(productA, at("2024-02-01T00:00:00Z"), math.NaN(), 10),
		saleEv(productA, accountX, at("2024-03-01T00:00:00Z"), 5, math.Inf(1)),
		// Healthy product replayed in the same pass
		purchaseEv(productB, at("2024-02-01T00:00:00Z"), 10, 40),
		saleEv(productB, accountX, at("2024-03-01T00:00:00Z"), 10, 90),
	}

	res := replay(events, window, ScopeAll())

	corrupt := totalsFor(t, res, productA)
	for name, v := range map[string]float64{
		"quantity": corrupt.quantitySold,
		"revenue":  corrupt.revenue,
		"cost":     corrupt.cost,
	} {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%s must stay finite", name)
	}

	healthy := totalsFor(t, res, productB)
	assert.InDelta(t, 10, healthy.quantitySold, 1e-9)
	assert.InDelta(t, 90, healthy.revenue, 1e-9)
	assert.InDelta(t, 40, healthy.cost, 1e-9)
}

func TestSortEventsStableForEqualSales(t *testing.T) {
	instant := at("2024-06-01T00:00:00Z")
	events := []Event{
		saleEv(productA, accountX, instant, 1, 1),
		saleEv(productA, accountY, instant, 2, 2),
		saleEv(productA, accountX, instant, 3, 3),
	}

	sortEvents(events)

	// Equal-instant sales keep their insertion order
	assert.Equal(t, float64(1), events[0].Quantity)
	assert.Equal(t, float64(2), events[1].Quantity)
	assert.Equal(t, float64(3), events[2].Quantity)
}
