package metrics

import (
	"costbook/internal/core/id"
	"costbook/internal/core/types"
)

// inventoryState is the per-product cost basis maintained during one
// replay. Created lazily on the first event that references the
// product, discarded when the replay returns.
//
// Invariants after every update:
//   - onHand != 0 implies lastAvgCost == onHandCost / onHand
//   - onHand == 0 implies onHandCost == 0, lastAvgCost retained
type inventoryState struct {
	onHand      float64
	onHandCost  float64
	lastAvgCost float64
}

// productTotals accumulates sale events that fall inside the window
// and scope. Independent from inventoryState, which every event
// updates regardless of window or scope.
type productTotals struct {
	quantitySold float64
	revenue      float64
	cost         float64
}

// replayResult is the raw engine output before product names and
// counts are attached.
type replayResult struct {
	products      map[id.ID]*productTotals
	negativeStock bool
}

// replay folds the event list into per-product totals.
//
// The event list may arrive in any order; replay sorts it first
// (timestamp ascending, purchase before sale on ties). Every event
// moves the per-product inventory state unconditionally so later
// sales see the correct post-sale stock; only sales inside the window
// and scope contribute to the accumulated totals. Pure: the input
// slice contents are never mutated, and all state is call-local.
func replay(events []Event, window Window, scope Scope) replayResult {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sortEvents(sorted)

	states := make(map[id.ID]*inventoryState)
	result := replayResult{products: make(map[id.ID]*productTotals)}

	for _, ev := range sorted {
		st := states[ev.ProductID]
		if st == nil {
			st = &inventoryState{}
			states[ev.ProductID] = st
		}

		switch ev.Kind {
		case KindPurchase:
			st.onHand += ev.Quantity
			st.onHandCost += ev.TotalCost
			if st.onHand == 0 {
				// A purchase can land exactly on zero when it refills
				// negative stock; the cost basis resets with it and the
				// last average stays sticky.
				st.onHandCost = 0
			} else {
				st.lastAvgCost = types.SafeFloat64(st.onHandCost / st.onHand)
			}

		case KindSale:
			// Cost in effect at the moment of the sale: current
			// average when stock is non-zero, otherwise the sticky
			// last known average.
			avgApplied := st.lastAvgCost
			if st.onHand != 0 {
				avgApplied = types.SafeFloat64(st.onHandCost / st.onHand)
			}
			saleCost := types.SafeFloat64(ev.Quantity * avgApplied)

			st.onHand -= ev.Quantity
			st.onHandCost -= saleCost
			st.lastAvgCost = avgApplied

			switch {
			case st.onHand == 0:
				// Avoid residual floating-point dust at exactly zero
				st.onHandCost = 0
			case st.onHand < 0:
				result.negativeStock = true
				// Keep the cost basis proportional to the negative quantity
				st.onHandCost = types.SafeFloat64(st.onHand * avgApplied)
			}

			if window.Contains(ev.OccurredAt) && scope.Includes(ev.AccountID) {
				totals := result.products[ev.ProductID]
				if totals == nil {
					totals = &productTotals{}
					result.products[ev.ProductID] = totals
				}
				totals.quantitySold = types.SafeFloat64(totals.quantitySold + ev.Quantity)
				totals.revenue = types.SafeFloat64(totals.revenue + ev.Revenue)
				totals.cost = types.SafeFloat64(totals.cost + saleCost)
			}
		}
	}

	return result
}
