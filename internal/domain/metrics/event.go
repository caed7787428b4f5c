package metrics

import (
	"sort"
	"time"

	"costbook/internal/core/id"
)

// EventKind tags the two event variants of the replay stream.
type EventKind int

const (
	KindPurchase EventKind = iota
	KindSale
)

// Event is one normalized point on the costing timeline. Purchases
// carry TotalCost; sales carry AccountID and Revenue. Quantities and
// amounts are already unsigned here, derivation from the signed
// ledger amount happens at assembly.
type Event struct {
	Kind       EventKind
	ProductID  id.ID
	AccountID  id.ID // sales only
	OccurredAt time.Time
	Quantity   float64
	TotalCost  float64 // purchases only
	Revenue    float64 // sales only
}

// sortEvents orders events by timestamp ascending. On an exact
// timestamp tie a purchase sorts before a sale: stock arriving at an
// instant is available to a sale recorded at that same instant.
// Events otherwise equal keep their insertion order from the fetch,
// which makes same-instant sales across accounts deterministic.
func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.OccurredAt.Equal(b.OccurredAt) {
			return a.OccurredAt.Before(b.OccurredAt)
		}
		return a.Kind == KindPurchase && b.Kind == KindSale
	})
}
