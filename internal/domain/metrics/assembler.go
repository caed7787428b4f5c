package metrics

import (
	"context"
	"time"

	"costbook/internal/core/id"
	"costbook/internal/core/types"
)

// assembler turns stored purchase and sale rows into the normalized
// event stream the replay consumes. It does not order the events;
// ordering is the replay's job.
type assembler struct {
	repo Repository
}

// assemble fetches everything the replay needs to correctly cost
// sales up to end: the full purchase history and the full sale
// history of the given accounts, both unbounded at the start.
func (a assembler) assemble(ctx context.Context, accountIDs []id.ID, saleCategoryID id.ID, end time.Time) ([]Event, error) {
	purchases, err := a.repo.PurchasesThrough(ctx, end)
	if err != nil {
		return nil, err
	}
	sales, err := a.repo.SalesThrough(ctx, accountIDs, saleCategoryID, end)
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(purchases)+len(sales))
	for _, p := range purchases {
		events = append(events, Event{
			Kind:       KindPurchase,
			ProductID:  p.ProductID,
			OccurredAt: p.PurchasedAt,
			Quantity:   types.ToFloat64(p.Quantity),
			TotalCost:  types.ToFloat64(p.TotalCost),
		})
	}
	for _, s := range sales {
		// Quantity and revenue are the absolute values of the signed
		// ledger amount; the sign convention stays in the ledger.
		events = append(events, Event{
			Kind:       KindSale,
			ProductID:  s.ProductID,
			AccountID:  s.AccountID,
			OccurredAt: s.OccurredAt,
			Quantity:   types.ToFloat64(s.Amount.Abs()),
			Revenue:    types.ToFloat64(s.Amount.Mul(s.UnitPrice).Abs()),
		})
	}
	return events, nil
}
