// Package metrics implements the temporal weighted-average costing
// and metrics-replay engine. A report replays the full purchase and
// sale history up to its end instant, maintaining a moving average
// cost basis per product, and accumulates revenue, cost of goods sold
// and profit for the events inside the requested window and scope.
package metrics

import (
	"time"

	"costbook/internal/core/id"
)

// Window is an inclusive reporting date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow creates a reporting window.
func NewWindow(start, end time.Time) Window {
	return Window{Start: start, End: end}
}

// Contains reports whether t falls inside the window (inclusive).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Scope selects which sale events are accumulated into totals.
// It never affects which events are replayed for cost-basis purposes.
type Scope struct {
	accountID id.ID
	all       bool
}

// ScopeAccount accumulates sales of a single account.
func ScopeAccount(accountID id.ID) Scope {
	return Scope{accountID: accountID}
}

// ScopeAll accumulates sales of every account in the event stream.
func ScopeAll() Scope {
	return Scope{all: true}
}

// Includes reports whether a sale on the given account is in scope.
func (s Scope) Includes(accountID id.ID) bool {
	return s.all || s.accountID == accountID
}

// ProductMetrics is the per-product slice of a report.
type ProductMetrics struct {
	ProductID    id.ID   `json:"productId"`
	ProductName  string  `json:"productName"`
	QuantitySold float64 `json:"quantitySold"`
	Revenue      float64 `json:"revenue"`
	Cost         float64 `json:"cost"`
	Profit       float64 `json:"profit"`
}

// Report is the immutable result of one metrics computation.
// Top-level revenue, cost and profit always equal the sums over
// the product breakdown.
type Report struct {
	Revenue float64 `json:"revenue"`
	Cost    float64 `json:"cost"`
	Profit  float64 `json:"profit"`

	// EntryCount is the number of ledger lines (any category) in the
	// window for the scoped accounts
	EntryCount int64 `json:"entryCount"`

	// PurchaseCount is the number of purchase records in the window,
	// organization-wide
	PurchaseCount int64 `json:"purchaseCount"`

	// NegativeStock signals that some sale drove a product's on-hand
	// quantity below zero during the replay. Informational only.
	NegativeStock bool `json:"negativeStock"`

	Products []ProductMetrics `json:"products"`
}

// ZeroReport returns an all-zero report with an empty breakdown.
func ZeroReport() *Report {
	return &Report{Products: []ProductMetrics{}}
}
