package metrics

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"costbook/internal/core/apperror"
	"costbook/internal/core/id"
	"costbook/internal/core/security"
	"costbook/internal/core/types"
	"costbook/pkg/logger"
)

var tracer = otel.Tracer("costbook/metrics")

// Service is the metrics façade: it authorizes the request, gathers
// the supplementary counts, assembles the event stream and runs the
// replay. Read-only; it returns either a complete report or a single
// authorization error, never partial results.
type Service struct {
	repo       Repository
	accounts   AccountGuard
	categories CategoryCatalog
	products   ProductDirectory
}

// NewService creates a new metrics service.
func NewService(repo Repository, accounts AccountGuard, categories CategoryCatalog, products ProductDirectory) *Service {
	return &Service{
		repo:       repo,
		accounts:   accounts,
		categories: categories,
		products:   products,
	}
}

func (s *Service) callerID(ctx context.Context) (id.ID, error) {
	raw := security.GetUserID(ctx)
	if raw == "" {
		return id.Nil(), apperror.NewUnauthorized("authentication required")
	}
	userID, err := id.Parse(raw)
	if err != nil {
		return id.Nil(), apperror.NewUnauthorized("invalid user identity")
	}
	return userID, nil
}

// ReportForAccount computes metrics for a single caller-owned account.
// The authorization check runs before any data is read and fails
// closed: an error verifying ownership denies the request.
func (s *Service) ReportForAccount(ctx context.Context, accountID id.ID, window Window) (*Report, error) {
	ctx, span := tracer.Start(ctx, "metrics.ReportForAccount",
		trace.WithAttributes(attribute.String("account_id", accountID.String())))
	defer span.End()

	userID, err := s.callerID(ctx)
	if err != nil {
		return nil, err
	}

	owned, err := s.accounts.OwnedBy(ctx, accountID, userID)
	if err != nil {
		return nil, apperror.NewForbidden("account access could not be verified").WithCause(err)
	}
	if !owned {
		return nil, apperror.NewForbidden("account belongs to another user")
	}

	// The replay still needs every owned account's sales: inventory is
	// shared, so sales on sibling accounts move the cost basis even
	// when only one account is reported.
	ownedIDs, err := s.accounts.ListOwnedIDs(ctx, userID)
	if err != nil {
		return nil, apperror.NewForbidden("account access could not be verified").WithCause(err)
	}

	return s.buildReport(ctx, ownedIDs, []id.ID{accountID}, ScopeAccount(accountID), window)
}

// ReportForAllAccounts computes metrics across every account the
// caller owns. A caller with zero accounts gets an all-zero report
// without any record-store queries.
func (s *Service) ReportForAllAccounts(ctx context.Context, window Window) (*Report, error) {
	ctx, span := tracer.Start(ctx, "metrics.ReportForAllAccounts")
	defer span.End()

	userID, err := s.callerID(ctx)
	if err != nil {
		return nil, err
	}

	ownedIDs, err := s.accounts.ListOwnedIDs(ctx, userID)
	if err != nil {
		return nil, apperror.NewForbidden("account access could not be verified").WithCause(err)
	}
	if len(ownedIDs) == 0 {
		return ZeroReport(), nil
	}

	return s.buildReport(ctx, ownedIDs, ownedIDs, ScopeAll(), window)
}

// buildReport runs the counts, the assembly and the replay, then
// shapes the result. replayAccounts feeds the event fetch (always the
// full owned set); countAccounts feeds the ledger line count (the
// scoped subset).
func (s *Service) buildReport(ctx context.Context, replayAccounts, countAccounts []id.ID, scope Scope, window Window) (*Report, error) {
	saleCategoryID, found, err := s.categories.FindSaleCategory(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		// No sale category configured: valid state, nothing to cost
		logger.Debug(ctx, "no sale category configured, returning zero report")
		return ZeroReport(), nil
	}

	entryCount, err := s.repo.CountEntries(ctx, countAccounts, window)
	if err != nil {
		return nil, err
	}
	purchaseCount, err := s.repo.CountPurchases(ctx, window)
	if err != nil {
		return nil, err
	}

	events, err := assembler{repo: s.repo}.assemble(ctx, replayAccounts, saleCategoryID, window.End)
	if err != nil {
		return nil, err
	}

	res := replay(events, window, scope)

	report, err := s.shapeReport(ctx, res)
	if err != nil {
		return nil, err
	}
	report.EntryCount = entryCount
	report.PurchaseCount = purchaseCount

	logger.Debug(ctx, "metrics report built",
		"events", len(events),
		"products", len(report.Products),
		"revenue", report.Revenue,
		"cost", report.Cost)
	return report, nil
}

// shapeReport resolves product names and turns the raw replay totals
// into the sorted, summed report shape. Sorting by name (ID as the
// tie-break) keeps the output byte-identical across calls.
func (s *Service) shapeReport(ctx context.Context, res replayResult) (*Report, error) {
	productIDs := make([]id.ID, 0, len(res.products))
	for productID := range res.products {
		productIDs = append(productIDs, productID)
	}

	names := map[id.ID]string{}
	if len(productIDs) > 0 {
		var err error
		names, err = s.products.NamesByIDs(ctx, productIDs)
		if err != nil {
			return nil, err
		}
	}

	report := ZeroReport()
	report.NegativeStock = res.negativeStock

	for productID, totals := range res.products {
		profit := types.SafeFloat64(totals.revenue - totals.cost)
		report.Products = append(report.Products, ProductMetrics{
			ProductID:    productID,
			ProductName:  names[productID],
			QuantitySold: totals.quantitySold,
			Revenue:      totals.revenue,
			Cost:         totals.cost,
			Profit:       profit,
		})
		report.Revenue = types.SafeFloat64(report.Revenue + totals.revenue)
		report.Cost = types.SafeFloat64(report.Cost + totals.cost)
	}
	report.Profit = types.SafeFloat64(report.Revenue - report.Cost)

	sort.Slice(report.Products, func(i, j int) bool {
		a, b := report.Products[i], report.Products[j]
		if a.ProductName != b.ProductName {
			return a.ProductName < b.ProductName
		}
		return a.ProductID.String() < b.ProductID.String()
	})

	return report, nil
}
