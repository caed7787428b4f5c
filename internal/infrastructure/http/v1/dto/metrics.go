package dto

import (
	"time"

	"costbook/internal/core/apperror"
	"costbook/internal/domain/metrics"
)

// ReportWindowRequest contains the reporting window query parameters.
// Both bounds are inclusive instants; a missing start opens the window
// at the beginning of time, a missing end closes it now.
type ReportWindowRequest struct {
	From *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To   *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// ToWindow converts query parameters to a reporting window.
func (r *ReportWindowRequest) ToWindow(now time.Time) (metrics.Window, error) {
	start := time.Time{}
	if r.From != nil {
		start = *r.From
	}

	end := now
	if r.To != nil {
		end = *r.To
	}

	if end.Before(start) {
		return metrics.Window{}, apperror.NewValidation("window end precedes start").
			WithDetail("from", start).
			WithDetail("to", end)
	}

	return metrics.NewWindow(start, end), nil
}

// ProductMetricsResponse is one line of the report breakdown.
type ProductMetricsResponse struct {
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	QuantitySold float64 `json:"quantitySold"`
	Revenue      float64 `json:"revenue"`
	Cost         float64 `json:"cost"`
	Profit       float64 `json:"profit"`
}

// ReportResponse is the response body for a metrics report.
type ReportResponse struct {
	Revenue       float64                  `json:"revenue"`
	Cost          float64                  `json:"cost"`
	Profit        float64                  `json:"profit"`
	EntryCount    int64                    `json:"entryCount"`
	PurchaseCount int64                    `json:"purchaseCount"`
	NegativeStock bool                     `json:"negativeStock"`
	Products      []ProductMetricsResponse `json:"products"`
}

// FromReport creates response DTO from a domain report.
func FromReport(r *metrics.Report) *ReportResponse {
	products := make([]ProductMetricsResponse, len(r.Products))
	for i, p := range r.Products {
		products[i] = ProductMetricsResponse{
			ProductID:    p.ProductID.String(),
			ProductName:  p.ProductName,
			QuantitySold: p.QuantitySold,
			Revenue:      p.Revenue,
			Cost:         p.Cost,
			Profit:       p.Profit,
		}
	}

	return &ReportResponse{
		Revenue:       r.Revenue,
		Cost:          r.Cost,
		Profit:        r.Profit,
		EntryCount:    r.EntryCount,
		PurchaseCount: r.PurchaseCount,
		NegativeStock: r.NegativeStock,
		Products:      products,
	}
}
