package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"costbook/internal/core/apperror"
	"costbook/internal/core/id"
	"costbook/internal/domain/metrics"
	"costbook/internal/infrastructure/http/v1/dto"
)

// MetricsHandler handles sales metrics endpoints. Both endpoints are
// read-only and scoped to the authenticated caller's accounts.
type MetricsHandler struct {
	*BaseHandler
	service *metrics.Service
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(base *BaseHandler, service *metrics.Service) *MetricsHandler {
	return &MetricsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// AccountReport handles GET /metrics/accounts/:id
func (h *MetricsHandler) AccountReport(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.ReportWindowRequest
	if !h.BindQuery(c, &req) {
		return
	}

	window, err := req.ToWindow(time.Now().UTC())
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.ReportForAccount(ctx, accountID, window)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromReport(report))
}

// Summary handles GET /metrics/summary
func (h *MetricsHandler) Summary(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ReportWindowRequest
	if !h.BindQuery(c, &req) {
		return
	}

	window, err := req.ToWindow(time.Now().UTC())
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.ReportForAllAccounts(ctx, window)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromReport(report))
}

// RegisterRoutes registers metrics routes on the protected group.
func (h *MetricsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	mg := rg.Group("/metrics")
	{
		mg.GET("/accounts/:id", h.AccountReport)
		mg.GET("/summary", h.Summary)
	}
}
