package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"costbook/internal/domain/metrics"
	"costbook/internal/domain/sharelink"
	"costbook/internal/infrastructure/http/v1/dto"
)

// ShareLinkHandler handles report sharing endpoints. Creation is
// authenticated; resolution is public, the token is the capability.
type ShareLinkHandler struct {
	*BaseHandler
	metrics *metrics.Service
	links   *sharelink.Service
}

// NewShareLinkHandler creates a new share link handler.
func NewShareLinkHandler(base *BaseHandler, metricsService *metrics.Service, links *sharelink.Service) *ShareLinkHandler {
	return &ShareLinkHandler{
		BaseHandler: base,
		metrics:     metricsService,
		links:       links,
	}
}

// Create handles POST /shares
// Builds the caller's summary report for the requested window and
// snapshots it behind an opaque link token.
func (h *ShareLinkHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateShareLinkRequest
	if !h.BindJSON(c, &req) {
		return
	}

	windowReq := dto.ReportWindowRequest{From: req.From, To: req.To}
	window, err := windowReq.ToWindow(time.Now().UTC())
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.metrics.ReportForAllAccounts(ctx, window)
	if err != nil {
		h.Error(c, err)
		return
	}

	ttl := req.TTL()
	token, err := h.links.Create(ctx, report, ttl)
	if err != nil {
		h.Error(c, err)
		return
	}

	if ttl <= 0 {
		ttl = sharelink.DefaultTTL
	}

	c.JSON(http.StatusCreated, dto.ShareLinkResponse{
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(ttl),
	})
}

// Resolve handles GET /shares/:token
func (h *ShareLinkHandler) Resolve(c *gin.Context) {
	ctx := c.Request.Context()

	report, err := h.links.Resolve(ctx, c.Param("token"))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromReport(report))
}

// RegisterRoutes registers share link routes. Creation goes on the
// protected group, resolution on the public one.
func (h *ShareLinkHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	protected.POST("/shares", h.Create)
	public.GET("/shares/:token", h.Resolve)
}
