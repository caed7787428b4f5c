package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"costbook/internal/core/apperror"
	"costbook/internal/core/id"
	"costbook/internal/domain/records/entry"
	"costbook/internal/infrastructure/http/v1/dto"
)

// EntryHandler handles ledger entry endpoints.
type EntryHandler struct {
	*BaseHandler
	service *entry.Service
}

// NewEntryHandler creates a new entry handler.
func NewEntryHandler(base *BaseHandler, service *entry.Service) *EntryHandler {
	return &EntryHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /entries
func (h *EntryHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ListEntriesRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, item := range result.Items {
		items[i] = dto.FromEntry(item)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /entries/:id
func (h *EntryHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	entryID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	e, err := h.service.GetByID(ctx, entryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromEntry(e))
}

// Create handles POST /entries
func (h *EntryHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	e, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(ctx, e); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromEntry(e))
}

// Update handles PUT /entries/:id
func (h *EntryHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	entryID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(ctx, entryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := req.ApplyTo(existing); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(ctx, existing); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromEntry(existing))
}

// Delete handles DELETE /entries/:id
func (h *EntryHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	entryID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(ctx, entryID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers entry routes on the protected group.
func (h *EntryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	entries := rg.Group("/entries")
	{
		entries.GET("", h.List)
		entries.GET("/:id", h.Get)
		entries.POST("", h.Create)
		entries.PUT("/:id", h.Update)
		entries.DELETE("/:id", h.Delete)
	}
}
