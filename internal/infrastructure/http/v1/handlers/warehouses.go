package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"enoria/internal/core/apperror"
	"enoria/internal/core/id"
	"enoria/internal/domain/catalogs/warehouse"
	"enoria/internal/infrastructure/http/v1/dto"
)

// WarehouseHandler handles HTTP requests for the warehouse catalog.
type WarehouseHandler struct {
	*BaseHandler
	service *warehouse.Service
}

// NewWarehouseHandler creates a new warehouse handler.
func NewWarehouseHandler(base *BaseHandler, service *warehouse.Service) *WarehouseHandler {
	return &WarehouseHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /warehouses
func (h *WarehouseHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	parishID, err := id.Parse(req.ParishID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid parishId format"))
		return
	}

	w := warehouse.New(req.Code, req.Name, parishID)
	w.Address = req.Address
	w.Description = req.Description

	if err := h.service.Create(ctx, w); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromWarehouse(w))
}

// Get handles GET /warehouses/:id
func (h *WarehouseHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	warehouseID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	w, err := h.service.GetByID(ctx, warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromWarehouse(w))
}

// Update handles PUT /warehouses/:id
func (h *WarehouseHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	warehouseID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	w, err := h.service.GetByID(ctx, warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if req.Name != nil {
		w.Name = *req.Name
	}
	if req.Address != nil {
		w.Address = req.Address
	}
	if req.Description != nil {
		w.Description = req.Description
	}
	if req.Active != nil {
		w.Active = *req.Active
	}
	w.Version = req.Version

	if err := h.service.Update(ctx, w); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromWarehouse(w))
}

// Deactivate handles DELETE /warehouses/:id
func (h *WarehouseHandler) Deactivate(c *gin.Context) {
	ctx := c.Request.Context()

	warehouseID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Deactivate(ctx, warehouseID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// List handles GET /warehouses
func (h *WarehouseHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := warehouse.ListFilter{
		ActiveOnly: c.Query("includeInactive") != "true",
		Limit:      h.ParseIntQuery(c, "limit", 50),
		Offset:     h.ParseIntQuery(c, "offset", 0),
	}

	if pStr := c.Query("parishId"); pStr != "" {
		parsed, err := id.Parse(pStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid parishId format"))
			return
		}
		filter.ParishID = &parsed
	}

	warehouses, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.WarehouseResponse, len(warehouses))
	for i, w := range warehouses {
		items[i] = dto.FromWarehouse(w)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:  items,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// RegisterRoutes registers warehouse routes.
func (h *WarehouseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Deactivate)
}
