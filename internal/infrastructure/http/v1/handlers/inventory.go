package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"enoria/internal/core/apperror"
	"enoria/internal/core/id"
	"enoria/internal/domain/inventory"
	"enoria/internal/infrastructure/http/v1/dto"
)

// InventoryHandler handles HTTP requests for counting sessions.
type InventoryHandler struct {
	*BaseHandler
	service *inventory.Service
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, service *inventory.Service) *InventoryHandler {
	return &InventoryHandler{
		BaseHandler: base,
		service:     service,
	}
}

// OpenSession handles POST /inventory/sessions
func (h *InventoryHandler) OpenSession(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.OpenSessionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	parishID, err := id.Parse(req.ParishID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid parishId format"))
		return
	}
	warehouseID, err := id.Parse(req.WarehouseID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid warehouseId format"))
		return
	}

	input := inventory.OpenSessionInput{
		ParishID:    parishID,
		WarehouseID: warehouseID,
		Date:        req.Date,
		Comment:     req.Comment,
	}

	for _, pStr := range req.ProductIDs {
		parsed, err := id.Parse(pStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid product id in productIds").WithDetail("value", pStr))
			return
		}
		input.ProductIDs = append(input.ProductIDs, parsed)
	}

	sess, items, err := h.service.OpenSession(ctx, input)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromSession(sess, items))
}

// GetSession handles GET /inventory/sessions/:id
func (h *InventoryHandler) GetSession(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	sess, items, err := h.service.GetSession(ctx, sessionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromSession(sess, items))
}

// ListSessions handles GET /inventory/sessions
func (h *InventoryHandler) ListSessions(c *gin.Context) {
	ctx := c.Request.Context()

	filter := inventory.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if whStr := c.Query("warehouseId"); whStr != "" {
		parsed, err := id.Parse(whStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid warehouseId format"))
			return
		}
		filter.WarehouseID = &parsed
	}

	if pStr := c.Query("parishId"); pStr != "" {
		parsed, err := id.Parse(pStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid parishId format"))
			return
		}
		filter.ParishID = &parsed
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := inventory.SessionStatus(statusStr)
		filter.Status = &status
	}

	sessions, err := h.service.ListSessions(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.SessionResponse, len(sessions))
	for i, sess := range sessions {
		items[i] = dto.FromSession(sess, nil)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:  items,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// RecordCount handles PUT /inventory/sessions/:id/items/:itemId
func (h *InventoryHandler) RecordCount(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}
	itemID, err := id.Parse(c.Param("itemId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid itemId format"))
		return
	}

	var req dto.RecordCountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.service.RecordCount(ctx, sessionID, itemID, req.PhysicalQuantity, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromSessionItem(*item))
}

// AddFixedAsset handles POST /inventory/sessions/:id/assets
func (h *InventoryHandler) AddFixedAsset(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req struct {
		AssetID string  `json:"assetId" binding:"required"`
		Notes   *string `json:"notes"`
	}
	if !h.BindJSON(c, &req) {
		return
	}

	assetID, err := id.Parse(req.AssetID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid assetId format"))
		return
	}

	item, err := h.service.AddFixedAsset(ctx, sessionID, assetID, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromSessionItem(*item))
}

// Complete handles POST /inventory/sessions/:id/complete
func (h *InventoryHandler) Complete(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	result, err := h.service.Complete(ctx, sessionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CompleteSessionResponse{
		Session:          dto.FromSession(result.Session, nil),
		MovementsCreated: result.MovementsCreated,
	})
}

// RegisterRoutes registers inventory routes.
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sessions", h.OpenSession)
	rg.GET("/sessions", h.ListSessions)
	rg.GET("/sessions/:id", h.GetSession)
	rg.PUT("/sessions/:id/items/:itemId", h.RecordCount)
	rg.POST("/sessions/:id/assets", h.AddFixedAsset)
	rg.POST("/sessions/:id/complete", h.Complete)
}
