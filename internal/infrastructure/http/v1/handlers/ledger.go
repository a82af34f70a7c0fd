package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"enoria/internal/core/apperror"
	"enoria/internal/core/id"
	"enoria/internal/domain/ledger"
	"enoria/internal/infrastructure/http/v1/dto"
)

// LedgerHandler handles HTTP requests for the stock ledger.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(base *BaseHandler, service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: base,
		service:     service,
	}
}

// CreateMovement handles POST /movements
func (h *LedgerHandler) CreateMovement(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := h.toMovementInput(req)
	if err != nil {
		h.Error(c, err)
		return
	}

	movement, err := h.service.CreateMovement(ctx, *input)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromMovement(movement))
}

// CreateTransfer handles POST /transfers
func (h *LedgerHandler) CreateTransfer(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.TransferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sourceID, err := id.Parse(req.SourceWarehouseID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid sourceWarehouseId format"))
		return
	}
	destID, err := id.Parse(req.DestWarehouseID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid destWarehouseId format"))
		return
	}
	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}
	parishID, err := id.Parse(req.ParishID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid parishId format"))
		return
	}

	outbound, inbound, err := h.service.CreateTransfer(ctx, ledger.TransferInput{
		SourceWarehouseID: sourceID,
		DestWarehouseID:   destID,
		ProductID:         productID,
		ParishID:          parishID,
		Date:              req.Date,
		Quantity:          req.Quantity,
		UnitCost:          req.UnitCost,
		Notes:             req.Notes,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.TransferResponse{
		TransferGroupID: outbound.TransferGroupID.String(),
		Outbound:        dto.FromMovement(outbound),
		Inbound:         dto.FromMovement(inbound),
	})
}

// ListMovements handles GET /movements
func (h *LedgerHandler) ListMovements(c *gin.Context) {
	ctx := c.Request.Context()

	filter := ledger.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
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

	if pStr := c.Query("productId"); pStr != "" {
		parsed, err := id.Parse(pStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid productId format"))
			return
		}
		filter.ProductID = &parsed
	}

	if invStr := c.Query("invoiceId"); invStr != "" {
		parsed, err := id.Parse(invStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid invoiceId format"))
			return
		}
		filter.InvoiceID = &parsed
	}

	if kindStr := c.Query("kind"); kindStr != "" {
		kind := ledger.MovementKind(kindStr)
		filter.Kind = &kind
	}

	if fromStr := c.Query("fromDate"); fromStr != "" {
		if parsed, err := time.Parse(time.RFC3339, fromStr); err == nil {
			filter.FromDate = &parsed
		}
	}

	if toStr := c.Query("toDate"); toStr != "" {
		if parsed, err := time.Parse(time.RFC3339, toStr); err == nil {
			filter.ToDate = &parsed
		}
	}

	movements, err := h.service.ListMovements(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.MovementResponse, len(movements))
	for i := range movements {
		items[i] = dto.FromMovement(&movements[i])
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:  items,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// GetStock handles GET /stock
//
// With warehouseId and productId it returns the quantity for that key.
// With only warehouseId it returns all non-zero levels in the warehouse.
func (h *LedgerHandler) GetStock(c *gin.Context) {
	ctx := c.Request.Context()

	whStr := c.Query("warehouseId")
	if whStr == "" {
		h.Error(c, apperror.NewValidation("warehouseId is required"))
		return
	}

	warehouseID, err := id.Parse(whStr)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid warehouseId format"))
		return
	}

	if pStr := c.Query("productId"); pStr != "" {
		productID, err := id.Parse(pStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid productId format"))
			return
		}

		quantity, err := h.service.CurrentStock(ctx, warehouseID, productID)
		if err != nil {
			h.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, dto.CurrentStockResponse{
			WarehouseID: warehouseID.String(),
			ProductID:   productID.String(),
			Quantity:    quantity,
		})
		return
	}

	levels, err := h.service.StockByWarehouse(ctx, warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.StockLevelResponse, len(levels))
	for i, lvl := range levels {
		items[i] = dto.FromStockLevel(lvl)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *LedgerHandler) toMovementInput(req dto.CreateMovementRequest) (*ledger.CreateMovementInput, error) {
	warehouseID, err := id.Parse(req.WarehouseID)
	if err != nil {
		return nil, apperror.NewValidation("invalid warehouseId format")
	}
	productID, err := id.Parse(req.ProductID)
	if err != nil {
		return nil, apperror.NewValidation("invalid productId format")
	}
	parishID, err := id.Parse(req.ParishID)
	if err != nil {
		return nil, apperror.NewValidation("invalid parishId format")
	}

	input := &ledger.CreateMovementInput{
		WarehouseID:    warehouseID,
		ProductID:      productID,
		ParishID:       parishID,
		Kind:           ledger.MovementKind(req.Kind),
		Date:           req.Date,
		Quantity:       req.Quantity,
		UnitCost:       req.UnitCost,
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		DocumentDate:   req.DocumentDate,
		Notes:          req.Notes,
	}

	if req.DestWarehouseID != nil {
		parsed, err := id.Parse(*req.DestWarehouseID)
		if err != nil {
			return nil, apperror.NewValidation("invalid destWarehouseId format")
		}
		input.DestWarehouseID = &parsed
	}

	if req.ClientID != nil {
		parsed, err := id.Parse(*req.ClientID)
		if err != nil {
			return nil, apperror.NewValidation("invalid clientId format")
		}
		input.ClientID = &parsed
	}

	return input, nil
}

// RegisterRoutes registers ledger routes.
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/movements", h.CreateMovement)
	rg.GET("/movements", h.ListMovements)
	rg.POST("/transfers", h.CreateTransfer)
	rg.GET("/stock", h.GetStock)
}
