package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"enoria/internal/core/apperror"
	"enoria/internal/core/id"
	"enoria/internal/domain/invoices"
	"enoria/internal/infrastructure/http/v1/dto"
	"enoria/pkg/logger"
)

// InvoiceHandler handles invoice snapshot events from the invoicing module.
type InvoiceHandler struct {
	*BaseHandler
	projector *invoices.Projector
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, projector *invoices.Projector) *InvoiceHandler {
	return &InvoiceHandler{
		BaseHandler: base,
		projector:   projector,
	}
}

// ApplyEvent handles POST /invoices/events
//
// The payload is a full invoice snapshot. Projection is idempotent: previous
// movements for the invoice are removed and regenerated from the snapshot,
// so replaying the same event is safe.
func (h *InvoiceHandler) ApplyEvent(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.InvoiceEventRequest
	if !h.BindJSON(c, &req) {
		return
	}

	invoice, err := req.ToInvoice()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.projector.ApplyInvoice(ctx, invoice)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.InvoiceApplyResponse{
		InvoiceID: invoice.ID.String(),
		Removed:   result.Removed,
		Generated: result.Generated,
		Skipped:   result.Skipped,
	})
}

// Reverse handles POST /invoices/:id/reverse
//
// Reversal is best-effort: the cancellation that triggered it already stands
// upstream, so a failed reversal returns 200 with a warning instead of an
// error. The leftover movements are cleaned up on the next snapshot replay.
func (h *InvoiceHandler) Reverse(c *gin.Context) {
	ctx := c.Request.Context()

	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	removed, err := h.projector.ReverseInvoice(ctx, invoiceID)
	if err != nil {
		logger.Warn(ctx, "invoice reversal failed",
			"invoice_id", invoiceID,
			"error", err,
		)
		warning := "reversal failed: " + err.Error()
		c.JSON(http.StatusOK, dto.InvoiceReverseResponse{
			InvoiceID: invoiceID.String(),
			Reversed:  false,
			Warning:   &warning,
		})
		return
	}

	c.JSON(http.StatusOK, dto.InvoiceReverseResponse{
		InvoiceID: invoiceID.String(),
		Removed:   removed,
		Reversed:  true,
	})
}

// RegisterRoutes registers invoice projection routes.
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/events", h.ApplyEvent)
	rg.POST("/:id/reverse", h.Reverse)
}
