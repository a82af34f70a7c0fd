package dto

import (
	"time"

	"enoria/internal/core/apperror"
	"enoria/internal/core/id"
	"enoria/internal/core/types"
	"enoria/internal/domain/invoices"
)

// InvoiceEventRequest is the snapshot payload of POST /invoices/events.
type InvoiceEventRequest struct {
	ID       string               `json:"id" binding:"required"`
	ParishID string               `json:"parishId" binding:"required"`
	Type     string               `json:"type" binding:"required"`
	Status   string               `json:"status" binding:"required"`
	Number   string               `json:"number"`
	Date     time.Time            `json:"date" binding:"required"`
	ClientID *string              `json:"clientId"`
	Lines    []InvoiceLineRequest `json:"lines"`
}

// InvoiceLineRequest is one snapshot line.
type InvoiceLineRequest struct {
	Line        int            `json:"line"`
	ProductID   *string        `json:"productId"`
	WarehouseID *string        `json:"warehouseId"`
	Quantity    types.Quantity `json:"quantity"`
	UnitCost    *types.Money   `json:"unitCost"`
	Description *string        `json:"description"`
}

// ToInvoice converts the request into the domain snapshot.
func (r *InvoiceEventRequest) ToInvoice() (*invoices.Invoice, error) {
	invoiceID, err := id.Parse(r.ID)
	if err != nil {
		return nil, apperror.NewValidation("invalid invoice id").WithDetail("field", "id")
	}
	parishID, err := id.Parse(r.ParishID)
	if err != nil {
		return nil, apperror.NewValidation("invalid parish id").WithDetail("field", "parishId")
	}

	inv := &invoices.Invoice{
		ID:       invoiceID,
		ParishID: parishID,
		Type:     invoices.InvoiceType(r.Type),
		Status:   invoices.InvoiceStatus(r.Status),
		Number:   r.Number,
		Date:     r.Date,
	}

	if r.ClientID != nil {
		clientID, err := id.Parse(*r.ClientID)
		if err != nil {
			return nil, apperror.NewValidation("invalid client id").WithDetail("field", "clientId")
		}
		inv.ClientID = &clientID
	}

	for _, line := range r.Lines {
		l := invoices.Line{
			Line:        line.Line,
			Quantity:    line.Quantity,
			UnitCost:    line.UnitCost,
			Description: line.Description,
		}
		if line.ProductID != nil {
			pid, err := id.Parse(*line.ProductID)
			if err != nil {
				return nil, apperror.NewValidation("invalid product id").
					WithDetail("field", "productId").
					WithDetail("line", line.Line)
			}
			l.ProductID = &pid
		}
		if line.WarehouseID != nil {
			wid, err := id.Parse(*line.WarehouseID)
			if err != nil {
				return nil, apperror.NewValidation("invalid warehouse id").
					WithDetail("field", "warehouseId").
					WithDetail("line", line.Line)
			}
			l.WarehouseID = &wid
		}
		inv.Lines = append(inv.Lines, l)
	}

	return inv, nil
}

// InvoiceApplyResponse for POST /invoices/events.
type InvoiceApplyResponse struct {
	InvoiceID string `json:"invoiceId"`
	Removed   int64  `json:"removed"`
	Generated int    `json:"generated"`
	Skipped   int    `json:"skipped"`
}

// InvoiceReverseResponse for POST /invoices/:id/reverse.
// Warning is set when the reversal could not run; the cancellation upstream
// stands either way, so callers surface the warning instead of failing.
type InvoiceReverseResponse struct {
	InvoiceID string  `json:"invoiceId"`
	Removed   int64   `json:"removed"`
	Reversed  bool    `json:"reversed"`
	Warning   *string `json:"warning,omitempty"`
}
