// Package invoices projects invoice documents onto the stock ledger.
// Invoicing itself (issuing, payment, numbering of invoices) lives in the
// billing service; this package only consumes invoice snapshots and keeps
// the ledger in sync with them.
package invoices

import (
	"context"
	"time"

	"enoria/internal/core/apperror"
	"enoria/internal/core/id"
	"enoria/internal/core/types"
)

// InvoiceType determines the stock direction of generated movements.
type InvoiceType string

const (
	// TypeIssued is a sale: goods leave the warehouse.
	TypeIssued InvoiceType = "issued"

	// TypeReceived is a purchase: goods enter the warehouse.
	TypeReceived InvoiceType = "received"
)

// IsValid reports whether t is a known invoice type.
func (t InvoiceType) IsValid() bool {
	return t == TypeIssued || t == TypeReceived
}

// InvoiceStatus is the lifecycle state of the invoice snapshot.
type InvoiceStatus string

const (
	StatusDraft     InvoiceStatus = "draft"
	StatusIssued    InvoiceStatus = "issued"
	StatusCancelled InvoiceStatus = "cancelled"
)

// Line is one invoice line. Product and warehouse are optional because
// invoices also carry non-stock lines (services, donations, fees); those
// lines never reach the ledger.
type Line struct {
	Line        int            `json:"line"`
	ProductID   *id.ID         `json:"productId,omitempty"`
	WarehouseID *id.ID         `json:"warehouseId,omitempty"`
	Quantity    types.Quantity `json:"quantity"`
	UnitCost    *types.Money   `json:"unitCost,omitempty"`
	Description *string        `json:"description,omitempty"`
}

// Invoice is the snapshot the billing service sends on every create, update
// or cancel. The projector treats it as the full desired state.
type Invoice struct {
	ID       id.ID         `json:"id"`
	ParishID id.ID         `json:"parishId"`
	Type     InvoiceType   `json:"type"`
	Status   InvoiceStatus `json:"status"`
	Number   string        `json:"number"`
	Date     time.Time     `json:"date"`
	ClientID *id.ID        `json:"clientId,omitempty"`
	Lines    []Line        `json:"lines"`
}

// Validate checks the snapshot shape.
func (inv *Invoice) Validate(ctx context.Context) error {
	if id.IsNil(inv.ID) {
		return apperror.NewValidation("invoice id is required").
			WithDetail("field", "id")
	}

	if id.IsNil(inv.ParishID) {
		return apperror.NewValidation("parish is required").
			WithDetail("field", "parishId")
	}

	if !inv.Type.IsValid() {
		return apperror.NewValidation("unknown invoice type").
			WithDetail("field", "type").
			WithDetail("value", string(inv.Type))
	}

	if inv.Date.IsZero() {
		return apperror.NewValidation("invoice date is required").
			WithDetail("field", "date")
	}

	for _, line := range inv.Lines {
		if line.ProductID == nil || line.WarehouseID == nil {
			continue
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("line quantity must be positive").
				WithDetail("field", "quantity").
				WithDetail("line", line.Line)
		}
	}

	return nil
}
