// Package ledger provides the stock movement ledger: an append-only record of
// every change to product quantity, with current stock derived by signed
// summation over it.
package ledger

import (
	"context"
	"time"

	"enoria/internal/core/apperror"
	"enoria/internal/core/id"
	"enoria/internal/core/types"
)

// MovementKind defines the kind of a stock movement.
type MovementKind string

const (
	KindIn         MovementKind = "in"
	KindOut        MovementKind = "out"
	KindTransfer   MovementKind = "transfer"
	KindAdjustment MovementKind = "adjustment"
	KindReturn     MovementKind = "return"
)

// IsValid reports whether k is a known movement kind.
func (k MovementKind) IsValid() bool {
	switch k {
	case KindIn, KindOut, KindTransfer, KindAdjustment, KindReturn:
		return true
	}
	return false
}

// Provenance document types.
const (
	DocTypeInvoice             = "invoice"
	DocTypeInventoryAdjustment = "inventory_adjustment"
)

// StockMovement is the atomic ledger entry. Movements are immutable: they are
// never updated, and deleted only when their generating invoice is reversed.
// Corrections happen by adding offsetting adjustment/return entries.
type StockMovement struct {
	ID        id.ID     `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`

	ParishID    id.ID `db:"parish_id" json:"parishId"`
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`
	ProductID   id.ID `db:"product_id" json:"productId"`

	Kind MovementKind `db:"kind" json:"kind"`

	// Date is the business date (calendar date, not a timestamp)
	Date time.Time `db:"date" json:"date"`

	// Quantity is always stored non-negative; direction comes from the kind.
	Quantity   types.Quantity    `db:"quantity" json:"quantity"`
	UnitCost   *types.Money      `db:"unit_cost" json:"unitCost,omitempty"`
	TotalValue *types.MinorUnits `db:"total_value" json:"totalValue,omitempty"`

	// Provenance: back-reference to the document that caused the movement.
	InvoiceID      *id.ID     `db:"invoice_id" json:"invoiceId,omitempty"`
	InvoiceLine    *int       `db:"invoice_line" json:"invoiceLine,omitempty"`
	DocumentType   *string    `db:"document_type" json:"documentType,omitempty"`
	DocumentNumber *string    `db:"document_number" json:"documentNumber,omitempty"`
	DocumentDate   *time.Time `db:"document_date" json:"documentDate,omitempty"`
	ClientID       *id.ID     `db:"client_id" json:"clientId,omitempty"`

	// DestWarehouseID is set on the outbound leg of a transfer only.
	DestWarehouseID *id.ID `db:"dest_warehouse_id" json:"destWarehouseId,omitempty"`

	// TransferGroupID links the two legs of a transfer.
	TransferGroupID *id.ID `db:"transfer_group_id" json:"transferGroupId,omitempty"`

	Notes *string `db:"notes" json:"notes,omitempty"`
}

// SignedQuantity returns the quantity with the sign this movement contributes
// to current stock. This is the single authoritative sign rule:
//
//	in          +q
//	out         -q
//	transfer    -q on the outbound leg (destination set), +q on the inbound leg
//	adjustment  +q (a decrease is expressed as an out movement)
//	return      +q
func (m *StockMovement) SignedQuantity() types.Quantity {
	switch m.Kind {
	case KindIn:
		return m.Quantity
	case KindOut:
		return m.Quantity.Neg()
	case KindTransfer:
		if m.DestWarehouseID != nil {
			return m.Quantity.Neg()
		}
		return m.Quantity
	case KindAdjustment:
		return m.Quantity
	case KindReturn:
		return m.Quantity
	}
	// Unknown kinds never reach the store (IsValid is checked on admission).
	return 0
}

// IsOutboundTransferLeg reports whether this movement is the depleting leg of
// a transfer.
func (m *StockMovement) IsOutboundTransferLeg() bool {
	return m.Kind == KindTransfer && m.DestWarehouseID != nil
}

// Validate checks shape-level invariants (no database access).
func (m *StockMovement) Validate(ctx context.Context) error {
	if !m.Kind.IsValid() {
		return apperror.NewValidation("unknown movement kind").
			WithDetail("field", "kind").
			WithDetail("value", string(m.Kind))
	}

	if id.IsNil(m.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}

	if id.IsNil(m.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}

	if id.IsNil(m.ParishID) {
		return apperror.NewValidation("parish is required").
			WithDetail("field", "parishId")
	}

	if m.Date.IsZero() {
		return apperror.NewValidation("movement date is required").
			WithDetail("field", "date")
	}

	if !m.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}

	if m.UnitCost != nil && m.UnitCost.IsNegative() {
		return apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "unitCost")
	}

	return nil
}

// DeriveTotalValue fills TotalValue as quantity × unit cost when the caller
// omitted it and a unit cost is present. A missing unit cost leaves it nil.
func (m *StockMovement) DeriveTotalValue() {
	if m.TotalValue != nil || m.UnitCost == nil {
		return
	}
	tv := types.TotalValue(m.Quantity, *m.UnitCost)
	m.TotalValue = &tv
}
