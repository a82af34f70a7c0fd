// Package inventory provides physical inventory reconciliation.
// A counting session snapshots book quantities for a warehouse, collects
// physical counts, and on completion writes the delta movements that bring
// the ledger to the counted truth.
package inventory

import (
	"context"
	"time"

	"enoria/internal/core/apperror"
	"enoria/internal/core/entity"
	"enoria/internal/core/id"
	"enoria/internal/core/types"
)

// SessionStatus is the lifecycle state of a counting session.
type SessionStatus string

const (
	// StatusOpen accepts count recordings.
	StatusOpen SessionStatus = "open"

	// StatusCompleted is terminal; delta movements have been written.
	StatusCompleted SessionStatus = "completed"
)

// ItemType distinguishes counted stock from counted fixed assets.
type ItemType string

const (
	// ItemProduct is a stock-tracked product; completion reconciles it
	// against the ledger.
	ItemProduct ItemType = "product"

	// ItemFixedAsset is a registered asset (furniture, vestments, icons).
	// Counted for the record only; never touches the stock ledger.
	ItemFixedAsset ItemType = "fixed_asset"
)

// Session is an inventory counting document for one warehouse.
type Session struct {
	entity.Document

	WarehouseID id.ID         `db:"warehouse_id" json:"warehouseId"`
	Status      SessionStatus `db:"status" json:"status"`

	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`
	CompletedBy *string    `db:"completed_by" json:"completedBy,omitempty"`
}

// NewSession creates an open session.
func NewSession(parishID, warehouseID id.ID, date time.Time) *Session {
	s := &Session{
		Document:    entity.NewDocument(parishID),
		WarehouseID: warehouseID,
		Status:      StatusOpen,
	}
	if !date.IsZero() {
		s.Date = date
	}
	return s
}

// Validate implements entity.Validatable.
func (s *Session) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(s.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}

	if s.Status != StatusOpen && s.Status != StatusCompleted {
		return apperror.NewValidation("unknown session status").
			WithDetail("field", "status").
			WithDetail("value", string(s.Status))
	}

	return nil
}

// IsOpen reports whether the session still accepts counts.
func (s *Session) IsOpen() bool {
	return s.Status == StatusOpen
}

// Item is one counted position within a session.
type Item struct {
	ID        id.ID    `db:"id" json:"id"`
	SessionID id.ID    `db:"session_id" json:"sessionId"`
	Type      ItemType `db:"item_type" json:"type"`

	// ProductID is set for product items; AssetID for fixed assets.
	ProductID *id.ID `db:"product_id" json:"productId,omitempty"`
	AssetID   *id.ID `db:"asset_id" json:"assetId,omitempty"`

	// BookQuantity is the ledger quantity snapshot taken at session open.
	BookQuantity types.Quantity `db:"book_quantity" json:"bookQuantity"`

	// PhysicalQuantity is nil until a count is recorded.
	PhysicalQuantity *types.Quantity `db:"physical_quantity" json:"physicalQuantity,omitempty"`

	// UnitCost values the delta movement, when known.
	UnitCost *types.Money `db:"unit_cost" json:"unitCost,omitempty"`

	Notes *string `db:"notes" json:"notes,omitempty"`
}

// Counted reports whether a physical count has been recorded.
func (i *Item) Counted() bool {
	return i.PhysicalQuantity != nil
}

// Delta returns physical minus book. An unrecorded count reads as zero,
// so an uncounted item yields a shortage of its full book quantity.
func (i *Item) Delta() types.Quantity {
	var physical types.Quantity
	if i.PhysicalQuantity != nil {
		physical = *i.PhysicalQuantity
	}
	return physical - i.BookQuantity
}
