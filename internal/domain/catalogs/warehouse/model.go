// Package warehouse provides the Warehouse catalog.
// Warehouses are storage locations scoped to a parish: the pangar shop,
// a candle depot, a cemetery maintenance shed.
package warehouse

import (
	"context"

	"enoria/internal/core/apperror"
	"enoria/internal/core/entity"
	"enoria/internal/core/id"
)

// Warehouse represents a storage location for goods.
type Warehouse struct {
	entity.Catalog

	// ParishID is the owning parish
	ParishID id.ID `db:"parish_id" json:"parishId"`

	// Address is the physical address
	Address *string `db:"address" json:"address,omitempty"`

	Description *string `db:"description" json:"description,omitempty"`
}

// New creates a new Warehouse.
func New(code, name string, parishID id.ID) *Warehouse {
	return &Warehouse{
		Catalog:  entity.NewCatalog(code, name),
		ParishID: parishID,
	}
}

// Validate implements entity.Validatable.
func (w *Warehouse) Validate(ctx context.Context) error {
	if err := w.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(w.ParishID) {
		return apperror.NewValidation("parish is required").
			WithDetail("field", "parishId")
	}

	return nil
}
