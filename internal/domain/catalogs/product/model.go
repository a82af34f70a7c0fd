// Package product provides the Product catalog.
// Products cover both pangar (church shop) goods and general parish supplies.
package product

import (
	"context"

	"enoria/internal/core/apperror"
	"enoria/internal/core/entity"
	"enoria/internal/core/types"
)

// Product represents an item that may be sold or stored by a parish.
type Product struct {
	entity.Catalog

	// Unit is the unit of measure label (e.g. "buc", "kg")
	Unit string `db:"unit" json:"unit"`

	// TracksStock indicates quantity-on-hand is maintained via the ledger.
	// Non-tracked products (services, donations) never appear in movements.
	TracksStock bool `db:"tracks_stock" json:"tracksStock"`

	// DefaultPrice is an informational sale price (pricing itself is out of scope)
	DefaultPrice *types.Money `db:"default_price" json:"defaultPrice,omitempty"`

	Description *string `db:"description" json:"description,omitempty"`
}

// New creates a new Product.
func New(code, name, unit string, tracksStock bool) *Product {
	return &Product{
		Catalog:     entity.NewCatalog(code, name),
		Unit:        unit,
		TracksStock: tracksStock,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.Unit == "" {
		return apperror.NewValidation("unit is required").
			WithDetail("field", "unit")
	}

	if p.DefaultPrice != nil && p.DefaultPrice.IsNegative() {
		return apperror.NewValidation("default price cannot be negative").
			WithDetail("field", "defaultPrice")
	}

	return nil
}
