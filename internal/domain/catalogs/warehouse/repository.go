package warehouse

import (
	"context"

	"enoria/internal/core/id"
)

// ListFilter narrows warehouse listing.
type ListFilter struct {
	ParishID   *id.ID
	ActiveOnly bool
	Limit      int
	Offset     int
}

// Repository defines persistence operations for warehouses.
type Repository interface {
	Create(ctx context.Context, w *Warehouse) error
	Update(ctx context.Context, w *Warehouse) error
	GetByID(ctx context.Context, warehouseID id.ID) (*Warehouse, error)
	List(ctx context.Context, filter ListFilter) ([]*Warehouse, error)
}
