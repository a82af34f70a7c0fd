package product

import (
	"context"

	"enoria/internal/core/id"
)

// ListFilter narrows product listing.
type ListFilter struct {
	Search      string
	TracksStock *bool
	ActiveOnly  bool
	Limit       int
	Offset      int
}

// Repository defines persistence operations for products.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]*Product, error)
}
