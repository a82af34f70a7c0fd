package dto

import (
	"time"

	"enoria/internal/core/types"
	"enoria/internal/domain/catalogs/product"
	"enoria/internal/domain/catalogs/warehouse"
)

// --- Products ---

// CreateProductRequest for POST /products.
type CreateProductRequest struct {
	Code         string       `json:"code" binding:"required"`
	Name         string       `json:"name" binding:"required"`
	Unit         string       `json:"unit" binding:"required"`
	TracksStock  bool         `json:"tracksStock"`
	DefaultPrice *types.Money `json:"defaultPrice"`
	Description  *string      `json:"description"`
}

// UpdateProductRequest for PUT /products/:id.
type UpdateProductRequest struct {
	Name         *string      `json:"name"`
	Unit         *string      `json:"unit"`
	DefaultPrice *types.Money `json:"defaultPrice"`
	Description  *string      `json:"description"`
	Active       *bool        `json:"active"`
	Version      int          `json:"version" binding:"required,min=1"`
}

// ProductResponse mirrors a product catalog entry.
type ProductResponse struct {
	ID           string       `json:"id"`
	Code         string       `json:"code"`
	Name         string       `json:"name"`
	Unit         string       `json:"unit"`
	TracksStock  bool         `json:"tracksStock"`
	DefaultPrice *types.Money `json:"defaultPrice,omitempty"`
	Description  *string      `json:"description,omitempty"`
	Active       bool         `json:"active"`
	Version      int          `json:"version"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// FromProduct creates ProductResponse from a product.
func FromProduct(p *product.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID.String(),
		Code:         p.Code,
		Name:         p.Name,
		Unit:         p.Unit,
		TracksStock:  p.TracksStock,
		DefaultPrice: p.DefaultPrice,
		Description:  p.Description,
		Active:       p.Active,
		Version:      p.Version,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// --- Warehouses ---

// CreateWarehouseRequest for POST /warehouses.
type CreateWarehouseRequest struct {
	Code        string  `json:"code" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	ParishID    string  `json:"parishId" binding:"required"`
	Address     *string `json:"address"`
	Description *string `json:"description"`
}

// UpdateWarehouseRequest for PUT /warehouses/:id.
type UpdateWarehouseRequest struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
	Version     int     `json:"version" binding:"required,min=1"`
}

// WarehouseResponse mirrors a warehouse catalog entry.
type WarehouseResponse struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	ParishID    string    `json:"parishId"`
	Address     *string   `json:"address,omitempty"`
	Description *string   `json:"description,omitempty"`
	Active      bool      `json:"active"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FromWarehouse creates WarehouseResponse from a warehouse.
func FromWarehouse(w *warehouse.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:          w.ID.String(),
		Code:        w.Code,
		Name:        w.Name,
		ParishID:    w.ParishID.String(),
		Address:     w.Address,
		Description: w.Description,
		Active:      w.Active,
		Version:     w.Version,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}
