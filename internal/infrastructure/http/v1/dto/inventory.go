package dto

import (
	"time"

	"enoria/internal/core/types"
	"enoria/internal/domain/inventory"
)

// OpenSessionRequest for POST /inventory/sessions.
type OpenSessionRequest struct {
	ParishID    string    `json:"parishId" binding:"required"`
	WarehouseID string    `json:"warehouseId" binding:"required"`
	Date        time.Time `json:"date"`
	Comment     string    `json:"comment"`
	ProductIDs  []string  `json:"productIds"`
}

// RecordCountRequest for PUT /inventory/sessions/:id/items/:itemId.
type RecordCountRequest struct {
	PhysicalQuantity types.Quantity `json:"physicalQuantity"`
	Notes            *string        `json:"notes"`
}

// SessionResponse mirrors a counting session.
type SessionResponse struct {
	ID          string     `json:"id"`
	Number      string     `json:"number"`
	ParishID    string     `json:"parishId"`
	WarehouseID string     `json:"warehouseId"`
	Status      string     `json:"status"`
	Date        time.Time  `json:"date"`
	Comment     string     `json:"comment,omitempty"`
	Version     int        `json:"version"`
	CreatedAt   time.Time  `json:"createdAt"`
	CreatedBy   string     `json:"createdBy,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CompletedBy *string    `json:"completedBy,omitempty"`

	Items []SessionItemResponse `json:"items,omitempty"`
}

// SessionItemResponse mirrors one counted position.
type SessionItemResponse struct {
	ID               string          `json:"id"`
	Type             string          `json:"type"`
	ProductID        *string         `json:"productId,omitempty"`
	AssetID          *string         `json:"assetId,omitempty"`
	BookQuantity     types.Quantity  `json:"bookQuantity"`
	PhysicalQuantity *types.Quantity `json:"physicalQuantity,omitempty"`
	Delta            *types.Quantity `json:"delta,omitempty"`
	UnitCost         *types.Money    `json:"unitCost,omitempty"`
	Notes            *string         `json:"notes,omitempty"`
}

// FromSession creates SessionResponse from a session and its items.
func FromSession(s *inventory.Session, items []inventory.Item) SessionResponse {
	resp := SessionResponse{
		ID:          s.ID.String(),
		Number:      s.Number,
		ParishID:    s.ParishID.String(),
		WarehouseID: s.WarehouseID.String(),
		Status:      string(s.Status),
		Date:        s.Date,
		Comment:     s.Comment,
		Version:     s.Version,
		CreatedAt:   s.CreatedAt,
		CreatedBy:   s.CreatedBy,
		CompletedAt: s.CompletedAt,
		CompletedBy: s.CompletedBy,
	}

	for _, item := range items {
		resp.Items = append(resp.Items, FromSessionItem(item))
	}
	return resp
}

// FromSessionItem creates SessionItemResponse from an item.
func FromSessionItem(item inventory.Item) SessionItemResponse {
	resp := SessionItemResponse{
		ID:               item.ID.String(),
		Type:             string(item.Type),
		BookQuantity:     item.BookQuantity,
		PhysicalQuantity: item.PhysicalQuantity,
		UnitCost:         item.UnitCost,
		Notes:            item.Notes,
	}
	if item.ProductID != nil {
		s := item.ProductID.String()
		resp.ProductID = &s
	}
	if item.AssetID != nil {
		s := item.AssetID.String()
		resp.AssetID = &s
	}
	if item.Counted() {
		d := item.Delta()
		resp.Delta = &d
	}
	return resp
}

// CompleteSessionResponse for POST /inventory/sessions/:id/complete.
type CompleteSessionResponse struct {
	Session          SessionResponse `json:"session"`
	MovementsCreated int             `json:"movementsCreated"`
}
