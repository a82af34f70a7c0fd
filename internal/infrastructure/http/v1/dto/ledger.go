package dto

import (
	"time"

	"enoria/internal/core/types"
	"enoria/internal/domain/ledger"
)

// CreateMovementRequest for POST /movements.
type CreateMovementRequest struct {
	WarehouseID string         `json:"warehouseId" binding:"required"`
	ProductID   string         `json:"productId" binding:"required"`
	ParishID    string         `json:"parishId" binding:"required"`
	Kind        string         `json:"kind" binding:"required"`
	Date        time.Time      `json:"date" binding:"required"`
	Quantity    types.Quantity `json:"quantity" binding:"required"`
	UnitCost    *types.Money   `json:"unitCost"`

	DestWarehouseID *string    `json:"destWarehouseId"`
	ClientID        *string    `json:"clientId"`
	DocumentType    *string    `json:"documentType"`
	DocumentNumber  *string    `json:"documentNumber"`
	DocumentDate    *time.Time `json:"documentDate"`
	Notes           *string    `json:"notes"`
}

// TransferRequest for POST /transfers.
type TransferRequest struct {
	SourceWarehouseID string         `json:"sourceWarehouseId" binding:"required"`
	DestWarehouseID   string         `json:"destWarehouseId" binding:"required"`
	ProductID         string         `json:"productId" binding:"required"`
	ParishID          string         `json:"parishId" binding:"required"`
	Date              time.Time      `json:"date" binding:"required"`
	Quantity          types.Quantity `json:"quantity" binding:"required"`
	UnitCost          *types.Money   `json:"unitCost"`
	Notes             *string        `json:"notes"`
}

// MovementResponse mirrors a ledger entry.
type MovementResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy,omitempty"`

	ParishID    string `json:"parishId"`
	WarehouseID string `json:"warehouseId"`
	ProductID   string `json:"productId"`

	Kind     string         `json:"kind"`
	Date     time.Time      `json:"date"`
	Quantity types.Quantity `json:"quantity"`
	Signed   types.Quantity `json:"signedQuantity"`

	UnitCost   *types.Money      `json:"unitCost,omitempty"`
	TotalValue *types.MinorUnits `json:"totalValue,omitempty"`

	InvoiceID       *string    `json:"invoiceId,omitempty"`
	InvoiceLine     *int       `json:"invoiceLine,omitempty"`
	DocumentType    *string    `json:"documentType,omitempty"`
	DocumentNumber  *string    `json:"documentNumber,omitempty"`
	DocumentDate    *time.Time `json:"documentDate,omitempty"`
	ClientID        *string    `json:"clientId,omitempty"`
	DestWarehouseID *string    `json:"destWarehouseId,omitempty"`
	TransferGroupID *string    `json:"transferGroupId,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
}

// FromMovement creates MovementResponse from a ledger entry.
func FromMovement(m *ledger.StockMovement) MovementResponse {
	resp := MovementResponse{
		ID:             m.ID.String(),
		CreatedAt:      m.CreatedAt,
		CreatedBy:      m.CreatedBy,
		ParishID:       m.ParishID.String(),
		WarehouseID:    m.WarehouseID.String(),
		ProductID:      m.ProductID.String(),
		Kind:           string(m.Kind),
		Date:           m.Date,
		Quantity:       m.Quantity,
		Signed:         m.SignedQuantity(),
		UnitCost:       m.UnitCost,
		TotalValue:     m.TotalValue,
		InvoiceLine:    m.InvoiceLine,
		DocumentType:   m.DocumentType,
		DocumentNumber: m.DocumentNumber,
		DocumentDate:   m.DocumentDate,
		Notes:          m.Notes,
	}
	if m.InvoiceID != nil {
		s := m.InvoiceID.String()
		resp.InvoiceID = &s
	}
	if m.ClientID != nil {
		s := m.ClientID.String()
		resp.ClientID = &s
	}
	if m.DestWarehouseID != nil {
		s := m.DestWarehouseID.String()
		resp.DestWarehouseID = &s
	}
	if m.TransferGroupID != nil {
		s := m.TransferGroupID.String()
		resp.TransferGroupID = &s
	}
	return resp
}

// TransferResponse returns both legs of a transfer.
type TransferResponse struct {
	TransferGroupID string           `json:"transferGroupId"`
	Outbound        MovementResponse `json:"outbound"`
	Inbound         MovementResponse `json:"inbound"`
}

// StockLevelResponse is one row of the stock read side.
type StockLevelResponse struct {
	WarehouseID string         `json:"warehouseId"`
	ProductID   string         `json:"productId"`
	Quantity    types.Quantity `json:"quantity"`
}

// FromStockLevel creates StockLevelResponse from a ledger stock level.
func FromStockLevel(lvl ledger.StockLevel) StockLevelResponse {
	return StockLevelResponse{
		WarehouseID: lvl.WarehouseID.String(),
		ProductID:   lvl.ProductID.String(),
		Quantity:    lvl.Quantity,
	}
}

// CurrentStockResponse for GET /stock with both keys set.
type CurrentStockResponse struct {
	WarehouseID string         `json:"warehouseId"`
	ProductID   string         `json:"productId"`
	Quantity    types.Quantity `json:"quantity"`
}
