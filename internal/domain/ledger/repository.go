package ledger

import (
	"context"
	"time"

	"enoria/internal/core/id"
	"enoria/internal/core/types"
)

// MovementFilter narrows movement listing.
type MovementFilter struct {
	WarehouseID *id.ID
	ProductID   *id.ID
	ParishID    *id.ID
	Kind        *MovementKind
	InvoiceID   *id.ID
	FromDate    *time.Time
	ToDate      *time.Time
	Limit       int
	Offset      int
}

// StockLevel is a read-side row: quantity on hand for one (warehouse, product).
type StockLevel struct {
	WarehouseID id.ID          `db:"warehouse_id" json:"warehouseId"`
	ProductID   id.ID          `db:"product_id" json:"productId"`
	Quantity    types.Quantity `db:"quantity" json:"quantity"`
}

// Repository defines persistence operations for the movement store.
//
// The store keeps a summary row per (warehouse, product) updated in the same
// transaction as every insert/delete. The summary serves two purposes: a lock
// anchor to serialize validate-then-insert per key, and a cache for listings.
// CurrentStock stays authoritative: it is the signed sum over movements, and
// RecomputeSummary must always reproduce the cached value from the ledger.
type Repository interface {
	// Insert appends one movement and applies its signed quantity to the
	// summary row.
	Insert(ctx context.Context, m *StockMovement) error

	// InsertBatch appends a set of movements atomically (COPY inside an open
	// transaction) and applies their signed quantities to summary rows.
	InsertBatch(ctx context.Context, ms []StockMovement) error

	// DeleteByInvoice removes all movements whose provenance references the
	// invoice and reverts their contribution to summary rows. Returns the
	// number of movements removed.
	DeleteByInvoice(ctx context.Context, invoiceID id.ID) (int64, error)

	// ListByInvoice returns the movements generated for an invoice.
	ListByInvoice(ctx context.Context, invoiceID id.ID) ([]StockMovement, error)

	// List returns movements matching the filter, newest first.
	List(ctx context.Context, filter MovementFilter) ([]StockMovement, error)

	// CurrentStock returns the signed sum of movement quantities for the key.
	CurrentStock(ctx context.Context, warehouseID, productID id.ID) (types.Quantity, error)

	// LockKey takes a row lock on the (warehouse, product) summary row,
	// creating it when absent. Must be called inside a transaction; the lock
	// is held until commit and serializes concurrent validate-then-insert
	// sequences for the same key.
	LockKey(ctx context.Context, warehouseID, productID id.ID) error

	// StockByWarehouse returns non-zero stock levels for a warehouse.
	StockByWarehouse(ctx context.Context, warehouseID id.ID) ([]StockLevel, error)

	// RecomputeSummary rebuilds the summary row for a key from the ledger
	// and returns the recomputed quantity.
	RecomputeSummary(ctx context.Context, warehouseID, productID id.ID) (types.Quantity, error)
}
