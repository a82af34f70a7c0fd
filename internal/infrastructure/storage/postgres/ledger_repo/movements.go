// Package ledger_repo provides the PostgreSQL implementation of the stock
// movement ledger.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"enoria/internal/core/id"
	"enoria/internal/core/types"
	"enoria/internal/domain/ledger"
	"enoria/internal/infrastructure/storage/postgres"
)

const (
	movementsTable = "ledger_movements"
	summaryTable   = "ledger_stock_summary"
)

var movementColumns = []string{
	"id", "created_at", "created_by",
	"parish_id", "warehouse_id", "product_id",
	"kind", "date", "quantity", "unit_cost", "total_value",
	"invoice_id", "invoice_line", "document_type", "document_number", "document_date", "client_id",
	"dest_warehouse_id", "transfer_group_id", "notes",
}

// signedQuantitySQL mirrors StockMovement.SignedQuantity for aggregation.
const signedQuantitySQL = `CASE
	WHEN kind = 'out' THEN -quantity
	WHEN kind = 'transfer' AND dest_warehouse_id IS NOT NULL THEN -quantity
	ELSE quantity
END`

// MovementRepo implements ledger.Repository.
type MovementRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewMovementRepo creates a new movement repository.
func NewMovementRepo(txManager *postgres.TxManager) *MovementRepo {
	return &MovementRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func movementValues(m *ledger.StockMovement) []any {
	return []any{
		m.ID, m.CreatedAt, m.CreatedBy,
		m.ParishID, m.WarehouseID, m.ProductID,
		m.Kind, m.Date, m.Quantity, m.UnitCost, m.TotalValue,
		m.InvoiceID, m.InvoiceLine, m.DocumentType, m.DocumentNumber, m.DocumentDate, m.ClientID,
		m.DestWarehouseID, m.TransferGroupID, m.Notes,
	}
}

// Insert appends one movement and applies its signed quantity to the
// summary row.
func (r *MovementRepo) Insert(ctx context.Context, m *ledger.StockMovement) error {
	q := r.builder.Insert(movementsTable).
		Columns(movementColumns...).
		Values(movementValues(m)...)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}

	return r.applySummaryDelta(ctx, m.WarehouseID, m.ProductID, m.SignedQuantity())
}

// InsertBatch appends a set of movements via COPY when inside a
// transaction, falling back to multi-row INSERT otherwise.
func (r *MovementRepo) InsertBatch(ctx context.Context, ms []ledger.StockMovement) error {
	if len(ms) == 0 {
		return nil
	}

	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(ms))
		for i := range ms {
			rows = append(rows, movementValues(&ms[i]))
		}
		if _, err := inserter.CopyFromSlice(ctx, movementsTable, movementColumns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
	} else {
		q := r.builder.Insert(movementsTable).Columns(movementColumns...)
		for i := range ms {
			q = q.Values(movementValues(&ms[i])...)
		}
		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert movements: %w", err)
		}
	}

	for key, delta := range summaryDeltas(ms) {
		if err := r.applySummaryDelta(ctx, key.warehouseID, key.productID, delta); err != nil {
			return err
		}
	}
	return nil
}

// DeleteByInvoice removes all movements generated for the invoice and
// reverts their contribution to summary rows.
func (r *MovementRepo) DeleteByInvoice(ctx context.Context, invoiceID id.ID) (int64, error) {
	sql := fmt.Sprintf(`
		DELETE FROM %s
		WHERE invoice_id = $1
		RETURNING warehouse_id, product_id, kind, dest_warehouse_id, quantity
	`, movementsTable)

	type deletedRow struct {
		WarehouseID     id.ID          `db:"warehouse_id"`
		ProductID       id.ID          `db:"product_id"`
		Kind            string         `db:"kind"`
		DestWarehouseID *id.ID         `db:"dest_warehouse_id"`
		Quantity        types.Quantity `db:"quantity"`
	}

	var deleted []deletedRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &deleted, sql, invoiceID); err != nil {
		return 0, fmt.Errorf("delete invoice movements: %w", err)
	}

	deltas := make(map[summaryKey]types.Quantity)
	for _, row := range deleted {
		m := ledger.StockMovement{
			Kind:            ledger.MovementKind(row.Kind),
			DestWarehouseID: row.DestWarehouseID,
			Quantity:        row.Quantity,
		}
		deltas[summaryKey{row.WarehouseID, row.ProductID}] -= m.SignedQuantity()
	}
	for key, delta := range deltas {
		if err := r.applySummaryDelta(ctx, key.warehouseID, key.productID, delta); err != nil {
			return 0, err
		}
	}

	return int64(len(deleted)), nil
}

// ListByInvoice returns the movements generated for an invoice.
func (r *MovementRepo) ListByInvoice(ctx context.Context, invoiceID id.ID) ([]ledger.StockMovement, error) {
	inv := invoiceID
	return r.List(ctx, ledger.MovementFilter{InvoiceID: &inv, Limit: 10_000})
}

// List returns movements matching the filter, newest first.
func (r *MovementRepo) List(ctx context.Context, filter ledger.MovementFilter) ([]ledger.StockMovement, error) {
	q := r.builder.Select(movementColumns...).From(movementsTable)

	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.ParishID != nil {
		q = q.Where(squirrel.Eq{"parish_id": *filter.ParishID})
	}
	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *filter.Kind})
	}
	if filter.InvoiceID != nil {
		q = q.Where(squirrel.Eq{"invoice_id": *filter.InvoiceID})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.ToDate})
	}

	q = q.OrderBy("date DESC", "created_at DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []ledger.StockMovement
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// CurrentStock returns the signed sum over the full movement history.
// The summary row is only a cache; this is the authoritative value.
func (r *MovementRepo) CurrentStock(ctx context.Context, warehouseID, productID id.ID) (types.Quantity, error) {
	sql := fmt.Sprintf(`
		SELECT COALESCE(SUM(%s), 0)
		FROM %s
		WHERE warehouse_id = $1 AND product_id = $2
	`, signedQuantitySQL, movementsTable)

	var scaled int64
	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, warehouseID, productID).Scan(&scaled)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("sum movements: %w", err)
	}

	return types.NewQuantityFromInt64Scaled(scaled), nil
}

// LockKey takes the row lock on the (warehouse, product) summary row,
// creating it when absent. The upsert acquires the lock either way and
// holds it until the surrounding transaction commits.
func (r *MovementRepo) LockKey(ctx context.Context, warehouseID, productID id.ID) error {
	if r.txManager.GetTx(ctx) == nil {
		return fmt.Errorf("LockKey requires transaction context")
	}

	sql := fmt.Sprintf(`
		INSERT INTO %s (warehouse_id, product_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (warehouse_id, product_id) DO UPDATE SET updated_at = now()
		RETURNING quantity
	`, summaryTable)

	var quantity int64
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, warehouseID, productID).Scan(&quantity); err != nil {
		return fmt.Errorf("lock summary row: %w", err)
	}
	return nil
}

// StockByWarehouse reads non-zero stock levels from the summary cache.
func (r *MovementRepo) StockByWarehouse(ctx context.Context, warehouseID id.ID) ([]ledger.StockLevel, error) {
	q := r.builder.Select("warehouse_id", "product_id", "quantity").
		From(summaryTable).
		Where(squirrel.Eq{"warehouse_id": warehouseID}).
		Where(squirrel.NotEq{"quantity": int64(0)}).
		OrderBy("product_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var levels []ledger.StockLevel
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &levels, sql, args...); err != nil {
		return nil, fmt.Errorf("select stock levels: %w", err)
	}

	return levels, nil
}

// RecomputeSummary rebuilds the summary row from the ledger. Run after
// manual interventions or suspected drift.
func (r *MovementRepo) RecomputeSummary(ctx context.Context, warehouseID, productID id.ID) (types.Quantity, error) {
	sql := fmt.Sprintf(`
		INSERT INTO %s (warehouse_id, product_id, quantity, updated_at)
		SELECT $1, $2, COALESCE(SUM(%s), 0), now()
		FROM %s
		WHERE warehouse_id = $1 AND product_id = $2
		ON CONFLICT (warehouse_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()
		RETURNING quantity
	`, summaryTable, signedQuantitySQL, movementsTable)

	var scaled int64
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, warehouseID, productID).Scan(&scaled); err != nil {
		return 0, fmt.Errorf("recompute summary: %w", err)
	}

	return types.NewQuantityFromInt64Scaled(scaled), nil
}

// applySummaryDelta folds a signed quantity into the summary cache.
func (r *MovementRepo) applySummaryDelta(ctx context.Context, warehouseID, productID id.ID, delta types.Quantity) error {
	if delta.IsZero() {
		return nil
	}

	sql := fmt.Sprintf(`
		INSERT INTO %s (warehouse_id, product_id, quantity, last_movement_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (warehouse_id, product_id)
		DO UPDATE SET
			quantity = %s.quantity + EXCLUDED.quantity,
			last_movement_at = now(),
			updated_at = now()
	`, summaryTable, summaryTable)

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, warehouseID, productID, delta); err != nil {
		return fmt.Errorf("update summary: %w", err)
	}
	return nil
}

type summaryKey struct {
	warehouseID id.ID
	productID   id.ID
}

func summaryDeltas(ms []ledger.StockMovement) map[summaryKey]types.Quantity {
	deltas := make(map[summaryKey]types.Quantity)
	for i := range ms {
		m := &ms[i]
		deltas[summaryKey{m.WarehouseID, m.ProductID}] += m.SignedQuantity()
	}
	return deltas
}

// Ensure interface compliance.
var _ ledger.Repository = (*MovementRepo)(nil)
