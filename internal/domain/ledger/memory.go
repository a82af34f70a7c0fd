package ledger

import (
	"context"
	"sync"

	"enoria/internal/core/id"
	"enoria/internal/core/types"
)

// MemoryRepository is an in-memory movement store used in tests and local
// development. It keeps the same contract as the postgres implementation:
// current stock is always the signed sum over stored movements.
type MemoryRepository struct {
	mu        sync.Mutex
	movements []StockMovement

	// InsertErr, when set, is consulted before every insert. Lets tests
	// inject a failure on a specific movement (e.g. the second transfer leg).
	InsertErr func(m *StockMovement) error

	// LockCalls records LockKey invocations in order.
	LockCalls [][2]id.ID
}

// NewMemoryRepository creates an empty in-memory movement store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Insert(ctx context.Context, m *StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(m)
}

func (r *MemoryRepository) InsertBatch(ctx context.Context, ms []StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range ms {
		if err := r.insertLocked(&ms[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *MemoryRepository) insertLocked(m *StockMovement) error {
	if r.InsertErr != nil {
		if err := r.InsertErr(m); err != nil {
			return err
		}
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *MemoryRepository) DeleteByInvoice(ctx context.Context, invoiceID id.ID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.movements[:0]
	var removed int64
	for _, m := range r.movements {
		if m.InvoiceID != nil && *m.InvoiceID == invoiceID {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	r.movements = kept
	return removed, nil
}

func (r *MemoryRepository) ListByInvoice(ctx context.Context, invoiceID id.ID) ([]StockMovement, error) {
	inv := invoiceID
	return r.List(ctx, MovementFilter{InvoiceID: &inv, Limit: len(r.movements) + 1})
}

func (r *MemoryRepository) List(ctx context.Context, filter MovementFilter) ([]StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []StockMovement
	for i := len(r.movements) - 1; i >= 0; i-- {
		m := r.movements[i]
		if !matchesFilter(&m, filter) {
			continue
		}
		out = append(out, m)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matchesFilter(m *StockMovement, f MovementFilter) bool {
	if f.WarehouseID != nil && m.WarehouseID != *f.WarehouseID {
		return false
	}
	if f.ProductID != nil && m.ProductID != *f.ProductID {
		return false
	}
	if f.ParishID != nil && m.ParishID != *f.ParishID {
		return false
	}
	if f.Kind != nil && m.Kind != *f.Kind {
		return false
	}
	if f.InvoiceID != nil && (m.InvoiceID == nil || *m.InvoiceID != *f.InvoiceID) {
		return false
	}
	if f.FromDate != nil && m.Date.Before(*f.FromDate) {
		return false
	}
	if f.ToDate != nil && m.Date.After(*f.ToDate) {
		return false
	}
	return true
}

func (r *MemoryRepository) CurrentStock(ctx context.Context, warehouseID, productID id.ID) (types.Quantity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total types.Quantity
	for i := range r.movements {
		m := &r.movements[i]
		if m.WarehouseID == warehouseID && m.ProductID == productID {
			total += m.SignedQuantity()
		}
	}
	return total, nil
}

func (r *MemoryRepository) LockKey(ctx context.Context, warehouseID, productID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.LockCalls = append(r.LockCalls, [2]id.ID{warehouseID, productID})
	return nil
}

func (r *MemoryRepository) StockByWarehouse(ctx context.Context, warehouseID id.ID) ([]StockLevel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	totals := make(map[id.ID]types.Quantity)
	var order []id.ID
	for i := range r.movements {
		m := &r.movements[i]
		if m.WarehouseID != warehouseID {
			continue
		}
		if _, ok := totals[m.ProductID]; !ok {
			order = append(order, m.ProductID)
		}
		totals[m.ProductID] += m.SignedQuantity()
	}

	var out []StockLevel
	for _, pid := range order {
		if totals[pid] == 0 {
			continue
		}
		out = append(out, StockLevel{
			WarehouseID: warehouseID,
			ProductID:   pid,
			Quantity:    totals[pid],
		})
	}
	return out, nil
}

func (r *MemoryRepository) RecomputeSummary(ctx context.Context, warehouseID, productID id.ID) (types.Quantity, error) {
	return r.CurrentStock(ctx, warehouseID, productID)
}

// Movements returns a copy of all stored movements in insertion order.
func (r *MemoryRepository) Movements() []StockMovement {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]StockMovement, len(r.movements))
	copy(out, r.movements)
	return out
}

func (r *MemoryRepository) snapshot() []StockMovement {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := make([]StockMovement, len(r.movements))
	copy(snap, r.movements)
	return snap
}

func (r *MemoryRepository) restore(snap []StockMovement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = snap
}

// MemoryTxManager pairs with MemoryRepository: it snapshots the store before
// running fn and restores it when fn fails, giving tests real rollback
// semantics without a database.
type MemoryTxManager struct {
	Repo *MemoryRepository
}

func NewMemoryTxManager(repo *MemoryRepository) *MemoryTxManager {
	return &MemoryTxManager{Repo: repo}
}

func (m *MemoryTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if isMemoryTx(ctx) {
		return fn(ctx)
	}
	snap := m.Repo.snapshot()
	err := fn(withMemoryTx(ctx))
	if err != nil {
		m.Repo.restore(snap)
		return err
	}
	return nil
}

func (m *MemoryTxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memoryTxKey struct{}

func withMemoryTx(ctx context.Context) context.Context {
	return context.WithValue(ctx, memoryTxKey{}, true)
}

func isMemoryTx(ctx context.Context) bool {
	v, _ := ctx.Value(memoryTxKey{}).(bool)
	return v
}

var _ Repository = (*MemoryRepository)(nil)
