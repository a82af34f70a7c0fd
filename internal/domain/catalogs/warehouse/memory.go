package warehouse

import (
	"context"
	"sort"
	"sync"

	"enoria/internal/core/apperror"
	"enoria/internal/core/id"
)

// MemoryRepository is an in-memory warehouse store for tests and local
// development.
type MemoryRepository struct {
	mu    sync.Mutex
	items map[id.ID]*Warehouse
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[id.ID]*Warehouse)}
}

func (r *MemoryRepository) Create(ctx context.Context, w *Warehouse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.items[w.ID] = &cp
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, w *Warehouse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[w.ID]; !ok {
		return apperror.NewNotFound("warehouse", w.ID)
	}
	cp := *w
	r.items[w.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, warehouseID id.ID) (*Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.items[warehouseID]
	if !ok {
		return nil, apperror.NewNotFound("warehouse", warehouseID)
	}
	cp := *w
	return &cp, nil
}

func (r *MemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Warehouse
	for _, w := range r.items {
		if filter.ActiveOnly && !w.Active {
			continue
		}
		if filter.ParishID != nil && w.ParishID != *filter.ParishID {
			continue
		}
		cp := *w
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

var _ Repository = (*MemoryRepository)(nil)
