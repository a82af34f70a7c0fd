package product

import (
	"context"
	"sort"
	"strings"
	"sync"

	"enoria/internal/core/apperror"
	"enoria/internal/core/id"
)

// MemoryRepository is an in-memory product store for tests and local
// development.
type MemoryRepository struct {
	mu    sync.Mutex
	items map[id.ID]*Product
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[id.ID]*Product)}
}

func (r *MemoryRepository) Create(ctx context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		return apperror.NewNotFound("product", p.ID)
	}
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Product
	for _, p := range r.items {
		if filter.ActiveOnly && !p.Active {
			continue
		}
		if filter.TracksStock != nil && p.TracksStock != *filter.TracksStock {
			continue
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(p.Name), s) &&
				!strings.Contains(strings.ToLower(p.Code), s) {
				continue
			}
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

var _ Repository = (*MemoryRepository)(nil)
