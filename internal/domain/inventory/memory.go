package inventory

import (
	"context"
	"sort"
	"sync"

	"enoria/internal/core/apperror"
	"enoria/internal/core/id"
)

// MemoryRepository is an in-memory session store for tests and local
// development.
type MemoryRepository struct {
	mu       sync.Mutex
	sessions map[id.ID]*Session
	items    map[id.ID][]Item
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[id.ID]*Session),
		items:    make(map[id.ID][]Item),
	}
}

func (r *MemoryRepository) CreateSession(ctx context.Context, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *MemoryRepository) UpdateSession(ctx context.Context, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; !ok {
		return apperror.NewNotFound("inventory session", s.ID)
	}
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetSession(ctx context.Context, sessionID id.ID) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, apperror.NewNotFound("inventory session", sessionID)
	}
	cp := *s
	return &cp, nil
}

func (r *MemoryRepository) ListSessions(ctx context.Context, filter ListFilter) ([]*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Session
	for _, s := range r.sessions {
		if filter.ParishID != nil && s.ParishID != *filter.ParishID {
			continue
		}
		if filter.WarehouseID != nil && s.WarehouseID != *filter.WarehouseID {
			continue
		}
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *MemoryRepository) AddItems(ctx context.Context, items []Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		r.items[item.SessionID] = append(r.items[item.SessionID], item)
	}
	return nil
}

func (r *MemoryRepository) UpdateItem(ctx context.Context, item *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.items[item.SessionID]
	for i := range list {
		if list[i].ID == item.ID {
			list[i] = *item
			return nil
		}
	}
	return apperror.NewNotFound("session item", item.ID)
}

func (r *MemoryRepository) GetItem(ctx context.Context, sessionID, itemID id.ID) (*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items[sessionID] {
		if item.ID == itemID {
			cp := item
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("session item", itemID)
}

func (r *MemoryRepository) GetItems(ctx context.Context, sessionID id.ID) ([]Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Item, len(r.items[sessionID]))
	copy(out, r.items[sessionID])
	return out, nil
}

var _ Repository = (*MemoryRepository)(nil)
