package inventory

import (
	"context"

	"enoria/internal/core/id"
)

// ListFilter narrows session listing.
type ListFilter struct {
	ParishID    *id.ID
	WarehouseID *id.ID
	Status      *SessionStatus
	Limit       int
	Offset      int
}

// Repository defines persistence operations for counting sessions.
type Repository interface {
	CreateSession(ctx context.Context, s *Session) error
	UpdateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, sessionID id.ID) (*Session, error)
	ListSessions(ctx context.Context, filter ListFilter) ([]*Session, error)

	AddItems(ctx context.Context, items []Item) error
	UpdateItem(ctx context.Context, item *Item) error
	GetItem(ctx context.Context, sessionID, itemID id.ID) (*Item, error)
	GetItems(ctx context.Context, sessionID id.ID) ([]Item, error)
}
