package warehouse

import (
	"context"

	"enoria/internal/core/id"
	"enoria/pkg/logger"
)

// Service provides business operations for the warehouse catalog.
type Service struct {
	repo Repository
}

// NewService creates a new warehouse service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new warehouse.
func (s *Service) Create(ctx context.Context, w *Warehouse) error {
	if err := w.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, w); err != nil {
		return err
	}

	logger.Info(ctx, "warehouse created", "id", w.ID, "code", w.Code, "parish_id", w.ParishID)
	return nil
}

// Update validates and persists changes to a warehouse.
func (s *Service) Update(ctx context.Context, w *Warehouse) error {
	if err := w.Validate(ctx); err != nil {
		return err
	}

	w.Touch()
	return s.repo.Update(ctx, w)
}

// GetByID retrieves a warehouse.
func (s *Service) GetByID(ctx context.Context, warehouseID id.ID) (*Warehouse, error) {
	return s.repo.GetByID(ctx, warehouseID)
}

// Deactivate marks a warehouse inactive.
func (s *Service) Deactivate(ctx context.Context, warehouseID id.ID) error {
	w, err := s.repo.GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}

	w.Active = false
	w.Touch()
	return s.repo.Update(ctx, w)
}

// List retrieves warehouses with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Warehouse, error) {
	return s.repo.List(ctx, filter)
}
