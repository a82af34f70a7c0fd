package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"enoria/internal/core/apperror"
	appctx "enoria/internal/core/context"
	"enoria/internal/core/id"
	"enoria/internal/core/tx"
	"enoria/internal/core/types"
	"enoria/internal/domain/catalogs/product"
	"enoria/internal/domain/catalogs/warehouse"
	"enoria/pkg/logger"
)

// Auditor records ledger-affecting operations. Implementations are best-effort;
// a failed audit write never fails the business operation.
type Auditor interface {
	LogChange(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error
}

// Service provides the ledger operations: validated movement admission, atomic
// transfers, and the read side (current stock, movement history).
type Service struct {
	repo       Repository
	products   product.Repository
	warehouses warehouse.Repository
	txManager  tx.Manager
	auditor    Auditor // optional
}

// NewService creates a new ledger service.
func NewService(
	repo Repository,
	products product.Repository,
	warehouses warehouse.Repository,
	txManager tx.Manager,
	auditor Auditor,
) *Service {
	return &Service{
		repo:       repo,
		products:   products,
		warehouses: warehouses,
		txManager:  txManager,
		auditor:    auditor,
	}
}

// CreateMovementInput carries caller-supplied movement fields.
type CreateMovementInput struct {
	WarehouseID id.ID
	ProductID   id.ID
	ParishID    id.ID
	Kind        MovementKind
	Date        time.Time
	Quantity    types.Quantity
	UnitCost    *types.Money
	TotalValue  *types.MinorUnits

	DestWarehouseID *id.ID
	ClientID        *id.ID
	DocumentType    *string
	DocumentNumber  *string
	DocumentDate    *time.Time
	Notes           *string
}

// TransferInput carries the fields of a two-leg transfer.
type TransferInput struct {
	SourceWarehouseID id.ID
	DestWarehouseID   id.ID
	ProductID         id.ID
	ParishID          id.ID
	Date              time.Time
	Quantity          types.Quantity
	UnitCost          *types.Money
	Notes             *string
}

// CreateMovement validates and appends one movement. For kind transfer it
// creates both legs (a transfer is always paired at creation time) and
// returns the outbound leg.
//
// The whole validate-then-insert sequence runs in one transaction with the
// (warehouse, product) summary row locked, so two concurrent out movements
// cannot both pass the stock check.
func (s *Service) CreateMovement(ctx context.Context, input CreateMovementInput) (*StockMovement, error) {
	if input.Kind == KindTransfer {
		if input.DestWarehouseID == nil {
			return nil, apperror.NewValidation("destination warehouse is required for transfers").
				WithDetail("field", "destWarehouseId")
		}
		out, _, err := s.CreateTransfer(ctx, TransferInput{
			SourceWarehouseID: input.WarehouseID,
			DestWarehouseID:   *input.DestWarehouseID,
			ProductID:         input.ProductID,
			ParishID:          input.ParishID,
			Date:              input.Date,
			Quantity:          input.Quantity,
			UnitCost:          input.UnitCost,
			Notes:             input.Notes,
		})
		return out, err
	}

	m := s.buildMovement(ctx, input)
	if err := m.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.LockKey(ctx, m.WarehouseID, m.ProductID); err != nil {
			return fmt.Errorf("lock stock key: %w", err)
		}

		if err := s.validateReferences(ctx, m); err != nil {
			return err
		}

		if err := s.checkSufficientStock(ctx, m); err != nil {
			return err
		}

		m.DeriveTotalValue()

		if err := s.repo.Insert(ctx, m); err != nil {
			return fmt.Errorf("insert movement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, "StockMovement", m.ID, "create", map[string]any{
		"kind":         string(m.Kind),
		"warehouse_id": m.WarehouseID.String(),
		"product_id":   m.ProductID.String(),
		"quantity":     m.Quantity.String(),
	})

	logger.Info(ctx, "movement recorded",
		"id", m.ID,
		"kind", m.Kind,
		"warehouse_id", m.WarehouseID,
		"product_id", m.ProductID,
		"quantity", m.Quantity,
	)
	return m, nil
}

// CreateTransfer moves quantity between two warehouses as one atomic unit:
// an outbound transfer leg at the source (destination set) and a mirrored
// inbound leg at the destination (destination nil). Either both legs persist
// or neither does.
func (s *Service) CreateTransfer(ctx context.Context, input TransferInput) (*StockMovement, *StockMovement, error) {
	if id.IsNil(input.DestWarehouseID) {
		return nil, nil, apperror.NewValidation("destination warehouse is required for transfers").
			WithDetail("field", "destWarehouseId")
	}
	if input.SourceWarehouseID == input.DestWarehouseID {
		return nil, nil, apperror.NewInvalidOperation("destination warehouse must differ from source").
			WithDetail("warehouse_id", input.SourceWarehouseID.String())
	}

	groupID := id.New()
	actor := appctx.GetActorID(ctx)

	outbound := &StockMovement{
		ID:              id.New(),
		CreatedAt:       time.Now().UTC(),
		CreatedBy:       actor,
		ParishID:        input.ParishID,
		WarehouseID:     input.SourceWarehouseID,
		ProductID:       input.ProductID,
		Kind:            KindTransfer,
		Date:            input.Date,
		Quantity:        input.Quantity,
		UnitCost:        input.UnitCost,
		DestWarehouseID: &input.DestWarehouseID,
		TransferGroupID: &groupID,
		Notes:           input.Notes,
	}
	if err := outbound.Validate(ctx); err != nil {
		return nil, nil, err
	}

	var inbound *StockMovement

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Both summary rows are locked up front, ordered the same way
		// RecordDerived orders its keys, so two opposite-direction transfers
		// over the same pair of warehouses cannot deadlock on each other.
		legs := []StockMovement{
			{WarehouseID: input.SourceWarehouseID, ProductID: input.ProductID},
			{WarehouseID: input.DestWarehouseID, ProductID: input.ProductID},
		}
		for _, key := range movementKeys(legs) {
			if err := s.repo.LockKey(ctx, key.warehouseID, key.productID); err != nil {
				return fmt.Errorf("lock stock key: %w", err)
			}
		}

		if err := s.validateReferences(ctx, outbound); err != nil {
			return err
		}

		if err := s.checkSufficientStock(ctx, outbound); err != nil {
			return err
		}

		outbound.DeriveTotalValue()

		source, err := s.warehouses.GetByID(ctx, input.SourceWarehouseID)
		if err != nil {
			return err
		}

		note := fmt.Sprintf("transfer from %s (%s)", source.Name, source.Code)
		inbound = &StockMovement{
			ID:              id.New(),
			CreatedAt:       outbound.CreatedAt,
			CreatedBy:       actor,
			ParishID:        input.ParishID,
			WarehouseID:     input.DestWarehouseID,
			ProductID:       input.ProductID,
			Kind:            KindTransfer,
			Date:            input.Date,
			Quantity:        input.Quantity,
			UnitCost:        outbound.UnitCost,
			TotalValue:      outbound.TotalValue,
			TransferGroupID: &groupID,
			Notes:           &note,
		}

		if err := s.repo.Insert(ctx, outbound); err != nil {
			return fmt.Errorf("insert outbound leg: %w", err)
		}
		if err := s.repo.Insert(ctx, inbound); err != nil {
			return fmt.Errorf("insert inbound leg: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.audit(ctx, "StockMovement", outbound.ID, "transfer", map[string]any{
		"transfer_group_id": groupID.String(),
		"source":            input.SourceWarehouseID.String(),
		"destination":       input.DestWarehouseID.String(),
		"product_id":        input.ProductID.String(),
		"quantity":          input.Quantity.String(),
	})

	logger.Info(ctx, "transfer recorded",
		"transfer_group_id", groupID,
		"source", input.SourceWarehouseID,
		"destination", input.DestWarehouseID,
		"quantity", input.Quantity,
	)
	return outbound, inbound, nil
}

// RecordDerived appends movements produced by document projections (invoice
// generator, inventory reconciliation). It must be called inside the caller's
// transaction.
//
// This is the explicit validation-bypass path: referential invariants hold by
// construction at the caller, and stock sufficiency is deliberately not
// rechecked; reconciliation must be able to bring stock down to the counted
// physical truth. Summary rows for all touched keys are still locked, in
// deterministic order, so derived writes serialize against direct ones.
func (s *Service) RecordDerived(ctx context.Context, movements []StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	actor := appctx.GetActorID(ctx)
	for i := range movements {
		m := &movements[i]
		if id.IsNil(m.ID) {
			m.ID = id.New()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now().UTC()
		}
		if m.CreatedBy == "" {
			m.CreatedBy = actor
		}
		if err := m.Validate(ctx); err != nil {
			return err
		}
		m.DeriveTotalValue()
	}

	for _, key := range movementKeys(movements) {
		if err := s.repo.LockKey(ctx, key.warehouseID, key.productID); err != nil {
			return fmt.Errorf("lock stock key: %w", err)
		}
	}

	if err := s.repo.InsertBatch(ctx, movements); err != nil {
		return fmt.Errorf("insert derived movements: %w", err)
	}
	return nil
}

// CurrentStock returns quantity on hand for a (warehouse, product) pair,
// computed as the signed sum over the full movement history.
func (s *Service) CurrentStock(ctx context.Context, warehouseID, productID id.ID) (types.Quantity, error) {
	return s.repo.CurrentStock(ctx, warehouseID, productID)
}

// StockByWarehouse returns non-zero stock levels for a warehouse.
func (s *Service) StockByWarehouse(ctx context.Context, warehouseID id.ID) ([]StockLevel, error) {
	return s.repo.StockByWarehouse(ctx, warehouseID)
}

// ListMovements returns movement history matching the filter.
func (s *Service) ListMovements(ctx context.Context, filter MovementFilter) ([]StockMovement, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}

// DeleteByInvoice removes all movements generated for an invoice. Used by the
// invoice projector only; direct callers never delete ledger entries.
func (s *Service) DeleteByInvoice(ctx context.Context, invoiceID id.ID) (int64, error) {
	return s.repo.DeleteByInvoice(ctx, invoiceID)
}

// validateReferences checks referential constraints in a fixed order: warehouse
// exists, product exists and tracks stock, transfer destination present,
// distinct and existing.
func (s *Service) validateReferences(ctx context.Context, m *StockMovement) error {
	if _, err := s.warehouses.GetByID(ctx, m.WarehouseID); err != nil {
		return err
	}

	p, err := s.products.GetByID(ctx, m.ProductID)
	if err != nil {
		return err
	}
	if !p.TracksStock {
		return apperror.NewInvalidOperation("product does not track stock").
			WithDetail("product_id", m.ProductID.String())
	}

	if m.Kind == KindTransfer && m.DestWarehouseID != nil {
		if *m.DestWarehouseID == m.WarehouseID {
			return apperror.NewInvalidOperation("destination warehouse must differ from source").
				WithDetail("warehouse_id", m.WarehouseID.String())
		}
		if _, err := s.warehouses.GetByID(ctx, *m.DestWarehouseID); err != nil {
			return err
		}
	}

	return nil
}

// checkSufficientStock rejects depleting movements that would push the
// aggregate negative. Only out movements and the outbound transfer leg
// deplete; in, adjustment, return and the inbound leg are never checked.
func (s *Service) checkSufficientStock(ctx context.Context, m *StockMovement) error {
	if m.Kind != KindOut && !m.IsOutboundTransferLeg() {
		return nil
	}

	available, err := s.repo.CurrentStock(ctx, m.WarehouseID, m.ProductID)
	if err != nil {
		return fmt.Errorf("current stock: %w", err)
	}

	if available < m.Quantity {
		return apperror.NewInsufficientStock(
			m.ProductID.String(),
			m.Quantity.String(),
			available.String(),
		)
	}
	return nil
}

func (s *Service) buildMovement(ctx context.Context, input CreateMovementInput) *StockMovement {
	return &StockMovement{
		ID:              id.New(),
		CreatedAt:       time.Now().UTC(),
		CreatedBy:       appctx.GetActorID(ctx),
		ParishID:        input.ParishID,
		WarehouseID:     input.WarehouseID,
		ProductID:       input.ProductID,
		Kind:            input.Kind,
		Date:            input.Date,
		Quantity:        input.Quantity,
		UnitCost:        input.UnitCost,
		TotalValue:      input.TotalValue,
		DestWarehouseID: input.DestWarehouseID,
		ClientID:        input.ClientID,
		DocumentType:    input.DocumentType,
		DocumentNumber:  input.DocumentNumber,
		DocumentDate:    input.DocumentDate,
		Notes:           input.Notes,
	}
}

func (s *Service) audit(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.LogChange(ctx, entityType, entityID, action, changes); err != nil {
		logger.Warn(ctx, "audit write failed", "entity_type", entityType, "entity_id", entityID, "error", err)
	}
}

type stockKey struct {
	warehouseID id.ID
	productID   id.ID
}

// movementKeys returns the distinct (warehouse, product) keys of a movement
// set, sorted so concurrent batches lock in the same order.
func movementKeys(movements []StockMovement) []stockKey {
	seen := make(map[stockKey]struct{}, len(movements))
	keys := make([]stockKey, 0, len(movements))
	for _, m := range movements {
		k := stockKey{m.WarehouseID, m.ProductID}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].warehouseID != keys[j].warehouseID {
			return keys[i].warehouseID.String() < keys[j].warehouseID.String()
		}
		return keys[i].productID.String() < keys[j].productID.String()
	})
	return keys
}
