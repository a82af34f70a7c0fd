package inventory

import (
	"context"
	"fmt"
	"time"

	"enoria/internal/core/apperror"
	appctx "enoria/internal/core/context"
	"enoria/internal/core/id"
	"enoria/internal/core/numerator"
	"enoria/internal/core/tx"
	"enoria/internal/core/types"
	"enoria/internal/domain/catalogs/product"
	"enoria/internal/domain/catalogs/warehouse"
	"enoria/internal/domain/ledger"
	"enoria/pkg/logger"
)

// NumberPrefix for session document numbers (INV-2026-00001).
const NumberPrefix = "INV"

// Service runs the inventory counting workflow: open a session with book
// snapshots, record physical counts, complete to reconcile the ledger.
type Service struct {
	repo       Repository
	ledgerSvc  *ledger.Service
	products   product.Repository
	warehouses warehouse.Repository
	numbers    numerator.Generator
	txManager  tx.Manager
	auditor    ledger.Auditor // optional
}

// NewService creates a new inventory service.
func NewService(
	repo Repository,
	ledgerSvc *ledger.Service,
	products product.Repository,
	warehouses warehouse.Repository,
	numbers numerator.Generator,
	txManager tx.Manager,
	auditor ledger.Auditor,
) *Service {
	return &Service{
		repo:       repo,
		ledgerSvc:  ledgerSvc,
		products:   products,
		warehouses: warehouses,
		numbers:    numbers,
		txManager:  txManager,
		auditor:    auditor,
	}
}

// OpenSessionInput carries session creation fields.
type OpenSessionInput struct {
	ParishID    id.ID
	WarehouseID id.ID
	Date        time.Time
	Comment     string

	// ProductIDs limits the count to specific products. When empty the
	// session covers every product with non-zero stock in the warehouse.
	ProductIDs []id.ID
}

// OpenSession creates an open counting session. Book quantities are
// snapshotted at this moment; movements recorded after open and before
// complete will surface as count deltas, which is the accepted trade-off
// of counting a live warehouse.
func (s *Service) OpenSession(ctx context.Context, input OpenSessionInput) (*Session, []Item, error) {
	if _, err := s.warehouses.GetByID(ctx, input.WarehouseID); err != nil {
		return nil, nil, err
	}

	sess := NewSession(input.ParishID, input.WarehouseID, input.Date)
	sess.Comment = input.Comment
	sess.CreatedBy = appctx.GetActorID(ctx)
	if err := sess.Validate(ctx); err != nil {
		return nil, nil, err
	}

	// The document number is drawn outside the transaction; a rollback
	// leaves a numbering gap rather than a held sequence lock.
	number, err := s.numbers.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix), nil, sess.Date)
	if err != nil {
		return nil, nil, fmt.Errorf("next session number: %w", err)
	}
	sess.Number = number

	var items []Item

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		items, err = s.buildItems(ctx, sess, input.ProductIDs)
		if err != nil {
			return err
		}

		if err := s.repo.CreateSession(ctx, sess); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		if len(items) > 0 {
			if err := s.repo.AddItems(ctx, items); err != nil {
				return fmt.Errorf("add session items: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.audit(ctx, sess.ID, "open", map[string]any{
		"number":       sess.Number,
		"warehouse_id": sess.WarehouseID.String(),
		"items":        len(items),
	})

	logger.Info(ctx, "inventory session opened",
		"session_id", sess.ID,
		"number", sess.Number,
		"warehouse_id", sess.WarehouseID,
		"items", len(items),
	)
	return sess, items, nil
}

// buildItems snapshots book quantities for the session scope.
func (s *Service) buildItems(ctx context.Context, sess *Session, productIDs []id.ID) ([]Item, error) {
	if len(productIDs) == 0 {
		levels, err := s.ledgerSvc.StockByWarehouse(ctx, sess.WarehouseID)
		if err != nil {
			return nil, err
		}
		items := make([]Item, 0, len(levels))
		for _, lvl := range levels {
			pid := lvl.ProductID
			items = append(items, Item{
				ID:           id.New(),
				SessionID:    sess.ID,
				Type:         ItemProduct,
				ProductID:    &pid,
				BookQuantity: lvl.Quantity,
			})
		}
		return items, nil
	}

	items := make([]Item, 0, len(productIDs))
	for _, pid := range productIDs {
		p, err := s.products.GetByID(ctx, pid)
		if err != nil {
			return nil, err
		}
		if !p.TracksStock {
			return nil, apperror.NewInvalidOperation("product does not track stock").
				WithDetail("product_id", pid.String())
		}

		book, err := s.ledgerSvc.CurrentStock(ctx, sess.WarehouseID, pid)
		if err != nil {
			return nil, err
		}

		pid := pid
		items = append(items, Item{
			ID:           id.New(),
			SessionID:    sess.ID,
			Type:         ItemProduct,
			ProductID:    &pid,
			BookQuantity: book,
		})
	}
	return items, nil
}

// AddFixedAsset adds a fixed asset position to an open session.
// Fixed assets are counted for the record and never touch the stock ledger.
func (s *Service) AddFixedAsset(ctx context.Context, sessionID, assetID id.ID, notes *string) (*Item, error) {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.IsOpen() {
		return nil, apperror.NewInvalidOperation("session is completed").
			WithDetail("session_id", sessionID.String())
	}

	item := Item{
		ID:        id.New(),
		SessionID: sessionID,
		Type:      ItemFixedAsset,
		AssetID:   &assetID,
		Notes:     notes,
	}
	if err := s.repo.AddItems(ctx, []Item{item}); err != nil {
		return nil, err
	}
	return &item, nil
}

// RecordCount stores the physical count for one item of an open session.
// Counts may be re-recorded until the session completes; the last value wins.
func (s *Service) RecordCount(ctx context.Context, sessionID, itemID id.ID, physical types.Quantity, notes *string) (*Item, error) {
	if physical.IsNegative() {
		return nil, apperror.NewValidation("physical quantity cannot be negative").
			WithDetail("field", "physicalQuantity")
	}

	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.IsOpen() {
		return nil, apperror.NewInvalidOperation("session is completed").
			WithDetail("session_id", sessionID.String())
	}

	item, err := s.repo.GetItem(ctx, sessionID, itemID)
	if err != nil {
		return nil, err
	}

	item.PhysicalQuantity = &physical
	if notes != nil {
		item.Notes = notes
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// CompleteResult summarizes session completion.
type CompleteResult struct {
	Session          *Session `json:"session"`
	MovementsCreated int      `json:"movementsCreated"`
}

// Complete finishes an open session: for every product item the difference
// between physical and book becomes a ledger movement, then the session
// turns terminal.
//
// Surplus becomes an in movement, shortage an out movement. An item that was
// never counted reads as a physical quantity of zero, so its whole book
// quantity is written off. Quantities carry three decimals, so any nonzero
// delta is at least one thousandth of a unit; smaller discrepancies cannot be
// expressed and produce no movement. Shortage movements skip the stock
// sufficiency check on purpose: the ledger must follow the counted physical
// truth even when the book quantity is already wrong.
func (s *Service) Complete(ctx context.Context, sessionID id.ID) (*CompleteResult, error) {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.IsOpen() {
		return nil, apperror.NewInvalidOperation("session is already completed").
			WithDetail("session_id", sessionID.String())
	}

	items, err := s.repo.GetItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	movements := s.deltaMovements(sess, items)

	actor := appctx.GetActorID(ctx)
	now := time.Now().UTC()

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.ledgerSvc.RecordDerived(ctx, movements); err != nil {
			return err
		}

		sess.Status = StatusCompleted
		sess.CompletedAt = &now
		if actor != "" {
			sess.CompletedBy = &actor
		}
		sess.Touch()

		if err := s.repo.UpdateSession(ctx, sess); err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, sess.ID, "complete", map[string]any{
		"number":    sess.Number,
		"movements": len(movements),
	})

	logger.Info(ctx, "inventory session completed",
		"session_id", sess.ID,
		"number", sess.Number,
		"movements", len(movements),
	)
	return &CompleteResult{Session: sess, MovementsCreated: len(movements)}, nil
}

// deltaMovements builds the reconciliation movements for counted items.
func (s *Service) deltaMovements(sess *Session, items []Item) []ledger.StockMovement {
	docType := ledger.DocTypeInventoryAdjustment
	number := sess.Number
	date := sess.Date

	var movements []ledger.StockMovement
	for _, item := range items {
		if item.Type != ItemProduct || item.ProductID == nil {
			continue
		}

		delta := item.Delta()
		if delta.IsZero() {
			continue
		}

		kind := ledger.KindIn
		qty := delta
		deltaStr := "+" + delta.String()
		if delta.IsNegative() {
			kind = ledger.KindOut
			qty = delta.Abs()
			deltaStr = delta.String()
		}

		note := fmt.Sprintf("inventory count %s: delta %s", sess.Number, deltaStr)
		movements = append(movements, ledger.StockMovement{
			ParishID:       sess.ParishID,
			WarehouseID:    sess.WarehouseID,
			ProductID:      *item.ProductID,
			Kind:           kind,
			Date:           sess.Date,
			Quantity:       qty,
			UnitCost:       item.UnitCost,
			DocumentType:   &docType,
			DocumentNumber: &number,
			DocumentDate:   &date,
			Notes:          &note,
		})
	}
	return movements
}

// GetSession returns a session with its items.
func (s *Service) GetSession(ctx context.Context, sessionID id.ID) (*Session, []Item, error) {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.repo.GetItems(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return sess, items, nil
}

// ListSessions returns sessions matching the filter.
func (s *Service) ListSessions(ctx context.Context, filter ListFilter) ([]*Session, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.repo.ListSessions(ctx, filter)
}

func (s *Service) audit(ctx context.Context, sessionID id.ID, action string, changes map[string]any) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.LogChange(ctx, "InventorySession", sessionID, action, changes); err != nil {
		logger.Warn(ctx, "audit write failed", "entity_type", "InventorySession", "entity_id", sessionID, "error", err)
	}
}
