package invoices

import (
	"context"
	"fmt"

	"enoria/internal/core/apperror"
	"enoria/internal/core/id"
	"enoria/internal/core/tx"
	"enoria/internal/domain/catalogs/product"
	"enoria/internal/domain/ledger"
	"enoria/pkg/logger"
)

// ApplyResult summarizes one projection run.
type ApplyResult struct {
	// Removed is the number of previously generated movements deleted.
	Removed int64 `json:"removed"`

	// Generated is the number of movements written for the current snapshot.
	Generated int `json:"generated"`

	// Skipped counts lines that produced no movement (non-stock lines and
	// products that do not track stock).
	Skipped int `json:"skipped"`
}

// Projector keeps the ledger consistent with invoice snapshots.
//
// Projection is delete-then-regenerate: every apply removes all movements
// previously generated for the invoice and writes a fresh set from the
// snapshot. Repeated applies of the same snapshot are therefore idempotent
// in effect, and updates never leave stale movements behind.
type Projector struct {
	ledgerSvc *ledger.Service
	products  product.Repository
	txManager tx.Manager
	auditor   ledger.Auditor // optional
}

// NewProjector creates a new invoice projector.
func NewProjector(
	ledgerSvc *ledger.Service,
	products product.Repository,
	txManager tx.Manager,
	auditor ledger.Auditor,
) *Projector {
	return &Projector{
		ledgerSvc: ledgerSvc,
		products:  products,
		txManager: txManager,
		auditor:   auditor,
	}
}

// ApplyInvoice replaces the invoice's ledger footprint with the snapshot's.
// A cancelled snapshot only removes; everything runs in one transaction.
func (p *Projector) ApplyInvoice(ctx context.Context, inv *Invoice) (*ApplyResult, error) {
	if err := inv.Validate(ctx); err != nil {
		return nil, err
	}

	var result ApplyResult

	err := p.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		removed, err := p.ledgerSvc.DeleteByInvoice(ctx, inv.ID)
		if err != nil {
			return fmt.Errorf("delete invoice movements: %w", err)
		}
		result.Removed = removed

		if inv.Status == StatusCancelled {
			return nil
		}

		movements, skipped, err := p.generateMovements(ctx, inv)
		if err != nil {
			return err
		}
		result.Skipped = skipped

		if err := p.ledgerSvc.RecordDerived(ctx, movements); err != nil {
			return err
		}
		result.Generated = len(movements)
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.audit(ctx, inv.ID, "project", map[string]any{
		"status":    string(inv.Status),
		"removed":   result.Removed,
		"generated": result.Generated,
	})

	logger.Info(ctx, "invoice projected",
		"invoice_id", inv.ID,
		"status", inv.Status,
		"removed", result.Removed,
		"generated", result.Generated,
		"skipped", result.Skipped,
	)
	return &result, nil
}

// ReverseInvoice removes all movements generated for the invoice. Used when
// an invoice is cancelled without a fresh snapshot; callers treat failures
// as a warning, since the cancellation itself has already happened upstream.
func (p *Projector) ReverseInvoice(ctx context.Context, invoiceID id.ID) (int64, error) {
	if id.IsNil(invoiceID) {
		return 0, apperror.NewValidation("invoice id is required").
			WithDetail("field", "invoiceId")
	}

	var removed int64
	err := p.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		removed, err = p.ledgerSvc.DeleteByInvoice(ctx, invoiceID)
		return err
	})
	if err != nil {
		return 0, err
	}

	p.audit(ctx, invoiceID, "reverse", map[string]any{"removed": removed})

	logger.Info(ctx, "invoice movements reversed", "invoice_id", invoiceID, "removed", removed)
	return removed, nil
}

// generateMovements builds the movement set for a non-cancelled snapshot.
// Issued invoices produce out movements, received invoices produce in
// movements. Lines without a product or warehouse, and lines whose product
// does not track stock, are skipped rather than rejected.
func (p *Projector) generateMovements(ctx context.Context, inv *Invoice) ([]ledger.StockMovement, int, error) {
	kind := ledger.KindIn
	if inv.Type == TypeIssued {
		kind = ledger.KindOut
	}

	docType := ledger.DocTypeInvoice
	var movements []ledger.StockMovement
	skipped := 0

	for _, line := range inv.Lines {
		if line.ProductID == nil || line.WarehouseID == nil {
			skipped++
			continue
		}

		prod, err := p.products.GetByID(ctx, *line.ProductID)
		if err != nil {
			return nil, 0, err
		}
		if !prod.TracksStock {
			skipped++
			continue
		}

		lineNo := line.Line
		number := inv.Number
		date := inv.Date

		movements = append(movements, ledger.StockMovement{
			ParishID:       inv.ParishID,
			WarehouseID:    *line.WarehouseID,
			ProductID:      *line.ProductID,
			Kind:           kind,
			Date:           inv.Date,
			Quantity:       line.Quantity,
			UnitCost:       line.UnitCost,
			InvoiceID:      &inv.ID,
			InvoiceLine:    &lineNo,
			DocumentType:   &docType,
			DocumentNumber: &number,
			DocumentDate:   &date,
			ClientID:       inv.ClientID,
		})
	}

	return movements, skipped, nil
}

func (p *Projector) audit(ctx context.Context, invoiceID id.ID, action string, changes map[string]any) {
	if p.auditor == nil {
		return
	}
	if err := p.auditor.LogChange(ctx, "Invoice", invoiceID, action, changes); err != nil {
		logger.Warn(ctx, "audit write failed", "entity_type", "Invoice", "entity_id", invoiceID, "error", err)
	}
}
