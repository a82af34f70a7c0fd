package invoices

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enoria/internal/core/apperror"
	"enoria/internal/core/id"
	"enoria/internal/core/types"
	"enoria/internal/domain/catalogs/product"
	"enoria/internal/domain/catalogs/warehouse"
	"enoria/internal/domain/ledger"
)

type projectorFixture struct {
	projector *Projector
	ledgerSvc *ledger.Service
	movements *ledger.MemoryRepository
	parish    id.ID
	w1, w2    *warehouse.Warehouse
	candle    *product.Product
	memorial  *product.Product
}

func newProjectorFixture(t *testing.T) *projectorFixture {
	t.Helper()
	ctx := context.Background()

	parish := id.New()

	warehouses := warehouse.NewMemoryRepository()
	w1 := warehouse.New("W1", "Pangar", parish)
	w2 := warehouse.New("W2", "Depot", parish)
	require.NoError(t, warehouses.Create(ctx, w1))
	require.NoError(t, warehouses.Create(ctx, w2))

	products := product.NewMemoryRepository()
	candle := product.New("CANDLE", "Candle", "buc", true)
	memorial := product.New("MEMORIAL", "Memorial service", "buc", false)
	require.NoError(t, products.Create(ctx, candle))
	require.NoError(t, products.Create(ctx, memorial))

	movements := ledger.NewMemoryRepository()
	txm := ledger.NewMemoryTxManager(movements)
	ledgerSvc := ledger.NewService(movements, products, warehouses, txm, nil)

	return &projectorFixture{
		projector: NewProjector(ledgerSvc, products, txm, nil),
		ledgerSvc: ledgerSvc,
		movements: movements,
		parish:    parish,
		w1:        w1,
		w2:        w2,
		candle:    candle,
		memorial:  memorial,
	}
}

func (f *projectorFixture) receive(t *testing.T, wh *warehouse.Warehouse, qty float64) {
	t.Helper()
	_, err := f.ledgerSvc.CreateMovement(context.Background(), ledger.CreateMovementInput{
		WarehouseID: wh.ID,
		ProductID:   f.candle.ID,
		ParishID:    f.parish,
		Kind:        ledger.KindIn,
		Date:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Quantity:    types.NewQuantityFromFloat64(qty),
	})
	require.NoError(t, err)
}

func (f *projectorFixture) stock(t *testing.T, wh *warehouse.Warehouse) types.Quantity {
	t.Helper()
	q, err := f.ledgerSvc.CurrentStock(context.Background(), wh.ID, f.candle.ID)
	require.NoError(t, err)
	return q
}

func (f *projectorFixture) issuedInvoice(qty float64) *Invoice {
	cost := types.MustMoney("1.50")
	return &Invoice{
		ID:       id.New(),
		ParishID: f.parish,
		Type:     TypeIssued,
		Status:   StatusIssued,
		Number:   "FACT-2026-00042",
		Date:     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Lines: []Line{{
			Line:        1,
			ProductID:   &f.candle.ID,
			WarehouseID: &f.w1.ID,
			Quantity:    types.NewQuantityFromFloat64(qty),
			UnitCost:    &cost,
		}},
	}
}

func TestApplyInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("issued invoice generates out movements", func(t *testing.T) {
		f := newProjectorFixture(t)
		f.receive(t, f.w1, 100)

		inv := f.issuedInvoice(10)
		result, err := f.projector.ApplyInvoice(ctx, inv)
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.Removed)
		assert.Equal(t, 1, result.Generated)
		assert.Equal(t, 0, result.Skipped)

		assert.Equal(t, types.NewQuantityFromFloat64(90), f.stock(t, f.w1))

		generated, err := f.movements.ListByInvoice(ctx, inv.ID)
		require.NoError(t, err)
		require.Len(t, generated, 1)
		m := generated[0]
		assert.Equal(t, ledger.KindOut, m.Kind)
		require.NotNil(t, m.InvoiceLine)
		assert.Equal(t, 1, *m.InvoiceLine)
		require.NotNil(t, m.DocumentType)
		assert.Equal(t, ledger.DocTypeInvoice, *m.DocumentType)
		require.NotNil(t, m.DocumentNumber)
		assert.Equal(t, inv.Number, *m.DocumentNumber)
	})

	t.Run("received invoice generates in movements", func(t *testing.T) {
		f := newProjectorFixture(t)

		inv := f.issuedInvoice(10)
		inv.Type = TypeReceived

		result, err := f.projector.ApplyInvoice(ctx, inv)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Generated)
		assert.Equal(t, types.NewQuantityFromFloat64(10), f.stock(t, f.w1))
	})

	t.Run("re-apply is idempotent", func(t *testing.T) {
		f := newProjectorFixture(t)
		f.receive(t, f.w1, 100)

		inv := f.issuedInvoice(10)

		_, err := f.projector.ApplyInvoice(ctx, inv)
		require.NoError(t, err)

		result, err := f.projector.ApplyInvoice(ctx, inv)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Removed)
		assert.Equal(t, 1, result.Generated)

		// Stock unchanged by the replay
		assert.Equal(t, types.NewQuantityFromFloat64(90), f.stock(t, f.w1))
	})

	t.Run("updated snapshot replaces previous movements", func(t *testing.T) {
		f := newProjectorFixture(t)
		f.receive(t, f.w1, 100)

		inv := f.issuedInvoice(10)
		_, err := f.projector.ApplyInvoice(ctx, inv)
		require.NoError(t, err)

		inv.Lines[0].Quantity = types.NewQuantityFromFloat64(25)
		result, err := f.projector.ApplyInvoice(ctx, inv)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Removed)
		assert.Equal(t, 1, result.Generated)

		assert.Equal(t, types.NewQuantityFromFloat64(75), f.stock(t, f.w1))
	})

	t.Run("cancelled snapshot only removes", func(t *testing.T) {
		f := newProjectorFixture(t)
		f.receive(t, f.w1, 100)

		inv := f.issuedInvoice(10)
		_, err := f.projector.ApplyInvoice(ctx, inv)
		require.NoError(t, err)
		assert.Equal(t, types.NewQuantityFromFloat64(90), f.stock(t, f.w1))

		inv.Status = StatusCancelled
		result, err := f.projector.ApplyInvoice(ctx, inv)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Removed)
		assert.Equal(t, 0, result.Generated)

		assert.Equal(t, types.NewQuantityFromFloat64(100), f.stock(t, f.w1))
	})

	t.Run("non-stock lines are skipped", func(t *testing.T) {
		f := newProjectorFixture(t)
		f.receive(t, f.w1, 100)

		inv := f.issuedInvoice(10)
		desc := "memorial service"
		inv.Lines = append(inv.Lines,
			Line{Line: 2, Description: &desc},
			Line{Line: 3, ProductID: &f.memorial.ID, WarehouseID: &f.w1.ID, Quantity: types.NewQuantityFromFloat64(1)},
		)

		result, err := f.projector.ApplyInvoice(ctx, inv)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Generated)
		assert.Equal(t, 2, result.Skipped)
	})

	t.Run("invalid snapshot rejected", func(t *testing.T) {
		f := newProjectorFixture(t)

		inv := f.issuedInvoice(10)
		inv.Lines[0].Quantity = 0

		_, err := f.projector.ApplyInvoice(ctx, inv)
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})

	t.Run("projection bypasses the sufficiency check", func(t *testing.T) {
		// The snapshot is the source of truth: the ledger follows it even
		// into negative stock, which reconciliation later corrects.
		f := newProjectorFixture(t)
		f.receive(t, f.w1, 5)

		inv := f.issuedInvoice(10)
		_, err := f.projector.ApplyInvoice(ctx, inv)
		require.NoError(t, err)
		assert.Equal(t, types.NewQuantityFromFloat64(-5), f.stock(t, f.w1))
	})
}

func TestReverseInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("removes generated movements", func(t *testing.T) {
		f := newProjectorFixture(t)
		f.receive(t, f.w1, 100)

		inv := f.issuedInvoice(10)
		_, err := f.projector.ApplyInvoice(ctx, inv)
		require.NoError(t, err)

		removed, err := f.projector.ReverseInvoice(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)
		assert.Equal(t, types.NewQuantityFromFloat64(100), f.stock(t, f.w1))
	})

	t.Run("unknown invoice removes nothing", func(t *testing.T) {
		f := newProjectorFixture(t)

		removed, err := f.projector.ReverseInvoice(ctx, id.New())
		require.NoError(t, err)
		assert.Equal(t, int64(0), removed)
	})

	t.Run("nil invoice id rejected", func(t *testing.T) {
		f := newProjectorFixture(t)

		_, err := f.projector.ReverseInvoice(ctx, id.Nil())
		require.Error(t, err)
	})
}

// Full flow across two warehouses: receipt, transfer, invoice, cancellation.
func TestProjectionScenario(t *testing.T) {
	ctx := context.Background()
	f := newProjectorFixture(t)

	f.receive(t, f.w1, 100)

	_, _, err := f.ledgerSvc.CreateTransfer(ctx, ledger.TransferInput{
		SourceWarehouseID: f.w1.ID,
		DestWarehouseID:   f.w2.ID,
		ProductID:         f.candle.ID,
		ParishID:          f.parish,
		Date:              time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Quantity:          types.NewQuantityFromFloat64(40),
	})
	require.NoError(t, err)

	inv := f.issuedInvoice(10)
	_, err = f.projector.ApplyInvoice(ctx, inv)
	require.NoError(t, err)

	assert.Equal(t, types.NewQuantityFromFloat64(50), f.stock(t, f.w1))
	assert.Equal(t, types.NewQuantityFromFloat64(40), f.stock(t, f.w2))

	inv.Status = StatusCancelled
	_, err = f.projector.ApplyInvoice(ctx, inv)
	require.NoError(t, err)

	assert.Equal(t, types.NewQuantityFromFloat64(60), f.stock(t, f.w1))
	assert.Equal(t, types.NewQuantityFromFloat64(40), f.stock(t, f.w2))
}
