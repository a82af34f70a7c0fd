package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enoria/internal/core/apperror"
	"enoria/internal/core/id"
	"enoria/internal/core/numerator"
	"enoria/internal/core/types"
	"enoria/internal/domain/catalogs/product"
	"enoria/internal/domain/catalogs/warehouse"
	"enoria/internal/domain/ledger"
)

type inventoryFixture struct {
	svc       *Service
	ledgerSvc *ledger.Service
	movements *ledger.MemoryRepository
	parish    id.ID
	wh        *warehouse.Warehouse
	candle    *product.Product
	incense   *product.Product
}

func newInventoryFixture(t *testing.T) *inventoryFixture {
	t.Helper()
	ctx := context.Background()

	parish := id.New()

	warehouses := warehouse.NewMemoryRepository()
	wh := warehouse.New("W1", "Pangar", parish)
	require.NoError(t, warehouses.Create(ctx, wh))

	products := product.NewMemoryRepository()
	candle := product.New("CANDLE", "Candle", "buc", true)
	incense := product.New("INCENSE", "Incense", "kg", true)
	require.NoError(t, products.Create(ctx, candle))
	require.NoError(t, products.Create(ctx, incense))

	movements := ledger.NewMemoryRepository()
	txm := ledger.NewMemoryTxManager(movements)
	ledgerSvc := ledger.NewService(movements, products, warehouses, txm, nil)

	svc := NewService(
		NewMemoryRepository(),
		ledgerSvc,
		products,
		warehouses,
		&numerator.MockGenerator{},
		txm,
		nil,
	)

	return &inventoryFixture{
		svc:       svc,
		ledgerSvc: ledgerSvc,
		movements: movements,
		parish:    parish,
		wh:        wh,
		candle:    candle,
		incense:   incense,
	}
}

func (f *inventoryFixture) receive(t *testing.T, p *product.Product, qty float64) {
	t.Helper()
	_, err := f.ledgerSvc.CreateMovement(context.Background(), ledger.CreateMovementInput{
		WarehouseID: f.wh.ID,
		ProductID:   p.ID,
		ParishID:    f.parish,
		Kind:        ledger.KindIn,
		Date:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Quantity:    types.NewQuantityFromFloat64(qty),
	})
	require.NoError(t, err)
}

func (f *inventoryFixture) openInput() OpenSessionInput {
	return OpenSessionInput{
		ParishID:    f.parish,
		WarehouseID: f.wh.ID,
		Date:        time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}
}

func (f *inventoryFixture) stock(t *testing.T, p *product.Product) types.Quantity {
	t.Helper()
	q, err := f.ledgerSvc.CurrentStock(context.Background(), f.wh.ID, p.ID)
	require.NoError(t, err)
	return q
}

func TestOpenSession(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshots all non-zero stock by default", func(t *testing.T) {
		f := newInventoryFixture(t)
		f.receive(t, f.candle, 10)
		f.receive(t, f.incense, 2.5)

		sess, items, err := f.svc.OpenSession(ctx, f.openInput())
		require.NoError(t, err)

		assert.Equal(t, StatusOpen, sess.Status)
		assert.NotEmpty(t, sess.Number)
		require.Len(t, items, 2)
		for _, item := range items {
			assert.Equal(t, ItemProduct, item.Type)
			assert.False(t, item.Counted())
		}
	})

	t.Run("explicit product scope with zero stock", func(t *testing.T) {
		f := newInventoryFixture(t)
		f.receive(t, f.candle, 10)

		input := f.openInput()
		input.ProductIDs = []id.ID{f.incense.ID}

		_, items, err := f.svc.OpenSession(ctx, input)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.True(t, items[0].BookQuantity.IsZero())
	})

	t.Run("unknown warehouse rejected", func(t *testing.T) {
		f := newInventoryFixture(t)

		input := f.openInput()
		input.WarehouseID = id.New()

		_, _, err := f.svc.OpenSession(ctx, input)
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("non-tracked product rejected in scope", func(t *testing.T) {
		ctx := context.Background()
		f := newInventoryFixture(t)

		service := product.New("SRV", "Service", "buc", false)
		require.NoError(t, f.svc.products.Create(ctx, service))

		input := f.openInput()
		input.ProductIDs = []id.ID{service.ID}

		_, _, err := f.svc.OpenSession(ctx, input)
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeInvalidOperation, appErr.Code)
	})
}

func TestRecordCount(t *testing.T) {
	ctx := context.Background()

	t.Run("last count wins", func(t *testing.T) {
		f := newInventoryFixture(t)
		f.receive(t, f.candle, 10)

		sess, items, err := f.svc.OpenSession(ctx, f.openInput())
		require.NoError(t, err)
		require.Len(t, items, 1)

		item, err := f.svc.RecordCount(ctx, sess.ID, items[0].ID, types.NewQuantityFromFloat64(8), nil)
		require.NoError(t, err)
		assert.True(t, item.Counted())

		item, err = f.svc.RecordCount(ctx, sess.ID, items[0].ID, types.NewQuantityFromFloat64(9), nil)
		require.NoError(t, err)
		require.NotNil(t, item.PhysicalQuantity)
		assert.Equal(t, types.NewQuantityFromFloat64(9), *item.PhysicalQuantity)
	})

	t.Run("negative count rejected", func(t *testing.T) {
		f := newInventoryFixture(t)
		f.receive(t, f.candle, 10)

		sess, items, err := f.svc.OpenSession(ctx, f.openInput())
		require.NoError(t, err)

		_, err = f.svc.RecordCount(ctx, sess.ID, items[0].ID, types.NewQuantityFromFloat64(-1), nil)
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})

	t.Run("zero count allowed", func(t *testing.T) {
		f := newInventoryFixture(t)
		f.receive(t, f.candle, 10)

		sess, items, err := f.svc.OpenSession(ctx, f.openInput())
		require.NoError(t, err)

		item, err := f.svc.RecordCount(ctx, sess.ID, items[0].ID, 0, nil)
		require.NoError(t, err)
		assert.True(t, item.Counted())
	})
}

func TestCompleteSession(t *testing.T) {
	ctx := context.Background()

	t.Run("shortage becomes out movement", func(t *testing.T) {
		f := newInventoryFixture(t)
		f.receive(t, f.candle, 10)

		sess, items, err := f.svc.OpenSession(ctx, f.openInput())
		require.NoError(t, err)

		_, err = f.svc.RecordCount(ctx, sess.ID, items[0].ID, types.NewQuantityFromFloat64(7), nil)
		require.NoError(t, err)

		result, err := f.svc.Complete(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, result.MovementsCreated)
		assert.Equal(t, StatusCompleted, result.Session.Status)
		require.NotNil(t, result.Session.CompletedAt)

		assert.Equal(t, types.NewQuantityFromFloat64(7), f.stock(t, f.candle))

		ms := f.movements.Movements()
		last := ms[len(ms)-1]
		assert.Equal(t, ledger.KindOut, last.Kind)
		assert.Equal(t, types.NewQuantityFromFloat64(3), last.Quantity)
		require.NotNil(t, last.DocumentType)
		assert.Equal(t, ledger.DocTypeInventoryAdjustment, *last.DocumentType)
		require.NotNil(t, last.DocumentNumber)
		assert.Equal(t, sess.Number, *last.DocumentNumber)
		require.NotNil(t, last.Notes)
		assert.Contains(t, *last.Notes, "delta -3.000")
	})

	t.Run("surplus becomes in movement", func(t *testing.T) {
		f := newInventoryFixture(t)
		f.receive(t, f.candle, 10)

		sess, items, err := f.svc.OpenSession(ctx, f.openInput())
		require.NoError(t, err)

		_, err = f.svc.RecordCount(ctx, sess.ID, items[0].ID, types.NewQuantityFromFloat64(12.5), nil)
		require.NoError(t, err)

		result, err := f.svc.Complete(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, result.MovementsCreated)
		assert.Equal(t, types.NewQuantityFromFloat64(12.5), f.stock(t, f.candle))

		ms := f.movements.Movements()
		last := ms[len(ms)-1]
		assert.Equal(t, ledger.KindIn, last.Kind)
		assert.Equal(t, types.NewQuantityFromFloat64(2.5), last.Quantity)
		require.NotNil(t, last.Notes)
		assert.Contains(t, *last.Notes, "delta +2.500")
	})

	t.Run("matching count produces no movement", func(t *testing.T) {
		f := newInventoryFixture(t)
		f.receive(t, f.candle, 5)

		sess, items, err := f.svc.OpenSession(ctx, f.openInput())
		require.NoError(t, err)

		_, err = f.svc.RecordCount(ctx, sess.ID, items[0].ID, types.NewQuantityFromFloat64(5), nil)
		require.NoError(t, err)

		result, err := f.svc.Complete(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, result.MovementsCreated)
		assert.Len(t, f.movements.Movements(), 1)
	})

	t.Run("shortage below recorded stock is allowed", func(t *testing.T) {
		// Count says zero while the book says 10: the out movement for the
		// full book quantity must not be blocked by the sufficiency check.
		f := newInventoryFixture(t)
		f.receive(t, f.candle, 10)

		sess, items, err := f.svc.OpenSession(ctx, f.openInput())
		require.NoError(t, err)

		_, err = f.svc.RecordCount(ctx, sess.ID, items[0].ID, 0, nil)
		require.NoError(t, err)

		result, err := f.svc.Complete(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, result.MovementsCreated)
		assert.True(t, f.stock(t, f.candle).IsZero())
	})

	t.Run("uncounted item written off as zero", func(t *testing.T) {
		// A missing count means the product was not found on the shelf, so
		// completion writes off the full book quantity instead of failing.
		f := newInventoryFixture(t)
		f.receive(t, f.candle, 10)
		f.receive(t, f.incense, 2)

		sess, items, err := f.svc.OpenSession(ctx, f.openInput())
		require.NoError(t, err)
		require.Len(t, items, 2)

		var candleItem Item
		for _, item := range items {
			if item.ProductID != nil && *item.ProductID == f.candle.ID {
				candleItem = item
			}
		}
		_, err = f.svc.RecordCount(ctx, sess.ID, candleItem.ID, types.NewQuantityFromFloat64(10), nil)
		require.NoError(t, err)

		result, err := f.svc.Complete(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, result.MovementsCreated)
		assert.Equal(t, types.NewQuantityFromFloat64(10), f.stock(t, f.candle))
		assert.True(t, f.stock(t, f.incense).IsZero())

		ms := f.movements.Movements()
		last := ms[len(ms)-1]
		assert.Equal(t, ledger.KindOut, last.Kind)
		assert.Equal(t, f.incense.ID, last.ProductID)
		assert.Equal(t, types.NewQuantityFromFloat64(2), last.Quantity)
		require.NotNil(t, last.Notes)
		assert.Contains(t, *last.Notes, "delta -2.000")
	})

	t.Run("completion is terminal", func(t *testing.T) {
		f := newInventoryFixture(t)
		f.receive(t, f.candle, 10)

		sess, items, err := f.svc.OpenSession(ctx, f.openInput())
		require.NoError(t, err)

		_, err = f.svc.RecordCount(ctx, sess.ID, items[0].ID, types.NewQuantityFromFloat64(10), nil)
		require.NoError(t, err)

		_, err = f.svc.Complete(ctx, sess.ID)
		require.NoError(t, err)

		_, err = f.svc.Complete(ctx, sess.ID)
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeInvalidOperation, appErr.Code)

		_, err = f.svc.RecordCount(ctx, sess.ID, items[0].ID, types.NewQuantityFromFloat64(11), nil)
		require.Error(t, err)
	})

	t.Run("fixed assets never touch the ledger", func(t *testing.T) {
		f := newInventoryFixture(t)
		f.receive(t, f.candle, 10)

		sess, items, err := f.svc.OpenSession(ctx, f.openInput())
		require.NoError(t, err)

		asset, err := f.svc.AddFixedAsset(ctx, sess.ID, id.New(), nil)
		require.NoError(t, err)
		assert.Equal(t, ItemFixedAsset, asset.Type)

		_, err = f.svc.RecordCount(ctx, sess.ID, items[0].ID, types.NewQuantityFromFloat64(10), nil)
		require.NoError(t, err)
		_, err = f.svc.RecordCount(ctx, sess.ID, asset.ID, types.NewQuantityFromFloat64(1), nil)
		require.NoError(t, err)

		result, err := f.svc.Complete(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, result.MovementsCreated)
	})
}

func TestItemDelta(t *testing.T) {
	book := types.NewQuantityFromFloat64(10)
	physical := types.NewQuantityFromFloat64(7.5)

	item := Item{Type: ItemProduct, BookQuantity: book}
	assert.Equal(t, book.Neg(), item.Delta(), "uncounted reads as physical zero")

	item.PhysicalQuantity = &physical
	assert.Equal(t, types.NewQuantityFromFloat64(-2.5), item.Delta())

	// Smallest representable discrepancy is one scaled unit
	tiny := book + 1
	item.PhysicalQuantity = &tiny
	assert.Equal(t, types.Quantity(1), item.Delta())
}
