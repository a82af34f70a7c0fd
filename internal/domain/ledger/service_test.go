package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enoria/internal/core/apperror"
	"enoria/internal/core/id"
	"enoria/internal/core/types"
	"enoria/internal/domain/catalogs/product"
	"enoria/internal/domain/catalogs/warehouse"
)

type serviceFixture struct {
	svc      *Service
	repo     *MemoryRepository
	parish   id.ID
	w1, w2   *warehouse.Warehouse
	candle   *product.Product
	memorial *product.Product
}

func newServiceFixture(t *testing.T) *serviceFixture {
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

	repo := NewMemoryRepository()
	svc := NewService(repo, products, warehouses, NewMemoryTxManager(repo), nil)

	return &serviceFixture{
		svc:      svc,
		repo:     repo,
		parish:   parish,
		w1:       w1,
		w2:       w2,
		candle:   candle,
		memorial: memorial,
	}
}

func (f *serviceFixture) movementInput(kind MovementKind, qty float64) CreateMovementInput {
	return CreateMovementInput{
		WarehouseID: f.w1.ID,
		ProductID:   f.candle.ID,
		ParishID:    f.parish,
		Kind:        kind,
		Date:        time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Quantity:    types.NewQuantityFromFloat64(qty),
	}
}

func (f *serviceFixture) receive(t *testing.T, qty float64) {
	t.Helper()
	_, err := f.svc.CreateMovement(context.Background(), f.movementInput(KindIn, qty))
	require.NoError(t, err)
}

func TestCreateMovement(t *testing.T) {
	ctx := context.Background()

	t.Run("in movement recorded", func(t *testing.T) {
		f := newServiceFixture(t)

		input := f.movementInput(KindIn, 100)
		cost := types.MustMoney("1.50")
		input.UnitCost = &cost

		m, err := f.svc.CreateMovement(ctx, input)
		require.NoError(t, err)
		assert.False(t, id.IsNil(m.ID))
		require.NotNil(t, m.TotalValue)
		assert.Equal(t, types.MinorUnits(15000), *m.TotalValue)

		stock, err := f.svc.CurrentStock(ctx, f.w1.ID, f.candle.ID)
		require.NoError(t, err)
		assert.Equal(t, types.NewQuantityFromFloat64(100), stock)
	})

	t.Run("out movement reduces stock", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, 100)

		_, err := f.svc.CreateMovement(ctx, f.movementInput(KindOut, 30))
		require.NoError(t, err)

		stock, err := f.svc.CurrentStock(ctx, f.w1.ID, f.candle.ID)
		require.NoError(t, err)
		assert.Equal(t, types.NewQuantityFromFloat64(70), stock)
	})

	t.Run("out exceeding stock rejected with quantities", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, 10)

		_, err := f.svc.CreateMovement(ctx, f.movementInput(KindOut, 15))
		require.Error(t, err)

		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
		assert.Equal(t, "15.000", appErr.Details["requested"])
		assert.Equal(t, "10.000", appErr.Details["available"])

		// Nothing was written
		stock, err := f.svc.CurrentStock(ctx, f.w1.ID, f.candle.ID)
		require.NoError(t, err)
		assert.Equal(t, types.NewQuantityFromFloat64(10), stock)
	})

	t.Run("out of exactly available stock allowed", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, 10)

		_, err := f.svc.CreateMovement(ctx, f.movementInput(KindOut, 10))
		require.NoError(t, err)

		stock, err := f.svc.CurrentStock(ctx, f.w1.ID, f.candle.ID)
		require.NoError(t, err)
		assert.True(t, stock.IsZero())
	})

	t.Run("out from empty warehouse rejected", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.svc.CreateMovement(ctx, f.movementInput(KindOut, 1))
		require.Error(t, err)
		assert.True(t, apperror.IsInsufficientStock(err))
	})

	t.Run("unknown warehouse rejected", func(t *testing.T) {
		f := newServiceFixture(t)

		input := f.movementInput(KindIn, 5)
		input.WarehouseID = id.New()

		_, err := f.svc.CreateMovement(ctx, input)
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("non-tracked product rejected", func(t *testing.T) {
		f := newServiceFixture(t)

		input := f.movementInput(KindIn, 5)
		input.ProductID = f.memorial.ID

		_, err := f.svc.CreateMovement(ctx, input)
		require.Error(t, err)

		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeInvalidOperation, appErr.Code)
	})

	t.Run("adjustment and return never stock-checked", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.svc.CreateMovement(ctx, f.movementInput(KindAdjustment, 5))
		require.NoError(t, err)

		_, err = f.svc.CreateMovement(ctx, f.movementInput(KindReturn, 2))
		require.NoError(t, err)

		stock, err := f.svc.CurrentStock(ctx, f.w1.ID, f.candle.ID)
		require.NoError(t, err)
		assert.Equal(t, types.NewQuantityFromFloat64(7), stock)
	})
}

func TestCreateTransfer(t *testing.T) {
	ctx := context.Background()

	transferInput := func(f *serviceFixture, qty float64) TransferInput {
		return TransferInput{
			SourceWarehouseID: f.w1.ID,
			DestWarehouseID:   f.w2.ID,
			ProductID:         f.candle.ID,
			ParishID:          f.parish,
			Date:              time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			Quantity:          types.NewQuantityFromFloat64(qty),
		}
	}

	t.Run("both legs share group and conserve stock", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, 100)

		outbound, inbound, err := f.svc.CreateTransfer(ctx, transferInput(f, 40))
		require.NoError(t, err)

		require.NotNil(t, outbound.TransferGroupID)
		require.NotNil(t, inbound.TransferGroupID)
		assert.Equal(t, *outbound.TransferGroupID, *inbound.TransferGroupID)
		assert.NotEqual(t, outbound.ID, inbound.ID)

		assert.True(t, outbound.IsOutboundTransferLeg())
		assert.False(t, inbound.IsOutboundTransferLeg())
		require.NotNil(t, inbound.Notes)
		assert.Contains(t, *inbound.Notes, "Pangar")

		source, err := f.svc.CurrentStock(ctx, f.w1.ID, f.candle.ID)
		require.NoError(t, err)
		dest, err := f.svc.CurrentStock(ctx, f.w2.ID, f.candle.ID)
		require.NoError(t, err)
		assert.Equal(t, types.NewQuantityFromFloat64(60), source)
		assert.Equal(t, types.NewQuantityFromFloat64(40), dest)
	})

	t.Run("locks both stock keys in sorted order", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, 100)
		f.repo.LockCalls = nil

		_, _, err := f.svc.CreateTransfer(ctx, transferInput(f, 40))
		require.NoError(t, err)

		// Source and destination keys both held, in the same order any
		// opposite-direction transfer would take them.
		require.Len(t, f.repo.LockCalls, 2)
		first := f.repo.LockCalls[0]
		second := f.repo.LockCalls[1]
		assert.Equal(t, f.candle.ID, first[1])
		assert.Equal(t, f.candle.ID, second[1])
		assert.ElementsMatch(t,
			[]id.ID{f.w1.ID, f.w2.ID},
			[]id.ID{first[0], second[0]},
		)
		assert.Less(t, first[0].String(), second[0].String())
	})

	t.Run("insufficient source stock rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, 10)

		_, _, err := f.svc.CreateTransfer(ctx, transferInput(f, 11))
		require.Error(t, err)
		assert.True(t, apperror.IsInsufficientStock(err))
	})

	t.Run("same source and destination rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, 10)

		input := transferInput(f, 5)
		input.DestWarehouseID = f.w1.ID

		_, _, err := f.svc.CreateTransfer(ctx, input)
		require.Error(t, err)

		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeInvalidOperation, appErr.Code)
	})

	t.Run("failed second leg rolls back the first", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, 100)

		// Fail only the inbound leg (the one landing in w2).
		f.repo.InsertErr = func(m *StockMovement) error {
			if m.Kind == KindTransfer && m.WarehouseID == f.w2.ID {
				return errors.New("disk full")
			}
			return nil
		}

		_, _, err := f.svc.CreateTransfer(ctx, transferInput(f, 40))
		require.Error(t, err)
		f.repo.InsertErr = nil

		source, err := f.svc.CurrentStock(ctx, f.w1.ID, f.candle.ID)
		require.NoError(t, err)
		dest, err := f.svc.CurrentStock(ctx, f.w2.ID, f.candle.ID)
		require.NoError(t, err)
		assert.Equal(t, types.NewQuantityFromFloat64(100), source)
		assert.True(t, dest.IsZero())
	})

	t.Run("transfer kind via CreateMovement delegates", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, 100)

		input := f.movementInput(KindTransfer, 25)
		input.DestWarehouseID = &f.w2.ID

		m, err := f.svc.CreateMovement(ctx, input)
		require.NoError(t, err)
		assert.True(t, m.IsOutboundTransferLeg())
		require.NotNil(t, m.TransferGroupID)

		dest, err := f.svc.CurrentStock(ctx, f.w2.ID, f.candle.ID)
		require.NoError(t, err)
		assert.Equal(t, types.NewQuantityFromFloat64(25), dest)
	})

	t.Run("transfer kind without destination rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		f.receive(t, 100)

		_, err := f.svc.CreateMovement(ctx, f.movementInput(KindTransfer, 25))
		require.Error(t, err)

		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})
}

func TestRecordDerived(t *testing.T) {
	ctx := context.Background()

	t.Run("locks keys in deterministic order", func(t *testing.T) {
		f := newServiceFixture(t)

		movements := []StockMovement{
			{
				ParishID:    f.parish,
				WarehouseID: f.w2.ID,
				ProductID:   f.candle.ID,
				Kind:        KindIn,
				Date:        time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
				Quantity:    types.NewQuantityFromFloat64(5),
			},
			{
				ParishID:    f.parish,
				WarehouseID: f.w1.ID,
				ProductID:   f.candle.ID,
				Kind:        KindIn,
				Date:        time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
				Quantity:    types.NewQuantityFromFloat64(3),
			},
			{
				// Duplicate key, must lock once
				ParishID:    f.parish,
				WarehouseID: f.w1.ID,
				ProductID:   f.candle.ID,
				Kind:        KindIn,
				Date:        time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
				Quantity:    types.NewQuantityFromFloat64(2),
			},
		}

		require.NoError(t, f.svc.RecordDerived(ctx, movements))
		assert.Len(t, f.repo.Movements(), 3)
		assert.Len(t, f.repo.LockCalls, 2)

		// Sorted key order regardless of input order
		first := f.repo.LockCalls[0]
		second := f.repo.LockCalls[1]
		assert.True(t, first[0].String() < second[0].String() ||
			(first[0] == second[0] && first[1].String() < second[1].String()))
	})

	t.Run("bypasses sufficiency check", func(t *testing.T) {
		f := newServiceFixture(t)

		// Out with no stock at all: reconciliation must be able to do this.
		movements := []StockMovement{{
			ParishID:    f.parish,
			WarehouseID: f.w1.ID,
			ProductID:   f.candle.ID,
			Kind:        KindOut,
			Date:        time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			Quantity:    types.NewQuantityFromFloat64(3),
		}}

		require.NoError(t, f.svc.RecordDerived(ctx, movements))

		stock, err := f.svc.CurrentStock(ctx, f.w1.ID, f.candle.ID)
		require.NoError(t, err)
		assert.Equal(t, types.NewQuantityFromFloat64(-3), stock)
	})

	t.Run("shape validation still applies", func(t *testing.T) {
		f := newServiceFixture(t)

		movements := []StockMovement{{
			ParishID:    f.parish,
			WarehouseID: f.w1.ID,
			ProductID:   f.candle.ID,
			Kind:        KindOut,
			Date:        time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			Quantity:    0,
		}}

		err := f.svc.RecordDerived(ctx, movements)
		require.Error(t, err)
		assert.Empty(t, f.repo.Movements())
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		f := newServiceFixture(t)
		require.NoError(t, f.svc.RecordDerived(ctx, nil))
		assert.Empty(t, f.repo.LockCalls)
	})
}

func TestListMovements(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	for i := 0; i < 5; i++ {
		f.receive(t, 1)
	}

	t.Run("default limit applied", func(t *testing.T) {
		ms, err := f.svc.ListMovements(ctx, MovementFilter{})
		require.NoError(t, err)
		assert.Len(t, ms, 5)
	})

	t.Run("limit respected", func(t *testing.T) {
		ms, err := f.svc.ListMovements(ctx, MovementFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, ms, 2)
	})

	t.Run("kind filter", func(t *testing.T) {
		kind := KindOut
		ms, err := f.svc.ListMovements(ctx, MovementFilter{Kind: &kind})
		require.NoError(t, err)
		assert.Empty(t, ms)
	})
}
