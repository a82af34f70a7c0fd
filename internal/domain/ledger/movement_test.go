package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enoria/internal/core/apperror"
	"enoria/internal/core/id"
	"enoria/internal/core/types"
)

func baseMovement(kind MovementKind) StockMovement {
	return StockMovement{
		ID:          id.New(),
		ParishID:    id.New(),
		WarehouseID: id.New(),
		ProductID:   id.New(),
		Kind:        kind,
		Date:        time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Quantity:    types.NewQuantityFromFloat64(10),
	}
}

func TestSignedQuantity(t *testing.T) {
	dest := id.New()

	tests := []struct {
		name   string
		kind   MovementKind
		dest   *id.ID
		signed types.Quantity
	}{
		{name: "in adds", kind: KindIn, signed: 10000},
		{name: "out subtracts", kind: KindOut, signed: -10000},
		{name: "outbound transfer leg subtracts", kind: KindTransfer, dest: &dest, signed: -10000},
		{name: "inbound transfer leg adds", kind: KindTransfer, signed: 10000},
		{name: "adjustment adds", kind: KindAdjustment, signed: 10000},
		{name: "return adds", kind: KindReturn, signed: 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := baseMovement(tt.kind)
			m.DestWarehouseID = tt.dest
			assert.Equal(t, tt.signed, m.SignedQuantity())
		})
	}
}

func TestIsOutboundTransferLeg(t *testing.T) {
	dest := id.New()

	out := baseMovement(KindTransfer)
	out.DestWarehouseID = &dest
	assert.True(t, out.IsOutboundTransferLeg())

	in := baseMovement(KindTransfer)
	assert.False(t, in.IsOutboundTransferLeg())

	plain := baseMovement(KindOut)
	plain.DestWarehouseID = &dest
	assert.False(t, plain.IsOutboundTransferLeg())
}

func TestMovementValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid movement passes", func(t *testing.T) {
		m := baseMovement(KindIn)
		require.NoError(t, m.Validate(ctx))
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		m := baseMovement("teleport")
		err := m.Validate(ctx)
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		m := baseMovement(KindIn)
		m.Quantity = 0
		require.Error(t, m.Validate(ctx))
	})

	t.Run("negative quantity rejected", func(t *testing.T) {
		m := baseMovement(KindOut)
		m.Quantity = types.NewQuantityFromFloat64(-5)
		require.Error(t, m.Validate(ctx))
	})

	t.Run("missing warehouse rejected", func(t *testing.T) {
		m := baseMovement(KindIn)
		m.WarehouseID = id.Nil()
		require.Error(t, m.Validate(ctx))
	})

	t.Run("missing date rejected", func(t *testing.T) {
		m := baseMovement(KindIn)
		m.Date = time.Time{}
		require.Error(t, m.Validate(ctx))
	})

	t.Run("negative unit cost rejected", func(t *testing.T) {
		m := baseMovement(KindIn)
		cost := types.MustMoney("-1.00")
		m.UnitCost = &cost
		require.Error(t, m.Validate(ctx))
	})
}

func TestDeriveTotalValue(t *testing.T) {
	t.Run("derived from quantity and cost", func(t *testing.T) {
		m := baseMovement(KindIn)
		cost := types.MustMoney("1.50")
		m.UnitCost = &cost

		m.DeriveTotalValue()
		require.NotNil(t, m.TotalValue)
		assert.Equal(t, types.MinorUnits(1500), *m.TotalValue)
	})

	t.Run("missing cost leaves nil", func(t *testing.T) {
		m := baseMovement(KindIn)
		m.DeriveTotalValue()
		assert.Nil(t, m.TotalValue)
	})

	t.Run("explicit value preserved", func(t *testing.T) {
		m := baseMovement(KindIn)
		cost := types.MustMoney("1.50")
		explicit := types.MinorUnits(999)
		m.UnitCost = &cost
		m.TotalValue = &explicit

		m.DeriveTotalValue()
		assert.Equal(t, types.MinorUnits(999), *m.TotalValue)
	})
}
