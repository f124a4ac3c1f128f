package goods_transfer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/types"
	"valora/internal/domain/documents"
)

func testScope() tenant.Scope {
	return tenant.NewScope(id.New(), id.New())
}

func transferLine(qty float64) documents.StockLine {
	return documents.StockLine{
		ProductID: id.New(),
		UnitID:    id.New(),
		UnitRatio: types.NewQuantityFromFloat64(1),
		Quantity:  types.NewQuantityFromFloat64(qty),
		Trace:     entity.TraceNone,
	}
}

func TestGoodsTransfer_Validate(t *testing.T) {
	ctx := context.Background()

	doc := NewGoodsTransfer(testScope(), id.New(), id.New())
	doc.AddLine(transferLine(5))
	assert.NoError(t, doc.Validate(ctx))

	t.Run("same warehouse rejected", func(t *testing.T) {
		wh := id.New()
		d := NewGoodsTransfer(testScope(), wh, wh)
		d.AddLine(transferLine(5))
		assert.ErrorContains(t, d.Validate(ctx), "must differ")
	})

	t.Run("no lines rejected", func(t *testing.T) {
		d := NewGoodsTransfer(testScope(), id.New(), id.New())
		assert.ErrorContains(t, d.Validate(ctx), "at least one line")
	})
}

func TestGoodsTransfer_ProjectMovements_PairsLegs(t *testing.T) {
	source, dest := id.New(), id.New()
	doc := NewGoodsTransfer(testScope(), source, dest)
	doc.Number = "TR-00003"
	doc.AddLine(transferLine(5))
	doc.AddLine(transferLine(2))

	movements, err := doc.ProjectMovements(context.Background())

	require.NoError(t, err)
	require.Len(t, movements, 4)

	for i := 0; i < len(movements); i += 2 {
		out, in := movements[i], movements[i+1]
		line := doc.Lines[i/2]

		assert.Equal(t, entity.StockTypeOut, out.StockType, "leg %d", i)
		assert.Equal(t, source, out.WarehouseID)
		assert.False(t, out.InheritCost, "source leg is priced by the ledger")

		assert.Equal(t, entity.StockTypeIn, in.StockType, "leg %d", i+1)
		assert.Equal(t, dest, in.WarehouseID)
		assert.True(t, in.InheritCost, "destination leg takes the resolved cost")

		assert.Equal(t, line.ProductID, out.ProductID)
		assert.Equal(t, out.ProductID, in.ProductID)
		assert.Equal(t, line.BaseQuantity(), out.Quantity)
		assert.Equal(t, out.Quantity, in.Quantity)
	}
}

func TestGoodsTransfer_ProjectMovements_SerialPairs(t *testing.T) {
	source, dest := id.New(), id.New()
	doc := NewGoodsTransfer(testScope(), source, dest)

	line := transferLine(2)
	line.Trace = entity.TraceSerial
	line.Serials = []entity.SerialData{
		{SerialID: id.New(), SerialNumber: "SN-1"},
		{SerialID: id.New(), SerialNumber: "SN-2"},
	}
	doc.AddLine(line)

	movements, err := doc.ProjectMovements(context.Background())

	require.NoError(t, err)
	require.Len(t, movements, 4)

	// Each serial produces its own out/in pair, in serial order.
	for i, serial := range line.Serials {
		out, in := movements[i*2], movements[i*2+1]
		require.NotNil(t, out.Serial)
		require.NotNil(t, in.Serial)
		assert.Equal(t, serial.SerialID, out.Serial.SerialID)
		assert.Equal(t, serial.SerialID, in.Serial.SerialID)
		assert.Equal(t, source, out.WarehouseID)
		assert.Equal(t, dest, in.WarehouseID)
	}
}
