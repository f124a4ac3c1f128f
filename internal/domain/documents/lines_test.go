package documents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/types"
)

func untracedLine(qty, ratio float64) StockLine {
	return StockLine{
		LineID:    id.New(),
		ProductID: id.New(),
		UnitID:    id.New(),
		UnitRatio: types.NewQuantityFromFloat64(ratio),
		Quantity:  types.NewQuantityFromFloat64(qty),
		Trace:     entity.TraceNone,
	}
}

func serialLine(serials int) StockLine {
	l := untracedLine(float64(serials), 1)
	l.Trace = entity.TraceSerial
	for i := 0; i < serials; i++ {
		l.Serials = append(l.Serials, entity.SerialData{SerialID: id.New()})
	}
	return l
}

func TestStockLine_BaseQuantity(t *testing.T) {
	// 3 boxes of 12 pieces each
	l := untracedLine(3, 12)
	assert.Equal(t, types.NewQuantityFromFloat64(36), l.BaseQuantity())
}

func TestStockLine_BaseCost(t *testing.T) {
	l := untracedLine(2, 10)
	l.Amount = types.NewMoney(500)

	// 500 over 20 base units
	assert.True(t, l.BaseCost().Equal(types.NewMoney(25)), "got %s", l.BaseCost())
}

func TestStockLine_Validate(t *testing.T) {
	lotLine := untracedLine(5, 1)
	lotLine.Trace = entity.TraceLot
	lotLine.Lot = &entity.LotData{LotID: id.New(), LotNumber: "LOT-1"}

	strayLot := untracedLine(5, 1)
	strayLot.Lot = &entity.LotData{LotID: id.New()}

	missingLot := untracedLine(5, 1)
	missingLot.Trace = entity.TraceLot

	countMismatch := serialLine(3)
	countMismatch.Serials = countMismatch.Serials[:2]

	fractional := serialLine(1)
	fractional.Quantity = types.NewQuantityFromFloat64(1.5)

	specificOnLot := untracedLine(1, 1)
	specificOnLot.Trace = entity.TraceLot
	specificOnLot.Lot = &entity.LotData{LotID: id.New()}
	specificOnLot.SpecificIdentification = true

	noProduct := untracedLine(5, 1)
	noProduct.ProductID = id.Nil()

	zeroQty := untracedLine(0, 1)

	tests := []struct {
		name    string
		line    StockLine
		wantErr string
	}{
		{"plain line", untracedLine(5, 1), ""},
		{"lot line", lotLine, ""},
		{"serial line", serialLine(3), ""},
		{"missing product", noProduct, "product is required"},
		{"zero quantity", zeroQty, "quantity must be positive"},
		{"lot data on untraced product", strayLot, "lot or serial data"},
		{"lot trace without lot", missingLot, "requires lot data"},
		{"serial count mismatch", countMismatch, "serial count must match"},
		{"fractional serial quantity", fractional, "whole number"},
		{"specific identification without serials", specificOnLot, "requires serial traceability"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.line.Validate(1)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProjectLine_Untraced(t *testing.T) {
	doc := entity.NewDocument(tenant.NewScope(id.New(), id.New()))
	doc.Number = "GR-00007"
	warehouse := id.New()

	l := untracedLine(3, 12)
	l.Amount = types.NewMoney(360)

	records := ProjectLine(&l, &doc, "GoodsReceipt", warehouse, ProjectionOptions{
		StockType: entity.StockTypeIn,
		WithCost:  true,
	})

	require.Len(t, records, 1)
	m := records[0]
	assert.Equal(t, l.ProductID, m.ProductID)
	assert.Equal(t, warehouse, m.WarehouseID)
	assert.Equal(t, entity.StockTypeIn, m.StockType)
	assert.Equal(t, types.NewQuantityFromFloat64(36), m.Quantity)
	assert.True(t, m.Cost.Equal(types.NewMoney(10)), "cost per base unit, got %s", m.Cost)
	assert.True(t, m.Value.Equal(types.NewMoney(360)), "line amount, got %s", m.Value)
	assert.Equal(t, doc.ID, m.TransID)
	assert.Equal(t, "GoodsReceipt GR-00007", m.TransTitle)
}

func TestProjectLine_OutboundLeavesCostToLedger(t *testing.T) {
	doc := entity.NewDocument(tenant.NewScope(id.New(), id.New()))
	l := untracedLine(5, 1)
	l.Amount = types.NewMoney(999)

	records := ProjectLine(&l, &doc, "GoodsIssue", id.New(), ProjectionOptions{
		StockType: entity.StockTypeOut,
	})

	require.Len(t, records, 1)
	assert.True(t, records[0].Cost.IsZero())
	assert.True(t, records[0].Value.IsZero())
}

func TestProjectLine_SerialExpansion(t *testing.T) {
	doc := entity.NewDocument(tenant.NewScope(id.New(), id.New()))
	l := serialLine(3)
	l.Amount = types.NewMoney(300)

	records := ProjectLine(&l, &doc, "GoodsReceipt", id.New(), ProjectionOptions{
		StockType: entity.StockTypeIn,
		WithCost:  true,
	})

	require.Len(t, records, 3)
	for i, m := range records {
		assert.Equal(t, l.Serials[i].SerialID, m.Serial.SerialID, "record %d", i)
		assert.Equal(t, types.NewQuantityFromFloat64(1), m.Quantity, "one base unit per serial")
		assert.True(t, m.Cost.Equal(types.NewMoney(100)), "record %d cost %s", i, m.Cost)
		assert.True(t, m.Value.Equal(types.NewMoney(100)), "per-unit value, got %s", m.Value)
	}
}
