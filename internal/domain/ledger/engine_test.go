package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valora/internal/core/apperror"
	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/types"
)

func testDoc(docType string) DocumentRef {
	return DocumentRef{ID: id.New(), Type: docType, Code: "DOC-00001", Title: "test document"}
}

func movement(product, warehouse id.ID, stockType entity.StockType, qty, cost float64, date time.Time) entity.MovementRecord {
	m := entity.MovementRecord{
		ProductID:    product,
		WarehouseID:  warehouse,
		Trace:        entity.TraceNone,
		SystemDate:   date,
		PostingDate:  date,
		DocumentDate: date,
		StockType:    stockType,
		TransID:      id.New(),
		TransCode:    "DOC-00001",
		TransTitle:   "test document",
		Quantity:     types.NewQuantityFromFloat64(qty),
		Cost:         types.NewMoney(cost),
		Value:        types.Zero(),
	}
	if cost > 0 {
		m.Value = types.NewMoney(cost * qty)
	}
	return m
}

func moneyEq(t *testing.T, want float64, got types.Money, msg string) {
	t.Helper()
	assert.True(t, got.Equal(types.NewMoney(want)), "%s: want %v, got %s", msg, want, got)
}

func qtyEq(t *testing.T, want float64, got types.Quantity, msg string) {
	t.Helper()
	assert.Equal(t, types.NewQuantityFromFloat64(want), got, msg)
}

func TestLog_NoOpContract(t *testing.T) {
	f := newFixture(t, entity.DefaultCostConfig(), 2026)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	product, warehouse := id.New(), id.New()

	tests := []struct {
		name      string
		doc       DocumentRef
		date      time.Time
		movements []entity.MovementRecord
	}{
		{"empty batch", testDoc("goods_receipt"), date, nil},
		{"zero date", testDoc("goods_receipt"), time.Time{}, []entity.MovementRecord{movement(product, warehouse, entity.StockTypeIn, 1, 10, date)}},
		{"missing document", DocumentRef{}, date, []entity.MovementRecord{movement(product, warehouse, entity.StockTypeIn, 1, 10, date)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs, err := f.engine.Log(ctx, f.scope, tt.doc, tt.date, tt.movements, LogOptions{})
			require.NoError(t, err)
			assert.Nil(t, logs)
			assert.Empty(t, f.store.logs)
			assert.Empty(t, f.store.entries)
		})
	}
}

func TestLog_PeriodNotFoundIsFatal(t *testing.T) {
	f := newFixture(t, entity.DefaultCostConfig(), 2026)
	ctx := context.Background()
	date := time.Date(2031, 5, 1, 0, 0, 0, 0, time.UTC)

	logs, err := f.engine.Log(ctx, f.scope, testDoc("goods_receipt"), date,
		[]entity.MovementRecord{movement(id.New(), id.New(), entity.StockTypeIn, 10, 100, date)}, LogOptions{})

	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodePeriodNotFound, appErr.Code)
	assert.Nil(t, logs)
	assert.Empty(t, f.store.logs)
}

func TestLog_FirstReceipt(t *testing.T) {
	f := newFixture(t, entity.DefaultCostConfig(), 2026)
	ctx := context.Background()
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	product, warehouse := id.New(), id.New()

	logs, err := f.engine.Log(ctx, f.scope, testDoc("goods_receipt"), date,
		[]entity.MovementRecord{movement(product, warehouse, entity.StockTypeIn, 10, 100, date)}, LogOptions{})

	require.NoError(t, err)
	require.Len(t, logs, 1)
	l := logs[0]
	qtyEq(t, 10, l.CurrentQuantity, "current quantity")
	moneyEq(t, 100, l.CurrentCost, "current cost")
	moneyEq(t, 1000, l.CurrentValue, "current value")
	moneyEq(t, 100, l.Cost, "movement cost")
	moneyEq(t, 1000, l.Value, "movement value")

	// the month opened and a ledger entry was created
	assert.True(t, f.subPeriod(2026, 1).ReportOpened)
	require.Len(t, f.store.entries, 1)
	e := f.store.entries[0]
	qtyEq(t, 0, e.OpeningQuantity, "opening quantity")
	qtyEq(t, 10, e.EndingQuantity, "ending quantity")
	moneyEq(t, 1000, e.EndingValue, "ending value")
}

func TestLog_WeightedAverageOnSecondReceipt(t *testing.T) {
	f := newFixture(t, entity.DefaultCostConfig(), 2026)
	ctx := context.Background()
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	product, warehouse := id.New(), id.New()

	_, err := f.engine.Log(ctx, f.scope, testDoc("goods_receipt"), date,
		[]entity.MovementRecord{movement(product, warehouse, entity.StockTypeIn, 10, 100, date)}, LogOptions{})
	require.NoError(t, err)

	logs, err := f.engine.Log(ctx, f.scope, testDoc("goods_receipt"), date,
		[]entity.MovementRecord{movement(product, warehouse, entity.StockTypeIn, 5, 130, date)}, LogOptions{})
	require.NoError(t, err)
	require.Len(t, logs, 1)

	l := logs[0]
	qtyEq(t, 15, l.CurrentQuantity, "current quantity")
	moneyEq(t, 1650, l.CurrentValue, "current value")
	moneyEq(t, 110, l.CurrentCost, "weighted average cost")
}

func TestLog_OutboundAtRunningCost(t *testing.T) {
	f := newFixture(t, entity.DefaultCostConfig(), 2026)
	ctx := context.Background()
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	product, warehouse := id.New(), id.New()

	_, err := f.engine.Log(ctx, f.scope, testDoc("goods_receipt"), date, []entity.MovementRecord{
		movement(product, warehouse, entity.StockTypeIn, 10, 100, date),
		movement(product, warehouse, entity.StockTypeIn, 5, 130, date),
	}, LogOptions{})
	require.NoError(t, err)

	// delivery leaves cost at zero, the engine resolves it
	logs, err := f.engine.Log(ctx, f.scope, testDoc("delivery"), date,
		[]entity.MovementRecord{movement(product, warehouse, entity.StockTypeOut, 3, 0, date)}, LogOptions{})
	require.NoError(t, err)
	require.Len(t, logs, 1)

	l := logs[0]
	moneyEq(t, 110, l.Cost, "issue cost resolved from running average")
	moneyEq(t, 330, l.Value, "issue value")
	qtyEq(t, 12, l.CurrentQuantity, "remaining quantity")
	moneyEq(t, 110, l.CurrentCost, "outbound leaves running cost unchanged")
	moneyEq(t, 1320, l.CurrentValue, "remaining value")
}

func TestLog_BatchChainsWithinOneKey(t *testing.T) {
	f := newFixture(t, entity.DefaultCostConfig(), 2026)
	ctx := context.Background()
	date := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	product, warehouse := id.New(), id.New()

	logs, err := f.engine.Log(ctx, f.scope, testDoc("goods_receipt"), date, []entity.MovementRecord{
		movement(product, warehouse, entity.StockTypeIn, 4, 50, date),
		movement(product, warehouse, entity.StockTypeIn, 6, 100, date),
		movement(product, warehouse, entity.StockTypeOut, 2, 0, date),
	}, LogOptions{})
	require.NoError(t, err)
	require.Len(t, logs, 3)

	qtyEq(t, 4, logs[0].CurrentQuantity, "after first receipt")
	qtyEq(t, 10, logs[1].CurrentQuantity, "after second receipt")
	moneyEq(t, 80, logs[1].CurrentCost, "average of 200+600 over 10")
	moneyEq(t, 80, logs[2].Cost, "issue at the batch running average")
	qtyEq(t, 8, logs[2].CurrentQuantity, "after issue")

	// one key, one entry, one lock
	assert.Len(t, f.store.entries, 1)
	assert.Equal(t, 1, f.store.lockCalls)
}

func TestLog_WarehousesSegregate(t *testing.T) {
	f := newFixture(t, entity.DefaultCostConfig(), 2026)
	ctx := context.Background()
	date := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	product, wh1, wh2 := id.New(), id.New(), id.New()

	logs, err := f.engine.Log(ctx, f.scope, testDoc("goods_receipt"), date, []entity.MovementRecord{
		movement(product, wh1, entity.StockTypeIn, 10, 100, date),
		movement(product, wh2, entity.StockTypeIn, 10, 200, date),
	}, LogOptions{})
	require.NoError(t, err)
	require.Len(t, logs, 2)

	moneyEq(t, 100, logs[0].CurrentCost, "warehouse one runs its own average")
	moneyEq(t, 200, logs[1].CurrentCost, "warehouse two runs its own average")
	assert.Len(t, f.store.entries, 2)
}

func TestLog_SharedBalanceWhenWarehouseDimensionOff(t *testing.T) {
	cfg := entity.DefaultCostConfig()
	cfg.ByWarehouse = false
	f := newFixture(t, cfg, 2026)
	ctx := context.Background()
	date := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	product, wh1, wh2 := id.New(), id.New(), id.New()

	logs, err := f.engine.Log(ctx, f.scope, testDoc("goods_receipt"), date, []entity.MovementRecord{
		movement(product, wh1, entity.StockTypeIn, 10, 100, date),
		movement(product, wh2, entity.StockTypeIn, 10, 200, date),
	}, LogOptions{})
	require.NoError(t, err)
	require.Len(t, logs, 2)

	qtyEq(t, 20, logs[1].CurrentQuantity, "both warehouses share one balance")
	moneyEq(t, 150, logs[1].CurrentCost, "blended average")
	assert.Len(t, f.store.entries, 1)
	assert.Len(t, f.store.breakdowns, 2, "per-warehouse breakdown rows maintained")
}

func TestLog_BreakdownStaysPerKeyWhenLotsShareProduct(t *testing.T) {
	cfg := entity.DefaultCostConfig()
	cfg.ByWarehouse = false
	cfg.ByLot = true
	f := newFixture(t, cfg, 2026)
	ctx := context.Background()
	date := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	product, warehouse := id.New(), id.New()
	lotA, lotB := id.New(), id.New()

	inLot := func(lot id.ID, qty, cost float64) entity.MovementRecord {
		m := movement(product, warehouse, entity.StockTypeIn, qty, cost, date)
		m.Trace = entity.TraceLot
		m.Lot = &entity.LotData{LotID: lot, LotNumber: "L-" + lot.String()[:8]}
		return m
	}

	logs, err := f.engine.Log(ctx, f.scope, testDoc("goods_receipt"), date, []entity.MovementRecord{
		inLot(lotA, 10, 100),
		inLot(lotB, 5, 200),
	}, LogOptions{})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Len(t, f.store.entries, 2, "one entry per lot")
	require.Len(t, f.store.breakdowns, 2, "one breakdown row per lot entry")

	// each lot's breakdown carries only that lot's receipt, so the
	// breakdown total equals the received total instead of doubling it
	var totalQty types.Quantity
	totalValue := types.Zero()
	for _, b := range f.store.breakdowns {
		assert.Equal(t, warehouse, b.WarehouseID)
		totalQty += b.EndingQuantity
		totalValue = totalValue.Add(b.EndingValue)

		for _, e := range f.store.entries {
			if e.ID != b.EntryID {
				continue
			}
			qtyEq(t, 0, e.EndingQuantity-b.EndingQuantity, "breakdown mirrors its entry's ending quantity")
			moneyEq(t, 0, e.EndingValue.Sub(b.EndingValue), "breakdown mirrors its entry's ending value")
		}
	}
	qtyEq(t, 15, totalQty, "breakdown quantity total")
	moneyEq(t, 2000, totalValue, "breakdown value total")
}

func TestLog_RollForwardContinuity(t *testing.T) {
	f := newFixture(t, entity.DefaultCostConfig(), 2026)
	ctx := context.Background()
	product, warehouse := id.New(), id.New()

	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	_, err := f.engine.Log(ctx, f.scope, testDoc("goods_receipt"), jan,
		[]entity.MovementRecord{movement(product, warehouse, entity.StockTypeIn, 10, 100, jan)}, LogOptions{})
	require.NoError(t, err)

	// next write lands in March; February must open in between
	mar := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	logs, err := f.engine.Log(ctx, f.scope, testDoc("delivery"), mar,
		[]entity.MovementRecord{movement(product, warehouse, entity.StockTypeOut, 4, 0, mar)}, LogOptions{})
	require.NoError(t, err)
	require.Len(t, logs, 1)

	assert.True(t, f.subPeriod(2026, 2).ReportOpened, "February opened in passing")
	assert.True(t, f.subPeriod(2026, 3).ReportOpened)

	key := entity.LedgerKey{ProductID: product, WarehouseID: &warehouse}
	feb, err := f.store.GetEntry(ctx, f.scope, key, f.subPeriod(2026, 2).ID)
	require.NoError(t, err)
	require.NotNil(t, feb, "February entry created by roll-forward")
	qtyEq(t, 10, feb.OpeningQuantity, "February opening equals January ending")
	moneyEq(t, 1000, feb.OpeningValue, "February opening value")
	qtyEq(t, 10, feb.EndingQuantity, "no movement in February")

	marEntry, err := f.store.GetEntry(ctx, f.scope, key, f.subPeriod(2026, 3).ID)
	require.NoError(t, err)
	require.NotNil(t, marEntry)
	qtyEq(t, 10, marEntry.OpeningQuantity, "March opening carried through February")
	qtyEq(t, 6, marEntry.EndingQuantity, "March ending after the issue")
	moneyEq(t, 100, logs[0].Cost, "issue priced at carried cost")
}

func TestRollForward_Idempotent(t *testing.T) {
	f := newFixture(t, entity.DefaultCostConfig(), 2026)
	ctx := context.Background()
	product, warehouse := id.New(), id.New()

	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	_, err := f.engine.Log(ctx, f.scope, testDoc("goods_receipt"), jan,
		[]entity.MovementRecord{movement(product, warehouse, entity.StockTypeIn, 10, 100, jan)}, LogOptions{})
	require.NoError(t, err)

	from, to := f.subPeriod(2026, 1), f.subPeriod(2026, 2)
	require.NoError(t, f.store.RollForward(ctx, f.scope, from, to, entity.ValuationPerpetual))
	require.NoError(t, f.store.RollForward(ctx, f.scope, from, to, entity.ValuationPerpetual))

	febEntries, err := f.store.ListEntriesBySubPeriod(ctx, f.scope, to.PeriodID, to.ID)
	require.NoError(t, err)
	assert.Len(t, febEntries, 1, "second roll-forward is a no-op")
}

func TestLog_BalanceInitialization(t *testing.T) {
	f := newFixture(t, entity.DefaultCostConfig(), 2026)
	ctx := context.Background()
	date := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	product, warehouse := id.New(), id.New()

	logs, err := f.engine.Log(ctx, f.scope, testDoc("balance_initialization"), date,
		[]entity.MovementRecord{movement(product, warehouse, entity.StockTypeIn, 20, 50, date)},
		LogOptions{BalanceInit: true})
	require.NoError(t, err)
	require.Len(t, logs, 1)

	require.Len(t, f.store.entries, 1)
	e := f.store.entries[0]
	assert.True(t, e.ForBalance)
	qtyEq(t, 20, e.OpeningQuantity, "initialized opening quantity")
	moneyEq(t, 50, e.OpeningCost, "initialized opening cost")
	moneyEq(t, 1000, e.OpeningValue, "initialized opening value")

	// later keys without history fall back to this manual opening
	key := entity.LedgerKey{ProductID: product, WarehouseID: &warehouse}
	opening, err := f.store.GetOpeningBalance(ctx, f.scope, key)
	require.NoError(t, err)
	qtyEq(t, 20, opening.Quantity, "opening balance lookup")
}

func TestLog_SpecificIdentification(t *testing.T) {
	f := newFixture(t, entity.DefaultCostConfig(), 2026)
	ctx := context.Background()
	date := time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)
	product, warehouse := id.New(), id.New()

	serialMovement := func(serialID id.ID, stockType entity.StockType, cost float64) entity.MovementRecord {
		m := movement(product, warehouse, stockType, 1, cost, date)
		m.Trace = entity.TraceSerial
		m.Serial = &entity.SerialData{SerialID: serialID, SerialNumber: "SN-" + serialID.String()[:8]}
		m.SpecificIdentification = true
		return m
	}

	snA, snB := id.New(), id.New()
	_, err := f.engine.Log(ctx, f.scope, testDoc("goods_receipt"), date, []entity.MovementRecord{
		serialMovement(snA, entity.StockTypeIn, 700),
		serialMovement(snB, entity.StockTypeIn, 900),
	}, LogOptions{})
	require.NoError(t, err)

	// each serial runs its own balance, the issue carries its own cost
	logs, err := f.engine.Log(ctx, f.scope, testDoc("delivery"), date,
		[]entity.MovementRecord{serialMovement(snB, entity.StockTypeOut, 0)}, LogOptions{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	moneyEq(t, 900, logs[0].Cost, "serial B issued at its own acquisition cost")
	assert.Len(t, f.store.entries, 2, "one entry per serial")
}

func TestReverse_OffsetsDocumentEffect(t *testing.T) {
	f := newFixture(t, entity.DefaultCostConfig(), 2026)
	ctx := context.Background()
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	product, warehouse := id.New(), id.New()

	doc := testDoc("goods_receipt")
	_, err := f.engine.Log(ctx, f.scope, doc, date, []entity.MovementRecord{
		movement(product, warehouse, entity.StockTypeIn, 10, 100, date),
	}, LogOptions{})
	require.NoError(t, err)

	reversed, err := f.engine.Reverse(ctx, f.scope, doc, date)
	require.NoError(t, err)
	require.Len(t, reversed, 1)

	r := reversed[0]
	assert.Equal(t, entity.StockTypeOut, r.StockType)
	qtyEq(t, 0, r.CurrentQuantity, "stock back to zero")
	moneyEq(t, 0, r.CurrentValue, "value back to zero")
	moneyEq(t, 100, r.Cost, "reversed at the received cost")

	// original rows are untouched, the reversal is a new pair
	assert.Len(t, f.store.logs, 2)
}

func TestReverse_NothingRecordedIsNoOp(t *testing.T) {
	f := newFixture(t, entity.DefaultCostConfig(), 2026)
	ctx := context.Background()

	reversed, err := f.engine.Reverse(ctx, f.scope, testDoc("delivery"), time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, reversed)
}

func TestLog_RejectsInvalidMovement(t *testing.T) {
	f := newFixture(t, entity.DefaultCostConfig(), 2026)
	ctx := context.Background()
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	bad := movement(id.New(), id.New(), entity.StockTypeIn, 10, 100, date)
	bad.Quantity = types.NewQuantityFromFloat64(-1)

	logs, err := f.engine.Log(ctx, f.scope, testDoc("goods_receipt"), date,
		[]entity.MovementRecord{bad}, LogOptions{})
	require.Error(t, err)
	assert.Nil(t, logs)
	assert.Empty(t, f.store.logs, "validation failure writes nothing")
}
