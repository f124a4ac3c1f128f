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

func periodicConfig() entity.CostConfig {
	cfg := entity.DefaultCostConfig()
	cfg.Policy = entity.ValuationPeriodic
	return cfg
}

func TestPeriodic_IntraMonthRowsCarryNoCost(t *testing.T) {
	f := newFixture(t, periodicConfig(), 2026)
	ctx := context.Background()
	date := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	product, warehouse := id.New(), id.New()

	logs, err := f.engine.Log(ctx, f.scope, testDoc("goods_receipt"), date, []entity.MovementRecord{
		movement(product, warehouse, entity.StockTypeIn, 10, 100, date),
		movement(product, warehouse, entity.StockTypeOut, 3, 0, date),
	}, LogOptions{})
	require.NoError(t, err)
	require.Len(t, logs, 2)

	for _, l := range logs {
		moneyEq(t, 0, l.Cost, "intra-month cost is zero")
		moneyEq(t, 0, l.Value, "intra-month value is zero")
		moneyEq(t, 0, l.CurrentCost, "running cost unresolved")
	}
	qtyEq(t, 10, logs[0].CurrentQuantity, "quantity still tracks")
	qtyEq(t, 7, logs[1].CurrentQuantity, "quantity nets out")

	require.Len(t, f.store.entries, 1)
	e := f.store.entries[0]
	qtyEq(t, 10, e.SumInputQuantity, "input quantity accumulated")
	moneyEq(t, 1000, e.SumInputValue, "input value accumulated")
	qtyEq(t, 3, e.SumOutputQuantity, "output quantity accumulated")
}

func TestCloseSubPeriod_ResolvesAverageCost(t *testing.T) {
	f := newFixture(t, periodicConfig(), 2026)
	ctx := context.Background()
	date := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	product, warehouse := id.New(), id.New()

	_, err := f.engine.Log(ctx, f.scope, testDoc("goods_receipt"), date, []entity.MovementRecord{
		movement(product, warehouse, entity.StockTypeIn, 10, 100, date),
		movement(product, warehouse, entity.StockTypeIn, 10, 200, date),
		movement(product, warehouse, entity.StockTypeOut, 5, 0, date),
	}, LogOptions{})
	require.NoError(t, err)

	sub := f.subPeriod(2026, 5)
	require.NoError(t, f.engine.CloseSubPeriod(ctx, f.scope, sub))
	assert.True(t, sub.PeriodicClosed)

	e := f.store.entries[0]
	qtyEq(t, 15, e.PeriodicEndingQuantity, "20 in minus 5 out")
	moneyEq(t, 150, e.PeriodicEndingCost, "3000 over 20")
	moneyEq(t, 2250, e.PeriodicEndingValue, "15 at 150")
}

func TestCloseSubPeriod_ZeroMovementCarriesOpeningForward(t *testing.T) {
	f := newFixture(t, periodicConfig(), 2026)
	ctx := context.Background()
	sub := f.subPeriod(2026, 5)

	opening := entity.Balance{
		Quantity: types.NewQuantityFromFloat64(20),
		Cost:     types.NewMoney(50),
		Value:    types.NewMoney(1000),
	}
	key := entity.LedgerKey{ProductID: id.New()}
	entry := entity.NewCostLedgerEntry(f.scope, key, sub.PeriodID, sub.ID, opening)
	require.NoError(t, f.store.CreateEntry(ctx, entry))

	require.NoError(t, f.engine.CloseSubPeriod(ctx, f.scope, sub))

	qtyEq(t, 20, entry.PeriodicEndingQuantity, "opening quantity carried")
	moneyEq(t, 50, entry.PeriodicEndingCost, "opening cost carried")
	moneyEq(t, 1000, entry.PeriodicEndingValue, "opening value carried")
	assert.True(t, sub.PeriodicClosed)
}

func TestCloseSubPeriod_StockoutFloorsAtZero(t *testing.T) {
	f := newFixture(t, periodicConfig(), 2026)
	ctx := context.Background()
	date := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	product, warehouse := id.New(), id.New()

	_, err := f.engine.Log(ctx, f.scope, testDoc("goods_issue"), date, []entity.MovementRecord{
		movement(product, warehouse, entity.StockTypeIn, 5, 100, date),
		movement(product, warehouse, entity.StockTypeOut, 8, 0, date),
	}, LogOptions{})
	require.NoError(t, err)

	require.NoError(t, f.engine.CloseSubPeriod(ctx, f.scope, f.subPeriod(2026, 5)))

	e := f.store.entries[0]
	qtyEq(t, 0, e.PeriodicEndingQuantity, "negative ending floored")
	moneyEq(t, 0, e.PeriodicEndingCost, "cost floored")
	moneyEq(t, 0, e.PeriodicEndingValue, "value floored")
}

func TestCloseSubPeriod_RunsOnlyOnce(t *testing.T) {
	f := newFixture(t, periodicConfig(), 2026)
	ctx := context.Background()
	sub := f.subPeriod(2026, 5)

	require.NoError(t, f.engine.CloseSubPeriod(ctx, f.scope, sub))

	err := f.engine.CloseSubPeriod(ctx, f.scope, sub)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodePeriodicAlreadyClosed, appErr.Code)
}

func TestLog_AutoClosesCarriedDecember(t *testing.T) {
	f := newFixture(t, periodicConfig(), 2026, 2027)
	ctx := context.Background()
	product, warehouse := id.New(), id.New()

	dec := time.Date(2026, 12, 10, 0, 0, 0, 0, time.UTC)
	_, err := f.engine.Log(ctx, f.scope, testDoc("goods_receipt"), dec,
		[]entity.MovementRecord{movement(product, warehouse, entity.StockTypeIn, 10, 100, dec)}, LogOptions{})
	require.NoError(t, err)
	require.False(t, f.subPeriod(2026, 12).PeriodicClosed)

	// first write of the new year closes last December lazily so January
	// rolls forward from a resolved balance
	jan := time.Date(2027, 1, 5, 0, 0, 0, 0, time.UTC)
	_, err = f.engine.Log(ctx, f.scope, testDoc("goods_receipt"), jan,
		[]entity.MovementRecord{movement(product, warehouse, entity.StockTypeIn, 5, 100, jan)}, LogOptions{})
	require.NoError(t, err)

	assert.True(t, f.subPeriod(2026, 12).PeriodicClosed, "December closed in passing")

	key := entity.LedgerKey{ProductID: product, WarehouseID: &warehouse}
	janEntry, err := f.store.GetEntry(ctx, f.scope, key, f.subPeriod(2027, 1).ID)
	require.NoError(t, err)
	require.NotNil(t, janEntry)
	qtyEq(t, 10, janEntry.OpeningQuantity, "January opens from December's periodic ending")
	moneyEq(t, 1000, janEntry.OpeningValue, "January opening value")
}

func TestLog_AutoClosesUnclosedMonthsWithinYear(t *testing.T) {
	f := newFixture(t, periodicConfig(), 2026)
	ctx := context.Background()
	product, warehouse := id.New(), id.New()

	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	_, err := f.engine.Log(ctx, f.scope, testDoc("goods_receipt"), jan,
		[]entity.MovementRecord{movement(product, warehouse, entity.StockTypeIn, 10, 100, jan)}, LogOptions{})
	require.NoError(t, err)
	require.False(t, f.subPeriod(2026, 1).PeriodicClosed)

	// next write skips to March with no close run in between; January and
	// February close in passing so the opening balance survives the gap
	mar := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	_, err = f.engine.Log(ctx, f.scope, testDoc("goods_issue"), mar,
		[]entity.MovementRecord{movement(product, warehouse, entity.StockTypeOut, 2, 0, mar)}, LogOptions{})
	require.NoError(t, err)

	assert.True(t, f.subPeriod(2026, 1).PeriodicClosed, "January closed before February opened")
	assert.True(t, f.subPeriod(2026, 2).PeriodicClosed, "February closed before March opened")
	assert.False(t, f.subPeriod(2026, 3).PeriodicClosed, "target month stays open")

	key := entity.LedgerKey{ProductID: product, WarehouseID: &warehouse}
	febEntry, err := f.store.GetEntry(ctx, f.scope, key, f.subPeriod(2026, 2).ID)
	require.NoError(t, err)
	require.NotNil(t, febEntry)
	qtyEq(t, 10, febEntry.OpeningQuantity, "February opens from January's periodic ending")
	moneyEq(t, 1000, febEntry.OpeningValue, "February opening value")

	marEntry, err := f.store.GetEntry(ctx, f.scope, key, f.subPeriod(2026, 3).ID)
	require.NoError(t, err)
	require.NotNil(t, marEntry)
	qtyEq(t, 10, marEntry.OpeningQuantity, "March opening carried through the empty month")
	moneyEq(t, 1000, marEntry.OpeningValue, "March opening value")
	qtyEq(t, 2, marEntry.SumOutputQuantity, "March issue accumulated")
}
