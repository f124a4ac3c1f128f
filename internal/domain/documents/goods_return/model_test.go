package goods_return

import (
	"context"
	"errors"
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

func returnLine(qty, amount float64) documents.StockLine {
	return documents.StockLine{
		ProductID: id.New(),
		UnitID:    id.New(),
		UnitRatio: types.NewQuantityFromFloat64(1),
		Quantity:  types.NewQuantityFromFloat64(qty),
		Amount:    types.NewMoney(amount),
		Trace:     entity.TraceNone,
	}
}

func TestGoodsReturn_Validate(t *testing.T) {
	ctx := context.Background()

	doc := NewGoodsReturn(testScope(), id.New(), id.New())
	doc.AddLine(returnLine(5, 250))
	assert.NoError(t, doc.Validate(ctx))

	t.Run("requires customer", func(t *testing.T) {
		d := NewGoodsReturn(testScope(), id.Nil(), id.New())
		d.AddLine(returnLine(5, 250))
		assert.ErrorContains(t, d.Validate(ctx), "customer is required")
	})

	t.Run("requires positive return cost", func(t *testing.T) {
		d := NewGoodsReturn(testScope(), id.New(), id.New())
		d.AddLine(returnLine(5, 0))
		assert.ErrorContains(t, d.Validate(ctx), "return cost must be positive")
	})
}

func TestGoodsReturn_ProjectMovements(t *testing.T) {
	doc := NewGoodsReturn(testScope(), id.New(), id.New())
	doc.Number = "RT-00001"
	doc.AddLine(returnLine(4, 200))

	movements, err := doc.ProjectMovements(context.Background())

	require.NoError(t, err)
	require.Len(t, movements, 1)
	m := movements[0]
	assert.Equal(t, entity.StockTypeIn, m.StockType)
	assert.Equal(t, doc.WarehouseID, m.WarehouseID)
	assert.True(t, m.Cost.Equal(types.NewMoney(50)), "delivered cost per unit, got %s", m.Cost)
	assert.True(t, m.Value.Equal(types.NewMoney(200)), "got %s", m.Value)
}

// deliveredCosts maps product ID to the per-unit cost the delivery issued at.
type deliveredCosts map[id.ID]float64

func (c deliveredCosts) DeliveredCost(_ context.Context, _ tenant.Scope, _ id.ID, productID id.ID) (types.Money, bool, error) {
	cost, ok := c[productID]
	if !ok {
		return types.Zero(), false, nil
	}
	return types.NewMoney(cost), true, nil
}

type failingCosts struct{}

func (failingCosts) DeliveredCost(context.Context, tenant.Scope, id.ID, id.ID) (types.Money, bool, error) {
	return types.Zero(), false, errors.New("connection refused")
}

func TestPrepare_PrefillsCostFromDelivery(t *testing.T) {
	doc := NewGoodsReturn(testScope(), id.New(), id.New())
	deliveryID := id.New()
	doc.DeliveryID = &deliveryID

	priced := returnLine(2, 90)
	unpriced := returnLine(3, 0)
	doc.AddLine(priced)
	doc.AddLine(unpriced)

	svc := NewService(nil, nil, nil, nil, nil, deliveredCosts{
		unpriced.ProductID: 40,
	})

	require.NoError(t, svc.prepare(context.Background(), doc))

	assert.True(t, doc.Lines[0].Amount.Equal(types.NewMoney(90)), "entered cost kept, got %s", doc.Lines[0].Amount)
	assert.True(t, doc.Lines[1].Amount.Equal(types.NewMoney(120)), "3 units at 40, got %s", doc.Lines[1].Amount)
	assert.True(t, doc.TotalAmount.Equal(types.NewMoney(210)), "totals refreshed, got %s", doc.TotalAmount)
}

func TestPrepare_UnknownProductRejected(t *testing.T) {
	doc := NewGoodsReturn(testScope(), id.New(), id.New())
	deliveryID := id.New()
	doc.DeliveryID = &deliveryID
	doc.AddLine(returnLine(1, 0))

	svc := NewService(nil, nil, nil, nil, nil, deliveredCosts{})

	err := svc.prepare(context.Background(), doc)

	assert.ErrorContains(t, err, "not issued by the referenced delivery")
}

func TestPrepare_CostSourceFailurePropagates(t *testing.T) {
	doc := NewGoodsReturn(testScope(), id.New(), id.New())
	deliveryID := id.New()
	doc.DeliveryID = &deliveryID
	doc.AddLine(returnLine(1, 0))

	svc := NewService(nil, nil, nil, nil, nil, failingCosts{})

	assert.ErrorContains(t, svc.prepare(context.Background(), doc), "resolve delivered cost")
}

func TestPrepare_NoDeliveryReferenceSkipsLookup(t *testing.T) {
	doc := NewGoodsReturn(testScope(), id.New(), id.New())
	doc.AddLine(returnLine(1, 0))

	svc := NewService(nil, nil, nil, nil, nil, failingCosts{})

	assert.NoError(t, svc.prepare(context.Background(), doc))
	assert.True(t, doc.Lines[0].Amount.IsZero())
}
