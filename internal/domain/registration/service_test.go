package registration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/types"
)

type accumulation struct {
	saleOrderID id.ID
	productID   id.ID
	delta       types.Quantity
}

type memRepo struct {
	calls []accumulation
	err   error
}

func (r *memRepo) AccumulateDelivered(_ context.Context, _ tenant.Scope, saleOrderID, productID id.ID, delta types.Quantity, _ time.Time) error {
	if r.err != nil {
		return r.err
	}
	r.calls = append(r.calls, accumulation{saleOrderID: saleOrderID, productID: productID, delta: delta})
	return nil
}

func (r *memRepo) GetBySaleOrder(context.Context, tenant.Scope, id.ID) ([]OrderFulfillment, error) {
	return nil, nil
}

func (r *memRepo) Get(context.Context, tenant.Scope, id.ID, id.ID) (*OrderFulfillment, error) {
	return nil, nil
}

func orderLog(saleOrderID *id.ID, stockType entity.StockType, qty float64) *entity.StockLog {
	return &entity.StockLog{
		ID:          id.New(),
		Scope:       tenant.NewScope(id.New(), id.New()),
		ProductID:   id.New(),
		WarehouseID: id.New(),
		SaleOrderID: saleOrderID,
		StockType:   stockType,
		Quantity:    types.NewQuantityFromFloat64(qty),
		PostingDate: time.Now().UTC(),
	}
}

func TestConsumeStockLogs_TracksDeliveries(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo)
	order := id.New()

	delivered := orderLog(&order, entity.StockTypeOut, 5)
	returned := orderLog(&order, entity.StockTypeIn, 2)
	unrelated := orderLog(nil, entity.StockTypeOut, 7)

	err := svc.ConsumeStockLogs(context.Background(), []*entity.StockLog{delivered, returned, unrelated})

	require.NoError(t, err)
	require.Len(t, repo.calls, 2, "logs without a sale order are skipped")

	assert.Equal(t, order, repo.calls[0].saleOrderID)
	assert.Equal(t, delivered.ProductID, repo.calls[0].productID)
	assert.Equal(t, types.NewQuantityFromFloat64(5), repo.calls[0].delta, "outbound adds")

	assert.Equal(t, types.NewQuantityFromFloat64(-2), repo.calls[1].delta, "inbound subtracts")
}

func TestConsumeStockLogs_NilOrderIDSkipped(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo)
	nilID := id.Nil()

	err := svc.ConsumeStockLogs(context.Background(), []*entity.StockLog{
		orderLog(&nilID, entity.StockTypeOut, 5),
	})

	require.NoError(t, err)
	assert.Empty(t, repo.calls)
}

func TestConsumeStockLogs_RepoFailureStopsPosting(t *testing.T) {
	repo := &memRepo{err: errors.New("deadlock detected")}
	svc := NewService(repo)
	order := id.New()

	err := svc.ConsumeStockLogs(context.Background(), []*entity.StockLog{
		orderLog(&order, entity.StockTypeOut, 5),
	})

	assert.ErrorContains(t, err, "accumulate delivered")
}

func TestFulfillmentForOrder_RequiresScope(t *testing.T) {
	svc := NewService(&memRepo{})

	_, err := svc.FulfillmentForOrder(context.Background(), tenant.Scope{}, id.New())

	assert.Error(t, err)
}
