package ledger

import (
	"context"

	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/types"
)

// CostLookup answers cost questions from the stock log without going through
// the engine. Used by document services that price off past postings.
type CostLookup struct {
	store Store
}

// NewCostLookup creates a lookup over the given store.
func NewCostLookup(store Store) *CostLookup {
	return &CostLookup{store: store}
}

// DeliveredCost returns the unit cost a product was issued at by a specific
// document. When the document issued the product several times (serial
// lines), the quantity-weighted average of the issue rows is returned.
func (c *CostLookup) DeliveredCost(ctx context.Context, scope tenant.Scope, deliveryID, productID id.ID) (types.Money, bool, error) {
	out := entity.StockTypeOut
	logs, err := c.store.ListLogs(ctx, scope, LogFilter{
		ProductID: &productID,
		TransID:   &deliveryID,
		StockType: &out,
	})
	if err != nil {
		return types.Zero(), false, err
	}
	if len(logs) == 0 {
		return types.Zero(), false, nil
	}

	var qty types.Quantity
	value := types.Zero()
	for _, l := range logs {
		qty += l.Quantity
		value = value.Add(l.Value)
	}
	if !qty.IsPositive() {
		return types.Zero(), false, nil
	}
	return types.AverageCost(value, qty), true, nil
}
