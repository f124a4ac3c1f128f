// Package registration tracks sale-order fulfillment: how much of each
// ordered product has actually been shipped, net of returns and reversals.
// It is a downstream projection of the stock ledger, updated from the logs
// a posting produces, never written directly by documents.
package registration

import (
	"context"
	"time"

	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/types"
)

// OrderFulfillment is the accumulated delivered state for one product of
// one sale order.
type OrderFulfillment struct {
	ID id.ID `db:"id" json:"id"`

	tenant.Scope

	SaleOrderID id.ID `db:"sale_order_id" json:"saleOrderId"`
	ProductID   id.ID `db:"product_id" json:"productId"`

	// DeliveredQuantity is the net shipped quantity in base units. Unposting
	// a delivery subtracts, so the value can transiently drop to zero.
	DeliveredQuantity types.Quantity `db:"delivered_quantity" json:"deliveredQuantity"`

	// LastDeliveryAt is the posting time of the most recent contributing log
	LastDeliveryAt time.Time `db:"last_delivery_at" json:"lastDeliveryAt"`
}

// Repository persists fulfillment rows keyed by (sale order, product).
type Repository interface {
	// AccumulateDelivered adds delta (signed, base units) to the row for the
	// given sale order and product, creating it when absent.
	AccumulateDelivered(ctx context.Context, scope tenant.Scope, saleOrderID, productID id.ID, delta types.Quantity, at time.Time) error

	// GetBySaleOrder returns all fulfillment rows for a sale order.
	GetBySaleOrder(ctx context.Context, scope tenant.Scope, saleOrderID id.ID) ([]OrderFulfillment, error)

	// Get returns the row for one product of a sale order, nil when nothing
	// was delivered yet.
	Get(ctx context.Context, scope tenant.Scope, saleOrderID, productID id.ID) (*OrderFulfillment, error)
}
