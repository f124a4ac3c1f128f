// Package registration_repo provides the PostgreSQL implementation of the
// sale-order fulfillment repository. In Database-per-Tenant architecture,
// TxManager is obtained from context.
package registration_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/types"
	"valora/internal/domain/registration"
	"valora/internal/infrastructure/storage/postgres"
)

const fulfillmentTable = "order_fulfillment"

// FulfillmentRepo implements registration.Repository.
type FulfillmentRepo struct {
	builder squirrel.StatementBuilderType
}

// NewFulfillmentRepo creates a new fulfillment repository.
func NewFulfillmentRepo() *FulfillmentRepo {
	return &FulfillmentRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *FulfillmentRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

// AccumulateDelivered adds delta to the fulfillment row, creating it when
// absent. Runs inside the posting transaction.
func (r *FulfillmentRepo) AccumulateDelivered(ctx context.Context, scope tenant.Scope, saleOrderID, productID id.ID, delta types.Quantity, at time.Time) error {
	sql := `
		INSERT INTO order_fulfillment
			(id, tenant_id, company_id, sale_order_id, product_id, delivered_quantity, last_delivery_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id, company_id, sale_order_id, product_id) DO UPDATE SET
			delivered_quantity = order_fulfillment.delivered_quantity + EXCLUDED.delivered_quantity,
			last_delivery_at   = GREATEST(order_fulfillment.last_delivery_at, EXCLUDED.last_delivery_at)
	`

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, scope.TenantID, scope.CompanyID, saleOrderID, productID, delta, at); err != nil {
		return fmt.Errorf("accumulate delivered: %w", err)
	}
	return nil
}

// GetBySaleOrder returns all fulfillment rows for a sale order.
func (r *FulfillmentRepo) GetBySaleOrder(ctx context.Context, scope tenant.Scope, saleOrderID id.ID) ([]registration.OrderFulfillment, error) {
	q := r.builder.Select("id", "tenant_id", "company_id", "sale_order_id", "product_id", "delivered_quantity", "last_delivery_at").
		From(fulfillmentTable).
		Where(squirrel.Eq{
			"tenant_id":     scope.TenantID,
			"company_id":    scope.CompanyID,
			"sale_order_id": saleOrderID,
		}).
		OrderBy("product_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []registration.OrderFulfillment
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select fulfillment: %w", err)
	}
	return rows, nil
}

// Get returns the row for one product of a sale order, nil when absent.
func (r *FulfillmentRepo) Get(ctx context.Context, scope tenant.Scope, saleOrderID, productID id.ID) (*registration.OrderFulfillment, error) {
	q := r.builder.Select("id", "tenant_id", "company_id", "sale_order_id", "product_id", "delivered_quantity", "last_delivery_at").
		From(fulfillmentTable).
		Where(squirrel.Eq{
			"tenant_id":     scope.TenantID,
			"company_id":    scope.CompanyID,
			"sale_order_id": saleOrderID,
			"product_id":    productID,
		}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row registration.OrderFulfillment
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fulfillment: %w", err)
	}
	return &row, nil
}

// Ensure interface compliance.
var _ registration.Repository = (*FulfillmentRepo)(nil)
