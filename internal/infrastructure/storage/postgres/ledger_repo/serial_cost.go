package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/types"
	"valora/internal/domain/ledger"
	"valora/internal/infrastructure/storage/postgres"
)

// SerialCostRepo implements ledger.SerialCostStore: the acquisition cost of
// each serialized unit, recorded at receipt and looked up at issue.
type SerialCostRepo struct {
	builder squirrel.StatementBuilderType
}

// NewSerialCostRepo creates a new serial cost repository.
func NewSerialCostRepo() *SerialCostRepo {
	return &SerialCostRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *SerialCostRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

// Record stores the acquisition cost of a serial. A re-receipt of the same
// serial overwrites the previous cost.
func (r *SerialCostRepo) Record(ctx context.Context, scope tenant.Scope, productID, serialID id.ID, cost types.Money) error {
	sql := `
		INSERT INTO serial_costs (tenant_id, company_id, product_id, serial_id, cost, recorded_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (tenant_id, company_id, serial_id) DO UPDATE SET
			product_id  = EXCLUDED.product_id,
			cost        = EXCLUDED.cost,
			recorded_at = EXCLUDED.recorded_at
	`

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, scope.TenantID, scope.CompanyID, productID, serialID, cost); err != nil {
		return fmt.Errorf("record serial cost: %w", err)
	}
	return nil
}

// Get returns the recorded cost for a serial, or false if none.
func (r *SerialCostRepo) Get(ctx context.Context, scope tenant.Scope, serialID id.ID) (types.Money, bool, error) {
	q := r.builder.Select("cost").
		From(serialCostsTable).
		Where(squirrel.Eq{
			"tenant_id":  scope.TenantID,
			"company_id": scope.CompanyID,
			"serial_id":  serialID,
		}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), false, fmt.Errorf("build query: %w", err)
	}

	var row struct {
		Cost types.Money `db:"cost"`
	}
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return types.Zero(), false, nil
		}
		return types.Zero(), false, fmt.Errorf("get serial cost: %w", err)
	}
	return row.Cost, true, nil
}

// Ensure interface compliance.
var _ ledger.SerialCostStore = (*SerialCostRepo)(nil)
