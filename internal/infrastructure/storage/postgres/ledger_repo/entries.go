// Package ledger_repo provides the PostgreSQL implementation of the cost
// ledger store. In Database-per-Tenant architecture, TxManager is obtained
// from context.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/types"
	"valora/internal/domain/ledger"
	"valora/internal/infrastructure/storage/postgres"
)

const (
	entriesTable          = "ledger_entries"
	warehouseEntriesTable = "ledger_warehouse_entries"
	stockLogsTable        = "stock_logs"
	serialCostsTable      = "serial_costs"
)

var entryColumns = []string{
	"id", "tenant_id", "company_id",
	"product_id", "warehouse_id", "lot_id", "serial_id", "project_id",
	"period_id", "sub_period_id", "for_balance",
	"opening_quantity", "opening_cost", "opening_value",
	"ending_quantity", "ending_cost", "ending_value",
	"sum_input_quantity", "sum_input_value", "sum_output_quantity",
	"periodic_ending_quantity", "periodic_ending_cost", "periodic_ending_value",
	"created_at", "updated_at",
}

// LedgerRepo implements ledger.Store.
type LedgerRepo struct {
	builder squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new cost ledger repository.
func NewLedgerRepo() *LedgerRepo {
	return &LedgerRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *LedgerRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

// optID unwraps an optional dimension so squirrel renders IS NULL for the
// absent case instead of comparing against a typed nil.
func optID(v *id.ID) any {
	if v == nil {
		return nil
	}
	return *v
}

func keyWhere(scope tenant.Scope, key entity.LedgerKey) squirrel.Eq {
	return squirrel.Eq{
		"tenant_id":    scope.TenantID,
		"company_id":   scope.CompanyID,
		"product_id":   key.ProductID,
		"warehouse_id": optID(key.WarehouseID),
		"lot_id":       optID(key.LotID),
		"serial_id":    optID(key.SerialID),
		"project_id":   optID(key.ProjectID),
	}
}

// GetEntry returns the entry for a key in a specific sub-period, or nil.
func (r *LedgerRepo) GetEntry(ctx context.Context, scope tenant.Scope, key entity.LedgerKey, subPeriodID id.ID) (*entity.CostLedgerEntry, error) {
	return r.getEntry(ctx, scope, key, subPeriodID, false)
}

// GetEntryForUpdate is GetEntry with a row lock.
func (r *LedgerRepo) GetEntryForUpdate(ctx context.Context, scope tenant.Scope, key entity.LedgerKey, subPeriodID id.ID) (*entity.CostLedgerEntry, error) {
	return r.getEntry(ctx, scope, key, subPeriodID, true)
}

func (r *LedgerRepo) getEntry(ctx context.Context, scope tenant.Scope, key entity.LedgerKey, subPeriodID id.ID, forUpdate bool) (*entity.CostLedgerEntry, error) {
	q := r.builder.Select(entryColumns...).
		From(entriesTable).
		Where(keyWhere(scope, key)).
		Where(squirrel.Eq{"sub_period_id": subPeriodID}).
		Limit(1)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entry entity.CostLedgerEntry
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &entry, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return &entry, nil
}

// GetLatestEntry returns the most recent entry for a key, or nil. Entries
// are created in fiscal order, so creation time is the recency order.
func (r *LedgerRepo) GetLatestEntry(ctx context.Context, scope tenant.Scope, key entity.LedgerKey) (*entity.CostLedgerEntry, error) {
	q := r.builder.Select(entryColumns...).
		From(entriesTable).
		Where(keyWhere(scope, key)).
		OrderBy("created_at DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entry entity.CostLedgerEntry
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &entry, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest entry: %w", err)
	}
	return &entry, nil
}

// GetOpeningBalance returns the balance of the entry flagged ForBalance, or
// zeros if no balance initialization was recorded for the key.
func (r *LedgerRepo) GetOpeningBalance(ctx context.Context, scope tenant.Scope, key entity.LedgerKey) (entity.Balance, error) {
	q := r.builder.Select("opening_quantity", "opening_cost", "opening_value").
		From(entriesTable).
		Where(keyWhere(scope, key)).
		Where(squirrel.Eq{"for_balance": true}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return entity.ZeroBalance(), fmt.Errorf("build query: %w", err)
	}

	var row struct {
		OpeningQuantity types.Quantity `db:"opening_quantity"`
		OpeningCost     types.Money    `db:"opening_cost"`
		OpeningValue    types.Money    `db:"opening_value"`
	}
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity.ZeroBalance(), nil
		}
		return entity.ZeroBalance(), fmt.Errorf("get opening balance: %w", err)
	}
	return entity.Balance{Quantity: row.OpeningQuantity, Cost: row.OpeningCost, Value: row.OpeningValue}, nil
}

func entryValues(e *entity.CostLedgerEntry) []any {
	return []any{
		e.ID, e.TenantID, e.CompanyID,
		e.ProductID, optID(e.WarehouseID), optID(e.LotID), optID(e.SerialID), optID(e.ProjectID),
		e.PeriodID, e.SubPeriodID, e.ForBalance,
		e.OpeningQuantity, e.OpeningCost, e.OpeningValue,
		e.EndingQuantity, e.EndingCost, e.EndingValue,
		e.SumInputQuantity, e.SumInputValue, e.SumOutputQuantity,
		e.PeriodicEndingQuantity, e.PeriodicEndingCost, e.PeriodicEndingValue,
		e.CreatedAt, e.UpdatedAt,
	}
}

// CreateEntry inserts a new entry (at most one per key per sub-period).
func (r *LedgerRepo) CreateEntry(ctx context.Context, entry *entity.CostLedgerEntry) error {
	q := r.builder.Insert(entriesTable).
		Columns(entryColumns...).
		Values(entryValues(entry)...)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// UpdateEntry persists balance mutations on an existing entry.
func (r *LedgerRepo) UpdateEntry(ctx context.Context, entry *entity.CostLedgerEntry) error {
	q := r.builder.Update(entriesTable).
		Set("for_balance", entry.ForBalance).
		Set("opening_quantity", entry.OpeningQuantity).
		Set("opening_cost", entry.OpeningCost).
		Set("opening_value", entry.OpeningValue).
		Set("ending_quantity", entry.EndingQuantity).
		Set("ending_cost", entry.EndingCost).
		Set("ending_value", entry.EndingValue).
		Set("sum_input_quantity", entry.SumInputQuantity).
		Set("sum_input_value", entry.SumInputValue).
		Set("sum_output_quantity", entry.SumOutputQuantity).
		Set("periodic_ending_quantity", entry.PeriodicEndingQuantity).
		Set("periodic_ending_cost", entry.PeriodicEndingCost).
		Set("periodic_ending_value", entry.PeriodicEndingValue).
		Set("updated_at", entry.UpdatedAt).
		Where(squirrel.Eq{"id": entry.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	return nil
}

// ListEntriesBySubPeriod returns all entries of one sub-period.
func (r *LedgerRepo) ListEntriesBySubPeriod(ctx context.Context, scope tenant.Scope, periodID, subPeriodID id.ID) ([]*entity.CostLedgerEntry, error) {
	q := r.builder.Select(entryColumns...).
		From(entriesTable).
		Where(squirrel.Eq{
			"tenant_id":     scope.TenantID,
			"company_id":    scope.CompanyID,
			"period_id":     periodID,
			"sub_period_id": subPeriodID,
		}).
		OrderBy("product_id", "created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []*entity.CostLedgerEntry
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}
	return entries, nil
}

// RollForward opens the target sub-period: for every key present in from and
// absent in to, a new entry is created whose opening equals the source's
// ending under the given valuation policy. Idempotent.
func (r *LedgerRepo) RollForward(ctx context.Context, scope tenant.Scope, from, to *entity.SubPeriod, policy entity.ValuationPolicy) error {
	sources, err := r.ListEntriesBySubPeriod(ctx, scope, from.PeriodID, from.ID)
	if err != nil {
		return fmt.Errorf("list source entries: %w", err)
	}
	if len(sources) == 0 {
		return nil
	}

	existing, err := r.ListEntriesBySubPeriod(ctx, scope, to.PeriodID, to.ID)
	if err != nil {
		return fmt.Errorf("list target entries: %w", err)
	}
	present := make(map[string]bool, len(existing))
	for _, e := range existing {
		present[e.LedgerKey.String()] = true
	}

	now := time.Now().UTC()
	for _, src := range sources {
		if present[src.LedgerKey.String()] {
			continue
		}

		opening := src.Ending()
		if policy == entity.ValuationPeriodic {
			opening = src.PeriodicEnding()
		}

		next := entity.NewCostLedgerEntry(scope, src.LedgerKey, to.PeriodID, to.ID, opening)
		next.CreatedAt = now
		next.UpdatedAt = now
		if err := r.CreateEntry(ctx, next); err != nil {
			return fmt.Errorf("create rolled entry: %w", err)
		}

		if err := r.copyWarehouseEntries(ctx, src.ID, next.ID); err != nil {
			return fmt.Errorf("copy warehouse breakdown: %w", err)
		}
	}

	return nil
}

// copyWarehouseEntries carries the per-warehouse breakdown into the new
// entry, ending becoming the next month's opening.
func (r *LedgerRepo) copyWarehouseEntries(ctx context.Context, fromEntryID, toEntryID id.ID) error {
	sql := `
		INSERT INTO ledger_warehouse_entries
			(id, entry_id, warehouse_id,
			 opening_quantity, opening_cost, opening_value,
			 ending_quantity, ending_cost, ending_value)
		SELECT gen_random_uuid(), $2, warehouse_id,
			   ending_quantity, ending_cost, ending_value,
			   ending_quantity, ending_cost, ending_value
		FROM ledger_warehouse_entries
		WHERE entry_id = $1
	`

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, fromEntryID, toEntryID); err != nil {
		return fmt.Errorf("copy warehouse entries: %w", err)
	}
	return nil
}

// AccumulateWarehouseEntry adds signed quantity and value deltas to the
// warehouse's ending balance, creating the row with zero opening on first
// touch.
func (r *LedgerRepo) AccumulateWarehouseEntry(ctx context.Context, entryID, warehouseID id.ID, quantity types.Quantity, value types.Money) error {
	sql := `
		INSERT INTO ledger_warehouse_entries
			(id, entry_id, warehouse_id,
			 opening_quantity, opening_cost, opening_value,
			 ending_quantity, ending_cost, ending_value)
		VALUES (gen_random_uuid(), $1, $2, 0, 0, 0, $3, 0, $4)
		ON CONFLICT (entry_id, warehouse_id) DO UPDATE SET
			ending_quantity = ledger_warehouse_entries.ending_quantity + EXCLUDED.ending_quantity,
			ending_value    = ledger_warehouse_entries.ending_value + EXCLUDED.ending_value
	`

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, entryID, warehouseID, quantity, value); err != nil {
		return fmt.Errorf("accumulate warehouse entry: %w", err)
	}
	return nil
}

// Ensure interface compliance.
var _ ledger.Store = (*LedgerRepo)(nil)
