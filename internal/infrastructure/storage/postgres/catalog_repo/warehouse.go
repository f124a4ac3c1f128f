package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"valora/internal/domain/catalogs/warehouse"
	"valora/internal/infrastructure/storage/postgres"
)

const warehouseTable = "cat_warehouses"

// WarehouseRepo stores warehouses, with one extra operation on top of
// the generic catalog repo for maintaining the single default flag.
type WarehouseRepo struct {
	*BaseCatalogRepo[*warehouse.Warehouse]
}

func NewWarehouseRepo() *WarehouseRepo {
	base := NewBaseCatalogRepo[*warehouse.Warehouse](
		warehouseTable,
		postgres.ExtractDBColumns[warehouse.Warehouse](),
		func() *warehouse.Warehouse { return &warehouse.Warehouse{} },
	)
	return &WarehouseRepo{BaseCatalogRepo: base}
}

// ClearDefault drops the default flag wherever it is set. The service
// calls it in the same transaction that marks the new default.
func (r *WarehouseRepo) ClearDefault(ctx context.Context) error {
	sql, args, err := r.Builder().
		Update(warehouseTable).
		Set("is_default", false).
		Where(squirrel.Eq{"is_default": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := r.getTxManager(ctx).GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("clear default: %w", err)
	}
	return nil
}
