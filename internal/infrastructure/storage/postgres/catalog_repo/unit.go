package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"valora/internal/core/apperror"
	"valora/internal/domain/catalogs/unit"
	"valora/internal/infrastructure/storage/postgres"
)

const unitTable = "cat_units"

// UnitRepo stores measurement units. Adds symbol lookup on top of the
// generic catalog repo.
type UnitRepo struct {
	*BaseCatalogRepo[*unit.Unit]
}

func NewUnitRepo() *UnitRepo {
	base := NewBaseCatalogRepo[*unit.Unit](
		unitTable,
		postgres.ExtractDBColumns[unit.Unit](),
		func() *unit.Unit { return &unit.Unit{} },
	)
	return &UnitRepo{BaseCatalogRepo: base}
}

// FindBySymbol retrieves a non-deleted unit by its symbol.
func (r *UnitRepo) FindBySymbol(ctx context.Context, symbol string) (*unit.Unit, error) {
	sql, args, err := r.baseSelect(ctx).
		Where(squirrel.Eq{"symbol": symbol, "deletion_mark": false}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var u unit.Unit
	if err := pgxscan.Get(ctx, r.querier(ctx), &u, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("unit", symbol)
		}
		return nil, fmt.Errorf("find by symbol: %w", err)
	}
	return &u, nil
}
