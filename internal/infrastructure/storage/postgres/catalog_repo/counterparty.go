package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"valora/internal/core/apperror"
	"valora/internal/domain/catalogs/counterparty"
	"valora/internal/infrastructure/storage/postgres"
)

// CounterpartyRepo stores counterparties in cat_counterparties.
type CounterpartyRepo struct {
	*BaseCatalogRepo[*counterparty.Counterparty]
}

var _ counterparty.Repository = (*CounterpartyRepo)(nil)

// NewCounterpartyRepo creates a new counterparty repository.
func NewCounterpartyRepo() *CounterpartyRepo {
	base := NewBaseCatalogRepo[*counterparty.Counterparty](
		"cat_counterparties",
		postgres.ExtractDBColumns[counterparty.Counterparty](),
		func() *counterparty.Counterparty { return &counterparty.Counterparty{} },
	)
	return &CounterpartyRepo{BaseCatalogRepo: base}
}

// FindByTaxCode looks up a live counterparty by its tax code.
func (r *CounterpartyRepo) FindByTaxCode(ctx context.Context, taxCode string) (*counterparty.Counterparty, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"tax_code": taxCode, "deletion_mark": false}).
		Limit(1)

	cp, err := r.FindOne(ctx, q)
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("counterparty", taxCode)
	}
	if err != nil {
		return nil, err
	}
	return cp, nil
}
