package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/domain/catalogs/company"
	"valora/internal/infrastructure/storage/postgres"
)

const companyTable = "cat_companies"

// CompanyRepo implements company.Repository.
type CompanyRepo struct {
	*BaseCatalogRepo[*company.Company]
}

// NewCompanyRepo creates a new company repository.
func NewCompanyRepo() *CompanyRepo {
	return &CompanyRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*company.Company](
			companyTable,
			postgres.ExtractDBColumns[company.Company](),
			func() *company.Company { return &company.Company{} },
		),
	}
}

// GetDefault retrieves the tenant's default company.
func (r *CompanyRepo) GetDefault(ctx context.Context, tenantID id.ID) (*company.Company, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"is_default": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// GetByScope retrieves the company a scope points at, or nil if absent.
func (r *CompanyRepo) GetByScope(ctx context.Context, scope tenant.Scope) (*company.Company, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"tenant_id": scope.TenantID}).
		Where(squirrel.Eq{"id": scope.CompanyID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c company.Company
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get by scope: %w", err)
	}

	return &c, nil
}

var _ company.Repository = (*CompanyRepo)(nil)
