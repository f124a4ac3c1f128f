// Package company provides the Company catalog: the accounting entities a
// tenant runs. A company owns the valuation settings the ledger engine
// reads on every posting.
package company

import (
	"context"

	"valora/internal/core/apperror"
	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
)

// Company represents one accounting entity of a tenant. Every document and
// ledger row is scoped to exactly one company.
type Company struct {
	entity.Catalog

	// TenantID owns the company
	TenantID id.ID `db:"tenant_id" json:"tenantId"`

	// FullName is the official registered name
	FullName *string `db:"full_name" json:"fullName,omitempty"`

	// TaxCode is the tax identification number
	TaxCode *string `db:"tax_code" json:"taxCode,omitempty"`

	// Currency is the accounting currency (ISO 4217)
	Currency string `db:"currency" json:"currency"`

	// Valuation settings read by the ledger engine. Embedded so its
	// columns flatten into the company row.
	entity.CostConfig

	// IsDefault marks the tenant's default company for new documents
	IsDefault bool `db:"is_default" json:"isDefault"`
}

// NewCompany creates a Company with the default perpetual configuration.
func NewCompany(tenantID id.ID, code, name string) *Company {
	return &Company{
		Catalog:    entity.NewCatalog(code, name),
		TenantID:   tenantID,
		Currency:   "VND",
		CostConfig: entity.DefaultCostConfig(),
	}
}

// Scope returns the tenant scope rooted at this company.
func (c *Company) Scope() tenant.Scope {
	return tenant.NewScope(c.TenantID, c.ID)
}

// Validate implements entity.Validatable.
func (c *Company) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(c.TenantID) {
		return apperror.NewValidation("tenant is required").
			WithDetail("field", "tenantId")
	}
	if c.Currency == "" {
		return apperror.NewValidation("currency is required").
			WithDetail("field", "currency")
	}
	switch c.CostConfig.Policy {
	case entity.ValuationPerpetual, entity.ValuationPeriodic:
	default:
		return apperror.NewValidation("invalid valuation policy").
			WithDetail("field", "costConfig.policy").
			WithDetail("value", string(c.CostConfig.Policy))
	}
	return nil
}
