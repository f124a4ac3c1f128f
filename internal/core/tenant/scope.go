package tenant

import (
	"valora/internal/core/id"
)

// Scope identifies the tenant and company a ledger operation acts on.
// It is passed explicitly into every engine and store call - never carried
// as ambient state. All valuation tables are row-scoped by these two columns.
type Scope struct {
	TenantID  id.ID `db:"tenant_id" json:"tenantId"`
	CompanyID id.ID `db:"company_id" json:"companyId"`
}

// NewScope creates a Scope from tenant and company identifiers.
func NewScope(tenantID, companyID id.ID) Scope {
	return Scope{TenantID: tenantID, CompanyID: companyID}
}

// IsZero reports whether either dimension is missing.
func (s Scope) IsZero() bool {
	return id.IsNil(s.TenantID) || id.IsNil(s.CompanyID)
}

// Validate checks that both dimensions are present.
func (s Scope) Validate() error {
	if id.IsNil(s.TenantID) {
		return ErrNoTenantInContext
	}
	if id.IsNil(s.CompanyID) {
		return ErrNoCompanyInScope
	}
	return nil
}

// Equal reports whether two scopes address the same tenant and company.
func (s Scope) Equal(other Scope) bool {
	return s.TenantID == other.TenantID && s.CompanyID == other.CompanyID
}
