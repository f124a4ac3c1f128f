package middleware

import (
	"github.com/gin-gonic/gin"

	"valora/internal/core/apperror"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/domain/catalogs/company"
)

const (
	// CompanyHeader selects the company a request operates on. Optional;
	// without it the tenant's default company is used.
	CompanyHeader = "X-Company-ID"
)

// CompanyScope resolves the company dimension and stores the full
// tenant.Scope in the request context. Must run after TenantDB.
//
// Every valuation table is row-scoped by (tenant_id, company_id), so
// handlers read the scope back and pass it into services explicitly.
func CompanyScope(companies company.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		rawTenantID := tenant.GetTenantID(ctx)
		tenantID, err := id.Parse(rawTenantID)
		if err != nil {
			_ = c.Error(apperror.NewValidation("invalid tenant id").
				WithDetail("value", rawTenantID))
			c.Abort()
			return
		}

		var companyID id.ID
		if raw := c.GetHeader(CompanyHeader); raw != "" {
			companyID, err = id.Parse(raw)
			if err != nil {
				_ = c.Error(apperror.NewValidation("invalid company id").
					WithDetail("header", CompanyHeader).
					WithDetail("value", raw))
				c.Abort()
				return
			}

			scope := tenant.NewScope(tenantID, companyID)
			comp, err := companies.GetByScope(ctx, scope)
			if err != nil {
				_ = c.Error(err)
				c.Abort()
				return
			}
			if comp == nil {
				_ = c.Error(apperror.NewNotFound("company", companyID.String()))
				c.Abort()
				return
			}
		} else {
			comp, err := companies.GetDefault(ctx, tenantID)
			if err != nil {
				_ = c.Error(err)
				c.Abort()
				return
			}
			if comp == nil {
				_ = c.Error(apperror.NewValidation("no default company configured").
					WithDetail("header", CompanyHeader))
				c.Abort()
				return
			}
			companyID = comp.ID
		}

		ctx = tenant.WithScope(ctx, tenant.NewScope(tenantID, companyID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetScope reads the resolved scope from the request context. Handlers use
// it to pass scope into domain services.
func GetScope(c *gin.Context) (tenant.Scope, error) {
	scope, err := tenant.GetScope(c.Request.Context())
	if err != nil {
		return tenant.Scope{}, apperror.NewValidation("scope not resolved")
	}
	return scope, nil
}
