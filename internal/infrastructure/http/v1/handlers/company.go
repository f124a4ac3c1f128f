package handlers

import (
	"github.com/gin-gonic/gin"

	"valora/internal/core/apperror"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/domain/catalogs/company"
	"valora/internal/infrastructure/http/v1/dto"
)

// CompanyHTTPHandler is a type alias for the configured generic handler.
type CompanyHTTPHandler = CatalogHandler[
	*company.Company,
	dto.CreateCompanyRequest,
	dto.UpdateCompanyRequest,
]

// NewCompanyHandler wires the generic catalog handler for companies.
// Company creation does not require a resolved company scope, only the
// tenant, so the first company of a fresh tenant can be created.
func NewCompanyHandler(
	base *BaseHandler,
	service *company.Service,
) *CompanyHTTPHandler {
	config := CatalogHandlerConfig[
		*company.Company,
		dto.CreateCompanyRequest,
		dto.UpdateCompanyRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "company",

		MapCreateDTO: func(c *gin.Context, req dto.CreateCompanyRequest) (*company.Company, error) {
			tenantID, err := id.Parse(tenant.GetTenantID(c.Request.Context()))
			if err != nil {
				return nil, apperror.NewValidation("tenant not resolved")
			}
			return req.ToEntity(tenantID), nil
		},
		MapUpdateDTO: func(req dto.UpdateCompanyRequest, existing *company.Company) *company.Company {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(entity *company.Company) any {
			return dto.FromCompany(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
