package dto

import (
	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/domain/catalogs/company"
)

// CreateCompanyRequest is the request body for creating a company.
type CreateCompanyRequest struct {
	Code          string                 `json:"code"`
	Name          string                 `json:"name" binding:"required"`
	FullName      *string                `json:"fullName"`
	TaxCode       *string                `json:"taxCode"`
	Currency      string                 `json:"currency"`
	Policy        entity.ValuationPolicy `json:"valuationPolicy"`
	CostByWarehouse *bool                `json:"costByWarehouse"`
	CostByLot     bool                   `json:"costByLot"`
	CostByProject bool                   `json:"costByProject"`
	IsDefault     bool                   `json:"isDefault"`
	Attributes    entity.Attributes      `json:"attributes"`
}

// ToEntity converts DTO to domain entity. The tenant comes from the
// request scope, never from the body.
func (r *CreateCompanyRequest) ToEntity(tenantID id.ID) *company.Company {
	c := company.NewCompany(tenantID, r.Code, r.Name)
	c.FullName = r.FullName
	c.TaxCode = r.TaxCode
	if r.Currency != "" {
		c.Currency = r.Currency
	}
	if r.Policy != "" {
		c.CostConfig.Policy = r.Policy
	}
	if r.CostByWarehouse != nil {
		c.CostConfig.ByWarehouse = *r.CostByWarehouse
	}
	c.CostConfig.ByLot = r.CostByLot
	c.CostConfig.ByProject = r.CostByProject
	c.IsDefault = r.IsDefault
	c.Attributes = r.Attributes
	return c
}

// UpdateCompanyRequest is the request body for updating a company.
type UpdateCompanyRequest struct {
	Code          string                 `json:"code"`
	Name          string                 `json:"name" binding:"required"`
	FullName      *string                `json:"fullName"`
	TaxCode       *string                `json:"taxCode"`
	Currency      string                 `json:"currency" binding:"required"`
	Policy        entity.ValuationPolicy `json:"valuationPolicy" binding:"required"`
	CostByWarehouse bool                 `json:"costByWarehouse"`
	CostByLot     bool                   `json:"costByLot"`
	CostByProject bool                   `json:"costByProject"`
	IsDefault     bool                   `json:"isDefault"`
	Attributes    entity.Attributes      `json:"attributes"`
	Version       int                    `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateCompanyRequest) ApplyTo(c *company.Company) {
	c.Code = r.Code
	c.Name = r.Name
	c.FullName = r.FullName
	c.TaxCode = r.TaxCode
	c.Currency = r.Currency
	c.CostConfig.Policy = r.Policy
	c.CostConfig.ByWarehouse = r.CostByWarehouse
	c.CostConfig.ByLot = r.CostByLot
	c.CostConfig.ByProject = r.CostByProject
	c.IsDefault = r.IsDefault
	c.Attributes = r.Attributes
	c.Version = r.Version
}

// CompanyResponse is the response body for a company.
type CompanyResponse struct {
	ID            string                 `json:"id"`
	Code          string                 `json:"code"`
	Name          string                 `json:"name"`
	TenantID      string                 `json:"tenantId"`
	FullName      *string                `json:"fullName,omitempty"`
	TaxCode       *string                `json:"taxCode,omitempty"`
	Currency      string                 `json:"currency"`
	Policy        entity.ValuationPolicy `json:"valuationPolicy"`
	CostByWarehouse bool                 `json:"costByWarehouse"`
	CostByLot     bool                   `json:"costByLot"`
	CostByProject bool                   `json:"costByProject"`
	IsDefault     bool                   `json:"isDefault"`
	DeletionMark  bool                   `json:"deletionMark"`
	Version       int                    `json:"version"`
	Attributes    entity.Attributes      `json:"attributes,omitempty"`
}

// FromCompany creates response DTO from domain entity.
func FromCompany(c *company.Company) *CompanyResponse {
	return &CompanyResponse{
		ID:            c.ID.String(),
		Code:          c.Code,
		Name:          c.Name,
		TenantID:      c.TenantID.String(),
		FullName:      c.FullName,
		TaxCode:       c.TaxCode,
		Currency:      c.Currency,
		Policy:        c.CostConfig.Policy,
		CostByWarehouse: c.CostConfig.ByWarehouse,
		CostByLot:     c.CostConfig.ByLot,
		CostByProject: c.CostConfig.ByProject,
		IsDefault:     c.IsDefault,
		DeletionMark:  c.DeletionMark,
		Version:       c.Version,
		Attributes:    c.Attributes,
	}
}
