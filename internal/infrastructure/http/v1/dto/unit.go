package dto

import (
	"github.com/shopspring/decimal"

	"valora/internal/core/entity"
	"valora/internal/domain/catalogs/unit"
)

// unitFields holds the writable unit attributes shared by the create
// and update bodies. Anonymous embedding keeps the JSON flat.
type unitFields struct {
	Code              string            `json:"code"`
	Name              string            `json:"name" binding:"required"`
	Type              unit.UnitType     `json:"type" binding:"required"`
	Symbol            string            `json:"symbol" binding:"required"`
	InternationalCode *string           `json:"internationalCode"`
	BaseUnitID        *string           `json:"baseUnitId"`
	ConversionFactor  decimal.Decimal   `json:"conversionFactor"`
	IsBase            bool              `json:"isBase"`
	Description       *string           `json:"description"`
	ParentID          *string           `json:"parentId"`
	IsFolder          bool              `json:"isFolder"`
	Attributes        entity.Attributes `json:"attributes"`
}

func (f *unitFields) applyTo(u *unit.Unit) {
	u.Code = f.Code
	u.Name = f.Name
	u.Type = f.Type
	u.Symbol = f.Symbol
	u.InternationalCode = f.InternationalCode
	u.BaseUnitID = f.BaseUnitID
	u.ConversionFactor = f.ConversionFactor
	u.IsBase = f.IsBase
	u.Description = f.Description
	u.ParentID = f.ParentID
	u.IsFolder = f.IsFolder
	u.Attributes = f.Attributes
}

// CreateUnitRequest is the body of POST /units.
type CreateUnitRequest struct {
	unitFields
}

// ToEntity builds a new unit from the request.
func (r *CreateUnitRequest) ToEntity() *unit.Unit {
	u := unit.NewUnit(r.Code, r.Name, r.Symbol, r.Type)
	r.applyTo(u)
	if r.ConversionFactor.IsZero() {
		// NewUnit seeds the factor with 1, keep it for base units.
		u.ConversionFactor = decimal.NewFromInt(1)
	}
	return u
}

// UpdateUnitRequest is the body of PUT /units/:id. Version is required
// for the optimistic-lock check.
type UpdateUnitRequest struct {
	unitFields
	Version int `json:"version" binding:"required"`
}

// ApplyTo copies the request onto an existing unit.
func (r *UpdateUnitRequest) ApplyTo(u *unit.Unit) {
	r.applyTo(u)
	u.Version = r.Version
}

// UnitResponse is the public view of a unit.
type UnitResponse struct {
	ID                string            `json:"id"`
	Code              string            `json:"code"`
	Name              string            `json:"name"`
	Type              unit.UnitType     `json:"type"`
	Symbol            string            `json:"symbol"`
	InternationalCode *string           `json:"internationalCode,omitempty"`
	BaseUnitID        *string           `json:"baseUnitId,omitempty"`
	ConversionFactor  decimal.Decimal   `json:"conversionFactor"`
	IsBase            bool              `json:"isBase"`
	Description       *string           `json:"description,omitempty"`
	ParentID          *string           `json:"parentId,omitempty"`
	IsFolder          bool              `json:"isFolder"`
	DeletionMark      bool              `json:"deletionMark"`
	Version           int               `json:"version"`
	Attributes        entity.Attributes `json:"attributes,omitempty"`
}

func FromUnit(u *unit.Unit) *UnitResponse {
	return &UnitResponse{
		ID:                u.ID.String(),
		Code:              u.Code,
		Name:              u.Name,
		Type:              u.Type,
		Symbol:            u.Symbol,
		InternationalCode: u.InternationalCode,
		BaseUnitID:        u.BaseUnitID,
		ConversionFactor:  u.ConversionFactor,
		IsBase:            u.IsBase,
		Description:       u.Description,
		ParentID:          u.ParentID,
		IsFolder:          u.IsFolder,
		DeletionMark:      u.DeletionMark,
		Version:           u.Version,
		Attributes:        u.Attributes,
	}
}
