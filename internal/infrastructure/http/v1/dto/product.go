package dto

import (
	"github.com/shopspring/decimal"

	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/domain/catalogs/product"
)

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	Code                   string              `json:"code"`
	Name                   string              `json:"name" binding:"required"`
	Type                   product.ProductType `json:"type" binding:"required"`
	SKU                    *string             `json:"sku"`
	Barcode                *string             `json:"barcode"`
	BaseUnitID             string              `json:"baseUnitId" binding:"required"`
	TraceKind              entity.TraceKind    `json:"traceKind"`
	SpecificIdentification bool                `json:"specificIdentification"`
	VATRate                product.VATRate     `json:"vatRate"`
	Weight                 decimal.Decimal     `json:"weight"`
	Volume                 decimal.Decimal     `json:"volume"`
	Description            *string             `json:"description"`
	MinStock               decimal.Decimal     `json:"minStock"`
	ParentID               *string             `json:"parentId"`
	IsFolder               bool                `json:"isFolder"`
	Attributes             entity.Attributes   `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() *product.Product {
	baseUnitID, _ := id.Parse(r.BaseUnitID)

	p := product.NewProduct(r.Code, r.Name, r.Type, baseUnitID)
	if r.TraceKind != "" {
		p.Trace = r.TraceKind
	}
	p.SKU = r.SKU
	p.Barcode = r.Barcode
	p.SpecificIdentification = r.SpecificIdentification
	if r.VATRate != "" {
		p.VATRate = r.VATRate
	}
	p.Weight = r.Weight
	p.Volume = r.Volume
	p.Description = r.Description
	p.MinStock = r.MinStock
	p.ParentID = r.ParentID
	p.IsFolder = r.IsFolder
	p.Attributes = r.Attributes
	return p
}

// UpdateProductRequest is the request body for updating a product.
type UpdateProductRequest struct {
	Code                   string              `json:"code"`
	Name                   string              `json:"name" binding:"required"`
	Type                   product.ProductType `json:"type" binding:"required"`
	SKU                    *string             `json:"sku"`
	Barcode                *string             `json:"barcode"`
	BaseUnitID             string              `json:"baseUnitId" binding:"required"`
	TraceKind              entity.TraceKind    `json:"traceKind"`
	SpecificIdentification bool                `json:"specificIdentification"`
	VATRate                product.VATRate     `json:"vatRate"`
	Weight                 decimal.Decimal     `json:"weight"`
	Volume                 decimal.Decimal     `json:"volume"`
	Description            *string             `json:"description"`
	MinStock               decimal.Decimal     `json:"minStock"`
	ParentID               *string             `json:"parentId"`
	IsFolder               bool                `json:"isFolder"`
	Attributes             entity.Attributes   `json:"attributes"`
	Version                int                 `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	baseUnitID, _ := id.Parse(r.BaseUnitID)

	p.Code = r.Code
	p.Name = r.Name
	p.Type = r.Type
	p.SKU = r.SKU
	p.Barcode = r.Barcode
	p.BaseUnitID = baseUnitID
	if r.TraceKind != "" {
		p.Trace = r.TraceKind
	}
	p.SpecificIdentification = r.SpecificIdentification
	p.VATRate = r.VATRate
	p.Weight = r.Weight
	p.Volume = r.Volume
	p.Description = r.Description
	p.MinStock = r.MinStock
	p.ParentID = r.ParentID
	p.IsFolder = r.IsFolder
	p.Attributes = r.Attributes
	p.Version = r.Version
}

// ProductResponse is the response body for a product.
type ProductResponse struct {
	ID                     string              `json:"id"`
	Code                   string              `json:"code"`
	Name                   string              `json:"name"`
	Type                   product.ProductType `json:"type"`
	SKU                    *string             `json:"sku,omitempty"`
	Barcode                *string             `json:"barcode,omitempty"`
	BaseUnitID             string              `json:"baseUnitId"`
	TraceKind              entity.TraceKind    `json:"traceKind"`
	SpecificIdentification bool                `json:"specificIdentification"`
	VATRate                product.VATRate     `json:"vatRate"`
	Weight                 decimal.Decimal     `json:"weight"`
	Volume                 decimal.Decimal     `json:"volume"`
	Description            *string             `json:"description,omitempty"`
	MinStock               decimal.Decimal     `json:"minStock"`
	ParentID               *string             `json:"parentId,omitempty"`
	IsFolder               bool                `json:"isFolder"`
	DeletionMark           bool                `json:"deletionMark"`
	Version                int                 `json:"version"`
	Attributes             entity.Attributes   `json:"attributes,omitempty"`
}

// FromProduct creates response DTO from domain entity.
func FromProduct(p *product.Product) *ProductResponse {
	return &ProductResponse{
		ID:                     p.ID.String(),
		Code:                   p.Code,
		Name:                   p.Name,
		Type:                   p.Type,
		SKU:                    p.SKU,
		Barcode:                p.Barcode,
		BaseUnitID:             p.BaseUnitID.String(),
		TraceKind:              p.Trace,
		SpecificIdentification: p.SpecificIdentification,
		VATRate:                p.VATRate,
		Weight:                 p.Weight,
		Volume:                 p.Volume,
		Description:            p.Description,
		MinStock:               p.MinStock,
		ParentID:               p.ParentID,
		IsFolder:               p.IsFolder,
		DeletionMark:           p.DeletionMark,
		Version:                p.Version,
		Attributes:             p.Attributes,
	}
}
