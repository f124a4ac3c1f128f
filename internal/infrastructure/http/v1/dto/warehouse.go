package dto

import (
	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/domain/catalogs/warehouse"
)

// warehouseFields is the writable surface shared by create and update
// requests. IsActive lives outside it: on create it is optional and
// defaults to true, on update it is taken literally.
type warehouseFields struct {
	Code               string                  `json:"code"`
	Name               string                  `json:"name" binding:"required"`
	Type               warehouse.WarehouseType `json:"type" binding:"required"`
	Address            *string                 `json:"address"`
	AllowNegativeStock bool                    `json:"allowNegativeStock"`
	IsDefault          bool                    `json:"isDefault"`
	ParentID           *string                 `json:"parentId"`
	IsFolder           bool                    `json:"isFolder"`
	Attributes         entity.Attributes       `json:"attributes"`
}

func (f *warehouseFields) applyTo(wh *warehouse.Warehouse) {
	wh.Code = f.Code
	wh.Name = f.Name
	wh.Type = f.Type
	wh.Address = f.Address
	wh.AllowNegativeStock = f.AllowNegativeStock
	wh.IsDefault = f.IsDefault
	wh.ParentID = f.ParentID
	wh.IsFolder = f.IsFolder
	wh.Attributes = f.Attributes
}

// CreateWarehouseRequest is the request body for creating a warehouse.
type CreateWarehouseRequest struct {
	warehouseFields
	IsActive *bool `json:"isActive"`
}

// ToEntity converts the request to a domain entity. The owning company
// comes from the request scope, never from the body.
func (r *CreateWarehouseRequest) ToEntity(companyID id.ID) *warehouse.Warehouse {
	wh := warehouse.NewWarehouse(companyID, r.Code, r.Name, r.Type)
	r.applyTo(wh)
	if r.IsActive != nil {
		wh.IsActive = *r.IsActive
	}
	return wh
}

// UpdateWarehouseRequest is the request body for updating a warehouse.
type UpdateWarehouseRequest struct {
	warehouseFields
	IsActive bool `json:"isActive"`
	Version  int  `json:"version" binding:"required"`
}

// ApplyTo applies the update onto an existing entity.
func (r *UpdateWarehouseRequest) ApplyTo(wh *warehouse.Warehouse) {
	r.applyTo(wh)
	wh.IsActive = r.IsActive
	wh.Version = r.Version
}

// WarehouseResponse is the response body for a warehouse.
type WarehouseResponse struct {
	ID                 string                  `json:"id"`
	Code               string                  `json:"code"`
	Name               string                  `json:"name"`
	CompanyID          string                  `json:"companyId"`
	Type               warehouse.WarehouseType `json:"type"`
	Address            *string                 `json:"address,omitempty"`
	IsActive           bool                    `json:"isActive"`
	AllowNegativeStock bool                    `json:"allowNegativeStock"`
	IsDefault          bool                    `json:"isDefault"`
	ParentID           *string                 `json:"parentId,omitempty"`
	IsFolder           bool                    `json:"isFolder"`
	DeletionMark       bool                    `json:"deletionMark"`
	Version            int                     `json:"version"`
	Attributes         entity.Attributes       `json:"attributes,omitempty"`
}

// FromWarehouse builds the response DTO from a domain entity.
func FromWarehouse(wh *warehouse.Warehouse) *WarehouseResponse {
	return &WarehouseResponse{
		ID:                 wh.ID.String(),
		Code:               wh.Code,
		Name:               wh.Name,
		CompanyID:          wh.CompanyID.String(),
		Type:               wh.Type,
		Address:            wh.Address,
		IsActive:           wh.IsActive,
		AllowNegativeStock: wh.AllowNegativeStock,
		IsDefault:          wh.IsDefault,
		ParentID:           wh.ParentID,
		IsFolder:           wh.IsFolder,
		DeletionMark:       wh.DeletionMark,
		Version:            wh.Version,
		Attributes:         wh.Attributes,
	}
}
