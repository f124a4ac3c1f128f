package dto

import (
	"valora/internal/core/entity"
	"valora/internal/domain/catalogs/counterparty"
)

// counterpartyFields is the writable surface shared by create and
// update requests. Embedded anonymously so the JSON stays flat.
type counterpartyFields struct {
	Code          string                        `json:"code"`
	Name          string                        `json:"name" binding:"required"`
	Type          counterparty.CounterpartyType `json:"type" binding:"required"`
	FullName      *string                       `json:"fullName"`
	TaxCode       *string                       `json:"taxCode"`
	Address       *string                       `json:"address"`
	Phone         *string                       `json:"phone"`
	Email         *string                       `json:"email"`
	ContactPerson *string                       `json:"contactPerson"`
	Comment       *string                       `json:"comment"`
	ParentID      *string                       `json:"parentId"`
	IsFolder      bool                          `json:"isFolder"`
	Attributes    entity.Attributes             `json:"attributes"`
}

func (f *counterpartyFields) applyTo(cp *counterparty.Counterparty) {
	cp.Code = f.Code
	cp.Name = f.Name
	cp.Type = f.Type
	cp.FullName = f.FullName
	cp.TaxCode = f.TaxCode
	cp.Address = f.Address
	cp.Phone = f.Phone
	cp.Email = f.Email
	cp.ContactPerson = f.ContactPerson
	cp.Comment = f.Comment
	cp.ParentID = f.ParentID
	cp.IsFolder = f.IsFolder
	cp.Attributes = f.Attributes
}

// CreateCounterpartyRequest is the request body for creating a counterparty.
type CreateCounterpartyRequest struct {
	counterpartyFields
}

// ToEntity converts the request to a domain entity.
func (r *CreateCounterpartyRequest) ToEntity() *counterparty.Counterparty {
	cp := counterparty.NewCounterparty(r.Code, r.Name, r.Type)
	r.applyTo(cp)
	return cp
}

// UpdateCounterpartyRequest is the request body for updating a counterparty.
type UpdateCounterpartyRequest struct {
	counterpartyFields
	Version int `json:"version" binding:"required"`
}

// ApplyTo applies the update onto an existing entity.
func (r *UpdateCounterpartyRequest) ApplyTo(cp *counterparty.Counterparty) {
	r.applyTo(cp)
	cp.Version = r.Version
}

// CounterpartyResponse is the response body for a counterparty.
type CounterpartyResponse struct {
	ID            string                        `json:"id"`
	Code          string                        `json:"code"`
	Name          string                        `json:"name"`
	Type          counterparty.CounterpartyType `json:"type"`
	FullName      *string                       `json:"fullName,omitempty"`
	TaxCode       *string                       `json:"taxCode,omitempty"`
	Address       *string                       `json:"address,omitempty"`
	Phone         *string                       `json:"phone,omitempty"`
	Email         *string                       `json:"email,omitempty"`
	ContactPerson *string                       `json:"contactPerson,omitempty"`
	Comment       *string                       `json:"comment,omitempty"`
	ParentID      *string                       `json:"parentId,omitempty"`
	IsFolder      bool                          `json:"isFolder"`
	DeletionMark  bool                          `json:"deletionMark"`
	Version       int                           `json:"version"`
	Attributes    entity.Attributes             `json:"attributes,omitempty"`
}

// FromCounterparty builds the response DTO from a domain entity.
func FromCounterparty(cp *counterparty.Counterparty) *CounterpartyResponse {
	return &CounterpartyResponse{
		ID:            cp.ID.String(),
		Code:          cp.Code,
		Name:          cp.Name,
		Type:          cp.Type,
		FullName:      cp.FullName,
		TaxCode:       cp.TaxCode,
		Address:       cp.Address,
		Phone:         cp.Phone,
		Email:         cp.Email,
		ContactPerson: cp.ContactPerson,
		Comment:       cp.Comment,
		ParentID:      cp.ParentID,
		IsFolder:      cp.IsFolder,
		DeletionMark:  cp.DeletionMark,
		Version:       cp.Version,
		Attributes:    cp.Attributes,
	}
}
