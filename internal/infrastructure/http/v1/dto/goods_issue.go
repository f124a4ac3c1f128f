package dto

import (
	"time"

	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/types"
	"valora/internal/domain/documents"
	"valora/internal/domain/documents/goods_issue"
)

// CreateGoodsIssueRequest creates a goods issue document.
type CreateGoodsIssueRequest struct {
	Number          string             `json:"number,omitempty"`
	Date            time.Time          `json:"date" binding:"required"`
	WarehouseID     string             `json:"warehouseId" binding:"required"`
	RequestedBy     string             `json:"requestedBy,omitempty"`
	Reason          string             `json:"reason,omitempty"`
	Comment         string             `json:"comment,omitempty"`
	Lines           []StockLineRequest `json:"lines" binding:"required,min=1,dive"`
	PostImmediately bool               `json:"postImmediately,omitempty"`
}

// ToEntity converts the request to a domain document.
func (r *CreateGoodsIssueRequest) ToEntity(scope tenant.Scope) *goods_issue.GoodsIssue {
	warehouseID, _ := id.Parse(r.WarehouseID)

	doc := goods_issue.NewGoodsIssue(scope, warehouseID)
	doc.Number = r.Number
	doc.Date = r.Date
	doc.RequestedBy = r.RequestedBy
	doc.Reason = r.Reason
	doc.Comment = r.Comment

	for _, line := range r.Lines {
		doc.AddLine(line.ToStockLine())
	}
	return doc
}

// UpdateGoodsIssueRequest updates a goods issue document.
type UpdateGoodsIssueRequest struct {
	Date        *time.Time         `json:"date,omitempty"`
	WarehouseID *string            `json:"warehouseId,omitempty"`
	RequestedBy *string            `json:"requestedBy,omitempty"`
	Reason      *string            `json:"reason,omitempty"`
	Comment     *string            `json:"comment,omitempty"`
	Lines       []StockLineRequest `json:"lines,omitempty"`
}

// ApplyTo applies the update onto an existing document.
func (r *UpdateGoodsIssueRequest) ApplyTo(doc *goods_issue.GoodsIssue) {
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.WarehouseID != nil {
		warehouseID, _ := id.Parse(*r.WarehouseID)
		doc.WarehouseID = warehouseID
	}
	if r.RequestedBy != nil {
		doc.RequestedBy = *r.RequestedBy
	}
	if r.Reason != nil {
		doc.Reason = *r.Reason
	}
	if r.Comment != nil {
		doc.Comment = *r.Comment
	}

	if r.Lines != nil {
		doc.Lines = doc.Lines[:0]
		for _, line := range r.Lines {
			doc.AddLine(line.ToStockLine())
		}
	}
}

// GoodsIssueResponse is a goods issue in API responses.
type GoodsIssueResponse struct {
	DocumentResponse
	WarehouseID   string                `json:"warehouseId"`
	RequestedBy   string                `json:"requestedBy,omitempty"`
	Reason        string                `json:"reason,omitempty"`
	TotalQuantity types.Quantity        `json:"totalQuantity"`
	Lines         []documents.StockLine `json:"lines,omitempty"`
}

// FromGoodsIssue converts a domain document to the response DTO.
func FromGoodsIssue(doc *goods_issue.GoodsIssue) *GoodsIssueResponse {
	return &GoodsIssueResponse{
		DocumentResponse: FromDocument(doc.Document),
		WarehouseID:      doc.WarehouseID.String(),
		RequestedBy:      doc.RequestedBy,
		Reason:           doc.Reason,
		TotalQuantity:    doc.TotalQuantity,
		Lines:            doc.Lines,
	}
}
