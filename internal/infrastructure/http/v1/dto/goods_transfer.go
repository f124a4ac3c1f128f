package dto

import (
	"time"

	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/types"
	"valora/internal/domain/documents"
	"valora/internal/domain/documents/goods_transfer"
)

// CreateGoodsTransferRequest creates a goods transfer document.
type CreateGoodsTransferRequest struct {
	Number            string             `json:"number,omitempty"`
	Date              time.Time          `json:"date" binding:"required"`
	SourceWarehouseID string             `json:"sourceWarehouseId" binding:"required"`
	DestWarehouseID   string             `json:"destWarehouseId" binding:"required"`
	Reason            string             `json:"reason,omitempty"`
	Comment           string             `json:"comment,omitempty"`
	Lines             []StockLineRequest `json:"lines" binding:"required,min=1,dive"`
	PostImmediately   bool               `json:"postImmediately,omitempty"`
}

// ToEntity converts the request to a domain document.
func (r *CreateGoodsTransferRequest) ToEntity(scope tenant.Scope) *goods_transfer.GoodsTransfer {
	sourceID, _ := id.Parse(r.SourceWarehouseID)
	destID, _ := id.Parse(r.DestWarehouseID)

	doc := goods_transfer.NewGoodsTransfer(scope, sourceID, destID)
	doc.Number = r.Number
	doc.Date = r.Date
	doc.Reason = r.Reason
	doc.Comment = r.Comment

	for _, line := range r.Lines {
		doc.AddLine(line.ToStockLine())
	}
	return doc
}

// UpdateGoodsTransferRequest updates a goods transfer document.
type UpdateGoodsTransferRequest struct {
	Date              *time.Time         `json:"date,omitempty"`
	SourceWarehouseID *string            `json:"sourceWarehouseId,omitempty"`
	DestWarehouseID   *string            `json:"destWarehouseId,omitempty"`
	Reason            *string            `json:"reason,omitempty"`
	Comment           *string            `json:"comment,omitempty"`
	Lines             []StockLineRequest `json:"lines,omitempty"`
}

// ApplyTo applies the update onto an existing document.
func (r *UpdateGoodsTransferRequest) ApplyTo(doc *goods_transfer.GoodsTransfer) {
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.SourceWarehouseID != nil {
		sourceID, _ := id.Parse(*r.SourceWarehouseID)
		doc.SourceWarehouseID = sourceID
	}
	if r.DestWarehouseID != nil {
		destID, _ := id.Parse(*r.DestWarehouseID)
		doc.DestWarehouseID = destID
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

// GoodsTransferResponse is a goods transfer in API responses.
type GoodsTransferResponse struct {
	DocumentResponse
	SourceWarehouseID string                `json:"sourceWarehouseId"`
	DestWarehouseID   string                `json:"destWarehouseId"`
	Reason            string                `json:"reason,omitempty"`
	TotalQuantity     types.Quantity        `json:"totalQuantity"`
	Lines             []documents.StockLine `json:"lines,omitempty"`
}

// FromGoodsTransfer converts a domain document to the response DTO.
func FromGoodsTransfer(doc *goods_transfer.GoodsTransfer) *GoodsTransferResponse {
	return &GoodsTransferResponse{
		DocumentResponse:  FromDocument(doc.Document),
		SourceWarehouseID: doc.SourceWarehouseID.String(),
		DestWarehouseID:   doc.DestWarehouseID.String(),
		Reason:            doc.Reason,
		TotalQuantity:     doc.TotalQuantity,
		Lines:             doc.Lines,
	}
}
