package dto

import (
	"time"

	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/types"
	"valora/internal/domain/documents"
	"valora/internal/domain/documents/goods_return"
)

// CreateGoodsReturnRequest creates a goods return document.
type CreateGoodsReturnRequest struct {
	Number          string             `json:"number,omitempty"`
	Date            time.Time          `json:"date" binding:"required"`
	CustomerID      string             `json:"customerId" binding:"required"`
	WarehouseID     string             `json:"warehouseId" binding:"required"`
	DeliveryID      string             `json:"deliveryId,omitempty"`
	DeliveryNumber  string             `json:"deliveryNumber,omitempty"`
	Reason          string             `json:"reason,omitempty"`
	Comment         string             `json:"comment,omitempty"`
	Lines           []StockLineRequest `json:"lines" binding:"required,min=1,dive"`
	PostImmediately bool               `json:"postImmediately,omitempty"`
}

// ToEntity converts the request to a domain document.
func (r *CreateGoodsReturnRequest) ToEntity(scope tenant.Scope) *goods_return.GoodsReturn {
	customerID, _ := id.Parse(r.CustomerID)
	warehouseID, _ := id.Parse(r.WarehouseID)

	doc := goods_return.NewGoodsReturn(scope, customerID, warehouseID)
	doc.Number = r.Number
	doc.Date = r.Date
	doc.DeliveryNumber = r.DeliveryNumber
	doc.Reason = r.Reason
	doc.Comment = r.Comment
	if r.DeliveryID != "" {
		if deliveryID, err := id.Parse(r.DeliveryID); err == nil {
			doc.DeliveryID = &deliveryID
		}
	}

	for _, line := range r.Lines {
		doc.AddLine(line.ToStockLine())
	}
	return doc
}

// UpdateGoodsReturnRequest updates a goods return document.
type UpdateGoodsReturnRequest struct {
	Date           *time.Time         `json:"date,omitempty"`
	CustomerID     *string            `json:"customerId,omitempty"`
	WarehouseID    *string            `json:"warehouseId,omitempty"`
	DeliveryID     *string            `json:"deliveryId,omitempty"`
	DeliveryNumber *string            `json:"deliveryNumber,omitempty"`
	Reason         *string            `json:"reason,omitempty"`
	Comment        *string            `json:"comment,omitempty"`
	Lines          []StockLineRequest `json:"lines,omitempty"`
}

// ApplyTo applies the update onto an existing document.
func (r *UpdateGoodsReturnRequest) ApplyTo(doc *goods_return.GoodsReturn) {
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.CustomerID != nil {
		customerID, _ := id.Parse(*r.CustomerID)
		doc.CustomerID = customerID
	}
	if r.WarehouseID != nil {
		warehouseID, _ := id.Parse(*r.WarehouseID)
		doc.WarehouseID = warehouseID
	}
	if r.DeliveryID != nil {
		if *r.DeliveryID == "" {
			doc.DeliveryID = nil
		} else if deliveryID, err := id.Parse(*r.DeliveryID); err == nil {
			doc.DeliveryID = &deliveryID
		}
	}
	if r.DeliveryNumber != nil {
		doc.DeliveryNumber = *r.DeliveryNumber
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

// GoodsReturnResponse is a goods return in API responses.
type GoodsReturnResponse struct {
	DocumentResponse
	CustomerID     string                `json:"customerId"`
	WarehouseID    string                `json:"warehouseId"`
	DeliveryID     *string               `json:"deliveryId,omitempty"`
	DeliveryNumber string                `json:"deliveryNumber,omitempty"`
	Reason         string                `json:"reason,omitempty"`
	TotalQuantity  types.Quantity        `json:"totalQuantity"`
	TotalAmount    types.Money           `json:"totalAmount"`
	Lines          []documents.StockLine `json:"lines,omitempty"`
}

// FromGoodsReturn converts a domain document to the response DTO.
func FromGoodsReturn(doc *goods_return.GoodsReturn) *GoodsReturnResponse {
	resp := &GoodsReturnResponse{
		DocumentResponse: FromDocument(doc.Document),
		CustomerID:       doc.CustomerID.String(),
		WarehouseID:      doc.WarehouseID.String(),
		DeliveryNumber:   doc.DeliveryNumber,
		Reason:           doc.Reason,
		TotalQuantity:    doc.TotalQuantity,
		TotalAmount:      doc.TotalAmount,
		Lines:            doc.Lines,
	}
	if doc.DeliveryID != nil {
		s := doc.DeliveryID.String()
		resp.DeliveryID = &s
	}
	return resp
}
