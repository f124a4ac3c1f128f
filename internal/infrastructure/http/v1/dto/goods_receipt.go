package dto

import (
	"time"

	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/types"
	"valora/internal/domain/documents"
	"valora/internal/domain/documents/goods_receipt"
)

// CreateGoodsReceiptRequest creates a goods receipt document.
type CreateGoodsReceiptRequest struct {
	Number            string             `json:"number,omitempty"`
	Date              time.Time          `json:"date" binding:"required"`
	SupplierID        string             `json:"supplierId" binding:"required"`
	WarehouseID       string             `json:"warehouseId" binding:"required"`
	SupplierDocNumber string             `json:"supplierDocNumber,omitempty"`
	SupplierDocDate   *time.Time         `json:"supplierDocDate,omitempty"`
	Currency          string             `json:"currency,omitempty"`
	Comment           string             `json:"comment,omitempty"`
	Lines             []StockLineRequest `json:"lines" binding:"required,min=1,dive"`
	PostImmediately   bool               `json:"postImmediately,omitempty"`
}

// ToEntity converts the request to a domain document.
func (r *CreateGoodsReceiptRequest) ToEntity(scope tenant.Scope) *goods_receipt.GoodsReceipt {
	supplierID, _ := id.Parse(r.SupplierID)
	warehouseID, _ := id.Parse(r.WarehouseID)

	doc := goods_receipt.NewGoodsReceipt(scope, supplierID, warehouseID)
	doc.Number = r.Number
	doc.Date = r.Date
	doc.SupplierDocNumber = r.SupplierDocNumber
	doc.SupplierDocDate = r.SupplierDocDate
	doc.Comment = r.Comment
	if r.Currency != "" {
		doc.Currency = r.Currency
	}

	for _, line := range r.Lines {
		doc.AddLine(line.ToStockLine())
	}
	return doc
}

// UpdateGoodsReceiptRequest updates a goods receipt document.
type UpdateGoodsReceiptRequest struct {
	Date              *time.Time         `json:"date,omitempty"`
	SupplierID        *string            `json:"supplierId,omitempty"`
	WarehouseID       *string            `json:"warehouseId,omitempty"`
	SupplierDocNumber *string            `json:"supplierDocNumber,omitempty"`
	SupplierDocDate   *time.Time         `json:"supplierDocDate,omitempty"`
	Currency          *string            `json:"currency,omitempty"`
	Comment           *string            `json:"comment,omitempty"`
	Lines             []StockLineRequest `json:"lines,omitempty"`
}

// ApplyTo applies the update onto an existing document. Lines, when given,
// replace the table part wholesale.
func (r *UpdateGoodsReceiptRequest) ApplyTo(doc *goods_receipt.GoodsReceipt) {
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.SupplierID != nil {
		supplierID, _ := id.Parse(*r.SupplierID)
		doc.SupplierID = supplierID
	}
	if r.WarehouseID != nil {
		warehouseID, _ := id.Parse(*r.WarehouseID)
		doc.WarehouseID = warehouseID
	}
	if r.SupplierDocNumber != nil {
		doc.SupplierDocNumber = *r.SupplierDocNumber
	}
	if r.SupplierDocDate != nil {
		doc.SupplierDocDate = r.SupplierDocDate
	}
	if r.Currency != nil {
		doc.Currency = *r.Currency
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

// GoodsReceiptResponse is a goods receipt in API responses.
type GoodsReceiptResponse struct {
	DocumentResponse
	SupplierID        string                `json:"supplierId"`
	WarehouseID       string                `json:"warehouseId"`
	SupplierDocNumber string                `json:"supplierDocNumber,omitempty"`
	SupplierDocDate   *time.Time            `json:"supplierDocDate,omitempty"`
	Currency          string                `json:"currency"`
	TotalQuantity     types.Quantity        `json:"totalQuantity"`
	TotalAmount       types.Money           `json:"totalAmount"`
	TotalVAT          types.Money           `json:"totalVat"`
	Lines             []documents.StockLine `json:"lines,omitempty"`
}

// FromGoodsReceipt converts a domain document to the response DTO.
func FromGoodsReceipt(doc *goods_receipt.GoodsReceipt) *GoodsReceiptResponse {
	return &GoodsReceiptResponse{
		DocumentResponse:  FromDocument(doc.Document),
		SupplierID:        doc.SupplierID.String(),
		WarehouseID:       doc.WarehouseID.String(),
		SupplierDocNumber: doc.SupplierDocNumber,
		SupplierDocDate:   doc.SupplierDocDate,
		Currency:          doc.Currency,
		TotalQuantity:     doc.TotalQuantity,
		TotalAmount:       doc.TotalAmount,
		TotalVAT:          doc.TotalVAT,
		Lines:             doc.Lines,
	}
}
