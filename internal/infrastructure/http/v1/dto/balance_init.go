package dto

import (
	"time"

	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/types"
	"valora/internal/domain/documents"
	"valora/internal/domain/documents/balance_init"
)

// CreateBalanceInitRequest creates a balance initialization document.
// Lines carry the opening quantity and value of each product.
type CreateBalanceInitRequest struct {
	Number          string             `json:"number,omitempty"`
	Date            time.Time          `json:"date" binding:"required"`
	WarehouseID     string             `json:"warehouseId" binding:"required"`
	Comment         string             `json:"comment,omitempty"`
	Lines           []StockLineRequest `json:"lines" binding:"required,min=1,dive"`
	PostImmediately bool               `json:"postImmediately,omitempty"`
}

// ToEntity converts the request to a domain document.
func (r *CreateBalanceInitRequest) ToEntity(scope tenant.Scope) *balance_init.BalanceInit {
	warehouseID, _ := id.Parse(r.WarehouseID)

	doc := balance_init.NewBalanceInit(scope, warehouseID)
	doc.Number = r.Number
	doc.Date = r.Date
	doc.Comment = r.Comment

	for _, line := range r.Lines {
		doc.AddLine(line.ToStockLine())
	}
	return doc
}

// UpdateBalanceInitRequest updates a balance initialization document.
type UpdateBalanceInitRequest struct {
	Date        *time.Time         `json:"date,omitempty"`
	WarehouseID *string            `json:"warehouseId,omitempty"`
	Comment     *string            `json:"comment,omitempty"`
	Lines       []StockLineRequest `json:"lines,omitempty"`
}

// ApplyTo applies the update onto an existing document.
func (r *UpdateBalanceInitRequest) ApplyTo(doc *balance_init.BalanceInit) {
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.WarehouseID != nil {
		warehouseID, _ := id.Parse(*r.WarehouseID)
		doc.WarehouseID = warehouseID
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

// BalanceInitResponse is a balance initialization in API responses.
type BalanceInitResponse struct {
	DocumentResponse
	WarehouseID   string                `json:"warehouseId"`
	TotalQuantity types.Quantity        `json:"totalQuantity"`
	TotalAmount   types.Money           `json:"totalAmount"`
	Lines         []documents.StockLine `json:"lines,omitempty"`
}

// FromBalanceInit converts a domain document to the response DTO.
func FromBalanceInit(doc *balance_init.BalanceInit) *BalanceInitResponse {
	return &BalanceInitResponse{
		DocumentResponse: FromDocument(doc.Document),
		WarehouseID:      doc.WarehouseID.String(),
		TotalQuantity:    doc.TotalQuantity,
		TotalAmount:      doc.TotalAmount,
		Lines:            doc.Lines,
	}
}
