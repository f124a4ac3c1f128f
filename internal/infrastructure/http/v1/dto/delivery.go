package dto

import (
	"time"

	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/types"
	"valora/internal/domain/documents"
	"valora/internal/domain/documents/delivery"
)

// CreateDeliveryRequest creates a delivery document.
type CreateDeliveryRequest struct {
	Number          string             `json:"number,omitempty"`
	Date            time.Time          `json:"date" binding:"required"`
	CustomerID      string             `json:"customerId" binding:"required"`
	WarehouseID     string             `json:"warehouseId" binding:"required"`
	SaleOrderID     string             `json:"saleOrderId,omitempty"`
	SaleOrderNumber string             `json:"saleOrderNumber,omitempty"`
	Currency        string             `json:"currency,omitempty"`
	Comment         string             `json:"comment,omitempty"`
	Lines           []StockLineRequest `json:"lines" binding:"required,min=1,dive"`
	PostImmediately bool               `json:"postImmediately,omitempty"`
}

// ToEntity converts the request to a domain document.
func (r *CreateDeliveryRequest) ToEntity(scope tenant.Scope) *delivery.Delivery {
	customerID, _ := id.Parse(r.CustomerID)
	warehouseID, _ := id.Parse(r.WarehouseID)

	doc := delivery.NewDelivery(scope, customerID, warehouseID)
	doc.Number = r.Number
	doc.Date = r.Date
	doc.SaleOrderNumber = r.SaleOrderNumber
	doc.Comment = r.Comment
	if r.Currency != "" {
		doc.Currency = r.Currency
	}
	if r.SaleOrderID != "" {
		if saleOrderID, err := id.Parse(r.SaleOrderID); err == nil {
			doc.SaleOrderID = &saleOrderID
		}
	}

	for _, line := range r.Lines {
		doc.AddLine(line.ToStockLine())
	}
	return doc
}

// UpdateDeliveryRequest updates a delivery document.
type UpdateDeliveryRequest struct {
	Date            *time.Time         `json:"date,omitempty"`
	CustomerID      *string            `json:"customerId,omitempty"`
	WarehouseID     *string            `json:"warehouseId,omitempty"`
	SaleOrderID     *string            `json:"saleOrderId,omitempty"`
	SaleOrderNumber *string            `json:"saleOrderNumber,omitempty"`
	Currency        *string            `json:"currency,omitempty"`
	Comment         *string            `json:"comment,omitempty"`
	Lines           []StockLineRequest `json:"lines,omitempty"`
}

// ApplyTo applies the update onto an existing document.
func (r *UpdateDeliveryRequest) ApplyTo(doc *delivery.Delivery) {
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
	if r.SaleOrderID != nil {
		if *r.SaleOrderID == "" {
			doc.SaleOrderID = nil
		} else if saleOrderID, err := id.Parse(*r.SaleOrderID); err == nil {
			doc.SaleOrderID = &saleOrderID
		}
	}
	if r.SaleOrderNumber != nil {
		doc.SaleOrderNumber = *r.SaleOrderNumber
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

// DeliveryResponse is a delivery in API responses.
type DeliveryResponse struct {
	DocumentResponse
	CustomerID      string                `json:"customerId"`
	WarehouseID     string                `json:"warehouseId"`
	SaleOrderID     *string               `json:"saleOrderId,omitempty"`
	SaleOrderNumber string                `json:"saleOrderNumber,omitempty"`
	Currency        string                `json:"currency"`
	TotalQuantity   types.Quantity        `json:"totalQuantity"`
	TotalAmount     types.Money           `json:"totalAmount"`
	TotalVAT        types.Money           `json:"totalVat"`
	Lines           []documents.StockLine `json:"lines,omitempty"`
}

// FromDelivery converts a domain document to the response DTO.
func FromDelivery(doc *delivery.Delivery) *DeliveryResponse {
	resp := &DeliveryResponse{
		DocumentResponse: FromDocument(doc.Document),
		CustomerID:       doc.CustomerID.String(),
		WarehouseID:      doc.WarehouseID.String(),
		SaleOrderNumber:  doc.SaleOrderNumber,
		Currency:         doc.Currency,
		TotalQuantity:    doc.TotalQuantity,
		TotalAmount:      doc.TotalAmount,
		TotalVAT:         doc.TotalVAT,
		Lines:            doc.Lines,
	}
	if doc.SaleOrderID != nil {
		s := doc.SaleOrderID.String()
		resp.SaleOrderID = &s
	}
	return resp
}
