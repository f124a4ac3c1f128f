// Package delivery provides the Delivery document: outbound goods shipped to
// a customer against a sale order.
package delivery

import (
	"context"

	"valora/internal/core/apperror"
	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/types"
	"valora/internal/domain/documents"
	"valora/internal/domain/posting"
)

// Delivery records goods shipped to a customer. Line amounts are sales
// prices and never feed valuation: the engine resolves the cost of goods
// sold from the running average at posting time. Movements carry the sale
// order reference so fulfillment trackers can consume the resulting logs.
type Delivery struct {
	entity.Document

	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// Warehouse from which goods are shipped
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// Sale order being fulfilled
	SaleOrderID     *id.ID `db:"sale_order_id" json:"saleOrderId,omitempty"`
	SaleOrderNumber string `db:"sale_order_number" json:"saleOrderNumber,omitempty"`

	Currency string `db:"currency" json:"currency"`

	TotalQuantity types.Quantity `db:"total_quantity" json:"totalQuantity"`
	TotalAmount   types.Money    `db:"total_amount" json:"totalAmount"`
	TotalVAT      types.Money    `db:"total_vat" json:"totalVat"`

	Lines []documents.StockLine `db:"-" json:"lines"`
}

// NewDelivery creates a new delivery document.
func NewDelivery(scope tenant.Scope, customerID, warehouseID id.ID) *Delivery {
	return &Delivery{
		Document:    entity.NewDocument(scope),
		CustomerID:  customerID,
		WarehouseID: warehouseID,
		Currency:    "VND",
		TotalAmount: types.Zero(),
		TotalVAT:    types.Zero(),
		Lines:       make([]documents.StockLine, 0),
	}
}

// AddLine appends a line and recalculates totals.
func (d *Delivery) AddLine(line documents.StockLine) {
	if id.IsNil(line.LineID) {
		line.LineID = id.New()
	}
	line.LineNo = len(d.Lines) + 1
	d.Lines = append(d.Lines, line)
	d.RecalculateTotals()
}

// RecalculateTotals updates document totals from lines.
func (d *Delivery) RecalculateTotals() {
	d.TotalQuantity = 0
	d.TotalAmount = types.Zero()
	d.TotalVAT = types.Zero()

	for _, line := range d.Lines {
		d.TotalQuantity += line.BaseQuantity()
		d.TotalAmount = d.TotalAmount.Add(line.Amount)
		d.TotalVAT = d.TotalVAT.Add(line.VATAmount)
	}
}

// Validate implements entity.Validatable.
func (d *Delivery) Validate(ctx context.Context) error {
	if err := d.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(d.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}
	if id.IsNil(d.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}
	if len(d.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i := range d.Lines {
		if err := d.Lines[i].Validate(i + 1); err != nil {
			return err
		}
	}
	return nil
}

// GetDocumentType returns the document type name.
func (d *Delivery) GetDocumentType() string {
	return "Delivery"
}

// ProjectMovements builds the outbound stock movements for this delivery.
// Line-level sale order references override the document-level one.
func (d *Delivery) ProjectMovements(ctx context.Context) ([]entity.MovementRecord, error) {
	movements := make([]entity.MovementRecord, 0, len(d.Lines))
	for i := range d.Lines {
		movements = append(movements, documents.ProjectLine(&d.Lines[i], &d.Document, d.GetDocumentType(), d.WarehouseID, documents.ProjectionOptions{
			StockType:   entity.StockTypeOut,
			SaleOrderID: d.SaleOrderID,
		})...)
	}
	return movements, nil
}

var _ posting.Postable = (*Delivery)(nil)
