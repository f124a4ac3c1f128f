// Package goods_receipt provides the GoodsReceipt document: incoming goods
// from suppliers into a warehouse.
package goods_receipt

import (
	"context"
	"time"

	"valora/internal/core/apperror"
	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/types"
	"valora/internal/domain/documents"
	"valora/internal/domain/posting"
)

// GoodsReceipt records incoming goods from a supplier. Posting it writes
// inbound stock movements priced at the document's net line amounts.
type GoodsReceipt struct {
	entity.Document

	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	// Warehouse where goods are received
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// Supplier's document reference
	SupplierDocNumber string     `db:"supplier_doc_number" json:"supplierDocNumber,omitempty"`
	SupplierDocDate   *time.Time `db:"supplier_doc_date" json:"supplierDocDate,omitempty"`

	Currency string `db:"currency" json:"currency"`

	// Totals (calculated from lines)
	TotalQuantity types.Quantity `db:"total_quantity" json:"totalQuantity"`
	TotalAmount   types.Money    `db:"total_amount" json:"totalAmount"`
	TotalVAT      types.Money    `db:"total_vat" json:"totalVat"`

	Lines []documents.StockLine `db:"-" json:"lines"`
}

// NewGoodsReceipt creates a new goods receipt document.
func NewGoodsReceipt(scope tenant.Scope, supplierID, warehouseID id.ID) *GoodsReceipt {
	return &GoodsReceipt{
		Document:    entity.NewDocument(scope),
		SupplierID:  supplierID,
		WarehouseID: warehouseID,
		Currency:    "VND",
		TotalAmount: types.Zero(),
		TotalVAT:    types.Zero(),
		Lines:       make([]documents.StockLine, 0),
	}
}

// AddLine appends a line and recalculates totals.
func (g *GoodsReceipt) AddLine(line documents.StockLine) {
	if id.IsNil(line.LineID) {
		line.LineID = id.New()
	}
	line.LineNo = len(g.Lines) + 1
	g.Lines = append(g.Lines, line)
	g.RecalculateTotals()
}

// RecalculateTotals updates document totals from lines.
func (g *GoodsReceipt) RecalculateTotals() {
	g.TotalQuantity = 0
	g.TotalAmount = types.Zero()
	g.TotalVAT = types.Zero()

	for _, line := range g.Lines {
		g.TotalQuantity += line.BaseQuantity()
		g.TotalAmount = g.TotalAmount.Add(line.Amount)
		g.TotalVAT = g.TotalVAT.Add(line.VATAmount)
	}
}

// Validate implements entity.Validatable.
func (g *GoodsReceipt) Validate(ctx context.Context) error {
	if err := g.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(g.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}
	if id.IsNil(g.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}
	if len(g.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i := range g.Lines {
		if err := g.Lines[i].Validate(i + 1); err != nil {
			return err
		}
	}
	return nil
}

// GetDocumentType returns the document type name.
func (g *GoodsReceipt) GetDocumentType() string {
	return "GoodsReceipt"
}

// ProjectMovements builds the inbound stock movements for this receipt.
func (g *GoodsReceipt) ProjectMovements(ctx context.Context) ([]entity.MovementRecord, error) {
	movements := make([]entity.MovementRecord, 0, len(g.Lines))
	for i := range g.Lines {
		movements = append(movements, documents.ProjectLine(&g.Lines[i], &g.Document, g.GetDocumentType(), g.WarehouseID, documents.ProjectionOptions{
			StockType: entity.StockTypeIn,
			WithCost:  true,
		})...)
	}
	return movements, nil
}

// Ensure interface compliance at compile time.
var _ posting.Postable = (*GoodsReceipt)(nil)
