// Package goods_return provides the GoodsReturn document: goods coming back
// from a customer into a warehouse.
package goods_return

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

// GoodsReturn records goods returned by a customer. The return re-enters
// stock at the cost the goods were originally delivered at, not at the
// current running average, so line Amount carries that original cost value.
type GoodsReturn struct {
	entity.Document

	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// Warehouse receiving the returned goods
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// Originating delivery, when known
	DeliveryID     *id.ID `db:"delivery_id" json:"deliveryId,omitempty"`
	DeliveryNumber string `db:"delivery_number" json:"deliveryNumber,omitempty"`

	Reason string `db:"reason" json:"reason,omitempty"`

	TotalQuantity types.Quantity `db:"total_quantity" json:"totalQuantity"`
	TotalAmount   types.Money    `db:"total_amount" json:"totalAmount"`

	Lines []documents.StockLine `db:"-" json:"lines"`
}

// NewGoodsReturn creates a new goods return document.
func NewGoodsReturn(scope tenant.Scope, customerID, warehouseID id.ID) *GoodsReturn {
	return &GoodsReturn{
		Document:    entity.NewDocument(scope),
		CustomerID:  customerID,
		WarehouseID: warehouseID,
		TotalAmount: types.Zero(),
		Lines:       make([]documents.StockLine, 0),
	}
}

// AddLine appends a line and recalculates totals.
func (g *GoodsReturn) AddLine(line documents.StockLine) {
	if id.IsNil(line.LineID) {
		line.LineID = id.New()
	}
	line.LineNo = len(g.Lines) + 1
	g.Lines = append(g.Lines, line)
	g.RecalculateTotals()
}

// RecalculateTotals updates document totals from lines.
func (g *GoodsReturn) RecalculateTotals() {
	g.TotalQuantity = 0
	g.TotalAmount = types.Zero()

	for _, line := range g.Lines {
		g.TotalQuantity += line.BaseQuantity()
		g.TotalAmount = g.TotalAmount.Add(line.Amount)
	}
}

// Validate implements entity.Validatable.
func (g *GoodsReturn) Validate(ctx context.Context) error {
	if err := g.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(g.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
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
		if !g.Lines[i].Amount.IsPositive() {
			return apperror.NewValidation("return cost must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}

// GetDocumentType returns the document type name.
func (g *GoodsReturn) GetDocumentType() string {
	return "GoodsReturn"
}

// ProjectMovements builds the inbound stock movements for this return,
// priced at the original delivered cost carried on the lines.
func (g *GoodsReturn) ProjectMovements(ctx context.Context) ([]entity.MovementRecord, error) {
	movements := make([]entity.MovementRecord, 0, len(g.Lines))
	for i := range g.Lines {
		movements = append(movements, documents.ProjectLine(&g.Lines[i], &g.Document, g.GetDocumentType(), g.WarehouseID, documents.ProjectionOptions{
			StockType: entity.StockTypeIn,
			WithCost:  true,
		})...)
	}
	return movements, nil
}

var _ posting.Postable = (*GoodsReturn)(nil)
