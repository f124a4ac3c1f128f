// Package goods_issue provides the GoodsIssue document: outbound goods for
// internal consumption (production, write-off, internal use).
package goods_issue

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

// GoodsIssue records goods leaving a warehouse for internal use. Lines carry
// no price: the ledger engine resolves the issue cost from the running
// average at posting time.
type GoodsIssue struct {
	entity.Document

	// Warehouse from which goods are issued
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// Who requested the issue (department, production order, employee)
	RequestedBy string `db:"requested_by" json:"requestedBy,omitempty"`
	Reason      string `db:"reason" json:"reason,omitempty"`

	TotalQuantity types.Quantity `db:"total_quantity" json:"totalQuantity"`

	Lines []documents.StockLine `db:"-" json:"lines"`
}

// NewGoodsIssue creates a new goods issue document.
func NewGoodsIssue(scope tenant.Scope, warehouseID id.ID) *GoodsIssue {
	return &GoodsIssue{
		Document:    entity.NewDocument(scope),
		WarehouseID: warehouseID,
		Lines:       make([]documents.StockLine, 0),
	}
}

// AddLine appends a line and recalculates totals.
func (g *GoodsIssue) AddLine(line documents.StockLine) {
	if id.IsNil(line.LineID) {
		line.LineID = id.New()
	}
	line.LineNo = len(g.Lines) + 1
	g.Lines = append(g.Lines, line)
	g.RecalculateTotals()
}

// RecalculateTotals updates document totals from lines.
func (g *GoodsIssue) RecalculateTotals() {
	g.TotalQuantity = 0
	for _, line := range g.Lines {
		g.TotalQuantity += line.BaseQuantity()
	}
}

// Validate implements entity.Validatable.
func (g *GoodsIssue) Validate(ctx context.Context) error {
	if err := g.Document.Validate(ctx); err != nil {
		return err
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
func (g *GoodsIssue) GetDocumentType() string {
	return "GoodsIssue"
}

// ProjectMovements builds the outbound stock movements for this issue.
// Cost is left zero so the engine prices the issue at the running average.
func (g *GoodsIssue) ProjectMovements(ctx context.Context) ([]entity.MovementRecord, error) {
	movements := make([]entity.MovementRecord, 0, len(g.Lines))
	for i := range g.Lines {
		movements = append(movements, documents.ProjectLine(&g.Lines[i], &g.Document, g.GetDocumentType(), g.WarehouseID, documents.ProjectionOptions{
			StockType: entity.StockTypeOut,
		})...)
	}
	return movements, nil
}

var _ posting.Postable = (*GoodsIssue)(nil)
