// Package goods_transfer provides the GoodsTransfer document: moving goods
// between two warehouses of the same company.
package goods_transfer

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

// GoodsTransfer moves stock from a source warehouse to a destination
// warehouse. Each line projects a pair of movements: an issue at the source
// priced by the engine at the running average, immediately followed by a
// receipt at the destination inheriting that resolved cost. The pair nets
// to zero at company level.
type GoodsTransfer struct {
	entity.Document

	SourceWarehouseID id.ID `db:"source_warehouse_id" json:"sourceWarehouseId"`
	DestWarehouseID   id.ID `db:"dest_warehouse_id" json:"destWarehouseId"`

	Reason string `db:"reason" json:"reason,omitempty"`

	TotalQuantity types.Quantity `db:"total_quantity" json:"totalQuantity"`

	Lines []documents.StockLine `db:"-" json:"lines"`
}

// NewGoodsTransfer creates a new goods transfer document.
func NewGoodsTransfer(scope tenant.Scope, sourceWarehouseID, destWarehouseID id.ID) *GoodsTransfer {
	return &GoodsTransfer{
		Document:          entity.NewDocument(scope),
		SourceWarehouseID: sourceWarehouseID,
		DestWarehouseID:   destWarehouseID,
		Lines:             make([]documents.StockLine, 0),
	}
}

// AddLine appends a line and recalculates totals.
func (g *GoodsTransfer) AddLine(line documents.StockLine) {
	if id.IsNil(line.LineID) {
		line.LineID = id.New()
	}
	line.LineNo = len(g.Lines) + 1
	g.Lines = append(g.Lines, line)
	g.RecalculateTotals()
}

// RecalculateTotals updates document totals from lines.
func (g *GoodsTransfer) RecalculateTotals() {
	g.TotalQuantity = 0
	for _, line := range g.Lines {
		g.TotalQuantity += line.BaseQuantity()
	}
}

// Validate implements entity.Validatable.
func (g *GoodsTransfer) Validate(ctx context.Context) error {
	if err := g.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(g.SourceWarehouseID) {
		return apperror.NewValidation("source warehouse is required").
			WithDetail("field", "sourceWarehouseId")
	}
	if id.IsNil(g.DestWarehouseID) {
		return apperror.NewValidation("destination warehouse is required").
			WithDetail("field", "destWarehouseId")
	}
	if g.SourceWarehouseID == g.DestWarehouseID {
		return apperror.NewValidation("source and destination warehouses must differ").
			WithDetail("field", "destWarehouseId")
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
func (g *GoodsTransfer) GetDocumentType() string {
	return "GoodsTransfer"
}

// ProjectMovements builds interleaved out/in movement pairs. The engine
// processes the batch in order, so every destination leg directly follows
// the source leg whose resolved cost it inherits.
func (g *GoodsTransfer) ProjectMovements(ctx context.Context) ([]entity.MovementRecord, error) {
	movements := make([]entity.MovementRecord, 0, len(g.Lines)*2)
	for i := range g.Lines {
		out := documents.ProjectLine(&g.Lines[i], &g.Document, g.GetDocumentType(), g.SourceWarehouseID, documents.ProjectionOptions{
			StockType: entity.StockTypeOut,
		})
		in := documents.ProjectLine(&g.Lines[i], &g.Document, g.GetDocumentType(), g.DestWarehouseID, documents.ProjectionOptions{
			StockType:   entity.StockTypeIn,
			InheritCost: true,
		})
		// Serial lines expand to one movement per serial, slices stay
		// parallel because both legs come from the same line.
		for j := range out {
			movements = append(movements, out[j], in[j])
		}
	}
	return movements, nil
}

var _ posting.Postable = (*GoodsTransfer)(nil)
