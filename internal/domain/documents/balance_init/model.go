// Package balance_init provides the BalanceInit document: loading opening
// stock balances when a company starts keeping records in the system.
package balance_init

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

// BalanceInit records opening quantities and values per product. Posting it
// writes inbound movements flagged as balance initialization, so the ledger
// seeds both the opening and ending side of the affected entries.
type BalanceInit struct {
	entity.Document

	// Warehouse whose opening balances are being loaded
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	TotalQuantity types.Quantity `db:"total_quantity" json:"totalQuantity"`
	TotalAmount   types.Money    `db:"total_amount" json:"totalAmount"`

	Lines []documents.StockLine `db:"-" json:"lines"`
}

// NewBalanceInit creates a new balance initialization document.
func NewBalanceInit(scope tenant.Scope, warehouseID id.ID) *BalanceInit {
	return &BalanceInit{
		Document:    entity.NewDocument(scope),
		WarehouseID: warehouseID,
		TotalAmount: types.Zero(),
		Lines:       make([]documents.StockLine, 0),
	}
}

// AddLine appends a line and recalculates totals.
func (b *BalanceInit) AddLine(line documents.StockLine) {
	if id.IsNil(line.LineID) {
		line.LineID = id.New()
	}
	line.LineNo = len(b.Lines) + 1
	b.Lines = append(b.Lines, line)
	b.RecalculateTotals()
}

// RecalculateTotals updates document totals from lines.
func (b *BalanceInit) RecalculateTotals() {
	b.TotalQuantity = 0
	b.TotalAmount = types.Zero()

	for _, line := range b.Lines {
		b.TotalQuantity += line.BaseQuantity()
		b.TotalAmount = b.TotalAmount.Add(line.Amount)
	}
}

// Validate implements entity.Validatable.
func (b *BalanceInit) Validate(ctx context.Context) error {
	if err := b.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(b.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}
	if len(b.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i := range b.Lines {
		if err := b.Lines[i].Validate(i + 1); err != nil {
			return err
		}
		if !b.Lines[i].Amount.IsPositive() {
			return apperror.NewValidation("opening value must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}

// GetDocumentType returns the document type name.
func (b *BalanceInit) GetDocumentType() string {
	return "BalanceInit"
}

// InitializesBalance marks the document for the is-balance-init posting flow.
func (b *BalanceInit) InitializesBalance() bool { return true }

// ProjectMovements builds the opening inbound movements.
func (b *BalanceInit) ProjectMovements(ctx context.Context) ([]entity.MovementRecord, error) {
	movements := make([]entity.MovementRecord, 0, len(b.Lines))
	for i := range b.Lines {
		movements = append(movements, documents.ProjectLine(&b.Lines[i], &b.Document, b.GetDocumentType(), b.WarehouseID, documents.ProjectionOptions{
			StockType: entity.StockTypeIn,
			WithCost:  true,
		})...)
	}
	return movements, nil
}

var (
	_ posting.Postable           = (*BalanceInit)(nil)
	_ posting.BalanceInitializer = (*BalanceInit)(nil)
)
