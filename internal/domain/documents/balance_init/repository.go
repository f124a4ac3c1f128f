package balance_init

import (
	"context"
	"time"

	"valora/internal/core/id"
	"valora/internal/domain"
	"valora/internal/domain/documents"
)

// Repository defines operations for balance initialization documents.
type Repository interface {
	Create(ctx context.Context, doc *BalanceInit) error
	GetByID(ctx context.Context, docID id.ID) (*BalanceInit, error)
	GetByNumber(ctx context.Context, number string) (*BalanceInit, error)
	Update(ctx context.Context, doc *BalanceInit) error
	Delete(ctx context.Context, docID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]documents.StockLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []documents.StockLine) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*BalanceInit], error)
	GetForUpdate(ctx context.Context, docID id.ID) (*BalanceInit, error)
}

// ListFilter for filtering balance initialization documents.
type ListFilter struct {
	domain.ListFilter

	WarehouseID *id.ID
	Posted      *bool
	DateFrom    *time.Time
	DateTo      *time.Time
}
