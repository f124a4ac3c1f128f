package goods_transfer

import (
	"context"
	"time"

	"valora/internal/core/id"
	"valora/internal/domain"
	"valora/internal/domain/documents"
)

// Repository defines operations for goods transfer documents.
type Repository interface {
	Create(ctx context.Context, doc *GoodsTransfer) error
	GetByID(ctx context.Context, docID id.ID) (*GoodsTransfer, error)
	GetByNumber(ctx context.Context, number string) (*GoodsTransfer, error)
	Update(ctx context.Context, doc *GoodsTransfer) error
	Delete(ctx context.Context, docID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]documents.StockLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []documents.StockLine) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*GoodsTransfer], error)
	GetForUpdate(ctx context.Context, docID id.ID) (*GoodsTransfer, error)
}

// ListFilter for filtering goods transfers.
type ListFilter struct {
	domain.ListFilter

	SourceWarehouseID *id.ID
	DestWarehouseID   *id.ID
	Posted            *bool
	DateFrom          *time.Time
	DateTo            *time.Time
}
