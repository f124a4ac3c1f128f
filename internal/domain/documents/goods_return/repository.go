package goods_return

import (
	"context"
	"time"

	"valora/internal/core/id"
	"valora/internal/domain"
	"valora/internal/domain/documents"
)

// Repository defines operations for goods return documents.
type Repository interface {
	Create(ctx context.Context, doc *GoodsReturn) error
	GetByID(ctx context.Context, docID id.ID) (*GoodsReturn, error)
	GetByNumber(ctx context.Context, number string) (*GoodsReturn, error)
	Update(ctx context.Context, doc *GoodsReturn) error
	Delete(ctx context.Context, docID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]documents.StockLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []documents.StockLine) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*GoodsReturn], error)
	GetForUpdate(ctx context.Context, docID id.ID) (*GoodsReturn, error)
}

// ListFilter for filtering goods returns.
type ListFilter struct {
	domain.ListFilter

	CustomerID  *id.ID
	WarehouseID *id.ID
	DeliveryID  *id.ID
	Posted      *bool
	DateFrom    *time.Time
	DateTo      *time.Time
}
