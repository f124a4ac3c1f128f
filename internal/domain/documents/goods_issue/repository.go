package goods_issue

import (
	"context"
	"time"

	"valora/internal/core/id"
	"valora/internal/domain"
	"valora/internal/domain/documents"
)

// Repository is the persistence surface the goods issue service needs.
// Header CRUD plus line storage; GetForUpdate takes the row lock the
// posting engine relies on.
type Repository interface {
	Create(ctx context.Context, doc *GoodsIssue) error
	Update(ctx context.Context, doc *GoodsIssue) error
	Delete(ctx context.Context, docID id.ID) error
	GetByID(ctx context.Context, docID id.ID) (*GoodsIssue, error)
	GetByNumber(ctx context.Context, number string) (*GoodsIssue, error)
	GetForUpdate(ctx context.Context, docID id.ID) (*GoodsIssue, error)
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*GoodsIssue], error)

	GetLines(ctx context.Context, docID id.ID) ([]documents.StockLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []documents.StockLine) error
}

// ListFilter narrows goods issue listings.
type ListFilter struct {
	domain.ListFilter

	WarehouseID *id.ID
	Posted      *bool
	DateFrom    *time.Time
	DateTo      *time.Time
}
