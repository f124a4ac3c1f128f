package delivery

import (
	"context"
	"time"

	"valora/internal/core/id"
	"valora/internal/domain"
	"valora/internal/domain/documents"
)

// Repository defines operations for delivery documents.
type Repository interface {
	Create(ctx context.Context, doc *Delivery) error
	GetByID(ctx context.Context, docID id.ID) (*Delivery, error)
	GetByNumber(ctx context.Context, number string) (*Delivery, error)
	Update(ctx context.Context, doc *Delivery) error
	Delete(ctx context.Context, docID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]documents.StockLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []documents.StockLine) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Delivery], error)
	GetForUpdate(ctx context.Context, docID id.ID) (*Delivery, error)
}

// ListFilter for filtering deliveries.
type ListFilter struct {
	domain.ListFilter

	CustomerID  *id.ID
	WarehouseID *id.ID
	SaleOrderID *id.ID
	Posted      *bool
	DateFrom    *time.Time
	DateTo      *time.Time
}
