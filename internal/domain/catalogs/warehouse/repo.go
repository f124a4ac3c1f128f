package warehouse

import (
	"context"

	"valora/internal/core/id"
	"valora/internal/domain"
)

// Repository is the persistence surface the warehouse service needs.
type Repository interface {
	domain.CatalogRepository[*Warehouse]

	// GetForUpdate loads a warehouse under a row lock.
	GetForUpdate(ctx context.Context, id id.ID) (*Warehouse, error)

	// ClearDefault drops the default flag everywhere before a new
	// default is written.
	ClearDefault(ctx context.Context) error
}
