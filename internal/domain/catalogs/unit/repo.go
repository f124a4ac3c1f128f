package unit

import (
	"context"

	"valora/internal/core/id"
	"valora/internal/domain"
)

// Repository is the persistence surface the unit service needs.
type Repository interface {
	domain.CatalogRepository[*Unit]

	// FindBySymbol looks a unit up by its symbol, unique per tenant.
	FindBySymbol(ctx context.Context, symbol string) (*Unit, error)

	// GetForUpdate loads a unit under a row lock.
	GetForUpdate(ctx context.Context, id id.ID) (*Unit, error)
}
