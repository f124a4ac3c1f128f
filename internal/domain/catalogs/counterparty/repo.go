package counterparty

import (
	"context"

	"valora/internal/core/id"
	"valora/internal/domain"
)

// Repository defines the interface for Counterparty persistence.
type Repository interface {
	domain.CatalogRepository[*Counterparty]

	// FindByTaxCode retrieves counterparty by tax code (unique within tenant).
	FindByTaxCode(ctx context.Context, taxCode string) (*Counterparty, error)

	// GetForUpdate retrieves counterparty with row lock (for transactional updates).
	GetForUpdate(ctx context.Context, id id.ID) (*Counterparty, error)
}
