package company

import (
	"context"

	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/domain"
)

// Repository defines the interface for Company persistence.
type Repository interface {
	domain.CatalogRepository[*Company]

	// GetDefault retrieves the tenant's default company.
	GetDefault(ctx context.Context, tenantID id.ID) (*Company, error)

	// GetByScope retrieves the company a scope points at, or nil.
	GetByScope(ctx context.Context, scope tenant.Scope) (*Company, error)
}
