package company

import (
	"context"

	"valora/internal/core/apperror"
	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/numerator"
	"valora/internal/core/tenant"
	"valora/internal/domain"
)

// Service provides business logic for the Company catalog. It also serves
// as the ledger engine's settings provider: every posting resolves the
// company's valuation configuration through CostConfig.
type Service struct {
	*domain.CatalogService[*Company]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Company service.
func NewService(repo Repository, numerator numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Company]{
		Repo:       repo,
		Numerator:  numerator,
		EntityName: "company",
	})

	return &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      numerator,
	}
}

// GetDefault retrieves the tenant's default company.
func (s *Service) GetDefault(ctx context.Context, tenantID id.ID) (*Company, error) {
	return s.repo.GetDefault(ctx, tenantID)
}

// CostConfig resolves the valuation configuration of the company a scope
// points at. Implements ledger.SettingsProvider.
func (s *Service) CostConfig(ctx context.Context, scope tenant.Scope) (entity.CostConfig, error) {
	c, err := s.repo.GetByScope(ctx, scope)
	if err != nil {
		return entity.CostConfig{}, err
	}
	if c == nil {
		return entity.CostConfig{}, apperror.NewNotFound("company", scope.CompanyID.String())
	}
	return c.CostConfig, nil
}

// UpdateCostConfig changes the company's valuation configuration.
// Switching policy mid-year does not rewrite history: existing log rows and
// entries stay as written, only future postings fold under the new policy.
func (s *Service) UpdateCostConfig(ctx context.Context, companyID id.ID, cfg entity.CostConfig) error {
	c, err := s.GetByID(ctx, companyID)
	if err != nil {
		return err
	}
	c.CostConfig = cfg
	return s.Update(ctx, c)
}
