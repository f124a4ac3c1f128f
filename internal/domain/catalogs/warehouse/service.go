package warehouse

import (
	"context"
	"fmt"
	"time"

	"valora/internal/core/numerator"
	"valora/internal/domain"
)

// Service wraps the generic catalog CRUD with warehouse rules: code
// generation on create and keeping at most one default warehouse.
type Service struct {
	*domain.CatalogService[*Warehouse]
	repo      Repository
	numerator numerator.Generator
}

// NewService builds the service. TxManager is nil on purpose: repos
// resolve it from the tenant context per request.
func NewService(repo Repository, gen numerator.Generator) *Service {
	svc := &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Warehouse]{
			Repo:       repo,
			Numerator:  gen,
			EntityName: "warehouse",
		}),
		repo:      repo,
		numerator: gen,
	}

	svc.Hooks().On(domain.BeforeCreate, svc.prepareForCreate)
	svc.Hooks().On(domain.BeforeUpdate, svc.prepareForUpdate)
	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, wh *Warehouse) error {
	if wh.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("WH"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		wh.Code = code
	}
	return s.ensureSingleDefault(ctx, wh)
}

func (s *Service) prepareForUpdate(ctx context.Context, wh *Warehouse) error {
	return s.ensureSingleDefault(ctx, wh)
}

// ensureSingleDefault clears the flag on all other warehouses before a
// new default is written. Runs inside the surrounding transaction.
func (s *Service) ensureSingleDefault(ctx context.Context, wh *Warehouse) error {
	if !wh.IsDefault {
		return nil
	}
	return s.repo.ClearDefault(ctx)
}
