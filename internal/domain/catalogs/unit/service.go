package unit

import (
	"context"
	"fmt"
	"time"

	"valora/internal/core/apperror"
	"valora/internal/core/numerator"
	"valora/internal/domain"
)

// Service wraps the generic catalog CRUD with unit rules: code
// generation on create and symbol uniqueness.
type Service struct {
	*domain.CatalogService[*Unit]
	repo      Repository
	numerator numerator.Generator
}

// NewService builds the service. TxManager is nil on purpose: repos
// resolve it from the tenant context per request.
func NewService(repo Repository, gen numerator.Generator) *Service {
	svc := &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Unit]{
			Repo:       repo,
			Numerator:  gen,
			EntityName: "unit",
		}),
		repo:      repo,
		numerator: gen,
	}

	svc.Hooks().On(domain.BeforeCreate, svc.prepareForCreate)
	svc.Hooks().On(domain.BeforeUpdate, svc.prepareForUpdate)
	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, unit *Unit) error {
	if unit.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("UN"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		unit.Code = code
	}
	return s.requireUniqueSymbol(ctx, unit)
}

func (s *Service) prepareForUpdate(ctx context.Context, unit *Unit) error {
	return s.requireUniqueSymbol(ctx, unit)
}

// requireUniqueSymbol rejects a symbol already taken by another unit.
// Lookup errors are treated as "not taken"; the database unique index
// is the backstop.
func (s *Service) requireUniqueSymbol(ctx context.Context, unit *Unit) error {
	if unit.Symbol == "" {
		return nil
	}
	existing, err := s.repo.FindBySymbol(ctx, unit.Symbol)
	if err != nil || existing.ID == unit.ID {
		return nil
	}
	return apperror.NewConflict("unit with this symbol already exists").
		WithDetail("symbol", unit.Symbol)
}

// FindBySymbol retrieves a unit by its symbol.
func (s *Service) FindBySymbol(ctx context.Context, symbol string) (*Unit, error) {
	return s.repo.FindBySymbol(ctx, symbol)
}
