package counterparty

import (
	"context"
	"fmt"
	"time"

	"valora/internal/core/apperror"
	"valora/internal/core/id"
	"valora/internal/core/numerator"
	"valora/internal/domain"
)

// Service provides business logic for Counterparty catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Counterparty] // Embedded for delegation
	repo                                  Repository
	numerator                             numerator.Generator
}

// NewService creates a new Counterparty service.
// In Database-per-Tenant, TxManager is obtained from context.
func NewService(
	repo Repository,
	gen numerator.Generator,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Counterparty]{
		Repo:       repo,
		TxManager:  nil, // Will be obtained from context
		Numerator:  gen,
		EntityName: "counterparty",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      gen,
	}

	// Register hooks for entity-specific logic
	base.Hooks().On(domain.BeforeCreate, svc.prepareForCreate)
	base.Hooks().On(domain.BeforeUpdate, svc.prepareForUpdate)

	return svc
}

// prepareForCreate handles code generation and uniqueness checks before create.
func (s *Service) prepareForCreate(ctx context.Context, cp *Counterparty) error {
	if cp.Code == "" {
		cfg := numerator.DefaultConfig("CP")
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		cp.Code = code
	}

	if cp.TaxCode != nil && *cp.TaxCode != "" {
		exists, err := s.checkTaxCodeExists(ctx, *cp.TaxCode, cp.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewConflict("counterparty with this tax code already exists").
				WithDetail("taxCode", cp.TaxCode)
		}
	}

	return nil
}

// prepareForUpdate handles uniqueness checks before update.
func (s *Service) prepareForUpdate(ctx context.Context, cp *Counterparty) error {
	if cp.TaxCode != nil && *cp.TaxCode != "" {
		exists, err := s.checkTaxCodeExists(ctx, *cp.TaxCode, cp.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewConflict("counterparty with this tax code already exists").
				WithDetail("taxCode", cp.TaxCode)
		}
	}

	return nil
}

// FindByTaxCode retrieves counterparty by tax code.
func (s *Service) FindByTaxCode(ctx context.Context, taxCode string) (*Counterparty, error) {
	return s.repo.FindByTaxCode(ctx, taxCode)
}

// checkTaxCodeExists checks if the tax code is already used by another counterparty.
func (s *Service) checkTaxCodeExists(ctx context.Context, taxCode string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindByTaxCode(ctx, taxCode)
	if err != nil {
		// Not found is OK; other errors must be propagated (DB errors, timeouts, etc.).
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != excludeID, nil
}
