package goods_return

import (
	"context"
	"fmt"
	"time"

	"valora/internal/core/apperror"
	"valora/internal/core/id"
	"valora/internal/core/numerator"
	"valora/internal/core/tenant"
	"valora/internal/core/tx"
	"valora/internal/core/types"
	"valora/internal/domain"
	"valora/internal/domain/documents"
	"valora/internal/domain/posting"
	"valora/pkg/logger"
)

// DeliveredCostSource resolves the per-unit cost a product was actually
// issued at by a specific delivery document. Backed by the stock ledger.
type DeliveredCostSource interface {
	DeliveredCost(ctx context.Context, scope tenant.Scope, deliveryID, productID id.ID) (types.Money, bool, error)
}

// Service provides business operations for goods return documents.
// In Database-per-Tenant architecture, TxManager is obtained from context.
type Service struct {
	repo          Repository
	postingEngine *posting.Engine
	numerator     numerator.Generator
	txManager     tx.Manager // Optional. If nil, obtained from context (DB-per-tenant).
	enricher      *documents.LineEnricher
	costs         DeliveredCostSource // Optional. Prefills return cost from the delivery.
}

// NewService creates a new goods return service.
func NewService(
	repo Repository,
	postingEngine *posting.Engine,
	numerator numerator.Generator,
	txManager tx.Manager,
	enricher *documents.LineEnricher,
	costs DeliveredCostSource,
) *Service {
	return &Service{
		repo:          repo,
		postingEngine: postingEngine,
		numerator:     numerator,
		txManager:     txManager,
		enricher:      enricher,
		costs:         costs,
	}
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

// prepare stamps catalog data and resolves missing return costs from the
// originating delivery before validation.
func (s *Service) prepare(ctx context.Context, doc *GoodsReturn) error {
	if s.enricher != nil {
		if err := s.enricher.Enrich(ctx, doc.Lines); err != nil {
			return err
		}
	}

	if s.costs == nil || doc.DeliveryID == nil {
		return nil
	}
	for i := range doc.Lines {
		line := &doc.Lines[i]
		if !line.Amount.IsZero() {
			continue
		}
		cost, ok, err := s.costs.DeliveredCost(ctx, doc.Scope, *doc.DeliveryID, line.ProductID)
		if err != nil {
			return fmt.Errorf("resolve delivered cost: %w", err)
		}
		if !ok {
			return apperror.NewValidation("product was not issued by the referenced delivery").
				WithDetail("lineNo", line.LineNo).
				WithDetail("productId", line.ProductID)
		}
		line.Amount = types.CostValue(cost, line.BaseQuantity())
	}
	doc.RecalculateTotals()
	return nil
}

func (s *Service) assignNumber(ctx context.Context, doc *GoodsReturn) error {
	if doc.Number != "" {
		return nil
	}
	cfg := numerator.DefaultConfig("RT")
	number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
	if err != nil {
		return fmt.Errorf("generate number: %w", err)
	}
	doc.Number = number
	return nil
}

// Create creates a new goods return document.
func (s *Service) Create(ctx context.Context, doc *GoodsReturn) error {
	if err := s.prepare(ctx, doc); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if err := s.assignNumber(ctx, doc); err != nil {
		return err
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "goods return created", "id", doc.ID, "number", doc.Number)
	return nil
}

// GetByID retrieves a goods return with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*GoodsReturn, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// Update updates a goods return document.
func (s *Service) Update(ctx context.Context, doc *GoodsReturn) error {
	if err := doc.CanModify(); err != nil {
		return err
	}

	if err := s.prepare(ctx, doc); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
}

// Delete soft-deletes a goods return.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	if doc.Posted {
		return doc.CanModify()
	}

	return s.repo.Delete(ctx, docID)
}

// Post records document movements to the stock ledger.
func (s *Service) Post(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	updateDoc := func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	}

	return s.postingEngine.Post(ctx, doc, updateDoc)
}

// Unpost reverses document movements.
func (s *Service) Unpost(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	updateDoc := func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	}

	return s.postingEngine.Unpost(ctx, doc, updateDoc)
}

// PostAndSave posts document and saves changes atomically.
func (s *Service) PostAndSave(ctx context.Context, doc *GoodsReturn) error {
	if err := s.prepare(ctx, doc); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if err := s.assignNumber(ctx, doc); err != nil {
		return err
	}

	updateDoc := func(ctx context.Context) error {
		if doc.Version == 1 {
			if err := s.repo.Create(ctx, doc); err != nil {
				return err
			}
			return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
		}
		return s.repo.Update(ctx, doc)
	}

	return s.postingEngine.Post(ctx, doc, updateDoc)
}

// List retrieves goods returns with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*GoodsReturn], error) {
	return s.repo.List(ctx, filter)
}
