package goods_issue

import (
	"context"
	"fmt"
	"time"

	"valora/internal/core/apperror"
	"valora/internal/core/id"
	"valora/internal/core/numerator"
	"valora/internal/core/tenant"
	"valora/internal/core/tx"
	"valora/internal/domain"
	"valora/internal/domain/documents"
	"valora/internal/domain/posting"
	"valora/pkg/logger"
)

// Service carries the goods issue workflow. Posting an issue consumes
// stock at the current weighted-average cost and fails on shortage.
type Service struct {
	repo          Repository
	postingEngine *posting.Engine
	numerator     numerator.Generator
	txManager     tx.Manager // Optional. If nil, obtained from context (DB-per-tenant).
	enricher      *documents.LineEnricher
}

func NewService(
	repo Repository,
	postingEngine *posting.Engine,
	numerator numerator.Generator,
	txManager tx.Manager,
	enricher *documents.LineEnricher,
) *Service {
	return &Service{
		repo:          repo,
		postingEngine: postingEngine,
		numerator:     numerator,
		txManager:     txManager,
		enricher:      enricher,
	}
}

func (s *Service) enrichLines(ctx context.Context, doc *GoodsIssue) error {
	if s.enricher == nil {
		return nil
	}
	return s.enricher.Enrich(ctx, doc.Lines)
}

func (s *Service) assignNumber(ctx context.Context, doc *GoodsIssue) error {
	if doc.Number != "" {
		return nil
	}
	cfg := numerator.DefaultConfig("GI")
	number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
	if err != nil {
		return fmt.Errorf("generate number: %w", err)
	}
	doc.Number = number
	return nil
}

func (s *Service) saveWithLines(ctx context.Context, doc *GoodsIssue, verb string, write func(ctx context.Context, doc *GoodsIssue) error) error {
	txm := s.txManager
	if txm == nil {
		var err error
		if txm, err = tenant.GetTxManager(ctx); err != nil {
			return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
		}
	}
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := write(ctx, doc); err != nil {
			return fmt.Errorf("%s document: %w", verb, err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
}

// Create enriches, validates and numbers the draft, then writes header
// and lines atomically.
func (s *Service) Create(ctx context.Context, doc *GoodsIssue) error {
	if err := s.enrichLines(ctx, doc); err != nil {
		return err
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if err := s.assignNumber(ctx, doc); err != nil {
		return err
	}
	if err := s.saveWithLines(ctx, doc, "create", s.repo.Create); err != nil {
		return err
	}

	logger.Info(ctx, "goods issue created", "id", doc.ID, "number", doc.Number)
	return nil
}

// GetByID loads the header together with its lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*GoodsIssue, error) {
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

// Update rewrites header and lines. Posted documents are rejected.
func (s *Service) Update(ctx context.Context, doc *GoodsIssue) error {
	if err := doc.CanModify(); err != nil {
		return err
	}
	if err := s.enrichLines(ctx, doc); err != nil {
		return err
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	return s.saveWithLines(ctx, doc, "update", s.repo.Update)
}

// Delete soft-deletes a draft. A posted document has to be unposted
// first.
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

// Post records the movements. Fails when any line would drive the
// balance negative.
func (s *Service) Post(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	return s.postingEngine.Post(ctx, doc, func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	})
}

// Unpost reverses the movements.
func (s *Service) Unpost(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	return s.postingEngine.Unpost(ctx, doc, func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	})
}

// PostAndSave persists and posts in one atomic operation.
func (s *Service) PostAndSave(ctx context.Context, doc *GoodsIssue) error {
	if err := s.enrichLines(ctx, doc); err != nil {
		return err
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if err := s.assignNumber(ctx, doc); err != nil {
		return err
	}

	save := func(ctx context.Context) error {
		// Version 1 means the document was never stored.
		if doc.Version == 1 {
			if err := s.repo.Create(ctx, doc); err != nil {
				return err
			}
			return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
		}
		return s.repo.Update(ctx, doc)
	}
	return s.postingEngine.Post(ctx, doc, save)
}

func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*GoodsIssue], error) {
	return s.repo.List(ctx, filter)
}
