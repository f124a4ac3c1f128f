package reports

import (
	"context"
	"fmt"

	"valora/internal/core/apperror"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetStockCard returns the movement history of one product with running
// balances, newest rows last.
func (s *Service) GetStockCard(ctx context.Context, scope tenant.Scope, filter StockCardFilter) (*StockCard, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if id.IsNil(filter.ProductID) {
		return nil, apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if filter.FromDate != nil && filter.ToDate != nil && filter.FromDate.After(*filter.ToDate) {
		return nil, apperror.NewValidation("fromDate must be before toDate")
	}

	clampPagination(&filter.Limit, 100, 1000)

	card, err := s.repo.GetStockCard(ctx, scope, filter)
	if err != nil {
		return nil, fmt.Errorf("get stock card: %w", err)
	}
	return card, nil
}

// GetValuationSummary returns the inventory valuation of a fiscal month.
func (s *Service) GetValuationSummary(ctx context.Context, scope tenant.Scope, filter ValuationFilter) (*ValuationSummary, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if id.IsNil(filter.SubPeriodID) {
		return nil, apperror.NewValidation("sub-period is required").
			WithDetail("field", "subPeriodId")
	}

	clampPagination(&filter.Limit, 100, 1000)

	summary, err := s.repo.GetValuationSummary(ctx, scope, filter)
	if err != nil {
		return nil, fmt.Errorf("get valuation summary: %w", err)
	}
	return summary, nil
}

// GetStockTurnover generates the receipt/expense turnover report.
func (s *Service) GetStockTurnover(ctx context.Context, scope tenant.Scope, filter StockTurnoverReportFilter) (*StockTurnoverReport, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, apperror.NewValidation("fromDate and toDate are required")
	}
	if filter.FromDate.After(filter.ToDate) {
		return nil, apperror.NewValidation("fromDate must be before toDate")
	}

	clampPagination(&filter.Limit, 100, 1000)

	report, err := s.repo.GetStockTurnoverReport(ctx, scope, filter)
	if err != nil {
		return nil, fmt.Errorf("get stock turnover report: %w", err)
	}
	return report, nil
}

// GetDocumentJournal returns document journal.
func (s *Service) GetDocumentJournal(ctx context.Context, scope tenant.Scope, filter DocumentJournalFilter) (*DocumentJournal, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	clampPagination(&filter.Limit, 50, 500)

	// Default sort
	if filter.SortBy == "" {
		filter.SortBy = "date"
	}
	if filter.SortOrder == "" {
		filter.SortOrder = "desc"
	}

	journal, err := s.repo.GetDocumentJournal(ctx, scope, filter)
	if err != nil {
		return nil, fmt.Errorf("get document journal: %w", err)
	}

	// Get summary if requested (when no pagination offset)
	if filter.Offset == 0 {
		summary, err := s.repo.GetDocumentTypeSummary(ctx, scope, filter)
		if err == nil {
			journal.Summary = summary
		}
	}

	return journal, nil
}

func clampPagination(limit *int, def, max int) {
	if *limit <= 0 {
		*limit = def
	}
	if *limit > max {
		*limit = max
	}
}
