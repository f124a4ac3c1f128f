package calendar

import (
	"context"
	"fmt"
	"time"

	"valora/internal/core/apperror"
	"valora/internal/core/entity"
	"valora/internal/core/tenant"
	"valora/pkg/logger"
)

// Service provides fiscal calendar lookups. There is no state machine here:
// pure lookups plus the two sub-period flags the ledger engine mutates.
type Service struct {
	repo Repository
}

// NewService creates a calendar service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateFiscalYear creates a Period with its twelve month buckets.
// Invariant: one Period per (tenant, company, fiscal year).
func (s *Service) CreateFiscalYear(ctx context.Context, scope tenant.Scope, fiscalYear int) (*entity.Period, error) {
	if err := scope.Validate(); err != nil {
		return nil, apperror.NewValidation(err.Error())
	}

	existing, err := s.repo.GetPeriodByYear(ctx, scope, fiscalYear)
	if err != nil {
		return nil, fmt.Errorf("check existing period: %w", err)
	}
	if existing != nil {
		return nil, apperror.NewDuplicate("period", "fiscal_year", fmt.Sprintf("%d", fiscalYear))
	}

	period := entity.NewPeriod(scope, fiscalYear)
	if err := period.Validate(ctx); err != nil {
		return nil, err
	}

	subs := make([]*entity.SubPeriod, 0, 12)
	for month := 1; month <= 12; month++ {
		start := time.Date(fiscalYear, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		subs = append(subs, entity.NewSubPeriod(period.ID, month, start))
	}

	if err := s.repo.CreatePeriod(ctx, period, subs); err != nil {
		return nil, fmt.Errorf("create period: %w", err)
	}

	logger.Info(ctx, "fiscal year created",
		"fiscal_year", fiscalYear,
		"period_id", period.ID)

	return period, nil
}

// ResolvePeriod finds the fiscal year containing the date.
func (s *Service) ResolvePeriod(ctx context.Context, scope tenant.Scope, date time.Time) (*entity.Period, error) {
	period, err := s.repo.GetPeriodByDate(ctx, scope, date)
	if err != nil {
		return nil, fmt.Errorf("resolve period: %w", err)
	}
	if period == nil {
		return nil, apperror.NewPeriodNotFound(date.Format("2006-01-02"))
	}
	return period, nil
}

// ResolveSubPeriod finds the month bucket of a period containing the date.
func (s *Service) ResolveSubPeriod(ctx context.Context, period *entity.Period, date time.Time) (*entity.SubPeriod, error) {
	sub, err := s.repo.GetSubPeriod(ctx, period.ID, date)
	if err != nil {
		return nil, fmt.Errorf("resolve sub-period: %w", err)
	}
	if sub == nil {
		return nil, apperror.NewSubPeriodNotFound(date.Format("2006-01-02"))
	}
	return sub, nil
}

// Previous returns the sub-period immediately before the given one: month 12
// of the prior fiscal year when order is 1, otherwise order-1 of the same
// year. Returns nil (no error) when that record does not exist - the first
// sub-period in a tenant's life has no predecessor.
func (s *Service) Previous(ctx context.Context, scope tenant.Scope, period *entity.Period, sub *entity.SubPeriod) (*entity.SubPeriod, error) {
	if !sub.IsFirst() {
		return s.repo.GetSubPeriodByOrder(ctx, period.ID, sub.Order-1)
	}

	prevPeriod, err := s.repo.GetPeriodByYear(ctx, scope, period.FiscalYear-1)
	if err != nil {
		return nil, fmt.Errorf("previous period: %w", err)
	}
	if prevPeriod == nil {
		return nil, nil
	}
	return s.repo.GetSubPeriodByOrder(ctx, prevPeriod.ID, 12)
}

// SubPeriodsThrough returns sub-periods of the period with order 1..target,
// ascending. The ledger engine walks them to open months in sequence.
func (s *Service) SubPeriodsThrough(ctx context.Context, period *entity.Period, targetOrder int) ([]*entity.SubPeriod, error) {
	subs, err := s.repo.ListSubPeriods(ctx, period.ID)
	if err != nil {
		return nil, fmt.Errorf("list sub-periods: %w", err)
	}
	out := make([]*entity.SubPeriod, 0, targetOrder)
	for _, sub := range subs {
		if sub.Order <= targetOrder {
			out = append(out, sub)
		}
	}
	return out, nil
}

// MarkOpened sets the ReportOpened flag.
func (s *Service) MarkOpened(ctx context.Context, sub *entity.SubPeriod) error {
	sub.ReportOpened = true
	if err := s.repo.UpdateSubPeriodFlags(ctx, sub); err != nil {
		return fmt.Errorf("mark sub-period opened: %w", err)
	}
	return nil
}

// MarkPeriodicClosed sets the PeriodicClosed flag.
func (s *Service) MarkPeriodicClosed(ctx context.Context, sub *entity.SubPeriod) error {
	sub.PeriodicClosed = true
	if err := s.repo.UpdateSubPeriodFlags(ctx, sub); err != nil {
		return fmt.Errorf("mark sub-period closed: %w", err)
	}
	return nil
}
