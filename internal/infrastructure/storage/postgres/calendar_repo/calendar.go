// Package calendar_repo provides the PostgreSQL implementation of the fiscal
// calendar repository. In Database-per-Tenant architecture, TxManager is
// obtained from context.
package calendar_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/domain/calendar"
	"valora/internal/infrastructure/storage/postgres"
)

const (
	periodsTable    = "cal_periods"
	subPeriodsTable = "cal_sub_periods"
)

// CalendarRepo implements calendar.Repository.
type CalendarRepo struct {
	builder squirrel.StatementBuilderType
}

// NewCalendarRepo creates a new fiscal calendar repository.
func NewCalendarRepo() *CalendarRepo {
	return &CalendarRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *CalendarRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

// CreatePeriod inserts a fiscal year with its twelve sub-periods.
func (r *CalendarRepo) CreatePeriod(ctx context.Context, period *entity.Period, subs []*entity.SubPeriod) error {
	q := r.builder.Insert(periodsTable).
		Columns("id", "tenant_id", "company_id", "fiscal_year", "current", "created_at").
		Values(period.ID, period.TenantID, period.CompanyID, period.FiscalYear, period.Current, period.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build period insert: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert period: %w", err)
	}

	if len(subs) == 0 {
		return nil
	}

	sq := r.builder.Insert(subPeriodsTable).
		Columns("id", "period_id", "ord", "start_date", "report_opened", "periodic_closed")
	for _, s := range subs {
		sq = sq.Values(s.ID, s.PeriodID, s.Order, s.StartDate, s.ReportOpened, s.PeriodicClosed)
	}

	sql, args, err = sq.ToSql()
	if err != nil {
		return fmt.Errorf("build sub-period insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sub-periods: %w", err)
	}

	return nil
}

// GetPeriodByDate finds the fiscal year containing the date, or nil.
func (r *CalendarRepo) GetPeriodByDate(ctx context.Context, scope tenant.Scope, date time.Time) (*entity.Period, error) {
	return r.getPeriod(ctx, squirrel.Eq{
		"tenant_id":   scope.TenantID,
		"company_id":  scope.CompanyID,
		"fiscal_year": date.Year(),
	})
}

// GetPeriodByYear finds a fiscal year by number, or nil.
func (r *CalendarRepo) GetPeriodByYear(ctx context.Context, scope tenant.Scope, fiscalYear int) (*entity.Period, error) {
	return r.getPeriod(ctx, squirrel.Eq{
		"tenant_id":   scope.TenantID,
		"company_id":  scope.CompanyID,
		"fiscal_year": fiscalYear,
	})
}

func (r *CalendarRepo) getPeriod(ctx context.Context, where squirrel.Eq) (*entity.Period, error) {
	q := r.builder.Select("id", "tenant_id", "company_id", "fiscal_year", "current", "created_at").
		From(periodsTable).
		Where(where).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var period entity.Period
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &period, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get period: %w", err)
	}
	return &period, nil
}

// GetSubPeriod finds the month bucket of a period containing the date, or nil.
func (r *CalendarRepo) GetSubPeriod(ctx context.Context, periodID id.ID, date time.Time) (*entity.SubPeriod, error) {
	return r.getSubPeriod(ctx, squirrel.Eq{
		"period_id": periodID,
		"ord":       int(date.Month()),
	})
}

// GetSubPeriodByOrder finds a month bucket by its order 1..12, or nil.
func (r *CalendarRepo) GetSubPeriodByOrder(ctx context.Context, periodID id.ID, order int) (*entity.SubPeriod, error) {
	return r.getSubPeriod(ctx, squirrel.Eq{
		"period_id": periodID,
		"ord":       order,
	})
}

// GetSubPeriodByID finds a month bucket by its ID, or nil.
func (r *CalendarRepo) GetSubPeriodByID(ctx context.Context, subPeriodID id.ID) (*entity.SubPeriod, error) {
	return r.getSubPeriod(ctx, squirrel.Eq{"id": subPeriodID})
}

func (r *CalendarRepo) getSubPeriod(ctx context.Context, where squirrel.Eq) (*entity.SubPeriod, error) {
	q := r.builder.Select("id", "period_id", "ord", "start_date", "report_opened", "periodic_closed").
		From(subPeriodsTable).
		Where(where).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sub entity.SubPeriod
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &sub, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sub-period: %w", err)
	}
	return &sub, nil
}

// ListSubPeriods returns all sub-periods of a period ordered by month.
func (r *CalendarRepo) ListSubPeriods(ctx context.Context, periodID id.ID) ([]*entity.SubPeriod, error) {
	q := r.builder.Select("id", "period_id", "ord", "start_date", "report_opened", "periodic_closed").
		From(subPeriodsTable).
		Where(squirrel.Eq{"period_id": periodID}).
		OrderBy("ord")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var subs []*entity.SubPeriod
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &subs, sql, args...); err != nil {
		return nil, fmt.Errorf("select sub-periods: %w", err)
	}
	return subs, nil
}

// UpdateSubPeriodFlags persists the ReportOpened/PeriodicClosed flags.
func (r *CalendarRepo) UpdateSubPeriodFlags(ctx context.Context, sub *entity.SubPeriod) error {
	q := r.builder.Update(subPeriodsTable).
		Set("report_opened", sub.ReportOpened).
		Set("periodic_closed", sub.PeriodicClosed).
		Where(squirrel.Eq{"id": sub.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update sub-period flags: %w", err)
	}
	return nil
}

// SetCurrentPeriod moves the current-period pointer.
func (r *CalendarRepo) SetCurrentPeriod(ctx context.Context, scope tenant.Scope, periodID id.ID) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	clear := r.builder.Update(periodsTable).
		Set("current", false).
		Where(squirrel.Eq{
			"tenant_id":  scope.TenantID,
			"company_id": scope.CompanyID,
		})
	sql, args, err := clear.ToSql()
	if err != nil {
		return fmt.Errorf("build clear: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("clear current period: %w", err)
	}

	set := r.builder.Update(periodsTable).
		Set("current", true).
		Where(squirrel.Eq{"id": periodID})
	sql, args, err = set.ToSql()
	if err != nil {
		return fmt.Errorf("build set: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("set current period: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ calendar.Repository = (*CalendarRepo)(nil)
