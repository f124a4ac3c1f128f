// Package calendar provides the fiscal period calendar: Period (year) and
// SubPeriod (month) records per tenant/company, and resolution of document
// dates to their owning sub-period.
package calendar

import (
	"context"
	"time"

	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
)

// Repository defines persistence for the fiscal calendar.
type Repository interface {
	// CreatePeriod inserts a fiscal year with its twelve sub-periods.
	CreatePeriod(ctx context.Context, period *entity.Period, subs []*entity.SubPeriod) error

	// GetPeriodByDate finds the fiscal year containing the date, or nil.
	GetPeriodByDate(ctx context.Context, scope tenant.Scope, date time.Time) (*entity.Period, error)

	// GetPeriodByYear finds a fiscal year by number, or nil.
	GetPeriodByYear(ctx context.Context, scope tenant.Scope, fiscalYear int) (*entity.Period, error)

	// GetSubPeriod finds the month bucket of a period containing the date, or nil.
	GetSubPeriod(ctx context.Context, periodID id.ID, date time.Time) (*entity.SubPeriod, error)

	// GetSubPeriodByOrder finds a month bucket by its order 1..12, or nil.
	GetSubPeriodByOrder(ctx context.Context, periodID id.ID, order int) (*entity.SubPeriod, error)

	// GetSubPeriodByID finds a month bucket by its ID, or nil.
	GetSubPeriodByID(ctx context.Context, subPeriodID id.ID) (*entity.SubPeriod, error)

	// ListSubPeriods returns all sub-periods of a period ordered by month.
	ListSubPeriods(ctx context.Context, periodID id.ID) ([]*entity.SubPeriod, error)

	// UpdateSubPeriodFlags persists the ReportOpened/PeriodicClosed flags.
	UpdateSubPeriodFlags(ctx context.Context, sub *entity.SubPeriod) error

	// SetCurrentPeriod moves the current-period pointer.
	SetCurrentPeriod(ctx context.Context, scope tenant.Scope, periodID id.ID) error
}
