package entity

import (
	"context"
	"time"

	"valora/internal/core/apperror"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
)

// Period is a fiscal year for one tenant/company. Exactly one Period exists
// per (tenant, company, fiscal year); it is created by setup and read-only
// afterwards except the current-period pointer.
type Period struct {
	ID id.ID `db:"id" json:"id"`

	tenant.Scope

	// FiscalYear is the calendar year the period covers
	FiscalYear int `db:"fiscal_year" json:"fiscalYear"`

	// Current marks the period the company is operating in
	Current bool `db:"current" json:"current"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewPeriod creates a fiscal year period.
func NewPeriod(scope tenant.Scope, fiscalYear int) *Period {
	return &Period{
		ID:         id.New(),
		Scope:      scope,
		FiscalYear: fiscalYear,
		CreatedAt:  time.Now().UTC(),
	}
}

// Validate implements Validatable.
func (p *Period) Validate(ctx context.Context) error {
	if err := p.Scope.Validate(); err != nil {
		return apperror.NewValidation(err.Error())
	}
	if p.FiscalYear < 1900 || p.FiscalYear > 9999 {
		return apperror.NewValidation("fiscal year out of range").
			WithDetail("fiscalYear", p.FiscalYear)
	}
	return nil
}

// Contains reports whether the date falls inside the fiscal year.
func (p *Period) Contains(date time.Time) bool {
	return date.Year() == p.FiscalYear
}

// SubPeriod is one calendar month inside a Period, ordered 1..12.
// Balances are struck at sub-period granularity.
type SubPeriod struct {
	ID       id.ID `db:"id" json:"id"`
	PeriodID id.ID `db:"period_id" json:"periodId"`

	// Order is the month number within the fiscal year, unique per Period
	Order int `db:"ord" json:"order"`

	// StartDate is the first day of the month
	StartDate time.Time `db:"start_date" json:"startDate"`

	// ReportOpened is set once this month's ledger has been initialized:
	// opening balances rolled forward from the previous sub-period.
	ReportOpened bool `db:"report_opened" json:"reportOpened"`

	// PeriodicClosed is set once periodic month-end closing has run.
	PeriodicClosed bool `db:"periodic_closed" json:"periodicClosed"`
}

// NewSubPeriod creates a month bucket for a period.
func NewSubPeriod(periodID id.ID, order int, startDate time.Time) *SubPeriod {
	return &SubPeriod{
		ID:        id.New(),
		PeriodID:  periodID,
		Order:     order,
		StartDate: startDate,
	}
}

// Validate implements Validatable.
func (s *SubPeriod) Validate(ctx context.Context) error {
	if id.IsNil(s.PeriodID) {
		return apperror.NewValidation("period is required").
			WithDetail("field", "periodId")
	}
	if s.Order < 1 || s.Order > 12 {
		return apperror.NewValidation("sub-period order must be 1..12").
			WithDetail("order", s.Order)
	}
	if s.StartDate.IsZero() {
		return apperror.NewValidation("start date is required").
			WithDetail("field", "startDate")
	}
	return nil
}

// Contains reports whether the date falls inside this month.
func (s *SubPeriod) Contains(date time.Time) bool {
	return date.Year() == s.StartDate.Year() && date.Month() == s.StartDate.Month()
}

// IsFirst reports whether this is the first month of the fiscal year.
func (s *SubPeriod) IsFirst() bool {
	return s.Order == 1
}
