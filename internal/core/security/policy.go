package security

import (
	"context"
	"time"

	"valora/internal/core/apperror"
)

// PostingPolicy gates document posting against the fiscal calendar.
// Tenants choose how strict to be about backdated changes.
type PostingPolicy interface {
	CanPost(ctx context.Context, docDate time.Time) error
	CanModify(ctx context.Context, docDate time.Time) error
	CanUnpost(ctx context.Context, docDate time.Time) error

	// GetClosedPeriod returns the date before which the period is closed.
	GetClosedPeriod(ctx context.Context) time.Time
}

// closedPeriodError formats the period-closed error shared by the
// policies.
func closedPeriodError(closedUntil time.Time) error {
	return apperror.NewPeriodClosed(closedUntil.Format("2006-01"))
}

// StrictPolicy refuses every write into the closed period. Meant for
// tenants under regulatory compliance.
type StrictPolicy struct {
	closedUntil time.Time
}

func NewStrictPolicy(closedUntil time.Time) *StrictPolicy {
	return &StrictPolicy{closedUntil: closedUntil}
}

func (p *StrictPolicy) CanPost(ctx context.Context, docDate time.Time) error {
	if docDate.Before(p.closedUntil) {
		return closedPeriodError(p.closedUntil)
	}
	return nil
}

func (p *StrictPolicy) CanModify(ctx context.Context, docDate time.Time) error {
	return p.CanPost(ctx, docDate)
}

func (p *StrictPolicy) CanUnpost(ctx context.Context, docDate time.Time) error {
	return p.CanPost(ctx, docDate)
}

func (p *StrictPolicy) GetClosedPeriod(ctx context.Context) time.Time {
	return p.closedUntil
}

// FlexiblePolicy keeps a hard limit at the closed period but treats
// anything newer as allowed, flagging old dates through
// IsBackdatedWarning instead of rejecting them.
type FlexiblePolicy struct {
	warningThreshold time.Duration
	closedUntil      time.Time
}

func NewFlexiblePolicy(warningThreshold time.Duration, closedUntil time.Time) *FlexiblePolicy {
	return &FlexiblePolicy{
		warningThreshold: warningThreshold,
		closedUntil:      closedUntil,
	}
}

func (p *FlexiblePolicy) CanPost(ctx context.Context, docDate time.Time) error {
	if !p.closedUntil.IsZero() && docDate.Before(p.closedUntil) {
		return closedPeriodError(p.closedUntil)
	}
	return nil
}

func (p *FlexiblePolicy) CanModify(ctx context.Context, docDate time.Time) error {
	return p.CanPost(ctx, docDate)
}

func (p *FlexiblePolicy) CanUnpost(ctx context.Context, docDate time.Time) error {
	return p.CanPost(ctx, docDate)
}

func (p *FlexiblePolicy) GetClosedPeriod(ctx context.Context) time.Time {
	return p.closedUntil
}

// IsBackdatedWarning reports whether the date is old enough that the
// caller should log a warning.
func (p *FlexiblePolicy) IsBackdatedWarning(docDate time.Time) bool {
	return p.warningThreshold > 0 && time.Since(docDate) > p.warningThreshold
}

// OpenPolicy allows everything. Development and tests only.
type OpenPolicy struct{}

func (OpenPolicy) CanPost(ctx context.Context, docDate time.Time) error   { return nil }
func (OpenPolicy) CanModify(ctx context.Context, docDate time.Time) error { return nil }
func (OpenPolicy) CanUnpost(ctx context.Context, docDate time.Time) error { return nil }
func (OpenPolicy) GetClosedPeriod(ctx context.Context) time.Time          { return time.Time{} }
