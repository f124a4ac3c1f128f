package calendar

import (
	"context"
	"time"

	"valora/internal/core/apperror"
	"valora/internal/core/security"
	"valora/internal/core/tenant"
)

// ClosedPeriodPolicy blocks posting and unposting into months whose
// periodic close has already run. Closed months have authoritative ending
// balances; a late write would silently invalidate them.
//
// The company scope is read from context. Calls without a scope (tooling,
// unscoped tests) pass the check and fail later in the ledger if at all.
type ClosedPeriodPolicy struct {
	repo Repository
}

// NewClosedPeriodPolicy creates a policy backed by the fiscal calendar.
func NewClosedPeriodPolicy(repo Repository) *ClosedPeriodPolicy {
	return &ClosedPeriodPolicy{repo: repo}
}

var _ security.PostingPolicy = (*ClosedPeriodPolicy)(nil)

func (p *ClosedPeriodPolicy) check(ctx context.Context, docDate time.Time) error {
	scope, err := tenant.GetScope(ctx)
	if err != nil {
		return nil
	}

	period, err := p.repo.GetPeriodByDate(ctx, scope, docDate)
	if err != nil || period == nil {
		// A missing period is the ledger's problem, not the policy's.
		return nil
	}
	sub, err := p.repo.GetSubPeriod(ctx, period.ID, docDate)
	if err != nil || sub == nil {
		return nil
	}
	if sub.PeriodicClosed {
		return apperror.NewPeriodClosed(docDate.Format("2006-01"))
	}
	return nil
}

// CanPost implements security.PostingPolicy.
func (p *ClosedPeriodPolicy) CanPost(ctx context.Context, docDate time.Time) error {
	return p.check(ctx, docDate)
}

// CanModify implements security.PostingPolicy.
func (p *ClosedPeriodPolicy) CanModify(ctx context.Context, docDate time.Time) error {
	return p.check(ctx, docDate)
}

// CanUnpost implements security.PostingPolicy.
func (p *ClosedPeriodPolicy) CanUnpost(ctx context.Context, docDate time.Time) error {
	return p.check(ctx, docDate)
}

// GetClosedPeriod implements security.PostingPolicy. The closed boundary is
// per company and month-granular here, so no single date represents it.
func (p *ClosedPeriodPolicy) GetClosedPeriod(ctx context.Context) time.Time {
	return time.Time{}
}
