package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valora/internal/core/apperror"
	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
)

type policyRepo struct {
	period *entity.Period
	sub    *entity.SubPeriod
	err    error
}

func (r *policyRepo) CreatePeriod(context.Context, *entity.Period, []*entity.SubPeriod) error {
	return nil
}

func (r *policyRepo) GetPeriodByDate(context.Context, tenant.Scope, time.Time) (*entity.Period, error) {
	return r.period, r.err
}

func (r *policyRepo) GetPeriodByYear(context.Context, tenant.Scope, int) (*entity.Period, error) {
	return r.period, r.err
}

func (r *policyRepo) GetSubPeriod(context.Context, id.ID, time.Time) (*entity.SubPeriod, error) {
	return r.sub, r.err
}

func (r *policyRepo) GetSubPeriodByOrder(context.Context, id.ID, int) (*entity.SubPeriod, error) {
	return r.sub, r.err
}

func (r *policyRepo) GetSubPeriodByID(context.Context, id.ID) (*entity.SubPeriod, error) {
	return r.sub, r.err
}

func (r *policyRepo) ListSubPeriods(context.Context, id.ID) ([]*entity.SubPeriod, error) {
	return nil, nil
}

func (r *policyRepo) UpdateSubPeriodFlags(context.Context, *entity.SubPeriod) error { return nil }

func (r *policyRepo) SetCurrentPeriod(context.Context, tenant.Scope, id.ID) error { return nil }

func scopedCtx() context.Context {
	return tenant.WithScope(context.Background(), tenant.NewScope(id.New(), id.New()))
}

func TestClosedPeriodPolicy_OpenMonthAllows(t *testing.T) {
	period := entity.NewPeriod(tenant.NewScope(id.New(), id.New()), 2026)
	p := NewClosedPeriodPolicy(&policyRepo{
		period: period,
		sub:    &entity.SubPeriod{ID: id.New(), PeriodID: period.ID, Order: 3},
	})
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, p.CanPost(scopedCtx(), date))
	assert.NoError(t, p.CanModify(scopedCtx(), date))
	assert.NoError(t, p.CanUnpost(scopedCtx(), date))
}

func TestClosedPeriodPolicy_ClosedMonthRejects(t *testing.T) {
	period := entity.NewPeriod(tenant.NewScope(id.New(), id.New()), 2026)
	p := NewClosedPeriodPolicy(&policyRepo{
		period: period,
		sub:    &entity.SubPeriod{ID: id.New(), PeriodID: period.ID, Order: 3, PeriodicClosed: true},
	})
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	err := p.CanPost(scopedCtx(), date)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodePeriodClosed, appErr.Code)
	assert.Contains(t, appErr.Message, "2026-03")

	assert.Error(t, p.CanUnpost(scopedCtx(), date))
}

func TestClosedPeriodPolicy_MissingScopeAllows(t *testing.T) {
	p := NewClosedPeriodPolicy(&policyRepo{
		sub: &entity.SubPeriod{ID: id.New(), PeriodicClosed: true},
	})

	err := p.CanPost(context.Background(), time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))

	assert.NoError(t, err)
}

func TestClosedPeriodPolicy_MissingCalendarAllows(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, NewClosedPeriodPolicy(&policyRepo{}).CanPost(scopedCtx(), date),
		"no fiscal year")
	assert.NoError(t, NewClosedPeriodPolicy(&policyRepo{err: errors.New("connection refused")}).CanPost(scopedCtx(), date),
		"repository failure")
}
