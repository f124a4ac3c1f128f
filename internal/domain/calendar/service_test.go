package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valora/internal/core/apperror"
	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
)

// memCalRepo is an in-memory calendar store for service tests.
type memCalRepo struct {
	periods []*entity.Period
	subs    map[id.ID][]*entity.SubPeriod
}

func newMemCalRepo() *memCalRepo {
	return &memCalRepo{subs: make(map[id.ID][]*entity.SubPeriod)}
}

func (r *memCalRepo) CreatePeriod(_ context.Context, period *entity.Period, subs []*entity.SubPeriod) error {
	r.periods = append(r.periods, period)
	r.subs[period.ID] = subs
	return nil
}

func (r *memCalRepo) GetPeriodByDate(_ context.Context, scope tenant.Scope, date time.Time) (*entity.Period, error) {
	for _, p := range r.periods {
		if p.Scope.Equal(scope) && p.FiscalYear == date.Year() {
			return p, nil
		}
	}
	return nil, nil
}

func (r *memCalRepo) GetPeriodByYear(_ context.Context, scope tenant.Scope, fiscalYear int) (*entity.Period, error) {
	for _, p := range r.periods {
		if p.Scope.Equal(scope) && p.FiscalYear == fiscalYear {
			return p, nil
		}
	}
	return nil, nil
}

func (r *memCalRepo) GetSubPeriod(_ context.Context, periodID id.ID, date time.Time) (*entity.SubPeriod, error) {
	for _, s := range r.subs[periodID] {
		if s.Order == int(date.Month()) {
			return s, nil
		}
	}
	return nil, nil
}

func (r *memCalRepo) GetSubPeriodByOrder(_ context.Context, periodID id.ID, order int) (*entity.SubPeriod, error) {
	for _, s := range r.subs[periodID] {
		if s.Order == order {
			return s, nil
		}
	}
	return nil, nil
}

func (r *memCalRepo) GetSubPeriodByID(_ context.Context, subPeriodID id.ID) (*entity.SubPeriod, error) {
	for _, subs := range r.subs {
		for _, s := range subs {
			if s.ID == subPeriodID {
				return s, nil
			}
		}
	}
	return nil, nil
}

func (r *memCalRepo) ListSubPeriods(_ context.Context, periodID id.ID) ([]*entity.SubPeriod, error) {
	return r.subs[periodID], nil
}

func (r *memCalRepo) UpdateSubPeriodFlags(context.Context, *entity.SubPeriod) error { return nil }

func (r *memCalRepo) SetCurrentPeriod(context.Context, tenant.Scope, id.ID) error { return nil }

func errCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func TestCreateFiscalYear(t *testing.T) {
	repo := newMemCalRepo()
	svc := NewService(repo)
	scope := tenant.NewScope(id.New(), id.New())
	ctx := context.Background()

	period, err := svc.CreateFiscalYear(ctx, scope, 2026)

	require.NoError(t, err)
	assert.Equal(t, 2026, period.FiscalYear)

	subs := repo.subs[period.ID]
	require.Len(t, subs, 12)
	for i, sub := range subs {
		assert.Equal(t, i+1, sub.Order)
		assert.Equal(t, time.Date(2026, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC), sub.StartDate)
		assert.False(t, sub.ReportOpened)
		assert.False(t, sub.PeriodicClosed)
	}
}

func TestCreateFiscalYear_DuplicateYear(t *testing.T) {
	svc := NewService(newMemCalRepo())
	scope := tenant.NewScope(id.New(), id.New())
	ctx := context.Background()

	_, err := svc.CreateFiscalYear(ctx, scope, 2026)
	require.NoError(t, err)

	_, err = svc.CreateFiscalYear(ctx, scope, 2026)
	assert.Equal(t, apperror.CodeDuplicate, errCode(t, err))
}

func TestCreateFiscalYear_InvalidScope(t *testing.T) {
	svc := NewService(newMemCalRepo())

	_, err := svc.CreateFiscalYear(context.Background(), tenant.Scope{}, 2026)

	assert.Error(t, err)
}

func TestResolvePeriod_NotFound(t *testing.T) {
	svc := NewService(newMemCalRepo())

	_, err := svc.ResolvePeriod(context.Background(), tenant.NewScope(id.New(), id.New()),
		time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, apperror.CodePeriodNotFound, errCode(t, err))
}

func TestPrevious(t *testing.T) {
	repo := newMemCalRepo()
	svc := NewService(repo)
	scope := tenant.NewScope(id.New(), id.New())
	ctx := context.Background()

	p2025, err := svc.CreateFiscalYear(ctx, scope, 2025)
	require.NoError(t, err)
	p2026, err := svc.CreateFiscalYear(ctx, scope, 2026)
	require.NoError(t, err)

	t.Run("within the year", func(t *testing.T) {
		march, err := repo.GetSubPeriodByOrder(ctx, p2026.ID, 3)
		require.NoError(t, err)

		prev, err := svc.Previous(ctx, scope, p2026, march)
		require.NoError(t, err)
		require.NotNil(t, prev)
		assert.Equal(t, 2, prev.Order)
		assert.Equal(t, p2026.ID, prev.PeriodID)
	})

	t.Run("across the year boundary", func(t *testing.T) {
		january, err := repo.GetSubPeriodByOrder(ctx, p2026.ID, 1)
		require.NoError(t, err)

		prev, err := svc.Previous(ctx, scope, p2026, january)
		require.NoError(t, err)
		require.NotNil(t, prev)
		assert.Equal(t, 12, prev.Order)
		assert.Equal(t, p2025.ID, prev.PeriodID)
	})

	t.Run("first sub-period ever", func(t *testing.T) {
		january, err := repo.GetSubPeriodByOrder(ctx, p2025.ID, 1)
		require.NoError(t, err)

		prev, err := svc.Previous(ctx, scope, p2025, january)
		require.NoError(t, err)
		assert.Nil(t, prev)
	})
}

func TestSubPeriodsThrough(t *testing.T) {
	repo := newMemCalRepo()
	svc := NewService(repo)
	scope := tenant.NewScope(id.New(), id.New())
	ctx := context.Background()

	period, err := svc.CreateFiscalYear(ctx, scope, 2026)
	require.NoError(t, err)

	subs, err := svc.SubPeriodsThrough(ctx, period, 4)

	require.NoError(t, err)
	require.Len(t, subs, 4)
	for i, sub := range subs {
		assert.Equal(t, i+1, sub.Order)
	}
}
