package ledger

import (
	"context"
	"time"

	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/types"
	"valora/internal/domain/calendar"
)

// In-memory doubles for the engine's collaborators. No locking: the tests
// exercise single-goroutine behavior, concurrency belongs to the postgres
// store.

type memStore struct {
	entries    []*entity.CostLedgerEntry
	logs       []*entity.StockLog
	breakdowns []*entity.CostLedgerWarehouseEntry

	lockCalls int
}

func newMemStore() *memStore { return &memStore{} }

func matchLog(key entity.LedgerKey, l *entity.StockLog) bool {
	return key.MatchesLog(l)
}

func (s *memStore) GetEntry(_ context.Context, scope tenant.Scope, key entity.LedgerKey, subPeriodID id.ID) (*entity.CostLedgerEntry, error) {
	for _, e := range s.entries {
		if e.Scope.Equal(scope) && e.LedgerKey.Equal(key) && e.SubPeriodID == subPeriodID {
			return e, nil
		}
	}
	return nil, nil
}

func (s *memStore) GetEntryForUpdate(ctx context.Context, scope tenant.Scope, key entity.LedgerKey, subPeriodID id.ID) (*entity.CostLedgerEntry, error) {
	s.lockCalls++
	return s.GetEntry(ctx, scope, key, subPeriodID)
}

func (s *memStore) GetLatestEntry(_ context.Context, scope tenant.Scope, key entity.LedgerKey) (*entity.CostLedgerEntry, error) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.Scope.Equal(scope) && e.LedgerKey.Equal(key) {
			return e, nil
		}
	}
	return nil, nil
}

func (s *memStore) GetOpeningBalance(_ context.Context, scope tenant.Scope, key entity.LedgerKey) (entity.Balance, error) {
	for _, e := range s.entries {
		if e.Scope.Equal(scope) && e.LedgerKey.Equal(key) && e.ForBalance {
			return e.Opening(), nil
		}
	}
	return entity.ZeroBalance(), nil
}

func (s *memStore) CreateEntry(_ context.Context, entry *entity.CostLedgerEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memStore) UpdateEntry(_ context.Context, entry *entity.CostLedgerEntry) error {
	for i, e := range s.entries {
		if e.ID == entry.ID {
			s.entries[i] = entry
			return nil
		}
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memStore) ListEntriesBySubPeriod(_ context.Context, scope tenant.Scope, periodID, subPeriodID id.ID) ([]*entity.CostLedgerEntry, error) {
	var out []*entity.CostLedgerEntry
	for _, e := range s.entries {
		if e.Scope.Equal(scope) && e.PeriodID == periodID && e.SubPeriodID == subPeriodID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) RollForward(ctx context.Context, scope tenant.Scope, from, to *entity.SubPeriod, policy entity.ValuationPolicy) error {
	src, _ := s.ListEntriesBySubPeriod(ctx, scope, from.PeriodID, from.ID)
	for _, e := range src {
		existing, _ := s.GetEntry(ctx, scope, e.LedgerKey, to.ID)
		if existing != nil {
			continue
		}
		opening := e.Ending()
		if policy == entity.ValuationPeriodic {
			opening = e.PeriodicEnding()
		}
		s.entries = append(s.entries, entity.NewCostLedgerEntry(scope, e.LedgerKey, to.PeriodID, to.ID, opening))
	}
	return nil
}

func (s *memStore) AccumulateWarehouseEntry(_ context.Context, entryID, warehouseID id.ID, quantity types.Quantity, value types.Money) error {
	for _, b := range s.breakdowns {
		if b.EntryID == entryID && b.WarehouseID == warehouseID {
			b.EndingQuantity += quantity
			b.EndingValue = b.EndingValue.Add(value)
			return nil
		}
	}
	s.breakdowns = append(s.breakdowns, &entity.CostLedgerWarehouseEntry{
		ID:             id.New(),
		EntryID:        entryID,
		WarehouseID:    warehouseID,
		OpeningCost:    types.Zero(),
		OpeningValue:   types.Zero(),
		EndingQuantity: quantity,
		EndingCost:     types.Zero(),
		EndingValue:    value,
	})
	return nil
}

func (s *memStore) GetLatestLog(_ context.Context, scope tenant.Scope, key entity.LedgerKey) (*entity.StockLog, error) {
	for i := len(s.logs) - 1; i >= 0; i-- {
		l := s.logs[i]
		if l.Scope.Equal(scope) && matchLog(key, l) {
			return l, nil
		}
	}
	return nil, nil
}

func (s *memStore) CreateLogs(_ context.Context, logs []*entity.StockLog) error {
	s.logs = append(s.logs, logs...)
	return nil
}

func (s *memStore) ListLogs(_ context.Context, scope tenant.Scope, filter LogFilter) ([]*entity.StockLog, error) {
	var out []*entity.StockLog
	for _, l := range s.logs {
		if !l.Scope.Equal(scope) {
			continue
		}
		if filter.ProductID != nil && l.ProductID != *filter.ProductID {
			continue
		}
		if filter.TransID != nil && l.TransID != *filter.TransID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

var (
	_ Store               = (*memStore)(nil)
	_ calendar.Repository = (*memCalendar)(nil)
	_ SerialCostStore     = (*memSerials)(nil)
)

// memCalendar backs the calendar service for tests.
type memCalendar struct {
	periods []*entity.Period
	subs    map[id.ID][]*entity.SubPeriod
}

func newMemCalendar() *memCalendar {
	return &memCalendar{subs: make(map[id.ID][]*entity.SubPeriod)}
}

func (c *memCalendar) CreatePeriod(_ context.Context, period *entity.Period, subs []*entity.SubPeriod) error {
	c.periods = append(c.periods, period)
	c.subs[period.ID] = subs
	return nil
}

func (c *memCalendar) GetPeriodByDate(_ context.Context, scope tenant.Scope, date time.Time) (*entity.Period, error) {
	for _, p := range c.periods {
		if p.Scope.Equal(scope) && p.Contains(date) {
			return p, nil
		}
	}
	return nil, nil
}

func (c *memCalendar) GetPeriodByYear(_ context.Context, scope tenant.Scope, year int) (*entity.Period, error) {
	for _, p := range c.periods {
		if p.Scope.Equal(scope) && p.FiscalYear == year {
			return p, nil
		}
	}
	return nil, nil
}

func (c *memCalendar) GetSubPeriod(_ context.Context, periodID id.ID, date time.Time) (*entity.SubPeriod, error) {
	for _, s := range c.subs[periodID] {
		if s.Contains(date) {
			return s, nil
		}
	}
	return nil, nil
}

func (c *memCalendar) GetSubPeriodByOrder(_ context.Context, periodID id.ID, order int) (*entity.SubPeriod, error) {
	for _, s := range c.subs[periodID] {
		if s.Order == order {
			return s, nil
		}
	}
	return nil, nil
}

func (c *memCalendar) GetSubPeriodByID(_ context.Context, subPeriodID id.ID) (*entity.SubPeriod, error) {
	for _, subs := range c.subs {
		for _, s := range subs {
			if s.ID == subPeriodID {
				return s, nil
			}
		}
	}
	return nil, nil
}

func (c *memCalendar) ListSubPeriods(_ context.Context, periodID id.ID) ([]*entity.SubPeriod, error) {
	return c.subs[periodID], nil
}

func (c *memCalendar) UpdateSubPeriodFlags(_ context.Context, _ *entity.SubPeriod) error {
	// sub-periods are shared pointers in memory, flags already mutated
	return nil
}

func (c *memCalendar) SetCurrentPeriod(_ context.Context, _ tenant.Scope, _ id.ID) error {
	return nil
}

type staticSettings struct {
	cfg entity.CostConfig
}

func (s *staticSettings) CostConfig(_ context.Context, _ tenant.Scope) (entity.CostConfig, error) {
	return s.cfg, nil
}

type memSerials struct {
	costs map[id.ID]types.Money
}

func newMemSerials() *memSerials { return &memSerials{costs: make(map[id.ID]types.Money)} }

func (s *memSerials) Record(_ context.Context, _ tenant.Scope, _ id.ID, serialID id.ID, cost types.Money) error {
	s.costs[serialID] = cost
	return nil
}

func (s *memSerials) Get(_ context.Context, _ tenant.Scope, serialID id.ID) (types.Money, bool, error) {
	cost, ok := s.costs[serialID]
	return cost, ok, nil
}

// noopTx runs the function directly; atomicity is the postgres manager's job.
type noopTx struct{}

func (noopTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fixture wires an engine over the in-memory doubles with one fiscal year.
type fixture struct {
	t        interface{ Fatalf(string, ...any) }
	store    *memStore
	cal      *memCalendar
	calSvc   *calendar.Service
	settings *staticSettings
	serials  *memSerials
	engine   *Engine
	scope    tenant.Scope
}

func newFixture(t interface{ Fatalf(string, ...any) }, cfg entity.CostConfig, years ...int) *fixture {
	f := &fixture{
		t:        t,
		store:    newMemStore(),
		cal:      newMemCalendar(),
		settings: &staticSettings{cfg: cfg},
		serials:  newMemSerials(),
		scope:    tenant.NewScope(id.New(), id.New()),
	}
	f.calSvc = calendar.NewService(f.cal)
	f.engine = NewEngine(f.store, f.calSvc, f.settings, f.serials, noopTx{})

	ctx := context.Background()
	for _, y := range years {
		if _, err := f.calSvc.CreateFiscalYear(ctx, f.scope, y); err != nil {
			t.Fatalf("create fiscal year %d: %v", y, err)
		}
	}
	return f
}

func (f *fixture) subPeriod(year, month int) *entity.SubPeriod {
	ctx := context.Background()
	p, err := f.cal.GetPeriodByYear(ctx, f.scope, year)
	if err != nil || p == nil {
		f.t.Fatalf("period %d not found", year)
	}
	s, err := f.cal.GetSubPeriodByOrder(ctx, p.ID, month)
	if err != nil || s == nil {
		f.t.Fatalf("sub-period %d-%02d not found", year, month)
	}
	return s
}
