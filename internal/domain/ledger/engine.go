package ledger

import (
	"context"
	"fmt"
	"time"

	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/tx"
	"valora/internal/core/types"
	"valora/internal/domain/calendar"
	"valora/pkg/logger"
)

// Engine is the single write path into the stock ledger. Documents hand it a
// batch of movement records on posting; it resolves the fiscal sub-period,
// opens intermediate sub-periods by rolling balances forward, computes the
// authoritative cost of every movement under the company's valuation policy
// and appends one immutable StockLog row per movement, all inside one
// transaction. Any failure aborts the whole batch and propagates to the
// caller, which must treat it as a posting failure.
type Engine struct {
	store    Store
	calendar *calendar.Service
	settings SettingsProvider
	serials  SerialCostStore
	tx       tx.Manager
}

// NewEngine wires the engine. serials may be nil when no product uses
// specific identification. txManager may be nil, in which case it is
// resolved from context per call (DB-per-tenant).
func NewEngine(store Store, cal *calendar.Service, settings SettingsProvider, serials SerialCostStore, txManager tx.Manager) *Engine {
	return &Engine{
		store:    store,
		calendar: cal,
		settings: settings,
		serials:  serials,
		tx:       txManager,
	}
}

func (e *Engine) txm(ctx context.Context) (tx.Manager, error) {
	if e.tx != nil {
		return e.tx, nil
	}
	return tenant.GetTxManager(ctx)
}

// LogOptions tweaks how a batch is recorded.
type LogOptions struct {
	// BalanceInit marks the batch as an opening balance initialization: the
	// resulting ledger entries are flagged as the manual opening state and
	// their opening balance is set to the initialized amounts.
	BalanceInit bool
}

// Log records a batch of stock movements against the ledger and returns the
// created log rows in input order.
//
// A missing document reference, a zero document date or an empty batch is a
// no-op: (nil, nil). Everything else is validated up front and any error,
// including an unresolvable fiscal period, fails the batch.
func (e *Engine) Log(ctx context.Context, scope tenant.Scope, doc DocumentRef, docDate time.Time, movements []entity.MovementRecord, opts LogOptions) ([]*entity.StockLog, error) {
	if doc.IsZero() || docDate.IsZero() || len(movements) == 0 {
		logger.Debug(ctx, "ledger: nothing to log", "document_id", doc.ID, "movements", len(movements))
		return nil, nil
	}
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	for i := range movements {
		if err := movements[i].Validate(); err != nil {
			return nil, fmt.Errorf("movement %d: %w", i, err)
		}
	}

	cfg, err := e.settings.CostConfig(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("resolve cost config: %w", err)
	}

	txm, err := e.txm(ctx)
	if err != nil {
		return nil, err
	}

	var created []*entity.StockLog
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		period, err := e.calendar.ResolvePeriod(ctx, scope, docDate)
		if err != nil {
			return err
		}
		sub, err := e.calendar.ResolveSubPeriod(ctx, period, docDate)
		if err != nil {
			return err
		}

		if cfg.Policy == entity.ValuationPeriodic {
			if err := e.autoCloseCarriedMonth(ctx, scope, period, sub); err != nil {
				return err
			}
		}

		if err := e.openSubPeriodsThrough(ctx, scope, cfg, period, sub); err != nil {
			return err
		}

		created, err = e.applyMovements(ctx, scope, cfg, doc, period, sub, movements, opts)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "ledger: movements recorded",
		"document_id", doc.ID,
		"document_type", doc.Type,
		"count", len(created),
		"policy", cfg.Policy,
	)
	return created, nil
}

// Reverse writes offsetting log rows for every row the document recorded:
// inbound rows reverse as outbound at the running cost, outbound rows
// reverse as inbound at the cost they were issued at. Returns the reversal
// rows; a document with no recorded rows reverses to nothing.
func (e *Engine) Reverse(ctx context.Context, scope tenant.Scope, doc DocumentRef, docDate time.Time) ([]*entity.StockLog, error) {
	if doc.IsZero() {
		return nil, nil
	}
	original, err := e.store.ListLogs(ctx, scope, LogFilter{TransID: &doc.ID})
	if err != nil {
		return nil, fmt.Errorf("list document logs: %w", err)
	}
	if len(original) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	movements := make([]entity.MovementRecord, 0, len(original))
	for _, l := range original {
		m := entity.MovementRecord{
			ProductID:   l.ProductID,
			WarehouseID: l.WarehouseID,
			Trace:       l.Trace,
			Lot:         l.Lot,
			Serial:      l.Serial,
			ProjectID:   l.ProjectID,
			SaleOrderID: l.SaleOrderID,

			SpecificIdentification: l.SpecificIdentification,

			SystemDate:   now,
			PostingDate:  now,
			DocumentDate: l.DocumentDate,

			TransID:    doc.ID,
			TransCode:  doc.Code,
			TransTitle: doc.Title,

			Quantity: l.Quantity,
			Cost:     types.Zero(),
			Value:    types.Zero(),
		}
		switch l.StockType {
		case entity.StockTypeIn:
			m.StockType = entity.StockTypeOut
		case entity.StockTypeOut:
			m.StockType = entity.StockTypeIn
			m.Cost = l.Cost
			m.Value = l.Value
		}
		movements = append(movements, m)
	}
	return e.Log(ctx, scope, doc, docDate, movements, LogOptions{})
}

// openSubPeriodsThrough walks sub-periods of the period in order up to and
// including the target, rolling balances forward into each one not yet
// opened. A sub-period whose predecessor was itself never opened stops the
// walk; the very first sub-period ever written to simply opens from zero.
func (e *Engine) openSubPeriodsThrough(ctx context.Context, scope tenant.Scope, cfg entity.CostConfig, period *entity.Period, target *entity.SubPeriod) (err error) {
	subs, err := e.calendar.SubPeriodsThrough(ctx, period, target.Order)
	if err != nil {
		return err
	}
	for _, sub := range subs {
		if sub.ReportOpened {
			continue
		}
		prev, err := e.calendar.Previous(ctx, scope, period, sub)
		if err != nil {
			return err
		}
		if prev == nil {
			// no earlier sub-period exists at all; open from zero
			if err := e.calendar.MarkOpened(ctx, sub); err != nil {
				return err
			}
			continue
		}
		if !prev.ReportOpened {
			logger.Warn(ctx, "ledger: predecessor sub-period never opened, stopping roll-forward",
				"sub_period_id", sub.ID, "order", sub.Order)
			break
		}
		// under periodic valuation the source month must be closed first,
		// otherwise its periodic ending is still zero and the opening
		// balance would be lost
		if cfg.Policy == entity.ValuationPeriodic && !prev.PeriodicClosed {
			logger.Info(ctx, "ledger: auto-closing predecessor before roll-forward",
				"sub_period_id", prev.ID, "order", prev.Order)
			if err := e.closeSubPeriod(ctx, scope, prev); err != nil {
				return err
			}
		}
		if err := e.store.RollForward(ctx, scope, prev, sub, cfg.Policy); err != nil {
			return fmt.Errorf("roll forward into sub-period %d: %w", sub.Order, err)
		}
		if err := e.calendar.MarkOpened(ctx, sub); err != nil {
			return err
		}
	}
	return nil
}

// keyState is the in-memory running balance of one ledger key during a
// batch fold. Movements on the same key within a batch chain through it
// rather than re-reading the log after every row.
type keyState struct {
	key     entity.LedgerKey
	entry   *entity.CostLedgerEntry
	balance entity.Balance
	isNew   bool

	// logs created under this key in the current batch; the warehouse
	// breakdown folds these and only these
	logs []*entity.StockLog
}

func (e *Engine) applyMovements(ctx context.Context, scope tenant.Scope, cfg entity.CostConfig, doc DocumentRef, period *entity.Period, sub *entity.SubPeriod, movements []entity.MovementRecord, opts LogOptions) ([]*entity.StockLog, error) {
	states := make(map[string]*keyState)
	logs := make([]*entity.StockLog, 0, len(movements))
	now := time.Now().UTC()

	// opening balance batches always fold at full cost, even for companies
	// on periodic valuation, so the initialized state carries value
	foldCfg := cfg
	if opts.BalanceInit {
		foldCfg.Policy = entity.ValuationPerpetual
	}

	prevCost := types.Zero()
	for i := range movements {
		m := &movements[i]
		if m.InheritCost {
			m.Cost = prevCost
			m.Value = types.CostValue(prevCost, m.Quantity)
		}
		key := cfg.KeyFor(m)
		ks := key.String()

		st, ok := states[ks]
		if !ok {
			var err error
			st, err = e.loadState(ctx, scope, key, period, sub)
			if err != nil {
				return nil, err
			}
			states[ks] = st
		}

		cost, value, next, err := e.fold(ctx, scope, foldCfg, st, m)
		if err != nil {
			return nil, err
		}
		st.balance = next
		prevCost = cost

		if cfg.Policy == entity.ValuationPeriodic && !opts.BalanceInit {
			inputValue := m.Value
			if m.StockType == entity.StockTypeIn && inputValue.IsZero() && !m.Cost.IsZero() {
				inputValue = types.CostValue(m.Cost, m.Quantity)
			}
			st.entry.Accumulate(m.StockType, m.Quantity, inputValue)
		} else {
			st.entry.SetEnding(next)
		}

		log := &entity.StockLog{
			ID:          id.New(),
			Scope:       scope,
			PeriodID:    period.ID,
			SubPeriodID: sub.ID,

			ProductID:   m.ProductID,
			WarehouseID: m.WarehouseID,
			ProjectID:   m.ProjectID,
			SaleOrderID: m.SaleOrderID,

			Trace:  m.Trace,
			Lot:    m.Lot,
			Serial: m.Serial,

			SpecificIdentification: m.SpecificIdentification,

			SystemDate:   now,
			PostingDate:  m.PostingDate,
			DocumentDate: m.DocumentDate,

			StockType: m.StockType,

			TransID:    doc.ID,
			TransCode:  doc.Code,
			TransTitle: doc.Title,

			Quantity: m.Quantity,
			Cost:     cost,
			Value:    value,

			CurrentQuantity: next.Quantity,
			CurrentCost:     next.Cost,
			CurrentValue:    next.Value,

			CreatedAt: now,
		}
		logs = append(logs, log)
		st.logs = append(st.logs, log)
	}

	if opts.BalanceInit {
		for _, st := range states {
			st.entry.ForBalance = true
			st.entry.OpeningQuantity = st.entry.EndingQuantity
			st.entry.OpeningCost = st.entry.EndingCost
			st.entry.OpeningValue = st.entry.EndingValue
		}
	}

	if err := e.store.CreateLogs(ctx, logs); err != nil {
		return nil, fmt.Errorf("append stock logs: %w", err)
	}
	for _, st := range states {
		var err error
		if st.isNew {
			err = e.store.CreateEntry(ctx, st.entry)
		} else {
			err = e.store.UpdateEntry(ctx, st.entry)
		}
		if err != nil {
			return nil, fmt.Errorf("persist ledger entry: %w", err)
		}
		if err := e.maintainWarehouseBreakdown(ctx, cfg, st); err != nil {
			return nil, err
		}
	}
	return logs, nil
}

// loadState locks the key's entry for the current sub-period, creating it
// lazily when the key first moves this month, and seeds the running balance
// from the most recent log row or the entry's opening.
func (e *Engine) loadState(ctx context.Context, scope tenant.Scope, key entity.LedgerKey, period *entity.Period, sub *entity.SubPeriod) (*keyState, error) {
	entry, err := e.store.GetEntryForUpdate(ctx, scope, key, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("lock ledger entry: %w", err)
	}

	st := &keyState{key: key}
	if entry == nil {
		opening, err := e.openingFor(ctx, scope, key)
		if err != nil {
			return nil, err
		}
		entry = entity.NewCostLedgerEntry(scope, key, period.ID, sub.ID, opening)
		st.isNew = true
	}
	st.entry = entry

	latest, err := e.store.GetLatestLog(ctx, scope, key)
	if err != nil {
		return nil, fmt.Errorf("read latest stock log: %w", err)
	}
	if latest != nil {
		st.balance = latest.Current()
	} else {
		st.balance = entry.Opening()
	}
	return st, nil
}

// openingFor resolves the opening balance for a key that has no entry in
// the current sub-period yet: the latest earlier entry's ending, else the
// manual opening balance, else zero.
func (e *Engine) openingFor(ctx context.Context, scope tenant.Scope, key entity.LedgerKey) (entity.Balance, error) {
	latest, err := e.store.GetLatestEntry(ctx, scope, key)
	if err != nil {
		return entity.Balance{}, fmt.Errorf("read latest ledger entry: %w", err)
	}
	if latest != nil {
		return latest.Ending(), nil
	}
	opening, err := e.store.GetOpeningBalance(ctx, scope, key)
	if err != nil {
		return entity.Balance{}, fmt.Errorf("read opening balance: %w", err)
	}
	return opening, nil
}

// fold computes the authoritative cost and value of one movement and the
// running balance after it. The movement's own Cost/Value are advisory for
// inbound rows and ignored for outbound rows under the perpetual policy.
func (e *Engine) fold(ctx context.Context, scope tenant.Scope, cfg entity.CostConfig, st *keyState, m *entity.MovementRecord) (cost, value types.Money, next entity.Balance, err error) {
	bal := st.balance

	if cfg.Policy == entity.ValuationPeriodic {
		// intra-month rows carry no cost; quantity still tracks
		next = entity.Balance{
			Quantity: bal.Quantity + types.Quantity(m.StockType.Sign())*m.Quantity,
			Cost:     types.Zero(),
			Value:    types.Zero(),
		}
		return types.Zero(), types.Zero(), next, nil
	}

	switch m.StockType {
	case entity.StockTypeIn:
		cost = m.Cost
		value = m.Value
		if value.IsZero() && !cost.IsZero() {
			value = types.CostValue(cost, m.Quantity)
		}
		if cost.IsZero() && !value.IsZero() {
			cost = types.AverageCost(value, m.Quantity)
		}
		if m.SpecificIdentification && e.serials != nil {
			if err := e.serials.Record(ctx, scope, m.ProductID, m.Serial.SerialID, cost); err != nil {
				return cost, value, next, fmt.Errorf("record serial cost: %w", err)
			}
		}
		newQty := bal.Quantity + m.Quantity
		newValue := bal.Value.Add(value)
		next = entity.Balance{
			Quantity: newQty,
			Cost:     types.AverageCost(newValue, newQty),
			Value:    newValue,
		}

	case entity.StockTypeOut:
		cost = bal.Cost
		if m.SpecificIdentification && bal.Quantity.IsZero() && e.serials != nil {
			recorded, ok, err := e.serials.Get(ctx, scope, m.Serial.SerialID)
			if err != nil {
				return cost, value, next, fmt.Errorf("resolve serial cost: %w", err)
			}
			if ok {
				cost = recorded
			}
		}
		value = types.CostValue(cost, m.Quantity)
		newQty := bal.Quantity - m.Quantity
		next = entity.Balance{
			Quantity: newQty,
			Cost:     bal.Cost,
			Value:    types.CostValue(bal.Cost, newQty),
		}
	}
	return cost, value, next, nil
}

// maintainWarehouseBreakdown folds the key's per-warehouse quantity and
// value deltas into breakdown rows when warehouses do not segregate cost
// themselves. Cost stays at the key level; the breakdown answers "how much
// of this balance sits in which warehouse". Only the logs written under
// this key count, so keys sharing a product keep separate breakdowns.
func (e *Engine) maintainWarehouseBreakdown(ctx context.Context, cfg entity.CostConfig, st *keyState) error {
	if cfg.ByWarehouse || cfg.Policy == entity.ValuationPeriodic {
		return nil
	}
	type delta struct {
		quantity types.Quantity
		value    types.Money
	}
	deltas := make(map[id.ID]*delta)
	for _, l := range st.logs {
		d, ok := deltas[l.WarehouseID]
		if !ok {
			d = &delta{value: types.Zero()}
			deltas[l.WarehouseID] = d
		}
		sign := types.Quantity(l.StockType.Sign())
		d.quantity += sign * l.Quantity
		if l.StockType == entity.StockTypeIn {
			d.value = d.value.Add(l.Value)
		} else {
			d.value = d.value.Sub(l.Value)
		}
	}
	for warehouseID, d := range deltas {
		if err := e.store.AccumulateWarehouseEntry(ctx, st.entry.ID, warehouseID, d.quantity, d.value); err != nil {
			return fmt.Errorf("accumulate warehouse breakdown: %w", err)
		}
	}
	return nil
}
