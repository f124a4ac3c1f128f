package ledger

import (
	"context"
	"fmt"

	"valora/internal/core/apperror"
	"valora/internal/core/entity"
	"valora/internal/core/tenant"
	"valora/internal/core/types"
	"valora/pkg/logger"
)

// CloseSubPeriod runs periodic month-end close for one sub-period: every
// entry's accumulated sums resolve into a periodic ending balance and the
// sub-period is marked closed. Running it twice is an error. The whole close
// is one transaction.
func (e *Engine) CloseSubPeriod(ctx context.Context, scope tenant.Scope, sub *entity.SubPeriod) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	txm, err := e.txm(ctx)
	if err != nil {
		return err
	}
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return e.closeSubPeriod(ctx, scope, sub)
	})
}

// closeSubPeriod is the transactional body of CloseSubPeriod, also invoked
// by the engine itself when a new fiscal year's first write finds the prior
// year's December still open.
func (e *Engine) closeSubPeriod(ctx context.Context, scope tenant.Scope, sub *entity.SubPeriod) error {
	if sub.PeriodicClosed {
		return apperror.NewPeriodicAlreadyClosed(fmt.Sprintf("%s (month %d)", sub.ID, sub.Order))
	}

	entries, err := e.store.ListEntriesBySubPeriod(ctx, scope, sub.PeriodID, sub.ID)
	if err != nil {
		return fmt.Errorf("list ledger entries for close: %w", err)
	}

	for _, entry := range entries {
		entry.SetPeriodicEnding(periodicEnding(entry))
		if err := e.store.UpdateEntry(ctx, entry); err != nil {
			return fmt.Errorf("persist periodic ending: %w", err)
		}
	}

	if err := e.calendar.MarkPeriodicClosed(ctx, sub); err != nil {
		return err
	}

	logger.Info(ctx, "ledger: periodic close completed",
		"sub_period_id", sub.ID,
		"order", sub.Order,
		"entries", len(entries),
	)
	return nil
}

// periodicEnding resolves one entry's periodic ending balance from its
// accumulated sums. No input this month carries the opening balance forward
// unchanged. A non-positive computed quantity floors all three components at
// zero; negative inventory is never recorded.
func periodicEnding(entry *entity.CostLedgerEntry) entity.Balance {
	if !entry.SumInputQuantity.IsPositive() {
		return entry.Opening()
	}

	qty := entry.SumInputQuantity - entry.SumOutputQuantity
	if !qty.IsPositive() {
		return entity.ZeroBalance()
	}
	cost := types.AverageCost(entry.SumInputValue, entry.SumInputQuantity)
	return entity.Balance{
		Quantity: qty,
		Cost:     cost,
		Value:    types.CostValue(cost, qty),
	}
}

// autoCloseCarriedMonth lazily finalizes the previous fiscal year's December
// when the first write of a new year arrives before anyone ran month-end
// close. Without this the January roll-forward would copy an unresolved
// periodic balance.
func (e *Engine) autoCloseCarriedMonth(ctx context.Context, scope tenant.Scope, period *entity.Period, sub *entity.SubPeriod) error {
	firsts, err := e.calendar.SubPeriodsThrough(ctx, period, 1)
	if err != nil || len(firsts) == 0 {
		return err
	}
	prev, err := e.calendar.Previous(ctx, scope, period, firsts[0])
	if err != nil {
		return err
	}
	if prev == nil || !prev.ReportOpened || prev.PeriodicClosed {
		return nil
	}
	logger.Info(ctx, "ledger: auto-closing carried December", "sub_period_id", prev.ID)
	return e.closeSubPeriod(ctx, scope, prev)
}
