// Package ledger provides the inventory cost ledger: the append-only stock
// log, the per-sub-period cost ledger entries, and the engine that maintains
// both under the company's valuation policy.
package ledger

import (
	"context"

	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/types"
)

// Store defines persistence for cost ledger entries and stock log rows.
// The engine is the only writer; reports and handlers read through it.
type Store interface {
	// Entry operations

	// GetEntry returns the entry for a key in a specific sub-period, or nil.
	GetEntry(ctx context.Context, scope tenant.Scope, key entity.LedgerKey, subPeriodID id.ID) (*entity.CostLedgerEntry, error)

	// GetEntryForUpdate is GetEntry with a row lock. The engine locks the
	// current sub-period's entry before folding a batch so concurrent
	// postings against the same key serialize instead of racing on the
	// prior balance.
	GetEntryForUpdate(ctx context.Context, scope tenant.Scope, key entity.LedgerKey, subPeriodID id.ID) (*entity.CostLedgerEntry, error)

	// GetLatestEntry returns the most recent entry for a key across all
	// sub-periods, or nil. Used as the running balance source when no
	// explicit sub-period is given.
	GetLatestEntry(ctx context.Context, scope tenant.Scope, key entity.LedgerKey) (*entity.CostLedgerEntry, error)

	// GetOpeningBalance returns the balance of the entry flagged ForBalance
	// (the first, manually entered opening state) or zeros if none exists.
	GetOpeningBalance(ctx context.Context, scope tenant.Scope, key entity.LedgerKey) (entity.Balance, error)

	// CreateEntry inserts a new entry (at most one per key per sub-period).
	CreateEntry(ctx context.Context, entry *entity.CostLedgerEntry) error

	// UpdateEntry persists balance mutations on an existing entry.
	UpdateEntry(ctx context.Context, entry *entity.CostLedgerEntry) error

	// ListEntriesBySubPeriod returns all entries of one sub-period.
	ListEntriesBySubPeriod(ctx context.Context, scope tenant.Scope, periodID, subPeriodID id.ID) ([]*entity.CostLedgerEntry, error)

	// RollForward creates, for every key present in from and absent in to,
	// a new entry whose opening equals the source's ending (perpetual) or
	// periodic ending (periodic policy), ending initially equal to opening.
	// Per-warehouse breakdown rows are copied the same way. Idempotent:
	// keys already present in to are skipped.
	RollForward(ctx context.Context, scope tenant.Scope, from, to *entity.SubPeriod, policy entity.ValuationPolicy) error

	// Warehouse breakdown

	// AccumulateWarehouseEntry maintains the per-warehouse breakdown of an
	// entry whose cost segregation runs coarser than warehouse: the signed
	// quantity and value deltas are added to the warehouse's ending balance,
	// creating the row with zero opening when it does not exist yet.
	AccumulateWarehouseEntry(ctx context.Context, entryID, warehouseID id.ID, quantity types.Quantity, value types.Money) error

	// Stock log operations

	// GetLatestLog returns the most recent log row for a key in this or any
	// earlier sub-period, or nil.
	GetLatestLog(ctx context.Context, scope tenant.Scope, key entity.LedgerKey) (*entity.StockLog, error)

	// CreateLogs appends log rows in input order. Rows are immutable once
	// written.
	CreateLogs(ctx context.Context, logs []*entity.StockLog) error

	// ListLogs returns log rows for reporting.
	ListLogs(ctx context.Context, scope tenant.Scope, filter LogFilter) ([]*entity.StockLog, error)
}

// LogFilter narrows stock log queries.
type LogFilter struct {
	ProductID   *id.ID
	WarehouseID *id.ID
	TransID     *id.ID
	SubPeriodID *id.ID
	StockType   *entity.StockType
	Limit       int
	Offset      int
}

// SettingsProvider resolves the company's costing configuration.
// Implemented by the company catalog service.
type SettingsProvider interface {
	CostConfig(ctx context.Context, scope tenant.Scope) (entity.CostConfig, error)
}

// SerialCostStore records and resolves per-serial cost overrides for
// products valued by specific identification.
type SerialCostStore interface {
	// Record stores the acquisition cost of a serial at receipt.
	Record(ctx context.Context, scope tenant.Scope, productID, serialID id.ID, cost types.Money) error

	// Get returns the recorded cost for a serial, or false if none.
	Get(ctx context.Context, scope tenant.Scope, serialID id.ID) (types.Money, bool, error)
}

// DocumentRef is the denormalized identity of the source document a batch of
// movements originates from.
type DocumentRef struct {
	ID    id.ID
	Type  string
	Code  string
	Title string
}

// IsZero reports whether the reference is missing.
func (d DocumentRef) IsZero() bool { return id.IsNil(d.ID) }
