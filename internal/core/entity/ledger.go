package entity

import (
	"time"

	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/types"
)

// ValuationPolicy selects how a company costs its inventory.
type ValuationPolicy string

const (
	// ValuationPerpetual recomputes the weighted-average cost on every
	// inbound movement.
	ValuationPerpetual ValuationPolicy = "perpetual"
	// ValuationPeriodic accumulates quantities during the month and resolves
	// cost only at month-end close.
	ValuationPeriodic ValuationPolicy = "periodic"
)

// CostConfig is the company's costing configuration: which dimensions
// participate in cost segregation and which valuation policy applies.
type CostConfig struct {
	Policy ValuationPolicy `db:"valuation_policy" json:"valuationPolicy"`

	// Segregation dimensions. A disabled dimension is stripped from the
	// ledger key, so movements differing only in that dimension share one
	// running balance.
	ByWarehouse bool `db:"cost_by_warehouse" json:"costByWarehouse"`
	ByLot       bool `db:"cost_by_lot" json:"costByLot"`
	ByProject   bool `db:"cost_by_project" json:"costByProject"`
}

// DefaultCostConfig is perpetual weighted-average per warehouse.
func DefaultCostConfig() CostConfig {
	return CostConfig{
		Policy:      ValuationPerpetual,
		ByWarehouse: true,
	}
}

// LedgerKey identifies one running cost balance. Which optional dimensions
// are populated depends on the company's CostConfig and the product's
// traceability method.
type LedgerKey struct {
	ProductID   id.ID  `db:"product_id" json:"productId"`
	WarehouseID *id.ID `db:"warehouse_id" json:"warehouseId,omitempty"`
	LotID       *id.ID `db:"lot_id" json:"lotId,omitempty"`
	SerialID    *id.ID `db:"serial_id" json:"serialId,omitempty"`
	ProjectID   *id.ID `db:"project_id" json:"projectId,omitempty"`
}

// KeyFor builds the ledger key for a movement under this configuration.
// Serial sub-identity always segregates (a serial is a unit of one); lot,
// warehouse and project segregate only when the company opted in.
func (c CostConfig) KeyFor(m *MovementRecord) LedgerKey {
	key := LedgerKey{ProductID: m.ProductID}
	if c.ByWarehouse {
		wh := m.WarehouseID
		key.WarehouseID = &wh
	}
	if c.ByLot && m.Trace == TraceLot && m.Lot != nil {
		lot := m.Lot.LotID
		key.LotID = &lot
	}
	if m.Trace == TraceSerial && m.Serial != nil && m.SpecificIdentification {
		serial := m.Serial.SerialID
		key.SerialID = &serial
	}
	if c.ByProject && m.ProjectID != nil {
		project := *m.ProjectID
		key.ProjectID = &project
	}
	return key
}

// Equal compares two keys dimension by dimension.
func (k LedgerKey) Equal(other LedgerKey) bool {
	return k.ProductID == other.ProductID &&
		idPtrEqual(k.WarehouseID, other.WarehouseID) &&
		idPtrEqual(k.LotID, other.LotID) &&
		idPtrEqual(k.SerialID, other.SerialID) &&
		idPtrEqual(k.ProjectID, other.ProjectID)
}

// MatchesLog reports whether a stock log row belongs to this key. Set
// dimensions must match the log; absent dimensions match anything, so a
// product-only key matches every log for that product.
func (k LedgerKey) MatchesLog(l *StockLog) bool {
	if l.ProductID != k.ProductID {
		return false
	}
	if k.WarehouseID != nil && l.WarehouseID != *k.WarehouseID {
		return false
	}
	if k.LotID != nil && (l.Lot == nil || l.Lot.LotID != *k.LotID) {
		return false
	}
	if k.SerialID != nil && (l.Serial == nil || l.Serial.SerialID != *k.SerialID) {
		return false
	}
	if k.ProjectID != nil && (l.ProjectID == nil || *l.ProjectID != *k.ProjectID) {
		return false
	}
	return true
}

// String renders the key as a stable slash-joined form, suitable for map
// keys and log fields. Absent dimensions render as "-".
func (k LedgerKey) String() string {
	s := k.ProductID.String()
	for _, dim := range []*id.ID{k.WarehouseID, k.LotID, k.SerialID, k.ProjectID} {
		if dim != nil {
			s += "/" + dim.String()
		} else {
			s += "/-"
		}
	}
	return s
}

func idPtrEqual(a, b *id.ID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Balance is a (quantity, cost, value) triple - the unit every opening,
// ending and running snapshot is expressed in.
type Balance struct {
	Quantity types.Quantity `json:"quantity"`
	Cost     types.Money    `json:"cost"`
	Value    types.Money    `json:"value"`
}

// ZeroBalance returns the all-zero balance.
func ZeroBalance() Balance {
	return Balance{Cost: types.Zero(), Value: types.Zero()}
}

// IsZero reports whether all three components are zero.
func (b Balance) IsZero() bool {
	return b.Quantity.IsZero() && b.Cost.IsZero() && b.Value.IsZero()
}

// StockLog is one immutable row per atomic stock movement: the signed
// quantity, the authoritative unit cost and value, and a denormalized
// running balance snapshot as of write time. Rows are append-only - the
// ledger engine owns them exclusively and corrections are made via new
// offsetting entries, never edits.
type StockLog struct {
	ID id.ID `db:"id" json:"id"`

	tenant.Scope

	PeriodID    id.ID `db:"period_id" json:"periodId"`
	SubPeriodID id.ID `db:"sub_period_id" json:"subPeriodId"`

	ProductID   id.ID  `db:"product_id" json:"productId"`
	WarehouseID id.ID  `db:"warehouse_id" json:"warehouseId"`
	ProjectID   *id.ID `db:"project_id" json:"projectId,omitempty"`
	SaleOrderID *id.ID `db:"sale_order_id" json:"saleOrderId,omitempty"`

	Trace  TraceKind   `db:"trace_kind" json:"traceKind"`
	Lot    *LotData    `db:"-" json:"lot,omitempty"`
	Serial *SerialData `db:"-" json:"serial,omitempty"`

	// SpecificIdentification echoes the movement's valuation flag so a
	// reversal reconstructs the same ledger key
	SpecificIdentification bool `db:"specific_identification" json:"specificIdentification,omitempty"`

	SystemDate   time.Time `db:"system_date" json:"systemDate"`
	PostingDate  time.Time `db:"posting_date" json:"postingDate"`
	DocumentDate time.Time `db:"document_date" json:"documentDate"`

	StockType StockType `db:"stock_type" json:"stockType"`

	// Source document identity (denormalized, not a foreign key)
	TransID    id.ID  `db:"trans_id" json:"transId"`
	TransCode  string `db:"trans_code" json:"transCode"`
	TransTitle string `db:"trans_title" json:"transTitle"`

	Quantity types.Quantity `db:"quantity" json:"quantity"`
	Cost     types.Money    `db:"cost" json:"cost"`
	Value    types.Money    `db:"value" json:"value"`

	// Running balance for the movement's ledger key as of this row
	CurrentQuantity types.Quantity `db:"current_quantity" json:"currentQuantity"`
	CurrentCost     types.Money    `db:"current_cost" json:"currentCost"`
	CurrentValue    types.Money    `db:"current_value" json:"currentValue"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Current returns the running balance snapshot carried by the row.
func (l *StockLog) Current() Balance {
	return Balance{Quantity: l.CurrentQuantity, Cost: l.CurrentCost, Value: l.CurrentValue}
}

// CostLedgerEntry is the per-key, per-sub-period cost balance: at most one
// row per ledger key per sub-period. Opening values equal the previous
// sub-period's ending values once the month has been opened by roll-forward.
// Entries are created lazily on first movement and never deleted, only
// continued into the next sub-period.
type CostLedgerEntry struct {
	ID id.ID `db:"id" json:"id"`

	tenant.Scope
	LedgerKey

	PeriodID    id.ID `db:"period_id" json:"periodId"`
	SubPeriodID id.ID `db:"sub_period_id" json:"subPeriodId"`

	// ForBalance marks the very first, manually entered opening state
	ForBalance bool `db:"for_balance" json:"forBalance"`

	OpeningQuantity types.Quantity `db:"opening_quantity" json:"openingQuantity"`
	OpeningCost     types.Money    `db:"opening_cost" json:"openingCost"`
	OpeningValue    types.Money    `db:"opening_value" json:"openingValue"`

	// Perpetual running result
	EndingQuantity types.Quantity `db:"ending_quantity" json:"endingQuantity"`
	EndingCost     types.Money    `db:"ending_cost" json:"endingCost"`
	EndingValue    types.Money    `db:"ending_value" json:"endingValue"`

	// Periodic accumulation, resolved at month-end close
	SumInputQuantity  types.Quantity `db:"sum_input_quantity" json:"sumInputQuantity"`
	SumInputValue     types.Money    `db:"sum_input_value" json:"sumInputValue"`
	SumOutputQuantity types.Quantity `db:"sum_output_quantity" json:"sumOutputQuantity"`

	PeriodicEndingQuantity types.Quantity `db:"periodic_ending_quantity" json:"periodicEndingQuantity"`
	PeriodicEndingCost     types.Money    `db:"periodic_ending_cost" json:"periodicEndingCost"`
	PeriodicEndingValue    types.Money    `db:"periodic_ending_value" json:"periodicEndingValue"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewCostLedgerEntry creates an entry for a key in a sub-period with the
// given opening balance; ending starts equal to opening (no movement yet).
func NewCostLedgerEntry(scope tenant.Scope, key LedgerKey, periodID, subPeriodID id.ID, opening Balance) *CostLedgerEntry {
	now := time.Now().UTC()
	return &CostLedgerEntry{
		ID:          id.New(),
		Scope:       scope,
		LedgerKey:   key,
		PeriodID:    periodID,
		SubPeriodID: subPeriodID,

		OpeningQuantity: opening.Quantity,
		OpeningCost:     opening.Cost,
		OpeningValue:    opening.Value,

		EndingQuantity: opening.Quantity,
		EndingCost:     opening.Cost,
		EndingValue:    opening.Value,

		SumInputValue:          types.Zero(),
		PeriodicEndingCost:     types.Zero(),
		PeriodicEndingValue:    types.Zero(),
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}

// Opening returns the opening balance triple.
func (e *CostLedgerEntry) Opening() Balance {
	return Balance{Quantity: e.OpeningQuantity, Cost: e.OpeningCost, Value: e.OpeningValue}
}

// Ending returns the perpetual ending balance triple.
func (e *CostLedgerEntry) Ending() Balance {
	return Balance{Quantity: e.EndingQuantity, Cost: e.EndingCost, Value: e.EndingValue}
}

// PeriodicEnding returns the periodic ending balance triple.
func (e *CostLedgerEntry) PeriodicEnding() Balance {
	return Balance{Quantity: e.PeriodicEndingQuantity, Cost: e.PeriodicEndingCost, Value: e.PeriodicEndingValue}
}

// SetEnding overwrites the perpetual ending balance.
func (e *CostLedgerEntry) SetEnding(b Balance) {
	e.EndingQuantity = b.Quantity
	e.EndingCost = b.Cost
	e.EndingValue = b.Value
	e.UpdatedAt = time.Now().UTC()
}

// SetPeriodicEnding overwrites the periodic ending balance.
func (e *CostLedgerEntry) SetPeriodicEnding(b Balance) {
	e.PeriodicEndingQuantity = b.Quantity
	e.PeriodicEndingCost = b.Cost
	e.PeriodicEndingValue = b.Value
	e.UpdatedAt = time.Now().UTC()
}

// Accumulate adds one movement to the periodic sums.
func (e *CostLedgerEntry) Accumulate(stockType StockType, quantity types.Quantity, value types.Money) {
	if stockType == StockTypeIn {
		e.SumInputQuantity += quantity
		e.SumInputValue = e.SumInputValue.Add(value)
	} else {
		e.SumOutputQuantity += quantity
	}
	e.UpdatedAt = time.Now().UTC()
}

// CostLedgerWarehouseEntry is the per-warehouse breakdown of a ledger entry
// kept when cost segregation itself runs at a coarser grain. It mirrors the
// entry's balance columns for one warehouse.
type CostLedgerWarehouseEntry struct {
	ID      id.ID `db:"id" json:"id"`
	EntryID id.ID `db:"entry_id" json:"entryId"`

	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	OpeningQuantity types.Quantity `db:"opening_quantity" json:"openingQuantity"`
	OpeningCost     types.Money    `db:"opening_cost" json:"openingCost"`
	OpeningValue    types.Money    `db:"opening_value" json:"openingValue"`

	EndingQuantity types.Quantity `db:"ending_quantity" json:"endingQuantity"`
	EndingCost     types.Money    `db:"ending_cost" json:"endingCost"`
	EndingValue    types.Money    `db:"ending_value" json:"endingValue"`
}
