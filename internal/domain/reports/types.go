// Package reports provides report generation services over the stock ledger.
package reports

import (
	"time"

	"valora/internal/core/id"
	"valora/internal/core/types"
)

// --- Stock Card ---

// StockCardFilter defines the filter for a product's stock card.
type StockCardFilter struct {
	// ProductID is required
	ProductID id.ID

	// Optional dimension filters
	WarehouseID *id.ID
	ProjectID   *id.ID

	// Period
	FromDate *time.Time
	ToDate   *time.Time

	// Pagination
	Limit  int
	Offset int
}

// StockCardRow is one ledger movement with its running balance snapshot.
type StockCardRow struct {
	LogID        id.ID     `json:"logId"`
	PostingDate  time.Time `json:"postingDate"`
	DocumentDate time.Time `json:"documentDate"`

	DocumentType   string `json:"documentType"`
	DocumentNumber string `json:"documentNumber"`

	WarehouseID   id.ID  `json:"warehouseId"`
	WarehouseName string `json:"warehouseName,omitempty"`

	Direction string `json:"direction"` // "in" or "out"

	Quantity types.Quantity `json:"quantity"`
	Cost     types.Money    `json:"cost"`
	Value    types.Money    `json:"value"`

	// Running balance after this movement
	BalanceQuantity types.Quantity `json:"balanceQuantity"`
	BalanceCost     types.Money    `json:"balanceCost"`
	BalanceValue    types.Money    `json:"balanceValue"`
}

// StockCard is the movement history of one product.
type StockCard struct {
	ProductID   id.ID          `json:"productId"`
	ProductName string         `json:"productName,omitempty"`
	ProductSKU  string         `json:"productSku,omitempty"`
	Rows        []StockCardRow `json:"rows"`
	TotalRows   int            `json:"totalRows"`
}

// --- Valuation Summary ---

// ValuationFilter defines the filter for the inventory valuation summary.
type ValuationFilter struct {
	// SubPeriodID selects the fiscal month; zero value means the current one
	SubPeriodID id.ID

	// Filters
	WarehouseIDs []id.ID
	ProductIDs   []id.ID

	// Exclude rows whose ending quantity and value are zero
	ExcludeZero bool

	// Pagination
	Limit  int
	Offset int
}

// ValuationRow is the per-key balance of one sub-period.
type ValuationRow struct {
	ProductID   id.ID  `json:"productId"`
	ProductName string `json:"productName,omitempty"`
	ProductSKU  string `json:"productSku,omitempty"`

	WarehouseID   *id.ID `json:"warehouseId,omitempty"`
	WarehouseName string `json:"warehouseName,omitempty"`

	OpeningQuantity types.Quantity `json:"openingQuantity"`
	OpeningValue    types.Money    `json:"openingValue"`

	EndingQuantity types.Quantity `json:"endingQuantity"`
	EndingCost     types.Money    `json:"endingCost"`
	EndingValue    types.Money    `json:"endingValue"`
}

// ValuationSummary is the inventory valuation of one fiscal month.
type ValuationSummary struct {
	SubPeriodID id.ID          `json:"subPeriodId"`
	Rows        []ValuationRow `json:"rows"`
	TotalRows   int            `json:"totalRows"`

	TotalOpeningValue types.Money `json:"totalOpeningValue"`
	TotalEndingValue  types.Money `json:"totalEndingValue"`
}

// --- Stock Turnover Report ---

// StockTurnoverReportFilter defines filter for stock turnover report.
type StockTurnoverReportFilter struct {
	// Period (required)
	FromDate time.Time
	ToDate   time.Time

	// Filters
	WarehouseIDs []id.ID
	ProductIDs   []id.ID

	// Grouping
	GroupByWarehouse bool

	// Include zero rows
	IncludeZero bool

	// Pagination
	Limit  int
	Offset int
}

// StockTurnoverReportItem represents a single row in turnover report.
type StockTurnoverReportItem struct {
	WarehouseID   *id.ID `json:"warehouseId,omitempty"`
	WarehouseName string `json:"warehouseName,omitempty"`
	ProductID     id.ID  `json:"productId"`
	ProductName   string `json:"productName,omitempty"`
	ProductSKU    string `json:"productSku,omitempty"`

	OpeningQuantity types.Quantity `json:"openingQuantity"`
	OpeningValue    types.Money    `json:"openingValue"`

	ReceiptQuantity types.Quantity `json:"receiptQuantity"`
	ReceiptValue    types.Money    `json:"receiptValue"`

	ExpenseQuantity types.Quantity `json:"expenseQuantity"`
	ExpenseValue    types.Money    `json:"expenseValue"`

	ClosingQuantity types.Quantity `json:"closingQuantity"`
	ClosingValue    types.Money    `json:"closingValue"`
}

// StockTurnoverReport represents the full turnover report.
type StockTurnoverReport struct {
	FromDate   time.Time                 `json:"fromDate"`
	ToDate     time.Time                 `json:"toDate"`
	Items      []StockTurnoverReportItem `json:"items"`
	TotalItems int                       `json:"totalItems"`

	TotalReceiptValue types.Money `json:"totalReceiptValue"`
	TotalExpenseValue types.Money `json:"totalExpenseValue"`
}

// --- Document Journal ---

// DocumentJournalFilter defines filter for document journal.
type DocumentJournalFilter struct {
	// Period
	FromDate *time.Time
	ToDate   *time.Time

	// Document types filter
	DocumentTypes []string

	// Status filter
	Posted *bool

	// Search by number
	NumberContains string

	// Filters by references
	WarehouseIDs []id.ID

	// Sorting
	SortBy    string // "date", "number", "type"
	SortOrder string // "asc", "desc"

	// Pagination
	Limit  int
	Offset int
}

// DocumentJournalItem represents a document in the journal.
type DocumentJournalItem struct {
	ID           id.ID     `json:"id"`
	DocumentType string    `json:"documentType"`
	Number       string    `json:"number"`
	Date         time.Time `json:"date"`
	Posted       bool      `json:"posted"`

	// Warehouse info
	WarehouseID   *id.ID `json:"warehouseId,omitempty"`
	WarehouseName string `json:"warehouseName,omitempty"`

	// Amounts
	TotalQuantity types.Quantity `json:"totalQuantity"`
	TotalAmount   types.Money    `json:"totalAmount"`
	Currency      string         `json:"currency,omitempty"`

	DeletionMark bool      `json:"deletionMark"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DocumentJournal represents the document journal result.
type DocumentJournal struct {
	Items      []DocumentJournalItem `json:"items"`
	TotalCount int                   `json:"totalCount"`
	Limit      int                   `json:"limit"`
	Offset     int                   `json:"offset"`

	// Summary by document type
	Summary []DocumentTypeSummary `json:"summary,omitempty"`
}

// DocumentTypeSummary provides count and totals by document type.
type DocumentTypeSummary struct {
	DocumentType  string         `json:"documentType"`
	Count         int            `json:"count"`
	PostedCount   int            `json:"postedCount"`
	TotalQuantity types.Quantity `json:"totalQuantity"`
	TotalAmount   types.Money    `json:"totalAmount"`
}
