package reports

import (
	"context"

	"valora/internal/core/tenant"
)

// Repository defines report data access interface.
type Repository interface {
	// Ledger reports
	GetStockCard(ctx context.Context, scope tenant.Scope, filter StockCardFilter) (*StockCard, error)
	GetValuationSummary(ctx context.Context, scope tenant.Scope, filter ValuationFilter) (*ValuationSummary, error)
	GetStockTurnoverReport(ctx context.Context, scope tenant.Scope, filter StockTurnoverReportFilter) (*StockTurnoverReport, error)

	// Document journal
	GetDocumentJournal(ctx context.Context, scope tenant.Scope, filter DocumentJournalFilter) (*DocumentJournal, error)
	GetDocumentTypeSummary(ctx context.Context, scope tenant.Scope, filter DocumentJournalFilter) ([]DocumentTypeSummary, error)
}
