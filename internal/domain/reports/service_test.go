package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valora/internal/core/id"
	"valora/internal/core/tenant"
)

type spyRepo struct {
	stockCardFilter StockCardFilter
	valuationFilter ValuationFilter
	turnoverFilter  StockTurnoverReportFilter
	journalFilter   DocumentJournalFilter

	summaryCalls int
}

func (r *spyRepo) GetStockCard(_ context.Context, _ tenant.Scope, filter StockCardFilter) (*StockCard, error) {
	r.stockCardFilter = filter
	return &StockCard{}, nil
}

func (r *spyRepo) GetValuationSummary(_ context.Context, _ tenant.Scope, filter ValuationFilter) (*ValuationSummary, error) {
	r.valuationFilter = filter
	return &ValuationSummary{}, nil
}

func (r *spyRepo) GetStockTurnoverReport(_ context.Context, _ tenant.Scope, filter StockTurnoverReportFilter) (*StockTurnoverReport, error) {
	r.turnoverFilter = filter
	return &StockTurnoverReport{}, nil
}

func (r *spyRepo) GetDocumentJournal(_ context.Context, _ tenant.Scope, filter DocumentJournalFilter) (*DocumentJournal, error) {
	r.journalFilter = filter
	return &DocumentJournal{}, nil
}

func (r *spyRepo) GetDocumentTypeSummary(context.Context, tenant.Scope, DocumentJournalFilter) ([]DocumentTypeSummary, error) {
	r.summaryCalls++
	return []DocumentTypeSummary{{DocumentType: "GoodsReceipt"}}, nil
}

func testScope() tenant.Scope {
	return tenant.NewScope(id.New(), id.New())
}

func TestGetStockCard_Validation(t *testing.T) {
	svc := NewService(&spyRepo{})
	ctx := context.Background()
	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.GetStockCard(ctx, tenant.Scope{}, StockCardFilter{ProductID: id.New()})
	assert.Error(t, err, "scope required")

	_, err = svc.GetStockCard(ctx, testScope(), StockCardFilter{})
	assert.ErrorContains(t, err, "product is required")

	_, err = svc.GetStockCard(ctx, testScope(), StockCardFilter{
		ProductID: id.New(),
		FromDate:  &from,
		ToDate:    &to,
	})
	assert.ErrorContains(t, err, "fromDate must be before toDate")
}

func TestGetStockCard_ClampsPagination(t *testing.T) {
	repo := &spyRepo{}
	svc := NewService(repo)

	_, err := svc.GetStockCard(context.Background(), testScope(), StockCardFilter{ProductID: id.New()})
	require.NoError(t, err)
	assert.Equal(t, 100, repo.stockCardFilter.Limit, "default limit")

	_, err = svc.GetStockCard(context.Background(), testScope(), StockCardFilter{ProductID: id.New(), Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, 1000, repo.stockCardFilter.Limit, "capped limit")
}

func TestGetValuationSummary_RequiresSubPeriod(t *testing.T) {
	svc := NewService(&spyRepo{})

	_, err := svc.GetValuationSummary(context.Background(), testScope(), ValuationFilter{})

	assert.ErrorContains(t, err, "sub-period is required")
}

func TestGetStockTurnover_RequiresRange(t *testing.T) {
	svc := NewService(&spyRepo{})
	ctx := context.Background()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	_, err := svc.GetStockTurnover(ctx, testScope(), StockTurnoverReportFilter{FromDate: from})
	assert.ErrorContains(t, err, "fromDate and toDate are required")

	_, err = svc.GetStockTurnover(ctx, testScope(), StockTurnoverReportFilter{FromDate: to, ToDate: from})
	assert.ErrorContains(t, err, "fromDate must be before toDate")

	_, err = svc.GetStockTurnover(ctx, testScope(), StockTurnoverReportFilter{FromDate: from, ToDate: to})
	assert.NoError(t, err)
}

func TestGetDocumentJournal_Defaults(t *testing.T) {
	repo := &spyRepo{}
	svc := NewService(repo)

	journal, err := svc.GetDocumentJournal(context.Background(), testScope(), DocumentJournalFilter{})

	require.NoError(t, err)
	assert.Equal(t, "date", repo.journalFilter.SortBy)
	assert.Equal(t, "desc", repo.journalFilter.SortOrder)
	assert.Equal(t, 50, repo.journalFilter.Limit)
	assert.Equal(t, 1, repo.summaryCalls, "summary on the first page")
	require.Len(t, journal.Summary, 1)
}

func TestGetDocumentJournal_NoSummaryOnLaterPages(t *testing.T) {
	repo := &spyRepo{}
	svc := NewService(repo)

	journal, err := svc.GetDocumentJournal(context.Background(), testScope(), DocumentJournalFilter{Offset: 50})

	require.NoError(t, err)
	assert.Zero(t, repo.summaryCalls)
	assert.Empty(t, journal.Summary)
}
