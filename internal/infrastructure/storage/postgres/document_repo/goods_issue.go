package document_repo

import (
	"context"

	"valora/internal/core/id"
	"valora/internal/domain"
	"valora/internal/domain/documents"
	"valora/internal/domain/documents/goods_issue"
	"valora/internal/infrastructure/storage/postgres"
)

const (
	goodsIssuesTable     = "doc_goods_issues"
	goodsIssueLinesTable = "doc_goods_issue_lines"
)

// GoodsIssueRepo implements goods_issue.Repository.
type GoodsIssueRepo struct {
	*BaseDocumentRepo[*goods_issue.GoodsIssue]
	lines stockLineStore
}

func NewGoodsIssueRepo() *GoodsIssueRepo {
	return &GoodsIssueRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*goods_issue.GoodsIssue](
			goodsIssuesTable,
			postgres.ExtractDBColumns[goods_issue.GoodsIssue](),
			func() *goods_issue.GoodsIssue { return &goods_issue.GoodsIssue{} },
		),
		lines: newStockLineStore(goodsIssueLinesTable),
	}
}

func (r *GoodsIssueRepo) GetLines(ctx context.Context, docID id.ID) ([]documents.StockLine, error) {
	return r.lines.Get(ctx, docID)
}

func (r *GoodsIssueRepo) SaveLines(ctx context.Context, docID id.ID, lines []documents.StockLine) error {
	return r.lines.Save(ctx, docID, lines)
}

// List retrieves goods issues matching the filter, newest first by
// default.
func (r *GoodsIssueRepo) List(ctx context.Context, filter goods_issue.ListFilter) (domain.ListResult[*goods_issue.GoodsIssue], error) {
	d := docListQuery{q: r.baseSelect(ctx)}
	d.excludeDeleted(filter.IncludeDeleted)
	d.eqID("warehouse_id", filter.WarehouseID)
	d.eqBool("posted", filter.Posted)
	d.dateRange("date", filter.DateFrom, filter.DateTo)
	d.searchAny(filter.Search, "number", "reason")

	return r.runList(ctx, d.q, filter.ListFilter, "date DESC")
}

var _ goods_issue.Repository = (*GoodsIssueRepo)(nil)
