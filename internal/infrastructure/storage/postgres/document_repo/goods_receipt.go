package document_repo

import (
	"context"

	"valora/internal/core/id"
	"valora/internal/domain"
	"valora/internal/domain/documents"
	"valora/internal/domain/documents/goods_receipt"
	"valora/internal/infrastructure/storage/postgres"
)

const (
	goodsReceiptsTable     = "doc_goods_receipts"
	goodsReceiptLinesTable = "doc_goods_receipt_lines"
)

// GoodsReceiptRepo implements goods_receipt.Repository.
type GoodsReceiptRepo struct {
	*BaseDocumentRepo[*goods_receipt.GoodsReceipt]
	lines stockLineStore
}

func NewGoodsReceiptRepo() *GoodsReceiptRepo {
	return &GoodsReceiptRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*goods_receipt.GoodsReceipt](
			goodsReceiptsTable,
			postgres.ExtractDBColumns[goods_receipt.GoodsReceipt](),
			func() *goods_receipt.GoodsReceipt { return &goods_receipt.GoodsReceipt{} },
		),
		lines: newStockLineStore(goodsReceiptLinesTable),
	}
}

func (r *GoodsReceiptRepo) GetLines(ctx context.Context, docID id.ID) ([]documents.StockLine, error) {
	return r.lines.Get(ctx, docID)
}

// SaveLines replaces the document's lines with the given set.
func (r *GoodsReceiptRepo) SaveLines(ctx context.Context, docID id.ID, lines []documents.StockLine) error {
	return r.lines.Save(ctx, docID, lines)
}

// List retrieves goods receipts matching the filter, newest first by
// default.
func (r *GoodsReceiptRepo) List(ctx context.Context, filter goods_receipt.ListFilter) (domain.ListResult[*goods_receipt.GoodsReceipt], error) {
	d := docListQuery{q: r.baseSelect(ctx)}
	d.excludeDeleted(filter.IncludeDeleted)
	d.eqID("supplier_id", filter.SupplierID)
	d.eqID("warehouse_id", filter.WarehouseID)
	d.eqBool("posted", filter.Posted)
	d.dateRange("date", filter.DateFrom, filter.DateTo)
	d.searchAny(filter.Search, "number", "supplier_doc_number")

	return r.runList(ctx, d.q, filter.ListFilter, "date DESC")
}

var _ goods_receipt.Repository = (*GoodsReceiptRepo)(nil)
