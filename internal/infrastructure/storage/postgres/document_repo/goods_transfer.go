package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"valora/internal/core/id"
	"valora/internal/domain"
	"valora/internal/domain/documents"
	"valora/internal/domain/documents/goods_transfer"
	"valora/internal/infrastructure/storage/postgres"
)

const (
	goodsTransfersTable     = "doc_goods_transfers"
	goodsTransferLinesTable = "doc_goods_transfer_lines"
)

// GoodsTransferRepo implements goods_transfer.Repository.
type GoodsTransferRepo struct {
	*BaseDocumentRepo[*goods_transfer.GoodsTransfer]
	lines stockLineStore
}

// NewGoodsTransferRepo creates a new goods transfer repository.
func NewGoodsTransferRepo() *GoodsTransferRepo {
	return &GoodsTransferRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*goods_transfer.GoodsTransfer](
			goodsTransfersTable,
			postgres.ExtractDBColumns[goods_transfer.GoodsTransfer](),
			func() *goods_transfer.GoodsTransfer { return &goods_transfer.GoodsTransfer{} },
		),
		lines: newStockLineStore(goodsTransferLinesTable),
	}
}

func (r *GoodsTransferRepo) GetLines(ctx context.Context, docID id.ID) ([]documents.StockLine, error) {
	return r.lines.Get(ctx, docID)
}

func (r *GoodsTransferRepo) SaveLines(ctx context.Context, docID id.ID, lines []documents.StockLine) error {
	return r.lines.Save(ctx, docID, lines)
}

// List retrieves goods transfers with filtering.
func (r *GoodsTransferRepo) List(ctx context.Context, filter goods_transfer.ListFilter) (domain.ListResult[*goods_transfer.GoodsTransfer], error) {
	result := domain.ListResult[*goods_transfer.GoodsTransfer]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(ctx)

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.SourceWarehouseID != nil {
		q = q.Where(squirrel.Eq{"source_warehouse_id": *filter.SourceWarehouseID})
	}

	if filter.DestWarehouseID != nil {
		q = q.Where(squirrel.Eq{"dest_warehouse_id": *filter.DestWarehouseID})
	}

	if filter.Posted != nil {
		q = q.Where(squirrel.Eq{"posted": *filter.Posted})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": searchPattern},
			squirrel.ILike{"reason": searchPattern},
		})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy := "date DESC"
	if filter.OrderBy != "" {
		orderBy = filter.OrderBy
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select: %w", err)
	}

	return result, nil
}

var _ goods_transfer.Repository = (*GoodsTransferRepo)(nil)
