package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"valora/internal/core/id"
	"valora/internal/domain"
	"valora/internal/domain/documents"
	"valora/internal/domain/documents/goods_return"
	"valora/internal/infrastructure/storage/postgres"
)

const (
	goodsReturnsTable     = "doc_goods_returns"
	goodsReturnLinesTable = "doc_goods_return_lines"
)

// GoodsReturnRepo implements goods_return.Repository.
type GoodsReturnRepo struct {
	*BaseDocumentRepo[*goods_return.GoodsReturn]
	lines stockLineStore
}

// NewGoodsReturnRepo creates a new goods return repository.
func NewGoodsReturnRepo() *GoodsReturnRepo {
	return &GoodsReturnRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*goods_return.GoodsReturn](
			goodsReturnsTable,
			postgres.ExtractDBColumns[goods_return.GoodsReturn](),
			func() *goods_return.GoodsReturn { return &goods_return.GoodsReturn{} },
		),
		lines: newStockLineStore(goodsReturnLinesTable),
	}
}

func (r *GoodsReturnRepo) GetLines(ctx context.Context, docID id.ID) ([]documents.StockLine, error) {
	return r.lines.Get(ctx, docID)
}

func (r *GoodsReturnRepo) SaveLines(ctx context.Context, docID id.ID, lines []documents.StockLine) error {
	return r.lines.Save(ctx, docID, lines)
}

// List retrieves goods returns with filtering.
func (r *GoodsReturnRepo) List(ctx context.Context, filter goods_return.ListFilter) (domain.ListResult[*goods_return.GoodsReturn], error) {
	result := domain.ListResult[*goods_return.GoodsReturn]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(ctx)

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}

	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}

	if filter.DeliveryID != nil {
		q = q.Where(squirrel.Eq{"delivery_id": *filter.DeliveryID})
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
			squirrel.ILike{"delivery_number": searchPattern},
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

var _ goods_return.Repository = (*GoodsReturnRepo)(nil)
