package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"valora/internal/core/id"
	"valora/internal/domain"
	"valora/internal/domain/documents"
	"valora/internal/domain/documents/balance_init"
	"valora/internal/infrastructure/storage/postgres"
)

const (
	balanceInitsTable     = "doc_balance_inits"
	balanceInitLinesTable = "doc_balance_init_lines"
)

// BalanceInitRepo implements balance_init.Repository.
type BalanceInitRepo struct {
	*BaseDocumentRepo[*balance_init.BalanceInit]
	lines stockLineStore
}

// NewBalanceInitRepo creates a new balance initialization repository.
func NewBalanceInitRepo() *BalanceInitRepo {
	return &BalanceInitRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*balance_init.BalanceInit](
			balanceInitsTable,
			postgres.ExtractDBColumns[balance_init.BalanceInit](),
			func() *balance_init.BalanceInit { return &balance_init.BalanceInit{} },
		),
		lines: newStockLineStore(balanceInitLinesTable),
	}
}

func (r *BalanceInitRepo) GetLines(ctx context.Context, docID id.ID) ([]documents.StockLine, error) {
	return r.lines.Get(ctx, docID)
}

func (r *BalanceInitRepo) SaveLines(ctx context.Context, docID id.ID, lines []documents.StockLine) error {
	return r.lines.Save(ctx, docID, lines)
}

// List retrieves balance initialization documents with filtering.
func (r *BalanceInitRepo) List(ctx context.Context, filter balance_init.ListFilter) (domain.ListResult[*balance_init.BalanceInit], error) {
	result := domain.ListResult[*balance_init.BalanceInit]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(ctx)

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
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
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
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

var _ balance_init.Repository = (*BalanceInitRepo)(nil)
