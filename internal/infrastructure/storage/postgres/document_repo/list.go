package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"valora/internal/core/id"
	"valora/internal/domain"
)

// docListQuery accumulates the optional WHERE clauses document list
// endpoints share. Each setter is a no-op for a nil filter value.
type docListQuery struct {
	q squirrel.SelectBuilder
}

func (d *docListQuery) excludeDeleted(includeDeleted bool) {
	if !includeDeleted {
		d.q = d.q.Where(squirrel.Eq{"deletion_mark": false})
	}
}

func (d *docListQuery) eqID(col string, v *id.ID) {
	if v != nil {
		d.q = d.q.Where(squirrel.Eq{col: *v})
	}
}

func (d *docListQuery) eqBool(col string, v *bool) {
	if v != nil {
		d.q = d.q.Where(squirrel.Eq{col: *v})
	}
}

func (d *docListQuery) dateRange(col string, from, to *time.Time) {
	if from != nil {
		d.q = d.q.Where(squirrel.GtOrEq{col: *from})
	}
	if to != nil {
		d.q = d.q.Where(squirrel.LtOrEq{col: *to})
	}
}

// searchAny matches the term case-insensitively against any of the
// given columns.
func (d *docListQuery) searchAny(term string, cols ...string) {
	if term == "" {
		return
	}
	pattern := "%" + term + "%"
	or := make(squirrel.Or, 0, len(cols))
	for _, col := range cols {
		or = append(or, squirrel.ILike{col: pattern})
	}
	d.q = d.q.Where(or)
}

// runList counts the filtered set, then applies ordering and paging and
// scans the page into the result.
func (r *BaseDocumentRepo[T]) runList(ctx context.Context, q squirrel.SelectBuilder, f domain.ListFilter, defaultOrder string) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	countSQL, countArgs, err := r.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	if f.OrderBy != "" {
		q = q.OrderBy(f.OrderBy)
	} else {
		q = q.OrderBy(defaultOrder)
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
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
