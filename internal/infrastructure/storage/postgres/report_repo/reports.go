// Package report_repo provides PostgreSQL implementations for report repositories.
// Reports read the stock ledger directly: movement history from stock_logs,
// balances from ledger_entries. In Database-per-Tenant architecture, TxManager
// is obtained from context.
package report_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"valora/internal/core/apperror"
	"valora/internal/core/entity"
	"valora/internal/core/tenant"
	"valora/internal/domain/reports"
	"valora/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	builder squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo() *ReportRepo {
	return &ReportRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// getTxManager retrieves TxManager from context.
func (r *ReportRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

func scopeWhere(scope tenant.Scope, alias string) squirrel.Eq {
	return squirrel.Eq{
		alias + ".tenant_id":  scope.TenantID,
		alias + ".company_id": scope.CompanyID,
	}
}

// GetStockCard returns the movement history of one product. Each row carries
// the running balance the ledger engine stamped on the log at posting time,
// so no window function is needed.
func (r *ReportRepo) GetStockCard(ctx context.Context, scope tenant.Scope, filter reports.StockCardFilter) (*reports.StockCard, error) {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	card := &reports.StockCard{ProductID: filter.ProductID}

	// Product header
	headQ := r.builder.
		Select("name", "COALESCE(sku, '') AS sku").
		From("cat_products").
		Where(squirrel.Eq{"id": filter.ProductID})

	headSQL, headArgs, err := headQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build product query: %w", err)
	}

	var head struct {
		Name string `db:"name"`
		SKU  string `db:"sku"`
	}
	if err := pgxscan.Get(ctx, querier, &head, headSQL, headArgs...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", filter.ProductID.String())
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	card.ProductName = head.Name
	card.ProductSKU = head.SKU

	q := r.builder.
		Select(
			"l.id AS log_id",
			"l.posting_date",
			"l.document_date",
			"split_part(l.trans_title, ' ', 1) AS document_type",
			"l.trans_code AS document_number",
			"l.warehouse_id",
			"COALESCE(w.name, '') AS warehouse_name",
			"CASE WHEN l.stock_type > 0 THEN 'in' ELSE 'out' END AS direction",
			"l.quantity",
			"l.cost",
			"l.value",
			"l.current_quantity AS balance_quantity",
			"l.current_cost AS balance_cost",
			"l.current_value AS balance_value",
		).
		From("stock_logs l").
		LeftJoin("cat_warehouses w ON w.id = l.warehouse_id").
		Where(scopeWhere(scope, "l")).
		Where(squirrel.Eq{"l.product_id": filter.ProductID})

	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"l.warehouse_id": *filter.WarehouseID})
	}
	if filter.ProjectID != nil {
		q = q.Where(squirrel.Eq{"l.project_id": *filter.ProjectID})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"l.posting_date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"l.posting_date": *filter.ToDate})
	}

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count: %w", err)
	}
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&card.TotalRows); err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("l.posting_date", "l.created_at")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &card.Rows, sql, args...); err != nil {
		return nil, fmt.Errorf("stock card: %w", err)
	}

	return card, nil
}

// GetValuationSummary returns the per-key balances of one fiscal month from
// ledger_entries, with product and warehouse names resolved.
func (r *ReportRepo) GetValuationSummary(ctx context.Context, scope tenant.Scope, filter reports.ValuationFilter) (*reports.ValuationSummary, error) {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	summary := &reports.ValuationSummary{SubPeriodID: filter.SubPeriodID}

	base := r.builder.
		Select().
		From("ledger_entries e").
		Where(scopeWhere(scope, "e")).
		Where(squirrel.Eq{
			"e.sub_period_id": filter.SubPeriodID,
			"e.for_balance":   false,
		})

	if len(filter.WarehouseIDs) > 0 {
		base = base.Where(squirrel.Eq{"e.warehouse_id": filter.WarehouseIDs})
	}
	if len(filter.ProductIDs) > 0 {
		base = base.Where(squirrel.Eq{"e.product_id": filter.ProductIDs})
	}
	if filter.ExcludeZero {
		base = base.Where("NOT (e.ending_quantity = 0 AND e.ending_value = 0)")
	}

	// Totals over the full filtered set, not the page
	totalsQ := base.Columns(
		"COUNT(*) AS total_rows",
		"COALESCE(SUM(e.opening_value), 0) AS total_opening",
		"COALESCE(SUM(e.ending_value), 0) AS total_ending",
	)
	totalsSQL, totalsArgs, err := totalsQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build totals: %w", err)
	}
	if err := querier.QueryRow(ctx, totalsSQL, totalsArgs...).Scan(
		&summary.TotalRows, &summary.TotalOpeningValue, &summary.TotalEndingValue,
	); err != nil {
		return nil, fmt.Errorf("valuation totals: %w", err)
	}

	q := base.Columns(
		"e.product_id",
		"p.name AS product_name",
		"COALESCE(p.sku, '') AS product_sku",
		"e.warehouse_id",
		"COALESCE(w.name, '') AS warehouse_name",
		"e.opening_quantity",
		"e.opening_value",
		"e.ending_quantity",
		"e.ending_cost",
		"e.ending_value",
	).
		Join("cat_products p ON p.id = e.product_id").
		LeftJoin("cat_warehouses w ON w.id = e.warehouse_id").
		OrderBy("p.name", "w.name NULLS FIRST")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &summary.Rows, sql, args...); err != nil {
		return nil, fmt.Errorf("valuation summary: %w", err)
	}

	return summary, nil
}

// GetStockTurnoverReport aggregates stock_logs into opening, receipt, expense
// and closing figures per product (optionally per warehouse) for a period.
func (r *ReportRepo) GetStockTurnoverReport(ctx context.Context, scope tenant.Scope, filter reports.StockTurnoverReportFilter) (*reports.StockTurnoverReport, error) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, apperror.NewValidation("fromDate and toDate are required")
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)

	report := &reports.StockTurnoverReport{
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}

	groupCols := []string{"l.product_id", "p.name", "p.sku"}
	selectCols := []string{
		"l.product_id",
		"p.name AS product_name",
		"COALESCE(p.sku, '') AS product_sku",
	}
	if filter.GroupByWarehouse {
		groupCols = append(groupCols, "l.warehouse_id", "w.name")
		selectCols = append(selectCols,
			"l.warehouse_id",
			"COALESCE(w.name, '') AS warehouse_name",
		)
	}

	in := int(entity.StockTypeIn)
	selectCols = append(selectCols,
		"COALESCE(SUM(CASE WHEN l.posting_date < $1 THEN l.quantity * l.stock_type ELSE 0 END), 0)::bigint AS opening_quantity",
		"COALESCE(SUM(CASE WHEN l.posting_date < $1 THEN l.value * l.stock_type ELSE 0 END), 0) AS opening_value",
		fmt.Sprintf("COALESCE(SUM(CASE WHEN l.posting_date >= $1 AND l.stock_type = %d THEN l.quantity ELSE 0 END), 0)::bigint AS receipt_quantity", in),
		fmt.Sprintf("COALESCE(SUM(CASE WHEN l.posting_date >= $1 AND l.stock_type = %d THEN l.value ELSE 0 END), 0) AS receipt_value", in),
		fmt.Sprintf("COALESCE(SUM(CASE WHEN l.posting_date >= $1 AND l.stock_type != %d THEN l.quantity ELSE 0 END), 0)::bigint AS expense_quantity", in),
		fmt.Sprintf("COALESCE(SUM(CASE WHEN l.posting_date >= $1 AND l.stock_type != %d THEN l.value ELSE 0 END), 0) AS expense_value", in),
		"COALESCE(SUM(l.quantity * l.stock_type), 0)::bigint AS closing_quantity",
		"COALESCE(SUM(l.value * l.stock_type), 0) AS closing_value",
	)

	query := fmt.Sprintf(`
		SELECT %s
		FROM stock_logs l
		JOIN cat_products p ON p.id = l.product_id
		LEFT JOIN cat_warehouses w ON w.id = l.warehouse_id
		WHERE l.tenant_id = $2 AND l.company_id = $3 AND l.posting_date < $4
	`, strings.Join(selectCols, ",\n\t\t\t"))

	args := []any{filter.FromDate, scope.TenantID, scope.CompanyID, filter.ToDate}
	argIndex := 5

	if len(filter.WarehouseIDs) > 0 {
		query += fmt.Sprintf(" AND l.warehouse_id = ANY($%d)", argIndex)
		args = append(args, filter.WarehouseIDs)
		argIndex++
	}
	if len(filter.ProductIDs) > 0 {
		query += fmt.Sprintf(" AND l.product_id = ANY($%d)", argIndex)
		args = append(args, filter.ProductIDs)
		argIndex++
	}

	query += "\n\t\tGROUP BY " + strings.Join(groupCols, ", ")
	if !filter.IncludeZero {
		query += fmt.Sprintf(`
		HAVING SUM(l.quantity * l.stock_type) != 0
			OR SUM(CASE WHEN l.posting_date >= $1 AND l.stock_type = %d THEN l.quantity ELSE 0 END) != 0
			OR SUM(CASE WHEN l.posting_date >= $1 AND l.stock_type != %d THEN l.quantity ELSE 0 END) != 0`, in, in)
	}

	countQuery := "SELECT COUNT(*) FROM (" + query + ") sub"
	if err := querier.QueryRow(ctx, countQuery, args...).Scan(&report.TotalItems); err != nil {
		return nil, fmt.Errorf("turnover count: %w", err)
	}

	totalsQuery := `
		SELECT
			COALESCE(SUM(sub.receipt_value), 0),
			COALESCE(SUM(sub.expense_value), 0)
		FROM (` + query + `) sub`
	if err := querier.QueryRow(ctx, totalsQuery, args...).Scan(
		&report.TotalReceiptValue, &report.TotalExpenseValue,
	); err != nil {
		return nil, fmt.Errorf("turnover totals: %w", err)
	}

	query += "\n\t\tORDER BY p.name"
	if filter.GroupByWarehouse {
		query += ", w.name"
	}
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	if err := pgxscan.Select(ctx, querier, &report.Items, query, args...); err != nil {
		return nil, fmt.Errorf("stock turnover report: %w", err)
	}

	return report, nil
}

// journalSource describes how one document table maps onto the journal's
// common column set.
type journalSource struct {
	docType      string
	table        string
	warehouseCol string
	amountCol    string
	currencyCol  string
}

var journalSources = []journalSource{
	{"GoodsReceipt", "doc_goods_receipts", "warehouse_id", "total_amount", "currency"},
	{"GoodsIssue", "doc_goods_issues", "warehouse_id", "0", "''"},
	{"Delivery", "doc_deliveries", "warehouse_id", "total_amount", "currency"},
	{"GoodsReturn", "doc_goods_returns", "warehouse_id", "total_amount", "''"},
	{"GoodsTransfer", "doc_goods_transfers", "source_warehouse_id", "0", "''"},
	{"BalanceInit", "doc_balance_inits", "warehouse_id", "total_amount", "''"},
}

func selectedSources(docTypes []string) []journalSource {
	if len(docTypes) == 0 {
		return journalSources
	}
	wanted := make(map[string]bool, len(docTypes))
	for _, t := range docTypes {
		wanted[t] = true
	}
	var out []journalSource
	for _, src := range journalSources {
		if wanted[src.docType] {
			out = append(out, src)
		}
	}
	return out
}

// GetDocumentJournal retrieves documents of all types in one chronological list.
func (r *ReportRepo) GetDocumentJournal(ctx context.Context, scope tenant.Scope, filter reports.DocumentJournalFilter) (*reports.DocumentJournal, error) {
	sources := selectedSources(filter.DocumentTypes)

	journal := &reports.DocumentJournal{
		Items:  []reports.DocumentJournalItem{},
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	if len(sources) == 0 {
		return journal, nil
	}

	unionSQL, args := r.journalUnion(scope, filter, sources)

	querier := r.getTxManager(ctx).GetQuerier(ctx)

	countSQL := "SELECT COUNT(*) FROM (" + unionSQL + ") d"
	if err := querier.QueryRow(ctx, countSQL, args...).Scan(&journal.TotalCount); err != nil {
		return nil, fmt.Errorf("journal count: %w", err)
	}

	orderBy, err := journalOrderBy(filter.SortBy, filter.SortOrder)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT d.*, COALESCE(w.name, '') AS warehouse_name
		FROM (%s) d
		LEFT JOIN cat_warehouses w ON w.id = d.warehouse_id
		ORDER BY %s
	`, unionSQL, orderBy)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	if err := pgxscan.Select(ctx, querier, &journal.Items, query, args...); err != nil {
		return nil, fmt.Errorf("document journal: %w", err)
	}

	return journal, nil
}

// journalUnion builds the UNION ALL over the selected document tables with
// shared filters applied per branch.
func (r *ReportRepo) journalUnion(scope tenant.Scope, filter reports.DocumentJournalFilter, sources []journalSource) (string, []any) {
	var args []any
	argIndex := 1

	next := func(v any) string {
		args = append(args, v)
		p := fmt.Sprintf("$%d", argIndex)
		argIndex++
		return p
	}

	scopePh := []string{next(scope.TenantID), next(scope.CompanyID)}

	var shared strings.Builder
	if filter.FromDate != nil {
		shared.WriteString(" AND date >= " + next(*filter.FromDate))
	}
	if filter.ToDate != nil {
		shared.WriteString(" AND date < " + next(*filter.ToDate))
	}
	if filter.Posted != nil {
		shared.WriteString(" AND posted = " + next(*filter.Posted))
	}
	if filter.NumberContains != "" {
		shared.WriteString(" AND number ILIKE " + next("%"+filter.NumberContains+"%"))
	}

	var branches []string
	for _, src := range sources {
		branch := fmt.Sprintf(`
			SELECT
				id, '%s' AS document_type, number, date, posted,
				%s AS warehouse_id,
				total_quantity,
				%s AS total_amount,
				%s AS currency,
				deletion_mark, created_at, updated_at
			FROM %s
			WHERE tenant_id = %s AND company_id = %s AND deletion_mark = false%s`,
			src.docType, src.warehouseCol, src.amountCol, src.currencyCol,
			src.table, scopePh[0], scopePh[1], shared.String())

		if len(filter.WarehouseIDs) > 0 {
			branch += fmt.Sprintf(" AND %s = ANY(%s)", src.warehouseCol, next(filter.WarehouseIDs))
		}

		branches = append(branches, branch)
	}

	return strings.Join(branches, "\n\t\t\tUNION ALL\n"), args
}

func journalOrderBy(sortBy, sortOrder string) (string, error) {
	col := "d.date"
	switch sortBy {
	case "", "date":
	case "number":
		col = "d.number"
	case "type":
		col = "d.document_type"
	default:
		return "", apperror.NewValidation("invalid sortBy").WithDetail("sortBy", sortBy)
	}

	dir := "DESC"
	switch strings.ToLower(sortOrder) {
	case "", "desc":
	case "asc":
		dir = "ASC"
	default:
		return "", apperror.NewValidation("invalid sortOrder").WithDetail("sortOrder", sortOrder)
	}

	return col + " " + dir + ", d.number", nil
}

// GetDocumentTypeSummary returns document counts and totals by type.
func (r *ReportRepo) GetDocumentTypeSummary(ctx context.Context, scope tenant.Scope, filter reports.DocumentJournalFilter) ([]reports.DocumentTypeSummary, error) {
	sources := selectedSources(filter.DocumentTypes)
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	var result []reports.DocumentTypeSummary
	for _, src := range sources {
		query := fmt.Sprintf(`
			SELECT
				COUNT(*) AS count,
				COUNT(*) FILTER (WHERE posted = true) AS posted_count,
				COALESCE(SUM(total_quantity), 0)::bigint AS total_quantity,
				COALESCE(SUM(%s), 0)::numeric AS total_amount
			FROM %s
			WHERE tenant_id = $1 AND company_id = $2 AND deletion_mark = false
		`, src.amountCol, src.table)

		args := []any{scope.TenantID, scope.CompanyID}
		argIndex := 3

		if filter.FromDate != nil {
			query += fmt.Sprintf(" AND date >= $%d", argIndex)
			args = append(args, *filter.FromDate)
			argIndex++
		}
		if filter.ToDate != nil {
			query += fmt.Sprintf(" AND date < $%d", argIndex)
			args = append(args, *filter.ToDate)
			argIndex++
		}

		summary := reports.DocumentTypeSummary{DocumentType: src.docType}
		err := querier.QueryRow(ctx, query, args...).Scan(
			&summary.Count,
			&summary.PostedCount,
			&summary.TotalQuantity,
			&summary.TotalAmount,
		)
		if err != nil {
			return nil, fmt.Errorf("document type summary for %s: %w", src.docType, err)
		}

		result = append(result, summary)
	}

	return result, nil
}

// Ensure interface compliance
var _ reports.Repository = (*ReportRepo)(nil)
