package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/types"
	"valora/internal/domain/ledger"
	"valora/internal/infrastructure/storage/postgres"
)

var stockLogColumns = []string{
	"id", "tenant_id", "company_id",
	"period_id", "sub_period_id",
	"product_id", "warehouse_id", "project_id", "sale_order_id",
	"trace_kind",
	"lot_id", "lot_number", "lot_expire_date",
	"serial_id", "serial_number", "vendor_serial_number", "serial_expire_date",
	"specific_identification",
	"system_date", "posting_date", "document_date",
	"stock_type",
	"trans_id", "trans_code", "trans_title",
	"quantity", "cost", "value",
	"current_quantity", "current_cost", "current_value",
	"created_at",
}

// stockLogRow flattens the lot/serial sub-identity into nullable columns.
type stockLogRow struct {
	ID id.ID `db:"id"`

	tenant.Scope

	PeriodID    id.ID `db:"period_id"`
	SubPeriodID id.ID `db:"sub_period_id"`

	ProductID   id.ID  `db:"product_id"`
	WarehouseID id.ID  `db:"warehouse_id"`
	ProjectID   *id.ID `db:"project_id"`
	SaleOrderID *id.ID `db:"sale_order_id"`

	Trace entity.TraceKind `db:"trace_kind"`

	LotID         *id.ID     `db:"lot_id"`
	LotNumber     *string    `db:"lot_number"`
	LotExpireDate *time.Time `db:"lot_expire_date"`

	SerialID           *id.ID     `db:"serial_id"`
	SerialNumber       *string    `db:"serial_number"`
	VendorSerialNumber *string    `db:"vendor_serial_number"`
	SerialExpireDate   *time.Time `db:"serial_expire_date"`

	SpecificIdentification bool `db:"specific_identification"`

	SystemDate   time.Time `db:"system_date"`
	PostingDate  time.Time `db:"posting_date"`
	DocumentDate time.Time `db:"document_date"`

	StockType entity.StockType `db:"stock_type"`

	TransID    id.ID  `db:"trans_id"`
	TransCode  string `db:"trans_code"`
	TransTitle string `db:"trans_title"`

	Quantity types.Quantity `db:"quantity"`
	Cost     types.Money    `db:"cost"`
	Value    types.Money    `db:"value"`

	CurrentQuantity types.Quantity `db:"current_quantity"`
	CurrentCost     types.Money    `db:"current_cost"`
	CurrentValue    types.Money    `db:"current_value"`

	CreatedAt time.Time `db:"created_at"`
}

func (row *stockLogRow) toEntity() *entity.StockLog {
	l := &entity.StockLog{
		ID:          row.ID,
		Scope:       row.Scope,
		PeriodID:    row.PeriodID,
		SubPeriodID: row.SubPeriodID,
		ProductID:   row.ProductID,
		WarehouseID: row.WarehouseID,
		ProjectID:   row.ProjectID,
		SaleOrderID: row.SaleOrderID,
		Trace:       row.Trace,

		SpecificIdentification: row.SpecificIdentification,

		SystemDate:   row.SystemDate,
		PostingDate:  row.PostingDate,
		DocumentDate: row.DocumentDate,

		StockType: row.StockType,

		TransID:    row.TransID,
		TransCode:  row.TransCode,
		TransTitle: row.TransTitle,

		Quantity: row.Quantity,
		Cost:     row.Cost,
		Value:    row.Value,

		CurrentQuantity: row.CurrentQuantity,
		CurrentCost:     row.CurrentCost,
		CurrentValue:    row.CurrentValue,

		CreatedAt: row.CreatedAt,
	}

	if row.LotID != nil {
		l.Lot = &entity.LotData{
			LotID:      *row.LotID,
			ExpireDate: row.LotExpireDate,
		}
		if row.LotNumber != nil {
			l.Lot.LotNumber = *row.LotNumber
		}
	}
	if row.SerialID != nil {
		l.Serial = &entity.SerialData{
			SerialID:   *row.SerialID,
			ExpireDate: row.SerialExpireDate,
		}
		if row.SerialNumber != nil {
			l.Serial.SerialNumber = *row.SerialNumber
		}
		if row.VendorSerialNumber != nil {
			l.Serial.VendorSerialNumber = *row.VendorSerialNumber
		}
	}

	return l
}

func stockLogValues(l *entity.StockLog) []any {
	var (
		lotID        any
		lotNumber    any
		lotExpire    any
		serialID     any
		serialNumber any
		vendorSerial any
		serialExpire any
	)
	if l.Lot != nil {
		lotID = l.Lot.LotID
		lotNumber = l.Lot.LotNumber
		lotExpire = l.Lot.ExpireDate
	}
	if l.Serial != nil {
		serialID = l.Serial.SerialID
		serialNumber = l.Serial.SerialNumber
		vendorSerial = l.Serial.VendorSerialNumber
		serialExpire = l.Serial.ExpireDate
	}

	return []any{
		l.ID, l.TenantID, l.CompanyID,
		l.PeriodID, l.SubPeriodID,
		l.ProductID, l.WarehouseID, optID(l.ProjectID), optID(l.SaleOrderID),
		l.Trace,
		lotID, lotNumber, lotExpire,
		serialID, serialNumber, vendorSerial, serialExpire,
		l.SpecificIdentification,
		l.SystemDate, l.PostingDate, l.DocumentDate,
		l.StockType,
		l.TransID, l.TransCode, l.TransTitle,
		l.Quantity, l.Cost, l.Value,
		l.CurrentQuantity, l.CurrentCost, l.CurrentValue,
		l.CreatedAt,
	}
}

// keyLogWhere constrains logs to a ledger key. Absent dimensions do not
// constrain: a shared balance spans every warehouse the product moved in.
func keyLogWhere(scope tenant.Scope, key entity.LedgerKey) squirrel.Eq {
	where := squirrel.Eq{
		"tenant_id":  scope.TenantID,
		"company_id": scope.CompanyID,
		"product_id": key.ProductID,
	}
	if key.WarehouseID != nil {
		where["warehouse_id"] = *key.WarehouseID
	}
	if key.LotID != nil {
		where["lot_id"] = *key.LotID
	}
	if key.SerialID != nil {
		where["serial_id"] = *key.SerialID
	}
	if key.ProjectID != nil {
		where["project_id"] = *key.ProjectID
	}
	return where
}

// GetLatestLog returns the most recent log row for a key, or nil.
func (r *LedgerRepo) GetLatestLog(ctx context.Context, scope tenant.Scope, key entity.LedgerKey) (*entity.StockLog, error) {
	q := r.builder.Select(stockLogColumns...).
		From(stockLogsTable).
		Where(keyLogWhere(scope, key)).
		OrderBy("created_at DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row stockLogRow
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest log: %w", err)
	}
	return row.toEntity(), nil
}

// CreateLogs appends log rows in input order. Uses COPY when a transaction
// is active, which is always the case when called from the engine.
func (r *LedgerRepo) CreateLogs(ctx context.Context, logs []*entity.StockLog) error {
	if len(logs) == 0 {
		return nil
	}

	txm := r.getTxManager(ctx)
	if tx := txm.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(txm)
		rows := make([][]any, 0, len(logs))
		for _, l := range logs {
			rows = append(rows, stockLogValues(l))
		}
		if _, err := inserter.CopyFromSlice(ctx, stockLogsTable, stockLogColumns, rows); err != nil {
			return fmt.Errorf("copy logs: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(stockLogsTable).Columns(stockLogColumns...)
	for _, l := range logs {
		q = q.Values(stockLogValues(l)...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	querier := txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert logs: %w", err)
	}
	return nil
}

// ListLogs returns log rows for reporting, oldest first.
func (r *LedgerRepo) ListLogs(ctx context.Context, scope tenant.Scope, filter ledger.LogFilter) ([]*entity.StockLog, error) {
	q := r.builder.Select(stockLogColumns...).
		From(stockLogsTable).
		Where(squirrel.Eq{
			"tenant_id":  scope.TenantID,
			"company_id": scope.CompanyID,
		})

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.TransID != nil {
		q = q.Where(squirrel.Eq{"trans_id": *filter.TransID})
	}
	if filter.SubPeriodID != nil {
		q = q.Where(squirrel.Eq{"sub_period_id": *filter.SubPeriodID})
	}
	if filter.StockType != nil {
		q = q.Where(squirrel.Eq{"stock_type": *filter.StockType})
	}

	q = q.OrderBy("created_at")

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

	var rows []*stockLogRow
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select logs: %w", err)
	}

	logs := make([]*entity.StockLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, row.toEntity())
	}
	return logs, nil
}
