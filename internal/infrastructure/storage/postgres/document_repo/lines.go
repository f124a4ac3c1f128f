package document_repo

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/types"
	"valora/internal/domain/documents"
	"valora/internal/infrastructure/storage/postgres"
)

// serialList maps []entity.SerialData to a JSONB column. Serial counts per
// line are small (one row per physical unit), so a sub-table is not worth it.
type serialList []entity.SerialData

// Scan implements sql.Scanner.
func (s *serialList) Scan(src any) error {
	if src == nil {
		*s = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for serialList: %T", src)
	}

	if len(data) == 0 {
		*s = nil
		return nil
	}
	return json.Unmarshal(data, s)
}

// Value implements driver.Valuer.
func (s serialList) Value() (driver.Value, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return json.Marshal(s)
}

// lineRow is the persisted shape of a documents.StockLine. Lot data is
// flattened to nullable columns, serials go to a JSONB column.
type lineRow struct {
	LineID id.ID `db:"line_id"`
	LineNo int   `db:"line_no"`

	ProductID id.ID          `db:"product_id"`
	UnitID    id.ID          `db:"unit_id"`
	UnitRatio types.Quantity `db:"unit_ratio"`
	Quantity  types.Quantity `db:"quantity"`

	UnitPrice types.Money `db:"unit_price"`
	VATRate   string      `db:"vat_rate"`
	VATAmount types.Money `db:"vat_amount"`
	Amount    types.Money `db:"amount"`

	Trace                  entity.TraceKind `db:"trace_kind"`
	SpecificIdentification bool             `db:"specific_identification"`
	ProjectID              *id.ID           `db:"project_id"`

	LotID         *id.ID     `db:"lot_id"`
	LotNumber     *string    `db:"lot_number"`
	LotExpireDate *time.Time `db:"lot_expire_date"`

	Serials serialList `db:"serials"`
}

func (r *lineRow) toLine() documents.StockLine {
	line := documents.StockLine{
		LineID:                 r.LineID,
		LineNo:                 r.LineNo,
		ProductID:              r.ProductID,
		UnitID:                 r.UnitID,
		UnitRatio:              r.UnitRatio,
		Quantity:               r.Quantity,
		UnitPrice:              r.UnitPrice,
		VATRate:                r.VATRate,
		VATAmount:              r.VATAmount,
		Amount:                 r.Amount,
		Trace:                  r.Trace,
		SpecificIdentification: r.SpecificIdentification,
		ProjectID:              r.ProjectID,
		Serials:                r.Serials,
	}

	if r.LotID != nil {
		line.Lot = &entity.LotData{LotID: *r.LotID}
		if r.LotNumber != nil {
			line.Lot.LotNumber = *r.LotNumber
		}
		line.Lot.ExpireDate = r.LotExpireDate
	}

	return line
}

var lineColumns = []string{
	"line_id", "line_no", "product_id",
	"unit_id", "unit_ratio", "quantity",
	"unit_price", "vat_rate", "vat_amount", "amount",
	"trace_kind", "specific_identification", "project_id",
	"lot_id", "lot_number", "lot_expire_date", "serials",
}

// stockLineStore persists a document's stock lines in a per-document table.
// All stock documents share the documents.StockLine shape, so they share
// this store too, each with its own table.
type stockLineStore struct {
	table   string
	builder squirrel.StatementBuilderType
}

func newStockLineStore(table string) stockLineStore {
	return stockLineStore{
		table:   table,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Get retrieves the lines of a document, ordered by line number.
func (s stockLineStore) Get(ctx context.Context, docID id.ID) ([]documents.StockLine, error) {
	q := s.builder.
		Select(lineColumns...).
		From(s.table).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []*lineRow
	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	lines := make([]documents.StockLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, row.toLine())
	}

	return lines, nil
}

// Save replaces the lines of a document (delete existing + insert new).
func (s stockLineStore) Save(ctx context.Context, docID id.ID, lines []documents.StockLine) error {
	querier := postgres.MustGetTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + s.table + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	cols := append([]string{"document_id"}, lineColumns...)
	q := s.builder.Insert(s.table).Columns(cols...)

	for i := range lines {
		line := &lines[i]

		var lotID *id.ID
		var lotNumber *string
		var lotExpireDate *time.Time
		if line.Lot != nil {
			lotID = &line.Lot.LotID
			lotNumber = &line.Lot.LotNumber
			lotExpireDate = line.Lot.ExpireDate
		}

		q = q.Values(
			docID,
			line.LineID, line.LineNo, line.ProductID,
			line.UnitID, line.UnitRatio, line.Quantity,
			line.UnitPrice, line.VATRate, line.VATAmount, line.Amount,
			line.Trace, line.SpecificIdentification, line.ProjectID,
			lotID, lotNumber, lotExpireDate, serialList(line.Serials),
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}
