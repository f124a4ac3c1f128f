package documents

import (
	"time"

	"valora/internal/core/apperror"
	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/types"
)

// StockLine is the common table-part shape of the stock documents: a
// product, a quantity entered in some unit of measure, and trace data
// captured when the line was entered. Unit conversion happens here, once,
// so the ledger engine only ever sees base-unit quantities.
type StockLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID `db:"product_id" json:"productId"`

	// Unit the quantity was entered in, and how many base inventory units
	// one of it holds. Resolved from the unit catalog at line entry.
	UnitID    id.ID          `db:"unit_id" json:"unitId"`
	UnitRatio types.Quantity `db:"unit_ratio" json:"unitRatio"`

	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// Pricing, net of VAT. Outbound documents leave these at zero.
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	VATRate   string      `db:"vat_rate" json:"vatRate"`
	VATAmount types.Money `db:"vat_amount" json:"vatAmount"`
	Amount    types.Money `db:"amount" json:"amount"`

	// Trace data, stamped from the product catalog at line entry
	Trace                  entity.TraceKind    `db:"trace_kind" json:"traceKind"`
	Lot                    *entity.LotData     `db:"-" json:"lot,omitempty"`
	Serials                []entity.SerialData `db:"-" json:"serials,omitempty"`
	SpecificIdentification bool                `db:"specific_identification" json:"specificIdentification"`

	// ProjectID is an optional analytics dimension
	ProjectID *id.ID `db:"project_id" json:"projectId,omitempty"`
}

// BaseQuantity converts the entered quantity to base inventory units.
func (l *StockLine) BaseQuantity() types.Quantity {
	return l.Quantity.Mul(l.UnitRatio)
}

// BaseCost is the net cost per base unit.
func (l *StockLine) BaseCost() types.Money {
	return types.AverageCost(l.Amount, l.BaseQuantity())
}

// Validate checks the line's invariants.
func (l *StockLine) Validate(lineNo int) error {
	if id.IsNil(l.ProductID) {
		return lineErr(lineNo, "product is required")
	}
	if !l.Quantity.IsPositive() {
		return lineErr(lineNo, "quantity must be positive")
	}
	if !l.UnitRatio.IsPositive() {
		return lineErr(lineNo, "unit ratio must be positive")
	}

	switch l.Trace {
	case entity.TraceNone:
		if l.Lot != nil || len(l.Serials) > 0 {
			return lineErr(lineNo, "untraced product carries lot or serial data")
		}
	case entity.TraceLot:
		if l.Lot == nil || id.IsNil(l.Lot.LotID) {
			return lineErr(lineNo, "lot-traced product requires lot data")
		}
	case entity.TraceSerial:
		base := l.BaseQuantity()
		want := int64(base) / types.QuantityScale
		if int64(base)%types.QuantityScale != 0 {
			return lineErr(lineNo, "serial-traced quantity must be a whole number of base units")
		}
		if int64(len(l.Serials)) != want {
			return lineErr(lineNo, "serial count must match quantity")
		}
		for _, serial := range l.Serials {
			if id.IsNil(serial.SerialID) {
				return lineErr(lineNo, "serial identifier is required")
			}
		}
	default:
		return lineErr(lineNo, "unknown traceability kind")
	}

	if l.SpecificIdentification && l.Trace != entity.TraceSerial {
		return lineErr(lineNo, "specific identification requires serial traceability")
	}

	return nil
}

func lineErr(lineNo int, msg string) error {
	return apperror.NewValidation(msg).
		WithDetail("field", "lines").
		WithDetail("lineNo", lineNo)
}

// ProjectionOptions control how ProjectLine builds movement records.
type ProjectionOptions struct {
	StockType entity.StockType

	// WithCost carries the line's pricing into the movements. Inbound
	// documents set it; outbound documents leave cost resolution to the
	// ledger engine.
	WithCost bool

	// InheritCost marks the movements to take their cost from the
	// preceding batch movement (transfer destination legs).
	InheritCost bool

	// SaleOrderID links delivery movements to the order being fulfilled
	SaleOrderID *id.ID
}

// ProjectLine expands one line into movement records: one per serial for
// serial-traced lines, otherwise a single record. The caller appends legs
// in document order so inherited costs line up.
func ProjectLine(l *StockLine, doc *entity.Document, docType string, warehouseID id.ID, opts ProjectionOptions) []entity.MovementRecord {
	now := time.Now().UTC()
	base := entity.MovementRecord{
		ProductID:   l.ProductID,
		WarehouseID: warehouseID,
		Trace:       l.Trace,
		ProjectID:   l.ProjectID,
		SaleOrderID: opts.SaleOrderID,

		SystemDate:   now,
		PostingDate:  now,
		DocumentDate: doc.Date,

		StockType: opts.StockType,

		TransID:    doc.ID,
		TransCode:  doc.Number,
		TransTitle: docType + " " + doc.Number,

		Cost:  types.Zero(),
		Value: types.Zero(),

		SpecificIdentification: l.SpecificIdentification,
		InheritCost:            opts.InheritCost,
	}

	if l.Trace == entity.TraceSerial {
		perUnit := types.NewQuantityFromInt64Scaled(types.QuantityScale)
		records := make([]entity.MovementRecord, 0, len(l.Serials))
		for i := range l.Serials {
			m := base
			serial := l.Serials[i]
			m.Serial = &serial
			m.Quantity = perUnit
			if opts.WithCost {
				m.Cost = l.BaseCost()
				m.Value = m.Cost
			}
			records = append(records, m)
		}
		return records
	}

	m := base
	m.Lot = l.Lot
	m.Quantity = l.BaseQuantity()
	if opts.WithCost {
		m.Cost = l.BaseCost()
		m.Value = l.Amount
	}
	return []entity.MovementRecord{m}
}
