package entity

import (
	"time"

	"valora/internal/core/apperror"
	"valora/internal/core/id"
	"valora/internal/core/types"
)

// StockType is the direction of a stock movement.
type StockType int

const (
	// StockTypeIn increases stock (+1)
	StockTypeIn StockType = 1
	// StockTypeOut decreases stock (-1)
	StockTypeOut StockType = -1
)

// Sign returns +1 or -1 for arithmetic use.
func (t StockType) Sign() int64 { return int64(t) }

// IsValid reports whether the value is one of the two directions.
func (t StockType) IsValid() bool { return t == StockTypeIn || t == StockTypeOut }

// TraceKind is a product's traceability method: how stock sub-identity is
// tracked below the product/warehouse level.
type TraceKind string

const (
	TraceNone   TraceKind = "none"
	TraceLot    TraceKind = "lot"
	TraceSerial TraceKind = "serial"
)

// LotData identifies a lot/batch for lot-traced movements.
type LotData struct {
	LotID      id.ID      `db:"lot_id" json:"lotId"`
	LotNumber  string     `db:"lot_number" json:"lotNumber"`
	ExpireDate *time.Time `db:"lot_expire_date" json:"lotExpireDate,omitempty"`
}

// SerialData identifies an individual serial number for serial-traced movements.
type SerialData struct {
	SerialID           id.ID      `db:"serial_id" json:"serialId"`
	SerialNumber       string     `db:"serial_number" json:"serialNumber"`
	VendorSerialNumber string     `db:"vendor_serial_number" json:"vendorSerialNumber,omitempty"`
	ExpireDate         *time.Time `db:"serial_expire_date" json:"expireDate,omitempty"`
	ManufactureDate    *time.Time `db:"manufacture_date" json:"manufactureDate,omitempty"`
	WarrantyStart      *time.Time `db:"warranty_start" json:"warrantyStart,omitempty"`
	WarrantyEnd        *time.Time `db:"warranty_end" json:"warrantyEnd,omitempty"`
}

// MovementRecord is the in-memory value a document adapter hands to the
// ledger engine - one per atomic stock movement. It is never persisted; the
// engine turns it into an immutable StockLog row.
//
// Contract: Quantity, Cost and Value are already expressed in the product's
// base inventory unit of measure. Unit conversion is the adapter's job,
// performed once before handoff. Outbound movements leave Cost/Value zero;
// the engine resolves them from the running average.
type MovementRecord struct {
	ProductID   id.ID
	WarehouseID id.ID

	// Trace carries the movement's sub-identity; Lot/Serial are set only for
	// the matching kind and validated at construction, so the engine never
	// reads them defensively.
	Trace  TraceKind
	Lot    *LotData
	Serial *SerialData

	// ProjectID is an optional analytics dimension for cost segregation
	ProjectID *id.ID

	// SaleOrderID links delivery movements back to the order being fulfilled
	SaleOrderID *id.ID

	SystemDate   time.Time
	PostingDate  time.Time
	DocumentDate time.Time

	StockType StockType

	// Source document identity - denormalized reference, not a foreign key
	TransID    id.ID
	TransCode  string
	TransTitle string

	Quantity types.Quantity
	Cost     types.Money
	Value    types.Money

	// SpecificIdentification marks serialized items valued per-serial rather
	// than at the weighted average
	SpecificIdentification bool

	// InheritCost marks an inbound movement whose cost is taken from the
	// immediately preceding movement of the batch once the engine has
	// resolved it. Warehouse transfers use this to price the destination
	// leg at whatever the source leg was issued at.
	InheritCost bool
}

// Validate checks the record once at the engine boundary.
func (m *MovementRecord) Validate() error {
	if id.IsNil(m.ProductID) {
		return apperror.NewValidation("movement: product is required")
	}
	if id.IsNil(m.WarehouseID) {
		return apperror.NewValidation("movement: warehouse is required")
	}
	if !m.StockType.IsValid() {
		return apperror.NewValidation("movement: stock type must be +1 or -1").
			WithDetail("stock_type", int(m.StockType))
	}
	if !m.Quantity.IsPositive() {
		return apperror.NewValidation("movement: quantity must be positive").
			WithDetail("quantity", m.Quantity.String())
	}
	if id.IsNil(m.TransID) {
		return apperror.NewValidation("movement: source document reference is required")
	}
	if m.DocumentDate.IsZero() {
		return apperror.NewValidation("movement: document date is required")
	}

	switch m.Trace {
	case TraceNone:
		if m.Lot != nil || m.Serial != nil {
			return apperror.NewValidation("movement: untraced product carries lot or serial data")
		}
	case TraceLot:
		if m.Lot == nil || id.IsNil(m.Lot.LotID) {
			return apperror.NewValidation("movement: lot-traced product requires lot data")
		}
		if m.Serial != nil {
			return apperror.NewValidation("movement: lot-traced product carries serial data")
		}
	case TraceSerial:
		if m.Serial == nil || id.IsNil(m.Serial.SerialID) {
			return apperror.NewValidation("movement: serial-traced product requires serial data")
		}
	default:
		return apperror.NewValidation("movement: unknown traceability kind").
			WithDetail("trace", string(m.Trace))
	}

	if m.SpecificIdentification && m.Trace != TraceSerial {
		return apperror.NewValidation("movement: specific identification requires serial traceability")
	}

	if m.InheritCost && m.StockType != StockTypeIn {
		return apperror.NewValidation("movement: only inbound movements can inherit cost")
	}

	return nil
}

// SignedQuantity returns quantity with the movement's sign applied.
func (m *MovementRecord) SignedQuantity() types.Quantity {
	if m.StockType == StockTypeOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
