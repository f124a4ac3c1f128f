// Package unit provides the Unit catalog. Units represent measurement
// units for products, with conversion ratios to a base unit.
package unit

import (
	"context"

	"github.com/shopspring/decimal"

	"valora/internal/core/apperror"
	"valora/internal/core/entity"
)

// UnitType groups units that can be converted into each other.
type UnitType string

const (
	TypePiece  UnitType = "piece"
	TypeWeight UnitType = "weight"
	TypeLength UnitType = "length"
	TypeArea   UnitType = "area"
	TypeVolume UnitType = "volume"
	TypeTime   UnitType = "time"
	TypePack   UnitType = "pack"
)

var validUnitTypes = map[UnitType]bool{
	TypePiece:  true,
	TypeWeight: true,
	TypeLength: true,
	TypeArea:   true,
	TypeVolume: true,
	TypeTime:   true,
	TypePack:   true,
}

// Unit is a measurement unit. A derived unit points at its base via
// BaseUnitID and carries the multiplier that converts quantities to it,
// e.g. gram over kilogram has factor 0.001.
type Unit struct {
	entity.Catalog

	Type   UnitType `db:"type" json:"type"`
	Symbol string   `db:"symbol" json:"symbol"` // short form: "kg", "m", "pcs"

	// InternationalCode is the UN/ECE Recommendation 20 common code.
	InternationalCode *string `db:"international_code" json:"internationalCode,omitempty"`

	BaseUnitID       *string         `db:"base_unit_id" json:"baseUnitId,omitempty"`
	ConversionFactor decimal.Decimal `db:"conversion_factor" json:"conversionFactor"`
	IsBase           bool            `db:"is_base" json:"isBase"`

	Description *string `db:"description" json:"description,omitempty"`
}

// NewUnit creates a unit that starts life as its own base.
func NewUnit(code, name, symbol string, unitType UnitType) *Unit {
	return &Unit{
		Catalog:          entity.NewCatalog(code, name),
		Type:             unitType,
		Symbol:           symbol,
		ConversionFactor: decimal.NewFromInt(1),
		IsBase:           true,
	}
}

// Validate implements entity.Validatable.
func (u *Unit) Validate(ctx context.Context) error {
	if err := u.Catalog.Validate(ctx); err != nil {
		return err
	}
	if u.Symbol == "" {
		return apperror.NewValidation("symbol is required").
			WithDetail("field", "symbol")
	}
	if !validUnitTypes[u.Type] {
		return apperror.NewValidation("invalid unit type").
			WithDetail("field", "type").
			WithDetail("value", string(u.Type))
	}
	if !u.ConversionFactor.IsPositive() {
		return apperror.NewValidation("conversion factor must be positive").
			WithDetail("field", "conversionFactor")
	}
	// A unit that references a base cannot itself claim to be one.
	if u.BaseUnitID != nil && *u.BaseUnitID != "" && u.IsBase {
		return apperror.NewValidation("unit with base unit reference cannot be marked as base").
			WithDetail("field", "isBase")
	}
	return nil
}

// ConvertTo converts qty from this unit into target, going through the
// shared base: qty * source.factor / target.factor. Result is rounded
// to 3 decimal places.
func (u *Unit) ConvertTo(qty decimal.Decimal, target *Unit) (decimal.Decimal, error) {
	if u.Type != target.Type {
		return decimal.Zero, apperror.NewValidation("cannot convert between different unit types").
			WithDetail("source", string(u.Type)).
			WithDetail("target", string(target.Type))
	}
	return qty.Mul(u.ConversionFactor).Div(target.ConversionFactor).Round(3), nil
}
