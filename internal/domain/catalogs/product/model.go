// Package product provides the Product catalog: the traded items whose
// stock the ledger values.
package product

import (
	"context"

	"github.com/shopspring/decimal"

	"valora/internal/core/apperror"
	"valora/internal/core/entity"
	"valora/internal/core/id"
)

// ProductType defines the kind of item.
type ProductType string

const (
	TypeGoods    ProductType = "goods"
	TypeMaterial ProductType = "material"
	TypeService  ProductType = "service"
	TypeProduct  ProductType = "product" // manufactured output
)

// VATRate defines the default VAT rate for the item.
type VATRate string

const (
	VAT0  VATRate = "0"
	VAT5  VATRate = "5"
	VAT8  VATRate = "8"
	VAT10 VATRate = "10"
)

// Product represents an item that can be received, stored, and issued.
// Its traceability kind and valuation flag determine how the ledger
// segregates cost for its movements.
type Product struct {
	entity.Catalog

	Type ProductType `db:"type" json:"type"`

	// SKU is the stock keeping unit / article
	SKU *string `db:"sku" json:"sku,omitempty"`

	// Barcode (EAN-13 etc.)
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	// BaseUnitID is the base inventory unit of measure. All ledger
	// quantities for this product are expressed in it.
	BaseUnitID id.ID `db:"base_unit_id" json:"baseUnitId"`

	// Trace is the traceability method: none, lot, or serial
	Trace entity.TraceKind `db:"trace_kind" json:"traceKind"`

	// SpecificIdentification values each serial at its own acquisition
	// cost instead of the weighted average. Requires serial traceability.
	SpecificIdentification bool `db:"specific_identification" json:"specificIdentification"`

	VATRate VATRate `db:"vat_rate" json:"vatRate"`

	// Weight in kg, Volume in cubic meters (logistics)
	Weight decimal.Decimal `db:"weight" json:"weight"`
	Volume decimal.Decimal `db:"volume" json:"volume"`

	Description *string `db:"description" json:"description,omitempty"`

	// MinStock triggers low-stock listings
	MinStock decimal.Decimal `db:"min_stock" json:"minStock"`
}

// NewProduct creates a Product with required fields.
func NewProduct(code, name string, productType ProductType, baseUnitID id.ID) *Product {
	return &Product{
		Catalog:    entity.NewCatalog(code, name),
		Type:       productType,
		BaseUnitID: baseUnitID,
		Trace:      entity.TraceNone,
		VATRate:    VAT10,
		Weight:     decimal.Zero,
		Volume:     decimal.Zero,
		MinStock:   decimal.Zero,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidProductType(p.Type) {
		return apperror.NewValidation("invalid product type").
			WithDetail("field", "type").
			WithDetail("value", string(p.Type))
	}

	if !isValidVATRate(p.VATRate) {
		return apperror.NewValidation("invalid VAT rate").
			WithDetail("field", "vatRate").
			WithDetail("value", string(p.VATRate))
	}

	if id.IsNil(p.BaseUnitID) {
		return apperror.NewValidation("base unit is required").
			WithDetail("field", "baseUnitId")
	}

	switch p.Trace {
	case entity.TraceNone, entity.TraceLot, entity.TraceSerial:
	default:
		return apperror.NewValidation("invalid traceability kind").
			WithDetail("field", "traceKind").
			WithDetail("value", string(p.Trace))
	}

	if p.Type == TypeService && p.Trace != entity.TraceNone {
		return apperror.NewValidation("services cannot be traced by lot or serial").
			WithDetail("field", "traceKind")
	}

	if p.SpecificIdentification && p.Trace != entity.TraceSerial {
		return apperror.NewValidation("specific identification requires serial traceability").
			WithDetail("field", "specificIdentification")
	}

	if p.Weight.IsNegative() {
		return apperror.NewValidation("weight cannot be negative").
			WithDetail("field", "weight")
	}
	if p.Volume.IsNegative() {
		return apperror.NewValidation("volume cannot be negative").
			WithDetail("field", "volume")
	}

	return nil
}

// IsPhysical returns true when the item occupies stock.
func (p *Product) IsPhysical() bool {
	return p.Type != TypeService
}

// IsTracked returns true when movements carry lot or serial data.
func (p *Product) IsTracked() bool {
	return p.Trace != entity.TraceNone
}

func isValidProductType(t ProductType) bool {
	switch t {
	case TypeGoods, TypeMaterial, TypeService, TypeProduct:
		return true
	}
	return false
}

func isValidVATRate(r VATRate) bool {
	switch r {
	case VAT0, VAT5, VAT8, VAT10:
		return true
	}
	return false
}
