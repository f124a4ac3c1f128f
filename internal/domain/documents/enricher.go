package documents

import (
	"context"

	"valora/internal/core/apperror"
	"valora/internal/core/id"
	"valora/internal/core/types"
	"valora/internal/domain/catalogs/product"
	"valora/internal/domain/catalogs/unit"
)

// LineEnricher stamps catalog-derived fields onto document lines before
// validation: the product's traceability kind and valuation flag, and the
// base-unit conversion ratio. Stamping at entry keeps posting free of
// catalog lookups and freezes the ratio the document was entered with.
type LineEnricher struct {
	products product.Repository
	units    unit.Repository
}

// NewLineEnricher creates a line enricher.
func NewLineEnricher(products product.Repository, units unit.Repository) *LineEnricher {
	return &LineEnricher{products: products, units: units}
}

// Enrich resolves every line's product and unit and stamps the derived
// fields in place.
func (e *LineEnricher) Enrich(ctx context.Context, lines []StockLine) error {
	ids := make([]id.ID, 0, len(lines))
	seen := make(map[id.ID]bool)
	for i := range lines {
		if !seen[lines[i].ProductID] {
			seen[lines[i].ProductID] = true
			ids = append(ids, lines[i].ProductID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	products, err := e.products.GetMany(ctx, ids)
	if err != nil {
		return err
	}

	for i := range lines {
		l := &lines[i]
		p, ok := products[l.ProductID]
		if !ok {
			return apperror.NewNotFound("product", l.ProductID.String()).
				WithDetail("lineNo", i+1)
		}

		l.Trace = p.Trace
		l.SpecificIdentification = p.SpecificIdentification

		if id.IsNil(l.UnitID) || l.UnitID == p.BaseUnitID {
			l.UnitID = p.BaseUnitID
			l.UnitRatio = types.NewQuantityFromFloat64(1)
			continue
		}

		u, err := e.units.GetByID(ctx, l.UnitID)
		if err != nil {
			return err
		}
		ratio := types.NewQuantityFromFloat64(u.ConversionFactor.InexactFloat64())
		if !ratio.IsPositive() {
			return apperror.NewValidation("unit has no conversion to the product's base unit").
				WithDetail("lineNo", i+1).
				WithDetail("unitId", l.UnitID.String())
		}
		l.UnitRatio = ratio
	}
	return nil
}
