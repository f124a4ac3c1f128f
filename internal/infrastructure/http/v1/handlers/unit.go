package handlers

import (
	"github.com/gin-gonic/gin"

	"valora/internal/domain/catalogs/unit"
	"valora/internal/infrastructure/http/v1/dto"
)

// UnitHTTPHandler is the generic catalog handler configured for units of measure.
type UnitHTTPHandler = CatalogHandler[*unit.Unit, dto.CreateUnitRequest, dto.UpdateUnitRequest]

// NewUnitHandler wires CRUD endpoints for the unit catalog.
func NewUnitHandler(base *BaseHandler, service *unit.Service) *UnitHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*unit.Unit, dto.CreateUnitRequest, dto.UpdateUnitRequest]{
		Service:    service.CatalogService,
		EntityName: "unit",
		MapCreateDTO: func(_ *gin.Context, req dto.CreateUnitRequest) (*unit.Unit, error) {
			return req.ToEntity(), nil
		},
		MapUpdateDTO: func(req dto.UpdateUnitRequest, existing *unit.Unit) *unit.Unit {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(u *unit.Unit) any {
			return dto.FromUnit(u)
		},
	})
}
