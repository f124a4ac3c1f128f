package handlers

import (
	"github.com/gin-gonic/gin"

	"valora/internal/domain/catalogs/warehouse"
	"valora/internal/infrastructure/http/v1/dto"
	"valora/internal/infrastructure/http/v1/middleware"
)

// WarehouseHTTPHandler is a type alias for the configured generic handler.
type WarehouseHTTPHandler = CatalogHandler[
	*warehouse.Warehouse,
	dto.CreateWarehouseRequest,
	dto.UpdateWarehouseRequest,
]

// NewWarehouseHandler wires the generic catalog handler for warehouses.
// New warehouses are attached to the company resolved by the scope
// middleware.
func NewWarehouseHandler(
	base *BaseHandler,
	service *warehouse.Service,
) *WarehouseHTTPHandler {
	config := CatalogHandlerConfig[
		*warehouse.Warehouse,
		dto.CreateWarehouseRequest,
		dto.UpdateWarehouseRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "warehouse",

		MapCreateDTO: func(c *gin.Context, req dto.CreateWarehouseRequest) (*warehouse.Warehouse, error) {
			scope, err := middleware.GetScope(c)
			if err != nil {
				return nil, err
			}
			return req.ToEntity(scope.CompanyID), nil
		},
		MapUpdateDTO: func(req dto.UpdateWarehouseRequest, existing *warehouse.Warehouse) *warehouse.Warehouse {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(entity *warehouse.Warehouse) any {
			return dto.FromWarehouse(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
