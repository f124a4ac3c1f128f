package handlers

import (
	"github.com/gin-gonic/gin"

	"valora/internal/domain/catalogs/counterparty"
	"valora/internal/infrastructure/http/v1/dto"
)

// CounterpartyHTTPHandler is a type alias; the full generic signature is
// unwieldy at call sites.
type CounterpartyHTTPHandler = CatalogHandler[
	*counterparty.Counterparty,
	dto.CreateCounterpartyRequest,
	dto.UpdateCounterpartyRequest,
]

// NewCounterpartyHandler wires the generic catalog handler for counterparties.
func NewCounterpartyHandler(
	base *BaseHandler,
	service *counterparty.Service,
) *CounterpartyHTTPHandler {
	config := CatalogHandlerConfig[
		*counterparty.Counterparty,
		dto.CreateCounterpartyRequest,
		dto.UpdateCounterpartyRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "counterparty",

		MapCreateDTO: func(_ *gin.Context, req dto.CreateCounterpartyRequest) (*counterparty.Counterparty, error) {
			return req.ToEntity(), nil
		},
		MapUpdateDTO: func(req dto.UpdateCounterpartyRequest, existing *counterparty.Counterparty) *counterparty.Counterparty {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(entity *counterparty.Counterparty) any {
			return dto.FromCounterparty(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
