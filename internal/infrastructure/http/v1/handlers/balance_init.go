package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"valora/internal/core/tenant"
	"valora/internal/domain/documents/balance_init"
	"valora/internal/infrastructure/http/v1/dto"
)

// BalanceInitHandler handles HTTP requests for opening balance documents.
type BalanceInitHandler struct {
	*BaseDocumentHandler[*balance_init.BalanceInit, dto.CreateBalanceInitRequest, dto.UpdateBalanceInitRequest]
	service *balance_init.Service
}

// NewBalanceInitHandler creates a new balance init handler.
func NewBalanceInitHandler(base *BaseHandler, service *balance_init.Service) *BalanceInitHandler {
	cfg := BaseDocumentHandlerConfig[*balance_init.BalanceInit, dto.CreateBalanceInitRequest, dto.UpdateBalanceInitRequest]{
		Service:    service,
		EntityName: "balance-init",
		MapCreateDTO: func(req dto.CreateBalanceInitRequest, scope tenant.Scope) *balance_init.BalanceInit {
			return req.ToEntity(scope)
		},
		MapUpdateDTO: func(req dto.UpdateBalanceInitRequest, existing *balance_init.BalanceInit) *balance_init.BalanceInit {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(doc *balance_init.BalanceInit) any {
			return dto.FromBalanceInit(doc)
		},
		IsPostImmediately: func(req dto.CreateBalanceInitRequest) bool {
			return req.PostImmediately
		},
	}

	return &BalanceInitHandler{
		BaseDocumentHandler: NewBaseDocumentHandler(base, cfg),
		service:             service,
	}
}

// List handles GET /documents/balance-inits - list with filtering.
func (h *BalanceInitHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := balance_init.ListFilter{
		ListFilter: h.ParseListFilter(c, "date DESC"),
	}
	filter.WarehouseID = queryID(c, "warehouseId")
	filter.Posted = queryBool(c, "posted")
	filter.DateFrom = queryDate(c, "dateFrom")
	filter.DateTo = queryDate(c, "dateTo")

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromBalanceInit(doc)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
