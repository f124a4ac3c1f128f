package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"valora/internal/core/tenant"
	"valora/internal/domain/documents/goods_return"
	"valora/internal/infrastructure/http/v1/dto"
)

// GoodsReturnHandler handles HTTP requests for customer return documents.
type GoodsReturnHandler struct {
	*BaseDocumentHandler[*goods_return.GoodsReturn, dto.CreateGoodsReturnRequest, dto.UpdateGoodsReturnRequest]
	service *goods_return.Service
}

// NewGoodsReturnHandler creates a new goods return handler.
func NewGoodsReturnHandler(base *BaseHandler, service *goods_return.Service) *GoodsReturnHandler {
	cfg := BaseDocumentHandlerConfig[*goods_return.GoodsReturn, dto.CreateGoodsReturnRequest, dto.UpdateGoodsReturnRequest]{
		Service:    service,
		EntityName: "goods-return",
		MapCreateDTO: func(req dto.CreateGoodsReturnRequest, scope tenant.Scope) *goods_return.GoodsReturn {
			return req.ToEntity(scope)
		},
		MapUpdateDTO: func(req dto.UpdateGoodsReturnRequest, existing *goods_return.GoodsReturn) *goods_return.GoodsReturn {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(doc *goods_return.GoodsReturn) any {
			return dto.FromGoodsReturn(doc)
		},
		IsPostImmediately: func(req dto.CreateGoodsReturnRequest) bool {
			return req.PostImmediately
		},
	}

	return &GoodsReturnHandler{
		BaseDocumentHandler: NewBaseDocumentHandler(base, cfg),
		service:             service,
	}
}

// List handles GET /documents/goods-returns - list with filtering.
func (h *GoodsReturnHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := goods_return.ListFilter{
		ListFilter: h.ParseListFilter(c, "date DESC"),
	}
	filter.CustomerID = queryID(c, "customerId")
	filter.WarehouseID = queryID(c, "warehouseId")
	filter.DeliveryID = queryID(c, "deliveryId")
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
		items[i] = dto.FromGoodsReturn(doc)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
