package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"valora/internal/core/tenant"
	"valora/internal/domain/documents/goods_transfer"
	"valora/internal/infrastructure/http/v1/dto"
)

// GoodsTransferHandler handles HTTP requests for warehouse transfer documents.
type GoodsTransferHandler struct {
	*BaseDocumentHandler[*goods_transfer.GoodsTransfer, dto.CreateGoodsTransferRequest, dto.UpdateGoodsTransferRequest]
	service *goods_transfer.Service
}

// NewGoodsTransferHandler creates a new goods transfer handler.
func NewGoodsTransferHandler(base *BaseHandler, service *goods_transfer.Service) *GoodsTransferHandler {
	cfg := BaseDocumentHandlerConfig[*goods_transfer.GoodsTransfer, dto.CreateGoodsTransferRequest, dto.UpdateGoodsTransferRequest]{
		Service:    service,
		EntityName: "goods-transfer",
		MapCreateDTO: func(req dto.CreateGoodsTransferRequest, scope tenant.Scope) *goods_transfer.GoodsTransfer {
			return req.ToEntity(scope)
		},
		MapUpdateDTO: func(req dto.UpdateGoodsTransferRequest, existing *goods_transfer.GoodsTransfer) *goods_transfer.GoodsTransfer {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(doc *goods_transfer.GoodsTransfer) any {
			return dto.FromGoodsTransfer(doc)
		},
		IsPostImmediately: func(req dto.CreateGoodsTransferRequest) bool {
			return req.PostImmediately
		},
	}

	return &GoodsTransferHandler{
		BaseDocumentHandler: NewBaseDocumentHandler(base, cfg),
		service:             service,
	}
}

// List handles GET /documents/goods-transfers - list with filtering.
func (h *GoodsTransferHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := goods_transfer.ListFilter{
		ListFilter: h.ParseListFilter(c, "date DESC"),
	}
	filter.SourceWarehouseID = queryID(c, "sourceWarehouseId")
	filter.DestWarehouseID = queryID(c, "destWarehouseId")
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
		items[i] = dto.FromGoodsTransfer(doc)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
