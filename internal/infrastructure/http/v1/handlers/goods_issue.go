package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"valora/internal/core/tenant"
	"valora/internal/domain/documents/goods_issue"
	"valora/internal/infrastructure/http/v1/dto"
)

// GoodsIssueHandler handles HTTP requests for goods issue documents.
type GoodsIssueHandler struct {
	*BaseDocumentHandler[*goods_issue.GoodsIssue, dto.CreateGoodsIssueRequest, dto.UpdateGoodsIssueRequest]
	service *goods_issue.Service
}

// NewGoodsIssueHandler creates a new goods issue handler.
func NewGoodsIssueHandler(base *BaseHandler, service *goods_issue.Service) *GoodsIssueHandler {
	cfg := BaseDocumentHandlerConfig[*goods_issue.GoodsIssue, dto.CreateGoodsIssueRequest, dto.UpdateGoodsIssueRequest]{
		Service:    service,
		EntityName: "goods-issue",
		MapCreateDTO: func(req dto.CreateGoodsIssueRequest, scope tenant.Scope) *goods_issue.GoodsIssue {
			return req.ToEntity(scope)
		},
		MapUpdateDTO: func(req dto.UpdateGoodsIssueRequest, existing *goods_issue.GoodsIssue) *goods_issue.GoodsIssue {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(doc *goods_issue.GoodsIssue) any {
			return dto.FromGoodsIssue(doc)
		},
		IsPostImmediately: func(req dto.CreateGoodsIssueRequest) bool {
			return req.PostImmediately
		},
	}

	return &GoodsIssueHandler{
		BaseDocumentHandler: NewBaseDocumentHandler(base, cfg),
		service:             service,
	}
}

// List handles GET /documents/goods-issues - list with filtering.
func (h *GoodsIssueHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := goods_issue.ListFilter{
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
		items[i] = dto.FromGoodsIssue(doc)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
