package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"valora/internal/core/apperror"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/domain/documents/goods_receipt"
	"valora/internal/infrastructure/http/v1/dto"
)

// GoodsReceiptHandler handles HTTP requests for goods receipt documents.
type GoodsReceiptHandler struct {
	*BaseDocumentHandler[*goods_receipt.GoodsReceipt, dto.CreateGoodsReceiptRequest, dto.UpdateGoodsReceiptRequest]
	service *goods_receipt.Service
}

// NewGoodsReceiptHandler creates a new goods receipt handler.
func NewGoodsReceiptHandler(base *BaseHandler, service *goods_receipt.Service) *GoodsReceiptHandler {
	cfg := BaseDocumentHandlerConfig[*goods_receipt.GoodsReceipt, dto.CreateGoodsReceiptRequest, dto.UpdateGoodsReceiptRequest]{
		Service:    service,
		EntityName: "goods-receipt",
		MapCreateDTO: func(req dto.CreateGoodsReceiptRequest, scope tenant.Scope) *goods_receipt.GoodsReceipt {
			return req.ToEntity(scope)
		},
		MapUpdateDTO: func(req dto.UpdateGoodsReceiptRequest, existing *goods_receipt.GoodsReceipt) *goods_receipt.GoodsReceipt {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(doc *goods_receipt.GoodsReceipt) any {
			return dto.FromGoodsReceipt(doc)
		},
		IsPostImmediately: func(req dto.CreateGoodsReceiptRequest) bool {
			return req.PostImmediately
		},
	}

	return &GoodsReceiptHandler{
		BaseDocumentHandler: NewBaseDocumentHandler(base, cfg),
		service:             service,
	}
}

// List handles GET /documents/goods-receipts - list with filtering.
func (h *GoodsReceiptHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := goods_receipt.ListFilter{
		ListFilter: h.ParseListFilter(c, "date DESC"),
	}
	filter.SupplierID = queryID(c, "supplierId")
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
		items[i] = dto.FromGoodsReceipt(doc)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Copy handles POST /documents/goods-receipts/:id/copy - creates an
// unposted copy of an existing receipt with a fresh number and date.
func (h *GoodsReceiptHandler) Copy(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	source, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	copied := goods_receipt.NewGoodsReceipt(source.Scope, source.SupplierID, source.WarehouseID)
	copied.Date = time.Now().UTC()
	copied.SupplierDocNumber = source.SupplierDocNumber
	copied.SupplierDocDate = source.SupplierDocDate
	copied.Currency = source.Currency
	copied.Comment = source.Comment
	for _, line := range source.Lines {
		copied.AddLine(line)
	}
	h.stampCreated(c, copied)

	if err := h.service.Create(ctx, copied); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromGoodsReceipt(copied)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}
