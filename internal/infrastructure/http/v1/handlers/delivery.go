package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"valora/internal/core/tenant"
	"valora/internal/domain/documents/delivery"
	"valora/internal/infrastructure/http/v1/dto"
)

// DeliveryHandler handles HTTP requests for delivery documents.
type DeliveryHandler struct {
	*BaseDocumentHandler[*delivery.Delivery, dto.CreateDeliveryRequest, dto.UpdateDeliveryRequest]
	service *delivery.Service
}

// NewDeliveryHandler creates a new delivery handler.
func NewDeliveryHandler(base *BaseHandler, service *delivery.Service) *DeliveryHandler {
	cfg := BaseDocumentHandlerConfig[*delivery.Delivery, dto.CreateDeliveryRequest, dto.UpdateDeliveryRequest]{
		Service:    service,
		EntityName: "delivery",
		MapCreateDTO: func(req dto.CreateDeliveryRequest, scope tenant.Scope) *delivery.Delivery {
			return req.ToEntity(scope)
		},
		MapUpdateDTO: func(req dto.UpdateDeliveryRequest, existing *delivery.Delivery) *delivery.Delivery {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(doc *delivery.Delivery) any {
			return dto.FromDelivery(doc)
		},
		IsPostImmediately: func(req dto.CreateDeliveryRequest) bool {
			return req.PostImmediately
		},
	}

	return &DeliveryHandler{
		BaseDocumentHandler: NewBaseDocumentHandler(base, cfg),
		service:             service,
	}
}

// List handles GET /documents/deliveries - list with filtering.
func (h *DeliveryHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := delivery.ListFilter{
		ListFilter: h.ParseListFilter(c, "date DESC"),
	}
	filter.CustomerID = queryID(c, "customerId")
	filter.WarehouseID = queryID(c, "warehouseId")
	filter.SaleOrderID = queryID(c, "saleOrderId")
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
		items[i] = dto.FromDelivery(doc)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
