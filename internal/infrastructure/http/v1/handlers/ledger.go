package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"valora/internal/core/apperror"
	"valora/internal/core/id"
	"valora/internal/domain/ledger"
	"valora/internal/domain/registration"
	"valora/internal/infrastructure/http/v1/dto"
	"valora/internal/infrastructure/http/v1/middleware"
)

// LedgerHandler exposes read access to the stock ledger: the append-only
// movement log, the per-sub-period cost entries, and the sale order
// fulfillment accumulator.
type LedgerHandler struct {
	*BaseHandler
	store       ledger.Store
	fulfillment *registration.Service
}

// NewLedgerHandler creates a new ledger query handler.
func NewLedgerHandler(base *BaseHandler, store ledger.Store, fulfillment *registration.Service) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: base,
		store:       store,
		fulfillment: fulfillment,
	}
}

// ListLogs handles GET /ledger/logs
func (h *LedgerHandler) ListLogs(c *gin.Context) {
	ctx := c.Request.Context()

	scope, err := middleware.GetScope(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	var req dto.StockLogListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}

	logs, err := h.store.ListLogs(ctx, scope, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StockLogListResponse{
		Items:  logs,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// ListEntries handles GET /ledger/entries
func (h *LedgerHandler) ListEntries(c *gin.Context) {
	ctx := c.Request.Context()

	scope, err := middleware.GetScope(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	periodID, err := id.Parse(c.Query("periodId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid periodId format"))
		return
	}
	subPeriodID, err := id.Parse(c.Query("subPeriodId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid subPeriodId format"))
		return
	}

	entries, err := h.store.ListEntriesBySubPeriod(ctx, scope, periodID, subPeriodID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LedgerEntryListResponse{
		PeriodID:    periodID.String(),
		SubPeriodID: subPeriodID.String(),
		Items:       entries,
	})
}

// GetFulfillment handles GET /ledger/fulfillment/:saleOrderId
func (h *LedgerHandler) GetFulfillment(c *gin.Context) {
	ctx := c.Request.Context()

	scope, err := middleware.GetScope(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	saleOrderID, err := id.Parse(c.Param("saleOrderId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid saleOrderId format"))
		return
	}

	rows, err := h.fulfillment.FulfillmentForOrder(ctx, scope, saleOrderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": rows})
}

// RegisterRoutes registers ledger query routes.
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/logs", h.ListLogs)
	rg.GET("/entries", h.ListEntries)
	rg.GET("/fulfillment/:saleOrderId", h.GetFulfillment)
}
