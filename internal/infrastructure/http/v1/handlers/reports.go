package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"valora/internal/domain/reports"
	"valora/internal/infrastructure/http/v1/dto"
	"valora/internal/infrastructure/http/v1/middleware"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetStockCard handles GET /reports/stock-card
func (h *ReportsHandler) GetStockCard(c *gin.Context) {
	ctx := c.Request.Context()

	scope, err := middleware.GetScope(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	var req dto.StockCardRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.GetStockCard(ctx, scope, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetValuationSummary handles GET /reports/valuation
func (h *ReportsHandler) GetValuationSummary(c *gin.Context) {
	ctx := c.Request.Context()

	scope, err := middleware.GetScope(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	var req dto.ValuationRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.GetValuationSummary(ctx, scope, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetStockTurnover handles GET /reports/stock-turnover
func (h *ReportsHandler) GetStockTurnover(c *gin.Context) {
	ctx := c.Request.Context()

	scope, err := middleware.GetScope(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	var req dto.StockTurnoverRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.GetStockTurnover(ctx, scope, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetDocumentJournal handles GET /reports/document-journal
func (h *ReportsHandler) GetDocumentJournal(c *gin.Context) {
	ctx := c.Request.Context()

	scope, err := middleware.GetScope(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	var req dto.DocumentJournalRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	journal, err := h.service.GetDocumentJournal(ctx, scope, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, journal)
}

// RegisterRoutes registers report routes.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stock-card", h.GetStockCard)
	rg.GET("/valuation", h.GetValuationSummary)
	rg.GET("/stock-turnover", h.GetStockTurnover)
	rg.GET("/document-journal", h.GetDocumentJournal)
}
