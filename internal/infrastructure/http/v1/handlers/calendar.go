package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"valora/internal/core/apperror"
	"valora/internal/core/id"
	"valora/internal/domain/calendar"
	"valora/internal/domain/ledger"
	"valora/internal/infrastructure/http/v1/dto"
	"valora/internal/infrastructure/http/v1/middleware"
)

// CalendarHandler manages the fiscal calendar: opening years, listing
// sub-periods, and closing a sub-period under periodic valuation.
type CalendarHandler struct {
	*BaseHandler
	calendar *calendar.Service
	repo     calendar.Repository
	engine   *ledger.Engine
}

// NewCalendarHandler creates a new fiscal calendar handler.
func NewCalendarHandler(base *BaseHandler, cal *calendar.Service, repo calendar.Repository, engine *ledger.Engine) *CalendarHandler {
	return &CalendarHandler{
		BaseHandler: base,
		calendar:    cal,
		repo:        repo,
		engine:      engine,
	}
}

// CreateFiscalYear handles POST /calendar/periods - opens a fiscal year
// with its twelve sub-periods.
func (h *CalendarHandler) CreateFiscalYear(c *gin.Context) {
	ctx := c.Request.Context()

	scope, err := middleware.GetScope(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	var req dto.CreateFiscalYearRequest
	if !h.BindJSON(c, &req) {
		return
	}

	period, err := h.calendar.CreateFiscalYear(ctx, scope, req.FiscalYear)
	if err != nil {
		h.Error(c, err)
		return
	}

	subs, err := h.repo.ListSubPeriods(ctx, period.ID)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FiscalYearResponse{Period: period, SubPeriods: subs}
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// GetFiscalYear handles GET /calendar/periods/:year - returns a fiscal
// year with its sub-periods.
func (h *CalendarHandler) GetFiscalYear(c *gin.Context) {
	ctx := c.Request.Context()

	scope, err := middleware.GetScope(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid fiscal year"))
		return
	}

	period, err := h.repo.GetPeriodByYear(ctx, scope, year)
	if err != nil {
		h.Error(c, err)
		return
	}
	if period == nil {
		h.Error(c, apperror.NewNotFound("period", strconv.Itoa(year)))
		return
	}

	subs, err := h.repo.ListSubPeriods(ctx, period.ID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FiscalYearResponse{Period: period, SubPeriods: subs})
}

// CloseSubPeriod handles POST /calendar/close - runs the periodic close
// for one sub-period, recalculating issue costs from the month's average.
func (h *CalendarHandler) CloseSubPeriod(c *gin.Context) {
	ctx := c.Request.Context()

	scope, err := middleware.GetScope(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	var req dto.CloseSubPeriodRequest
	if !h.BindJSON(c, &req) {
		return
	}

	subPeriodID, err := id.Parse(req.SubPeriodID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid subPeriodId format"))
		return
	}

	sub, err := h.repo.GetSubPeriodByID(ctx, subPeriodID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if sub == nil {
		h.Error(c, apperror.NewNotFound("sub-period", req.SubPeriodID))
		return
	}

	if err := h.engine.CloseSubPeriod(ctx, scope, sub); err != nil {
		h.Error(c, err)
		return
	}

	response := gin.H{"subPeriodId": sub.ID.String(), "closed": true}
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// RegisterRoutes registers fiscal calendar routes.
func (h *CalendarHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/periods", h.CreateFiscalYear)
	rg.GET("/periods/:year", h.GetFiscalYear)
	rg.POST("/close", h.CloseSubPeriod)
}
