package dto

import (
	"time"

	"valora/internal/core/apperror"
	"valora/internal/core/id"
	"valora/internal/domain/reports"
)

// Report results are serialized straight from the domain types in
// internal/domain/reports. The DTOs here only bind and validate query
// parameters.

func parseIDList(values []string, field string) ([]id.ID, error) {
	if len(values) == 0 {
		return nil, nil
	}
	ids := make([]id.ID, 0, len(values))
	for _, v := range values {
		parsed, err := id.Parse(v)
		if err != nil {
			return nil, apperror.NewValidation("invalid id format").
				WithDetail("field", field).
				WithDetail("value", v)
		}
		ids = append(ids, parsed)
	}
	return ids, nil
}

func parseOptionalDate(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		if t, err = time.Parse("2006-01-02", value); err != nil {
			return nil, apperror.NewValidation("invalid date format (RFC3339 or YYYY-MM-DD expected)").
				WithDetail("field", field).
				WithDetail("value", value)
		}
	}
	return &t, nil
}

// --- Stock Card ---

// StockCardRequest binds query params for a product's stock card.
type StockCardRequest struct {
	ProductID   string `form:"productId" binding:"required"`
	WarehouseID string `form:"warehouseId"`
	ProjectID   string `form:"projectId"`
	FromDate    string `form:"fromDate"`
	ToDate      string `form:"toDate"`
	Limit       int    `form:"limit"`
	Offset      int    `form:"offset"`
}

// ToFilter converts the request to a domain filter.
func (r *StockCardRequest) ToFilter() (reports.StockCardFilter, error) {
	var f reports.StockCardFilter

	productID, err := id.Parse(r.ProductID)
	if err != nil {
		return f, apperror.NewValidation("invalid productId format")
	}
	f.ProductID = productID

	if r.WarehouseID != "" {
		whID, err := id.Parse(r.WarehouseID)
		if err != nil {
			return f, apperror.NewValidation("invalid warehouseId format")
		}
		f.WarehouseID = &whID
	}
	if r.ProjectID != "" {
		prjID, err := id.Parse(r.ProjectID)
		if err != nil {
			return f, apperror.NewValidation("invalid projectId format")
		}
		f.ProjectID = &prjID
	}
	if f.FromDate, err = parseOptionalDate(r.FromDate, "fromDate"); err != nil {
		return f, err
	}
	if f.ToDate, err = parseOptionalDate(r.ToDate, "toDate"); err != nil {
		return f, err
	}
	f.Limit = r.Limit
	f.Offset = r.Offset
	return f, nil
}

// --- Valuation Summary ---

// ValuationRequest binds query params for the inventory valuation summary.
type ValuationRequest struct {
	SubPeriodID  string   `form:"subPeriodId" binding:"required"`
	WarehouseIDs []string `form:"warehouseId"`
	ProductIDs   []string `form:"productId"`
	ExcludeZero  bool     `form:"excludeZero"`
	Limit        int      `form:"limit"`
	Offset       int      `form:"offset"`
}

// ToFilter converts the request to a domain filter.
func (r *ValuationRequest) ToFilter() (reports.ValuationFilter, error) {
	var f reports.ValuationFilter

	subPeriodID, err := id.Parse(r.SubPeriodID)
	if err != nil {
		return f, apperror.NewValidation("invalid subPeriodId format")
	}
	f.SubPeriodID = subPeriodID

	if f.WarehouseIDs, err = parseIDList(r.WarehouseIDs, "warehouseId"); err != nil {
		return f, err
	}
	if f.ProductIDs, err = parseIDList(r.ProductIDs, "productId"); err != nil {
		return f, err
	}
	f.ExcludeZero = r.ExcludeZero
	f.Limit = r.Limit
	f.Offset = r.Offset
	return f, nil
}

// --- Stock Turnover ---

// StockTurnoverRequest binds query params for the turnover report.
type StockTurnoverRequest struct {
	FromDate         string   `form:"fromDate" binding:"required"`
	ToDate           string   `form:"toDate" binding:"required"`
	WarehouseIDs     []string `form:"warehouseId"`
	ProductIDs       []string `form:"productId"`
	GroupByWarehouse bool     `form:"groupByWarehouse"`
	IncludeZero      bool     `form:"includeZero"`
	Limit            int      `form:"limit"`
	Offset           int      `form:"offset"`
}

// ToFilter converts the request to a domain filter.
func (r *StockTurnoverRequest) ToFilter() (reports.StockTurnoverReportFilter, error) {
	var f reports.StockTurnoverReportFilter

	fromDate, err := parseOptionalDate(r.FromDate, "fromDate")
	if err != nil {
		return f, err
	}
	toDate, err := parseOptionalDate(r.ToDate, "toDate")
	if err != nil {
		return f, err
	}
	f.FromDate = *fromDate
	f.ToDate = *toDate

	if f.WarehouseIDs, err = parseIDList(r.WarehouseIDs, "warehouseId"); err != nil {
		return f, err
	}
	if f.ProductIDs, err = parseIDList(r.ProductIDs, "productId"); err != nil {
		return f, err
	}
	f.GroupByWarehouse = r.GroupByWarehouse
	f.IncludeZero = r.IncludeZero
	f.Limit = r.Limit
	f.Offset = r.Offset
	return f, nil
}

// --- Document Journal ---

// DocumentJournalRequest binds query params for the document journal.
type DocumentJournalRequest struct {
	FromDate       string   `form:"fromDate"`
	ToDate         string   `form:"toDate"`
	DocumentTypes  []string `form:"documentType"`
	Posted         *bool    `form:"posted"`
	NumberContains string   `form:"number"`
	WarehouseIDs   []string `form:"warehouseId"`
	SortBy         string   `form:"sortBy"`
	SortOrder      string   `form:"sortOrder"`
	Limit          int      `form:"limit"`
	Offset         int      `form:"offset"`
}

// ToFilter converts the request to a domain filter.
func (r *DocumentJournalRequest) ToFilter() (reports.DocumentJournalFilter, error) {
	var f reports.DocumentJournalFilter
	var err error

	if f.FromDate, err = parseOptionalDate(r.FromDate, "fromDate"); err != nil {
		return f, err
	}
	if f.ToDate, err = parseOptionalDate(r.ToDate, "toDate"); err != nil {
		return f, err
	}
	if f.WarehouseIDs, err = parseIDList(r.WarehouseIDs, "warehouseId"); err != nil {
		return f, err
	}
	f.DocumentTypes = r.DocumentTypes
	f.Posted = r.Posted
	f.NumberContains = r.NumberContains
	f.SortBy = r.SortBy
	f.SortOrder = r.SortOrder
	f.Limit = r.Limit
	f.Offset = r.Offset
	return f, nil
}
