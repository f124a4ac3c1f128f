package dto

import (
	"valora/internal/core/apperror"
	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/domain/ledger"
)

// Ledger rows (entity.StockLog, entity.CostLedgerEntry) and fulfillment
// rows carry their own json tags and are serialized directly.

// StockLogListRequest binds query params for listing stock log movements.
type StockLogListRequest struct {
	ProductID   string `form:"productId"`
	WarehouseID string `form:"warehouseId"`
	TransID     string `form:"transId"`
	SubPeriodID string `form:"subPeriodId"`
	StockType   *int   `form:"stockType"`
	Limit       int    `form:"limit"`
	Offset      int    `form:"offset"`
}

// ToFilter converts the request to a ledger log filter.
func (r *StockLogListRequest) ToFilter() (ledger.LogFilter, error) {
	var f ledger.LogFilter

	setID := func(value, field string, dst **id.ID) error {
		if value == "" {
			return nil
		}
		parsed, err := id.Parse(value)
		if err != nil {
			return apperror.NewValidation("invalid id format").
				WithDetail("field", field)
		}
		*dst = &parsed
		return nil
	}

	if err := setID(r.ProductID, "productId", &f.ProductID); err != nil {
		return f, err
	}
	if err := setID(r.WarehouseID, "warehouseId", &f.WarehouseID); err != nil {
		return f, err
	}
	if err := setID(r.TransID, "transId", &f.TransID); err != nil {
		return f, err
	}
	if err := setID(r.SubPeriodID, "subPeriodId", &f.SubPeriodID); err != nil {
		return f, err
	}
	if r.StockType != nil {
		st := entity.StockType(*r.StockType)
		if st != entity.StockTypeIn && st != entity.StockTypeOut {
			return f, apperror.NewValidation("stockType must be 1 or -1")
		}
		f.StockType = &st
	}
	f.Limit = r.Limit
	f.Offset = r.Offset
	return f, nil
}

// StockLogListResponse wraps a page of stock log rows.
type StockLogListResponse struct {
	Items  []*entity.StockLog `json:"items"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// LedgerEntryListResponse wraps the roll-forward entries of one sub-period.
type LedgerEntryListResponse struct {
	PeriodID    string                    `json:"periodId"`
	SubPeriodID string                    `json:"subPeriodId"`
	Items       []*entity.CostLedgerEntry `json:"items"`
}
