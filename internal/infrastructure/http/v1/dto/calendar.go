package dto

import (
	"valora/internal/core/entity"
)

// Period and SubPeriod carry their own json tags and are serialized
// directly.

// CreateFiscalYearRequest is the request body for opening a fiscal year.
type CreateFiscalYearRequest struct {
	FiscalYear int `json:"fiscalYear" binding:"required,min=2000,max=2200"`
}

// CloseSubPeriodRequest is the request body for a periodic close.
type CloseSubPeriodRequest struct {
	SubPeriodID string `json:"subPeriodId" binding:"required"`
}

// FiscalYearResponse is the calendar of one fiscal year.
type FiscalYearResponse struct {
	Period     *entity.Period      `json:"period"`
	SubPeriods []*entity.SubPeriod `json:"subPeriods,omitempty"`
}
