package entity

import (
	"context"

	"valora/internal/core/apperror"
	"valora/internal/core/id"
)

// CurrencyAware is embedded by financial entities that carry a currency
// dimension, such as goods receipts.
type CurrencyAware struct {
	CurrencyID id.ID `db:"currency_id" json:"currencyId"`
}

// ValidateCurrency rejects an unset currency.
func (c *CurrencyAware) ValidateCurrency(ctx context.Context) error {
	if id.IsNil(c.CurrencyID) {
		return apperror.NewValidation("currency is required").
			WithDetail("field", "currencyId")
	}
	return nil
}

func (c *CurrencyAware) GetCurrencyID() id.ID {
	return c.CurrencyID
}

// ICurrencyAware is satisfied by any entity embedding CurrencyAware.
type ICurrencyAware interface {
	GetCurrencyID() id.ID
	ValidateCurrency(ctx context.Context) error
}
