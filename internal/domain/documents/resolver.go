package documents

import (
	"context"

	"valora/internal/core/tenant"
	"valora/internal/domain/catalogs/company"
)

// CurrencyResolver determines the currency code for a document.
type CurrencyResolver struct {
	companies company.Repository
}

// NewCurrencyResolver creates a new CurrencyResolver.
func NewCurrencyResolver(companies company.Repository) *CurrencyResolver {
	return &CurrencyResolver{companies: companies}
}

// ResolveForDocument determines the currency for a document: explicit input
// wins, otherwise the owning company's accounting currency.
func (r *CurrencyResolver) ResolveForDocument(ctx context.Context, scope tenant.Scope, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	co, err := r.companies.GetByScope(ctx, scope)
	if err != nil {
		return "", err
	}
	if co != nil && co.Currency != "" {
		return co.Currency, nil
	}
	return "VND", nil
}
