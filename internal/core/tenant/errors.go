package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when the tenant does not exist.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantNotActive is returned when the tenant exists but is not active.
	ErrTenantNotActive = errors.New("tenant is not active")

	// ErrMaxPoolLimit is returned when the pool manager is at capacity.
	ErrMaxPoolLimit = errors.New("maximum pool limit reached")

	// ErrNoCompanyInScope is returned when a scope is missing the company dimension.
	ErrNoCompanyInScope = errors.New("company not set in scope")
)
