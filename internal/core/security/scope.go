package security

import (
	"context"
	"fmt"

	"valora/internal/core/apperror"
	appctx "valora/internal/core/context"
)

// Permission names an operation on an entity type.
type Permission string

const (
	PermissionRead   Permission = "read"
	PermissionCreate Permission = "create"
	PermissionUpdate Permission = "update"
	PermissionDelete Permission = "delete"

	PermissionPost   Permission = "post"
	PermissionUnpost Permission = "unpost"

	PermissionAdmin Permission = "admin"
	PermissionAudit Permission = "audit"
)

// Role is a named permission bundle.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleAccountant Role = "accountant"
	RoleManager    Role = "manager"
	RoleViewer     Role = "viewer"
)

// AccessScope bounds what the current request may see. Tenant
// isolation is handled by routing to the tenant database; the scope
// decides company access within it and feeds the audit context.
type AccessScope struct {
	TenantID string
	UserID   string

	// IsAdmin bypasses company filtering and permission checks.
	IsAdmin bool

	// AllowedCompanyIDs limits access to specific companies. Empty
	// means no access unless IsAdmin.
	AllowedCompanyIDs []string

	// Permissions maps entity type to the operations the user holds.
	Permissions map[string][]Permission
}

// NewAccessScope derives a scope from the authenticated user in the
// context. Without one the scope denies everything.
func NewAccessScope(ctx context.Context) *AccessScope {
	user := appctx.GetUser(ctx)
	if user == nil {
		return &AccessScope{}
	}
	return &AccessScope{
		TenantID:          user.TenantID,
		UserID:            user.UserID,
		IsAdmin:           user.IsAdmin,
		AllowedCompanyIDs: user.CompanyIDs,
	}
}

func (s *AccessScope) CanAccessCompany(companyID string) bool {
	if s.IsAdmin {
		return true
	}
	for _, id := range s.AllowedCompanyIDs {
		if id == companyID {
			return true
		}
	}
	return false
}

func (s *AccessScope) HasPermission(entity string, perm Permission) bool {
	if s.IsAdmin {
		return true
	}
	for _, p := range s.Permissions[entity] {
		if p == perm {
			return true
		}
	}
	return false
}

// RequirePermission turns a missing permission into a forbidden error.
func (s *AccessScope) RequirePermission(entity string, perm Permission) error {
	if !s.HasPermission(entity, perm) {
		return apperror.NewForbidden(
			fmt.Sprintf("permission %s on %s required", perm, entity),
		).WithDetail("entity", entity).WithDetail("permission", perm)
	}
	return nil
}

// FilterCompanyIDs intersects the requested companies with the
// allowed ones, so a query can never widen its own scope. An empty
// request means every allowed company.
func (s *AccessScope) FilterCompanyIDs(requestedCompanies []string) []string {
	if s.IsAdmin {
		return requestedCompanies
	}
	if len(requestedCompanies) == 0 {
		return s.AllowedCompanyIDs
	}

	allowed := make(map[string]bool, len(s.AllowedCompanyIDs))
	for _, id := range s.AllowedCompanyIDs {
		allowed[id] = true
	}

	var result []string
	for _, id := range requestedCompanies {
		if allowed[id] {
			result = append(result, id)
		}
	}
	return result
}

type scopeKey struct{}

// WithScope stores the scope for the rest of the request.
func WithScope(ctx context.Context, scope *AccessScope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// GetScope returns the stored scope, deriving one from the user when
// the middleware did not run.
func GetScope(ctx context.Context) *AccessScope {
	if v, ok := ctx.Value(scopeKey{}).(*AccessScope); ok {
		return v
	}
	return NewAccessScope(ctx)
}
