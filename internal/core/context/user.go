// Package context carries request-scoped identity through context values.
package context

import (
	"context"
	"slices"
)

// UserContext is the authenticated caller as decoded from the access
// token.
type UserContext struct {
	UserID      string
	TenantID    string
	Email       string
	Roles       []string
	Permissions []string
	CompanyIDs  []string // companies the user may act on
	IsAdmin     bool
	SessionID   string
}

type userContextKey struct{}

// WithUser attaches the user to the context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns the user from the context, or nil for anonymous
// requests.
func GetUser(ctx context.Context) *UserContext {
	u, _ := ctx.Value(userContextKey{}).(*UserContext)
	return u
}

// GetUserContext is an alias for GetUser kept for older call sites.
func GetUserContext(ctx context.Context) *UserContext {
	return GetUser(ctx)
}

// GetUserID returns the user ID, or "" for anonymous requests.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetTenantID returns the token's tenant ID, or "".
func GetTenantID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.TenantID
	}
	return ""
}

// HasRole reports whether the user holds the role.
func HasRole(ctx context.Context, role string) bool {
	u := GetUser(ctx)
	return u != nil && slices.Contains(u.Roles, role)
}

// HasCompanyAccess reports whether the user may act on the company.
// Admins may act on every company.
func HasCompanyAccess(ctx context.Context, companyID string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	return u.IsAdmin || slices.Contains(u.CompanyIDs, companyID)
}
