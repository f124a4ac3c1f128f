package middleware

import (
	"github.com/gin-gonic/gin"

	"valora/internal/core/apperror"
	appctx "valora/internal/core/context"
)

// requireUser aborts with 401 when the request is unauthenticated, and
// reports whether the caller is an admin. Admins pass every permission
// gate.
func requireUser(c *gin.Context) (isAdmin, ok bool) {
	user := appctx.GetUser(c.Request.Context())
	if user == nil {
		_ = c.Error(apperror.NewUnauthorized("authentication required"))
		c.Abort()
		return false, false
	}
	return user.IsAdmin, true
}

// RequirePermission gates a route on a single permission code.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, ok := requireUser(c)
		if !ok {
			return
		}
		if isAdmin {
			c.Next()
			return
		}

		for _, perm := range getUserPermissions(c) {
			if perm == permission {
				c.Next()
				return
			}
		}

		_ = c.Error(
			apperror.NewForbidden("insufficient permissions").
				WithDetail("required_permission", permission),
		)
		c.Abort()
	}
}

// RequireAnyPermission passes when the user holds at least one of the
// listed permissions.
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, ok := requireUser(c)
		if !ok {
			return
		}
		if isAdmin {
			c.Next()
			return
		}

		userPerms := getUserPermissions(c)
		for _, required := range permissions {
			for _, perm := range userPerms {
				if perm == required {
					c.Next()
					return
				}
			}
		}

		_ = c.Error(
			apperror.NewForbidden("insufficient permissions").
				WithDetail("required_permissions", permissions),
		)
		c.Abort()
	}
}

// RequireAllPermissions passes only when the user holds every listed
// permission, and reports the missing ones otherwise.
func RequireAllPermissions(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, ok := requireUser(c)
		if !ok {
			return
		}
		if isAdmin {
			c.Next()
			return
		}

		held := make(map[string]bool)
		for _, p := range getUserPermissions(c) {
			held[p] = true
		}

		var missing []string
		for _, required := range permissions {
			if !held[required] {
				missing = append(missing, required)
			}
		}

		if len(missing) > 0 {
			_ = c.Error(
				apperror.NewForbidden("insufficient permissions").
					WithDetail("missing_permissions", missing),
			)
			c.Abort()
			return
		}

		c.Next()
	}
}

// getUserPermissions reads the permission codes the auth middleware
// stashed in the gin context from the JWT claims.
func getUserPermissions(c *gin.Context) []string {
	if perms, exists := c.Get("permissions"); exists {
		if p, ok := perms.([]string); ok {
			return p
		}
	}
	return nil
}
