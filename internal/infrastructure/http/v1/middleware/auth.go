package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"valora/internal/core/apperror"
	appctx "valora/internal/core/context"
	"valora/internal/core/tenant"
)

// JWTValidator turns a raw token into the user it identifies.
type JWTValidator interface {
	ValidateToken(tokenString string) (*appctx.UserContext, error)
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// tenantMatches rejects a token issued for another tenant than the one
// TenantDB resolved from the X-Tenant-ID header.
func tenantMatches(c *gin.Context, user *appctx.UserContext) (resolved string, ok bool) {
	resolved = tenant.GetTenantID(c.Request.Context())
	if resolved != "" && user.TenantID != "" && resolved != user.TenantID {
		return resolved, false
	}
	return resolved, true
}

// attachUser puts the user on the request context and mirrors the
// fields handlers read from the gin context.
func attachUser(c *gin.Context, user *appctx.UserContext) {
	ctx := appctx.WithUser(c.Request.Context(), user)
	c.Request = c.Request.WithContext(ctx)
	c.Set("user_id", user.UserID)
	c.Set("permissions", user.Permissions)
}

// Auth validates the bearer token and populates the user context.
func Auth(validator JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			if c.GetHeader("Authorization") == "" {
				abortUnauthorized(c, "missing authorization header")
			} else {
				abortUnauthorized(c, "invalid authorization header format")
			}
			return
		}

		user, err := validator.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		if resolved, ok := tenantMatches(c, user); !ok {
			_ = c.Error(
				apperror.NewForbidden("tenant mismatch").
					WithDetail("header_tenant_id", resolved).
					WithDetail("token_tenant_id", user.TenantID),
			)
			c.Abort()
			return
		}

		attachUser(c, user)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and
// lets the request through either way. A token of another tenant is
// ignored rather than rejected.
func OptionalAuth(validator JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		user, err := validator.ValidateToken(token)
		if err == nil && user != nil {
			if _, ok := tenantMatches(c, user); ok {
				attachUser(c, user)
			}
		}
		c.Next()
	}
}

// RequireRole passes when the user holds any of the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			abortUnauthorized(c, "authentication required")
			return
		}

		for _, required := range roles {
			for _, userRole := range user.Roles {
				if userRole == required {
					c.Next()
					return
				}
			}
		}
		_ = c.Error(
			apperror.NewForbidden("insufficient permissions").
				WithDetail("required_roles", roles),
		)
		c.Abort()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
