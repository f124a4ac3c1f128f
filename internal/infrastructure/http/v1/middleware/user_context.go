// Package middleware provides HTTP middleware for the Valora API.
package middleware

import (
	"github.com/gin-gonic/gin"

	"valora/internal/core/security"
)

// UserContext copies the "user_id" set by Auth into the request context
// so the domain layer can read it via security.GetUserID. Must run
// after Auth.
func UserContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid, ok := c.Get("user_id"); ok {
			if userID, ok := uid.(string); ok && userID != "" {
				c.Request = c.Request.WithContext(
					security.WithUserID(c.Request.Context(), userID))
			}
		}
		c.Next()
	}
}
