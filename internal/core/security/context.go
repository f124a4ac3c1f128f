// Package security provides posting policies, feature flags and the
// authenticated-user context shared by middleware and domain code.
package security

import "context"

type userIDKey struct{}

// WithUserID stores the authenticated user id in the context. Set by
// the auth middleware for the request lifetime.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// GetUserID returns the authenticated user id, or "" when the context
// is unauthenticated. The audit enrichment helpers use it to stamp
// CreatedBy/UpdatedBy.
func GetUserID(ctx context.Context) string {
	if uid, ok := ctx.Value(userIDKey{}).(string); ok {
		return uid
	}
	return ""
}
