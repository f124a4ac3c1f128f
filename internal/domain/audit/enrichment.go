// Package audit stamps acting-user fields onto entities during writes.
package audit

import (
	"context"

	"valora/internal/core/security"
)

// EnrichCreatedByDirect writes the context user into both audit fields.
// Intended for before-create hooks. No-op when no user is in context.
func EnrichCreatedByDirect(ctx context.Context, createdBy, updatedBy *string) {
	userID := security.GetUserID(ctx)
	if userID == "" || createdBy == nil || updatedBy == nil {
		return
	}
	*createdBy = userID
	*updatedBy = userID
}

// EnrichUpdatedByDirect writes the context user into the updated-by
// field. Intended for before-update hooks.
func EnrichUpdatedByDirect(ctx context.Context, updatedBy *string) {
	userID := security.GetUserID(ctx)
	if userID == "" || updatedBy == nil {
		return
	}
	*updatedBy = userID
}
