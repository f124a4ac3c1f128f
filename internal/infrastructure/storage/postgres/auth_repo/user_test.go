package auth_repo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"valora/internal/domain/auth"
	"valora/internal/infrastructure/storage/postgres"
)

// The select list is written by hand, so pin it to the model's db tags.
// Catches fields drifting out of auth.User while the SQL still names them.
func TestUserColumns_MatchModelTags(t *testing.T) {
	tagged := postgres.ExtractDBColumns[auth.User]()

	for _, col := range strings.Split(userColumns, ",") {
		col = strings.TrimSpace(col)
		assert.Contains(t, tagged, col, "users select list names %q but auth.User has no such db tag", col)
	}

	assert.Contains(t, tagged, "deletion_mark")
	assert.Contains(t, tagged, "attributes")
}
