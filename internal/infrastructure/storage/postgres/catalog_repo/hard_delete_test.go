package catalog_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valora/internal/core/id"
)

// Delete must issue a real DELETE. Soft deletion goes through the
// deletion mark instead.
func TestBaseCatalogRepoDeleteSQL(t *testing.T) {
	repo := testRepo()
	entityID := id.New()

	sql, args, err := repo.Builder().
		Delete(repo.table).
		Where("id = ?", entityID).
		ToSql()
	require.NoError(t, err)

	assert.Equal(t, "DELETE FROM test_table WHERE id = $1", sql)
	assert.Equal(t, []any{entityID}, args)
}
