package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"valora/internal/core/entity"
	"valora/internal/core/id"
)

type fakeCatalog struct {
	entity.BaseCatalog
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[fakeCatalog]()

	// Embedded base columns, CDC columns and the catalog's own fields
	// must all surface.
	for _, want := range []string{
		"id", "deletion_mark", "version", "attributes",
		"_deleted_at", "_txid",
		"code", "name",
	} {
		assert.Contains(t, cols, want)
	}
}

func TestStructToMap(t *testing.T) {
	deletedAt := time.Now().UTC()
	cat := fakeCatalog{
		Code: "TEST",
		Name: "Test Name",
	}
	cat.ID = id.New()
	cat.DeletionMark = true
	cat.Version = 5
	cat.TxID = 12345
	cat.DeletedAt = &deletedAt

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "TEST", m["code"])
	assert.Equal(t, "Test Name", m["name"])
	assert.Equal(t, int64(12345), m["_txid"])
	assert.Equal(t, &deletedAt, m["_deleted_at"])
}
