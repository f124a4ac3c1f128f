package entity

import "time"

// CDCFields is embedded in entities replicated through change data
// capture. Soft deletes keep the row so logical replication can emit a
// DELETE event downstream.
type CDCFields struct {
	DeletedAt *time.Time `db:"_deleted_at" json:"-"`

	// TxID is the PostgreSQL transaction id, used to order changes in
	// CDC pipelines. More stable than xmin across vacuum.
	TxID int64 `db:"_txid" json:"-"`
}

// IsDeleted reports whether the entity is soft-deleted.
func (c *CDCFields) IsDeleted() bool {
	return c.DeletedAt != nil
}

// MarkCDCDeleted sets the deletion timestamp.
func (c *CDCFields) MarkCDCDeleted() {
	now := time.Now().UTC()
	c.DeletedAt = &now
}

// ClearCDCDeleted undeletes the entity.
func (c *CDCFields) ClearCDCDeleted() {
	c.DeletedAt = nil
}
