// Package entity defines the base types catalogs and documents embed:
// identity, optimistic-lock version, soft deletion and JSONB custom
// fields.
package entity

import (
	"context"
	"time"

	"valora/internal/core/id"
)

// Validatable checks internal invariants without touching the
// database. Returns an AppError with details when invalid.
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseEntity is the common core of every persisted entity.
type BaseEntity struct {
	// ID is a UUIDv7, so primary keys sort by creation time.
	ID id.ID `db:"id" json:"id"`

	// DeletionMark is the soft-delete flag. Marked rows stay in place
	// and are filtered from listings by default.
	DeletionMark bool `db:"deletion_mark" json:"deletionMark"`

	// Version backs the optimistic-lock check, bumped on every update.
	Version int `db:"version" json:"version"`

	// Attributes holds tenant-defined custom fields.
	Attributes Attributes `db:"attributes" json:"attributes,omitempty"`

	// CDCFields carries the change-data-capture columns (_txid,
	// _deleted_at).
	CDCFields
}

func NewBaseEntity() BaseEntity {
	return BaseEntity{
		ID:      id.New(),
		Version: 1,
	}
}

// Touch bumps the optimistic-lock version.
func (b *BaseEntity) Touch() {
	b.Version++
}

func (b *BaseEntity) MarkDeleted() {
	b.DeletionMark = true
}

func (b *BaseEntity) Undelete() {
	b.DeletionMark = false
}

// SetVersion is called by repositories after syncing with the stored
// row.
func (b *BaseEntity) SetVersion(v int) {
	b.Version = v
}

func (b *BaseEntity) SetAttribute(key string, value any) {
	if b.Attributes == nil {
		b.Attributes = make(Attributes)
	}
	b.Attributes[key] = value
}

func (b *BaseEntity) GetAttribute(key string) any {
	return b.Attributes[key]
}

// BaseDocument adds the audit trail fields documents carry.
type BaseDocument struct {
	BaseEntity

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	UpdatedBy string    `db:"updated_by" json:"updatedBy,omitempty"`
}

func NewBaseDocument() BaseDocument {
	now := time.Now().UTC()
	return BaseDocument{
		BaseEntity: NewBaseEntity(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Touch stamps UpdatedAt and bumps the version.
func (b *BaseDocument) Touch() {
	b.UpdatedAt = time.Now().UTC()
	b.BaseEntity.Touch()
}

func (b *BaseDocument) SetUpdatedAt(t time.Time) {
	b.UpdatedAt = t
}

// SetCreatedBy records the creating user, who is also the first
// updater.
func (b *BaseDocument) SetCreatedBy(userID string) {
	b.CreatedBy = userID
	b.UpdatedBy = userID
}

func (b *BaseDocument) SetUpdatedBy(userID string) {
	b.UpdatedBy = userID
}

// BaseCatalog is BaseEntity as-is. Catalogs carry no audit columns.
type BaseCatalog struct {
	BaseEntity
}

func NewBaseCatalog() BaseCatalog {
	return BaseCatalog{
		BaseEntity: NewBaseEntity(),
	}
}
