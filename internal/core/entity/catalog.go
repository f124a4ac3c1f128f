package entity

import (
	"context"

	"valora/internal/core/apperror"
)

// Catalog is the base of reference data such as products, counterparties
// and warehouses. Catalogs can form a folder hierarchy via ParentID.
type Catalog struct {
	BaseCatalog

	// Code is a human-readable identifier, unique within the tenant
	// database. Empty on create means the numerator assigns one.
	Code string `db:"code" json:"code"`

	Name     string  `db:"name" json:"name"`
	ParentID *string `db:"parent_id" json:"parentId,omitempty"`
	IsFolder bool    `db:"is_folder" json:"isFolder"`
}

// NewCatalog creates a catalog element with a fresh ID.
func NewCatalog(code, name string) Catalog {
	return Catalog{
		BaseCatalog: NewBaseCatalog(),
		Code:        code,
		Name:        name,
	}
}

// Validate implements Validatable. Code is not checked here because it
// may still be pending generation.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

// SetParent moves the element under parentID; empty detaches it.
func (c *Catalog) SetParent(parentID string) {
	if parentID == "" {
		c.ParentID = nil
		return
	}
	c.ParentID = &parentID
}

// IsRoot reports whether the element sits at the top of the hierarchy.
func (c *Catalog) IsRoot() bool {
	return c.ParentID == nil || *c.ParentID == ""
}
