// Package domain defines the generic catalog service and the storage
// contracts the concrete catalogs build on.
package domain

import (
	"context"

	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/domain/filter"
)

// ListFilter narrows and pages a catalog listing.
type ListFilter struct {
	// Search matches against the searchable text columns.
	Search string

	IDs []id.ID

	// IncludeDeleted also returns rows with the deletion mark set.
	IncludeDeleted bool

	// ParentID and IsFolder apply to hierarchical catalogs only.
	ParentID *string
	IsFolder *bool

	// AdvancedFilters holds arbitrary per-column conditions.
	AdvancedFilters []filter.Item

	// OrderBy names a column, with a leading "-" for descending.
	OrderBy string

	Limit  int
	Offset int
}

// DefaultListFilter pages 50 rows ordered by name.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "name",
	}
}

// ListResult is a page of items plus the unpaged total.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// CatalogRepository is the storage contract every catalog repo
// implements. Code is unique per tenant database.
type CatalogRepository[T entity.Validatable] interface {
	Create(ctx context.Context, entity T) error
	GetByID(ctx context.Context, id id.ID) (T, error)
	GetByCode(ctx context.Context, code string) (T, error)

	// Update fails with a concurrent-modification error when the
	// stored version differs.
	Update(ctx context.Context, entity T) error

	// Delete sets the deletion mark. Physical removal is not part of
	// this contract.
	Delete(ctx context.Context, id id.ID) error

	SetDeletionMark(ctx context.Context, id id.ID, marked bool) error

	List(ctx context.Context, filter ListFilter) (ListResult[T], error)

	Exists(ctx context.Context, id id.ID) (bool, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// GetTree returns the subtree under rootID, or the whole catalog
	// when rootID is nil.
	GetTree(ctx context.Context, rootID *id.ID) ([]T, error)

	// GetPath returns the chain of ancestors from the root down to
	// the entity itself.
	GetPath(ctx context.Context, id id.ID) ([]T, error)
}

// HookEvent names a lifecycle point of the generic service.
type HookEvent string

const (
	BeforeCreate HookEvent = "before_create"
	AfterCreate  HookEvent = "after_create"
	BeforeUpdate HookEvent = "before_update"
	AfterUpdate  HookEvent = "after_update"
	BeforeDelete HookEvent = "before_delete"
	AfterDelete  HookEvent = "after_delete"
)

// Hook runs at a lifecycle point and may veto the operation by
// returning an error.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry collects hooks per event for one entity type.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook. Hooks run in registration order.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes the hooks of the event, stopping at the first error.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}
