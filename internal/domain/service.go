package domain

import (
	"context"
	"fmt"

	"valora/internal/core/apperror"
	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/numerator"
	"valora/internal/core/tenant"
	"valora/internal/core/tx"
)

// CatalogService implements the common catalog workflow of validate,
// run hooks, write in a transaction. Concrete catalogs wrap it and add
// their own rules through hooks.
type CatalogService[T entity.Validatable] struct {
	repo      CatalogRepository[T]
	txManager tx.Manager // Optional. If nil, obtained from context (DB-per-tenant).
	numerator numerator.Generator
	hooks     *HookRegistry[T]

	// entityName shows up in error messages and numerator prefixes.
	entityName string
}

type CatalogServiceConfig[T entity.Validatable] struct {
	Repo       CatalogRepository[T]
	TxManager  tx.Manager
	Numerator  numerator.Generator
	EntityName string
}

func NewCatalogService[T entity.Validatable](cfg CatalogServiceConfig[T]) *CatalogService[T] {
	return &CatalogService[T]{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		numerator:  cfg.Numerator,
		hooks:      NewHookRegistry[T](),
		entityName: cfg.EntityName,
	}
}

// Hooks exposes the registry so callers can attach lifecycle hooks.
func (s *CatalogService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// inTx runs fn inside a transaction, wrapping the error with the
// entity name and the verb.
func (s *CatalogService[T]) inTx(ctx context.Context, verb string, fn func(ctx context.Context) error) error {
	txm := s.txManager
	if txm == nil {
		var err error
		if txm, err = tenant.GetTxManager(ctx); err != nil {
			return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
		}
	}
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return fmt.Errorf("%s %s: %w", verb, s.entityName, err)
		}
		return nil
	})
}

func (s *CatalogService[T]) normalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

// normalizeGetErr maps not-found onto this service's entity name and
// wraps anything that is not already an AppError.
func (s *CatalogService[T]) normalizeGetErr(err error, idOrCode any) error {
	if err == nil {
		return nil
	}
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, idOrCode)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", idOrCode)
}

// Create validates the entity, runs the before hooks and inserts it.
// After hooks run outside the transaction and cannot fail the call,
// the row is already committed.
func (s *CatalogService[T]) Create(ctx context.Context, entity T) error {
	if err := entity.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}
	if err := s.hooks.Run(ctx, BeforeCreate, entity); err != nil {
		return err
	}
	if err := s.inTx(ctx, "create", func(ctx context.Context) error {
		return s.repo.Create(ctx, entity)
	}); err != nil {
		return err
	}
	_ = s.hooks.Run(ctx, AfterCreate, entity)
	return nil
}

func (s *CatalogService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	entity, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return entity, s.normalizeGetErr(err, entityID.String())
	}
	return entity, nil
}

func (s *CatalogService[T]) GetByCode(ctx context.Context, code string) (T, error) {
	entity, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return entity, s.normalizeGetErr(err, code)
	}
	return entity, nil
}

// Update follows the same workflow as Create. The repository enforces
// the optimistic-lock check.
func (s *CatalogService[T]) Update(ctx context.Context, entity T) error {
	if err := entity.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}
	if err := s.hooks.Run(ctx, BeforeUpdate, entity); err != nil {
		return err
	}
	if err := s.inTx(ctx, "update", func(ctx context.Context) error {
		return s.repo.Update(ctx, entity)
	}); err != nil {
		return err
	}
	_ = s.hooks.Run(ctx, AfterUpdate, entity)
	return nil
}

// Delete sets the deletion mark. The entity is loaded first so delete
// hooks see its current state.
func (s *CatalogService[T]) Delete(ctx context.Context, entityID id.ID) error {
	entity, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return s.normalizeGetErr(err, entityID.String())
	}
	if err := s.hooks.Run(ctx, BeforeDelete, entity); err != nil {
		return err
	}
	if err := s.inTx(ctx, "delete", func(ctx context.Context) error {
		return s.repo.SetDeletionMark(ctx, entityID, true)
	}); err != nil {
		return err
	}
	_ = s.hooks.Run(ctx, AfterDelete, entity)
	return nil
}

func (s *CatalogService[T]) SetDeletionMark(ctx context.Context, entityID id.ID, marked bool) error {
	return s.repo.SetDeletionMark(ctx, entityID, marked)
}

func (s *CatalogService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	return s.repo.List(ctx, filter)
}

func (s *CatalogService[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	return s.repo.Exists(ctx, entityID)
}

func (s *CatalogService[T]) GetTree(ctx context.Context, rootID *id.ID) ([]T, error) {
	return s.repo.GetTree(ctx, rootID)
}
