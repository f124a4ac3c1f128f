package auth_repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"valora/internal/core/apperror"
	"valora/internal/domain/auth"
	"valora/internal/infrastructure/storage/postgres"
)

const permissionColumns = `id, code, name, description, resource, action`

// PermissionRepo implements auth.PermissionRepository. Permissions are
// seeded by migrations, so the repository is read-only.
type PermissionRepo struct{}

func NewPermissionRepo() *PermissionRepo {
	return &PermissionRepo{}
}

func (r *PermissionRepo) querier(ctx context.Context) postgres.Querier {
	return postgres.MustGetTxManager(ctx).GetQuerier(ctx)
}

func (r *PermissionRepo) selectPermissions(ctx context.Context, query string, args ...any) ([]auth.Permission, error) {
	rows, err := r.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query permissions: %w", err)
	}
	defer rows.Close()

	var permissions []auth.Permission
	for rows.Next() {
		var perm auth.Permission
		err := rows.Scan(
			&perm.ID, &perm.Code, &perm.Name, &perm.Description,
			&perm.Resource, &perm.Action,
		)
		if err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		permissions = append(permissions, perm)
	}

	return permissions, nil
}

// GetByCode loads a single permission by its code.
func (r *PermissionRepo) GetByCode(ctx context.Context, code string) (*auth.Permission, error) {
	query := `SELECT ` + permissionColumns + ` FROM permissions WHERE code = $1`

	var perm auth.Permission
	err := r.querier(ctx).QueryRow(ctx, query, code).Scan(
		&perm.ID, &perm.Code, &perm.Name, &perm.Description,
		&perm.Resource, &perm.Action,
	)
	if err == pgx.ErrNoRows {
		return nil, apperror.NewNotFound("permission", code)
	}
	if err != nil {
		return nil, fmt.Errorf("query permission: %w", err)
	}
	return &perm, nil
}

// List returns every permission, grouped by resource.
func (r *PermissionRepo) List(ctx context.Context) ([]auth.Permission, error) {
	return r.selectPermissions(ctx,
		`SELECT `+permissionColumns+` FROM permissions ORDER BY resource, action`)
}

// ListByResource returns the permissions defined for one resource.
func (r *PermissionRepo) ListByResource(ctx context.Context, resource string) ([]auth.Permission, error) {
	return r.selectPermissions(ctx,
		`SELECT `+permissionColumns+` FROM permissions WHERE resource = $1 ORDER BY action`, resource)
}

var _ auth.PermissionRepository = (*PermissionRepo)(nil)
