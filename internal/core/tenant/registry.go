package tenant

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Registry reads and writes tenant metadata in the meta-database. The
// server resolves a tenant per request; cmd/tenant provisions new ones;
// cmd/worker iterates active tenants.
type Registry interface {
	// GetByID retrieves a tenant by UUID string.
	GetByID(ctx context.Context, tenantID string) (*Tenant, error)

	// ListActive returns all active tenants.
	ListActive(ctx context.Context) ([]*Tenant, error)

	// ListAll returns all tenants regardless of status.
	ListAll(ctx context.Context) ([]*Tenant, error)

	// Create inserts a new tenant row and populates t.ID.
	Create(ctx context.Context, t *Tenant) error

	// UpdateStatusByID moves a tenant through its lifecycle.
	UpdateStatusByID(ctx context.Context, tenantID string, status Status) error
}

const tenantColumns = `id, slug, display_name, db_name, db_host, db_port,
	       status, plan, created_at, updated_at, settings`

// PostgresRegistry is the meta-database implementation of Registry.
type PostgresRegistry struct {
	pool *pgxpool.Pool
}

func NewPostgresRegistry(pool *pgxpool.Pool) *PostgresRegistry {
	return &PostgresRegistry{pool: pool}
}

var _ Registry = (*PostgresRegistry)(nil)

func (r *PostgresRegistry) GetByID(ctx context.Context, tenantID string) (*Tenant, error) {
	var t Tenant
	sql := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	if err := pgxscan.Get(ctx, r.pool, &t, sql, tenantID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("get tenant by id: %w", err)
	}
	return &t, nil
}

func (r *PostgresRegistry) ListActive(ctx context.Context) ([]*Tenant, error) {
	return r.list(ctx, "list active tenants",
		`SELECT `+tenantColumns+` FROM tenants WHERE status = $1 ORDER BY slug`,
		StatusActive)
}

func (r *PostgresRegistry) ListAll(ctx context.Context) ([]*Tenant, error) {
	return r.list(ctx, "list tenants",
		`SELECT `+tenantColumns+` FROM tenants ORDER BY slug`)
}

func (r *PostgresRegistry) list(ctx context.Context, op, sql string, args ...any) ([]*Tenant, error) {
	var tenants []*Tenant
	if err := pgxscan.Select(ctx, r.pool, &tenants, sql, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tenants, nil
}

func (r *PostgresRegistry) Create(ctx context.Context, t *Tenant) error {
	if t == nil {
		return fmt.Errorf("tenant is nil")
	}
	if t.Status == "" {
		t.Status = StatusActive
	}
	if t.Plan == "" {
		t.Plan = PlanStandard
	}
	if t.Settings == nil {
		t.Settings = map[string]any{}
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO tenants (slug, display_name, db_name, db_host, db_port, status, plan, settings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, t.Slug, t.DisplayName, t.DBName, t.DBHost, t.DBPort, t.Status, t.Plan, t.Settings)
	if err := row.Scan(&t.ID); err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}
	return nil
}

func (r *PostgresRegistry) UpdateStatusByID(ctx context.Context, tenantID string, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tenants SET status = $2 WHERE id = $1`, tenantID, status)
	if err != nil {
		return fmt.Errorf("update tenant status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}
