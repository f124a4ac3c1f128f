// Package tenant implements the database-per-tenant model: every tenant
// operates in its own PostgreSQL database, resolved per request and
// carried through context.
package tenant

import (
	"fmt"
	"strings"
	"time"
)

// Status is the tenant lifecycle state.
type Status string

const (
	// StatusActive means the tenant accepts requests.
	StatusActive Status = "active"

	// StatusSuspended means the tenant is temporarily disabled.
	StatusSuspended Status = "suspended"

	// StatusDeleted marks the tenant for removal.
	StatusDeleted Status = "deleted"
)

// Plan is the tenant subscription plan.
type Plan string

const (
	PlanStandard   Plan = "standard"
	PlanPremium    Plan = "premium"
	PlanEnterprise Plan = "enterprise"
)

// Tenant is a tenant record from the meta-database registry.
type Tenant struct {
	ID          string         `db:"id"`
	Slug        string         `db:"slug"`
	DisplayName string         `db:"display_name"`
	DBName      string         `db:"db_name"`
	DBHost      string         `db:"db_host"`
	DBPort      int            `db:"db_port"`
	Status      Status         `db:"status"`
	Plan        Plan           `db:"plan"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	Settings    map[string]any `db:"settings"` // JSONB
}

// IsActive reports whether the tenant accepts requests.
func (t *Tenant) IsActive() bool {
	return t.Status == StatusActive
}

// DSN builds the connection string for the tenant's database.
func (t *Tenant) DSN(user, password string) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		user, password, t.DBHost, t.DBPort, t.DBName,
	)
}

// DSNWithSSL builds the connection string with the given sslmode.
func (t *Tenant) DSNWithSSL(user, password, sslMode string) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		user, password, t.DBHost, t.DBPort, t.DBName, sslMode,
	)
}

// CreateTenantInput is the provisioning request handled by cmd/tenant.
type CreateTenantInput struct {
	Slug        string
	DisplayName string
	Plan        Plan
	DBHost      string // defaults to localhost
	DBPort      int    // defaults to 5432
}

// Validate checks and normalizes the input.
func (i *CreateTenantInput) Validate() error {
	if i.Slug == "" {
		return fmt.Errorf("slug is required")
	}
	i.Slug = strings.ToLower(i.Slug)
	if len(i.Slug) > 63 {
		return fmt.Errorf("slug must be 63 characters or less")
	}
	if i.DisplayName == "" {
		return fmt.Errorf("display_name is required")
	}
	return nil
}

// GenerateDBName derives the tenant database name: mt_<slug>.
func (i *CreateTenantInput) GenerateDBName() string {
	return "mt_" + i.Slug
}
