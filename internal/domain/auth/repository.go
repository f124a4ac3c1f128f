package auth

import (
	"context"

	"valora/internal/core/id"
)

// UserRepository is the storage contract for users and the grant
// tables hanging off them. All lookups are scoped to the tenant
// database carried in the context.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error

	// Delete marks the user deleted, the row stays.
	Delete(ctx context.Context, userID id.ID) error

	List(ctx context.Context, filter UserFilter) ([]User, int, error)

	LoadRoles(ctx context.Context, userID id.ID) ([]Role, error)

	// LoadPermissions returns the distinct permission codes reachable
	// through the user's roles.
	LoadPermissions(ctx context.Context, userID id.ID) ([]string, error)

	LoadCompanies(ctx context.Context, userID id.ID) ([]string, error)

	AssignRole(ctx context.Context, userID, roleID id.ID, grantedBy id.ID) error
	RevokeRole(ctx context.Context, userID, roleID id.ID) error

	// Exists reports whether the email is already taken.
	Exists(ctx context.Context, email string) (bool, error)
}

// RoleRepository is the storage contract for roles and their
// permission links.
type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	GetByID(ctx context.Context, roleID id.ID) (*Role, error)
	GetByCode(ctx context.Context, code string) (*Role, error)
	Update(ctx context.Context, role *Role) error

	// Delete refuses system roles.
	Delete(ctx context.Context, roleID id.ID) error

	List(ctx context.Context) ([]Role, error)
	LoadPermissions(ctx context.Context, roleID id.ID) ([]Permission, error)
	AssignPermission(ctx context.Context, roleID, permissionID id.ID) error
	RevokePermission(ctx context.Context, roleID, permissionID id.ID) error
}

// PermissionRepository reads the permission dictionary. Permissions
// are seeded by migrations and never written at runtime.
type PermissionRepository interface {
	GetByCode(ctx context.Context, code string) (*Permission, error)
	List(ctx context.Context) ([]Permission, error)
	ListByResource(ctx context.Context, resource string) ([]Permission, error)
}

// TokenRepository is the storage contract for refresh tokens, keyed
// by hash.
type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error

	// RevokeAllUserTokens ends every session of the user at once.
	RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error

	// CleanupExpiredTokens deletes expired rows and returns the count.
	CleanupExpiredTokens(ctx context.Context) (int, error)
}

// UserFilter narrows List results.
type UserFilter struct {
	Search   string
	IsActive *bool
	RoleCode string
	Limit    int
	Offset   int
}
