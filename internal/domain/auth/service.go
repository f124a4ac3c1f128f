// Package auth implements user accounts, roles and token issuance for a
// single tenant database.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"valora/internal/core/apperror"
	appctx "valora/internal/core/context"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/tx"
	"valora/pkg/logger"
)

// ServiceConfig controls lockout, password and refresh token policy.
type ServiceConfig struct {
	MaxLoginAttempts   int
	LockDuration       time.Duration
	PasswordMinLength  int
	RefreshTokenExpiry time.Duration
}

func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:   5,
		LockDuration:       15 * time.Minute,
		PasswordMinLength:  8,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	}
}

// Service wires user, role, permission and token repositories behind the
// authentication use cases.
type Service struct {
	userRepo   UserRepository
	roleRepo   RoleRepository
	permRepo   PermissionRepository
	tokenRepo  TokenRepository
	txManager  tx.Manager // Optional. If nil, obtained from context (DB-per-tenant).
	jwtService *JWTService
	config     ServiceConfig
}

func NewService(
	userRepo UserRepository,
	roleRepo RoleRepository,
	permRepo PermissionRepository,
	tokenRepo TokenRepository,
	txManager tx.Manager,
	jwtService *JWTService,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		permRepo:   permRepo,
		tokenRepo:  tokenRepo,
		txManager:  txManager,
		jwtService: jwtService,
		config:     config,
	}
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

func (s *Service) requireTenantID(ctx context.Context) (string, error) {
	tenantID := tenant.GetTenantID(ctx)
	if tenantID == "" {
		// The tenant middleware normally guarantees this. Surfacing it as
		// a validation error keeps a broken client from seeing a 500.
		return "", apperror.NewValidation("tenant is required").
			WithDetail("header", "X-Tenant-ID")
	}
	return tenantID, nil
}

// loadGrants fills in the user's roles, permissions and company scope.
// Lookup failures leave the corresponding slice empty rather than failing
// the whole call; tokens issued from a partial read simply carry fewer
// grants.
func (s *Service) loadGrants(ctx context.Context, user *User) {
	user.Roles, _ = s.userRepo.LoadRoles(ctx, user.ID)
	user.Permissions, _ = s.userRepo.LoadPermissions(ctx, user.ID)
	user.CompanyIDs, _ = s.userRepo.LoadCompanies(ctx, user.ID)
}

func (s *Service) validateRegistration(ctx context.Context, req RegisterRequest) error {
	if req.Email == "" {
		return apperror.NewValidation("email is required").WithDetail("field", "email")
	}
	if len(req.Password) < s.config.PasswordMinLength {
		msg := fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength)
		return apperror.NewValidation(msg).WithDetail("field", "password")
	}

	exists, err := s.userRepo.Exists(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return apperror.NewConflict("email already registered").WithDetail("email", req.Email)
	}
	return nil
}

// Register creates a user account and gives it the default role when one
// is configured.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if _, err := s.requireTenantID(ctx); err != nil {
		return nil, err
	}
	if err := s.validateRegistration(ctx, req); err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(req.Email, string(passwordHash))
	user.FirstName = req.FirstName
	user.LastName = req.LastName

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		s.grantDefaultRole(ctx, user.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// grantDefaultRole assigns the "user" role when the tenant has seeded
// one. A missing role or a failed assignment never fails registration.
func (s *Service) grantDefaultRole(ctx context.Context, userID id.ID) {
	role, err := s.roleRepo.GetByCode(ctx, "user")
	if err != nil || role == nil {
		return
	}
	if err := s.userRepo.AssignRole(ctx, userID, role.ID, id.Nil()); err != nil {
		logger.Warn(ctx, "failed to assign default role", "error", err)
	}
}

// Login verifies credentials and issues a token pair. Failed attempts
// count toward the lockout threshold; both "no such user" and "wrong
// password" come back as the same unauthorized error.
func (s *Service) Login(ctx context.Context, creds Credentials) (*TokenPair, *User, error) {
	if _, err := s.requireTenantID(ctx); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, creds.Email)
	if err != nil {
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}
	if err := user.CanLogin(); err != nil {
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)) != nil {
		user.RecordFailedLogin(s.config.MaxLoginAttempts, s.config.LockDuration)
		_ = s.userRepo.Update(ctx, user)
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	s.loadGrants(ctx, user)
	tokens, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	user.RecordSuccessfulLogin()
	_ = s.userRepo.Update(ctx, user)

	logger.Info(ctx, "user logged in", "user_id", user.ID, "email", user.Email)
	return tokens, user, nil
}

// RefreshToken rotates a refresh token: the presented token is revoked
// and a fresh pair is issued.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.tokenRepo.GetRefreshToken(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid refresh token")
	}
	if !token.IsValid() {
		return nil, apperror.NewUnauthorized("refresh token expired or revoked")
	}

	user, err := s.userRepo.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, apperror.NewUnauthorized("user not found")
	}
	if err := user.CanLogin(); err != nil {
		return nil, err
	}

	s.loadGrants(ctx, user)
	_ = s.tokenRepo.RevokeRefreshToken(ctx, token.ID, "refreshed")

	return s.generateTokenPair(ctx, user)
}

// Logout revokes every refresh token the user holds.
func (s *Service) Logout(ctx context.Context, userID id.ID) error {
	return s.tokenRepo.RevokeAllUserTokens(ctx, userID, "logout")
}

// findUserAndRole resolves both sides of a role grant, mapping lookup
// failures to not-found errors.
func (s *Service) findUserAndRole(ctx context.Context, userID id.ID, roleCode string) (*Role, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	role, err := s.roleRepo.GetByCode(ctx, roleCode)
	if err != nil {
		return nil, apperror.NewNotFound("role", roleCode)
	}
	return role, nil
}

// AssignRole grants a role to a user, recording who granted it.
func (s *Service) AssignRole(ctx context.Context, userID id.ID, roleCode string) error {
	grantedBy := id.Nil()
	if currentUser := appctx.GetUser(ctx); currentUser != nil {
		grantedBy, _ = id.Parse(currentUser.UserID)
	}

	role, err := s.findUserAndRole(ctx, userID, roleCode)
	if err != nil {
		return err
	}
	if err := s.userRepo.AssignRole(ctx, userID, role.ID, grantedBy); err != nil {
		return fmt.Errorf("assign role: %w", err)
	}

	logger.Info(ctx, "role assigned",
		"user_id", userID,
		"role", roleCode,
		"granted_by", grantedBy)
	return nil
}

// RevokeRole removes a role from a user.
func (s *Service) RevokeRole(ctx context.Context, userID id.ID, roleCode string) error {
	role, err := s.findUserAndRole(ctx, userID, roleCode)
	if err != nil {
		return err
	}
	return s.userRepo.RevokeRole(ctx, userID, role.ID)
}

// GetUserByID loads a user together with roles, permissions and companies.
func (s *Service) GetUserByID(ctx context.Context, userID id.ID) (*User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	s.loadGrants(ctx, user)
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, filter UserFilter) ([]User, int, error) {
	return s.userRepo.List(ctx, filter)
}

func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.roleRepo.List(ctx)
}

func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.permRepo.List(ctx)
}

// CreateRole creates a role with the given code and name.
func (s *Service) CreateRole(ctx context.Context, code, name, description string) (*Role, error) {
	role := NewRole(code, name)
	role.Description = description
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	return role, nil
}

// generateTokenPair issues a signed access token and stores the hash of
// a new random refresh token. Only the hash is persisted; the raw value
// goes to the client once and cannot be recovered from the database.
func (s *Service) generateTokenPair(ctx context.Context, user *User) (*TokenPair, error) {
	tenantID, err := s.requireTenantID(ctx)
	if err != nil {
		return nil, err
	}

	roleCodes := make([]string, len(user.Roles))
	for i, r := range user.Roles {
		roleCodes[i] = r.Code
	}

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(
		user.ID.String(), tenantID, user.Email,
		roleCodes, user.Permissions, user.CompanyIDs, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	raw, err := generateRandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	record := &RefreshToken{
		ID:        id.New(),
		UserID:    user.ID,
		TokenHash: hashToken(raw),
		ExpiresAt: time.Now().Add(s.config.RefreshTokenExpiry),
		CreatedAt: time.Now(),
	}
	if err := s.tokenRepo.SaveRefreshToken(ctx, record); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: raw,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateRandomToken(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
