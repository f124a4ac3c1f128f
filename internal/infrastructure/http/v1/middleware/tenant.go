package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"valora/internal/core/apperror"
	"valora/internal/core/tenant"
	"valora/internal/infrastructure/storage/postgres"
	"valora/pkg/logger"
)

// TenantHeader carries the tenant UUID on every API request.
const TenantHeader = "X-Tenant-ID"

func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// poolError maps pool acquisition failures onto API errors.
func poolError(err error, tenantID string) error {
	switch {
	case errors.Is(err, tenant.ErrTenantNotFound):
		return apperror.NewNotFound("tenant", tenantID)
	case errors.Is(err, tenant.ErrTenantNotActive):
		return apperror.NewForbidden("tenant is not active").WithDetail("tenant_id", tenantID)
	case errors.Is(err, tenant.ErrMaxPoolLimit):
		// pool exhaustion is load, not a bug, so answer 503
		appErr := apperror.NewInternal(err)
		appErr.HTTPStatus = http.StatusServiceUnavailable
		appErr.Message = "service temporarily unavailable"
		return appErr.WithDetail("tenant_id", tenantID)
	default:
		return apperror.NewInternal(err).WithDetail("tenant_id", tenantID)
	}
}

// TenantDB resolves the tenant from the X-Tenant-ID header and puts the
// tenant's pool, a request-scoped TxManager and the tenant record into
// the request context. Every repository downstream assumes this has run;
// MustGetTxManager panics otherwise.
func TenantDB(manager *tenant.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		raw := c.GetHeader(TenantHeader)
		if raw == "" {
			abortWith(c, apperror.NewValidation("tenant is required").
				WithDetail("header", TenantHeader))
			return
		}
		tenantUUID, err := uuid.Parse(raw)
		if err != nil {
			abortWith(c, apperror.NewValidation("invalid tenant id").
				WithDetail("header", TenantHeader).
				WithDetail("value", raw))
			return
		}
		tenantID := tenantUUID.String()

		managedPool, err := manager.GetPool(ctx, tenantID)
		if err != nil {
			logger.Warn(ctx, "tenant pool error", "tenant_id", tenantID, "error", err)
			abortWith(c, poolError(err, tenantID))
			return
		}

		// Holding a ref keeps the pool from being evicted mid-request.
		managedPool.AcquireRef()
		defer managedPool.ReleaseRef()

		txManager := postgres.NewTxManagerFromRawPool(managedPool.Pool())

		ctx = tenant.WithPool(ctx, managedPool.Pool())
		ctx = tenant.WithTxManager(ctx, txManager)
		ctx = tenant.WithTenant(ctx, managedPool.Tenant())
		c.Request = c.Request.WithContext(ctx)

		// mirrored into the gin context for handlers using c.Get()
		c.Set("tenant_uuid", managedPool.Tenant().ID)
		c.Set("tx_manager", txManager)

		c.Next()
	}
}

// GetTxManagerFromContext reads the request's TxManager from the gin
// context, nil when TenantDB did not run.
func GetTxManagerFromContext(c *gin.Context) *postgres.TxManager {
	if v, exists := c.Get("tx_manager"); exists {
		if txm, ok := v.(*postgres.TxManager); ok {
			return txm
		}
	}
	return nil
}
