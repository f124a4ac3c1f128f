// The API server. Every tenant lives in its own database; requests
// are routed to the right pool by the tenant middleware.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"valora/internal/core/security"
	"valora/internal/core/tenant"
	"valora/internal/domain/auth"
	"valora/internal/infrastructure/cache"
	v1 "valora/internal/infrastructure/http/v1"
	"valora/internal/infrastructure/storage/postgres/auth_repo"
	"valora/pkg/logger"
	"valora/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting valora server (multi-tenant mode)")

	metaPool, err := pgxpool.New(ctx, mustEnv("META_DATABASE_URL"))
	if err != nil {
		log.Fatalw("failed to connect to meta database", "error", err)
	}
	defer metaPool.Close()

	if err := metaPool.Ping(ctx); err != nil {
		log.Fatalw("failed to ping meta database", "error", err)
	}
	log.Info("meta database connection established")

	tenantManager := buildTenantManager(ctx, metaPool, log)
	defer tenantManager.Close()

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(
		getEnv("JWT_SECRET", "your-secret-key-change-in-production")))
	authService := buildAuthService(jwtService)

	// The numerator resolves its TxManager from the request context.
	numeratorService := numerator.NewFromContext()

	metadataRegistry := setupMetadataRegistry()
	log.Info("metadata registry initialized")

	schemaCache, featureFlags := buildSchemaCache(ctx, metaPool, log)
	if schemaCache != nil {
		defer schemaCache.Stop()
	}

	router, err := v1.NewRouter(v1.RouterConfig{
		TenantManager:      tenantManager,
		MetaPool:           metaPool,
		Logger:             log,
		JWTValidator:       jwtService,
		AuthService:        authService,
		Numerator:          numeratorService,
		IdempotencyEnabled: getEnv("IDEMPOTENCY_ENABLED", "false") == "true",
		MetadataRegistry:   metadataRegistry,
		SchemaCache:        schemaCache,
		FeatureFlags:       featureFlags,
	})
	if err != nil {
		log.Fatalw("failed to build router", "error", err)
	}

	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port, "mode", "multi-tenant")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func buildTenantManager(ctx context.Context, metaPool *pgxpool.Pool, log *logger.Logger) *tenant.Manager {
	registry := tenant.NewPostgresRegistry(metaPool)

	cfg := tenant.DefaultManagerConfig()
	cfg.DBUser = mustEnv("TENANT_DB_USER")
	cfg.DBPassword = mustEnv("TENANT_DB_PASSWORD")

	if maxPools := getEnvInt("TENANT_MAX_POOLS", 100); maxPools > 0 {
		cfg.MaxTotalPools = maxPools
	}
	if maxConns := getEnvInt("TENANT_MAX_CONNS_PER_POOL", 10); maxConns > 0 {
		cfg.MaxConnsPerTenant = int32(maxConns)
	}
	if idleTimeout := getEnvDuration("TENANT_POOL_IDLE_TIMEOUT", 30*time.Minute); idleTimeout > 0 {
		cfg.PoolIdleTimeout = idleTimeout
	}

	manager := tenant.NewManager(cfg, registry, log)
	log.Infow("tenant manager initialized",
		"max_pools", cfg.MaxTotalPools,
		"max_conns_per_tenant", cfg.MaxConnsPerTenant,
		"idle_timeout", cfg.PoolIdleTimeout,
	)

	if getEnv("PREWARM_POOLS", "false") == "true" {
		log.Info("prewarming tenant pools...")
		if err := manager.PrewarmPools(ctx); err != nil {
			log.Warnw("failed to prewarm some pools", "error", err)
		}
	}
	return manager
}

// buildAuthService wires the stateless auth repos. They resolve their
// TxManager from the request context, so no pool is passed here.
func buildAuthService(jwtService *auth.JWTService) *auth.Service {
	return auth.NewService(
		auth_repo.NewUserRepo(),
		auth_repo.NewRoleRepo(),
		auth_repo.NewPermissionRepo(),
		auth_repo.NewTokenRepo(),
		nil,
		jwtService,
		auth.DefaultServiceConfig(),
	)
}

// buildSchemaCache starts the LISTEN/NOTIFY backed cache for custom
// field schemas and feature flags, when enabled. A startup failure is
// not fatal, the server runs without the cache.
func buildSchemaCache(ctx context.Context, metaPool *pgxpool.Pool, log *logger.Logger) (*cache.SchemaCache, security.FeatureFlagProvider) {
	if getEnv("SCHEMA_CACHE_ENABLED", "false") != "true" {
		return nil, nil
	}

	sc := cache.NewSchemaCache(metaPool)
	if err := sc.Start(ctx); err != nil {
		log.Warnw("schema cache failed to start, continuing without it", "error", err)
		return nil, nil
	}
	log.Info("schema cache started")
	return sc, cache.NewCacheBackedFlags(sc)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
