// Package v1 provides HTTP API version 1.
package v1

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"valora/internal/core/apperror"
	"valora/internal/core/id"
	"valora/internal/core/numerator"
	"valora/internal/core/security"
	"valora/internal/core/tenant"
	"valora/internal/domain"
	"valora/internal/domain/audit"
	"valora/internal/domain/auth"
	"valora/internal/domain/calendar"
	"valora/internal/domain/catalogs/company"
	"valora/internal/domain/catalogs/counterparty"
	"valora/internal/domain/catalogs/product"
	"valora/internal/domain/catalogs/unit"
	"valora/internal/domain/catalogs/warehouse"
	"valora/internal/domain/documents"
	"valora/internal/domain/documents/balance_init"
	"valora/internal/domain/documents/delivery"
	"valora/internal/domain/documents/goods_issue"
	"valora/internal/domain/documents/goods_receipt"
	"valora/internal/domain/documents/goods_return"
	"valora/internal/domain/documents/goods_transfer"
	"valora/internal/domain/ledger"
	"valora/internal/domain/posting"
	"valora/internal/domain/registration"
	"valora/internal/domain/reports"
	"valora/internal/infrastructure/cache"
	"valora/internal/infrastructure/http/v1/handlers"
	"valora/internal/infrastructure/http/v1/middleware"
	"valora/internal/infrastructure/storage/postgres"
	"valora/internal/infrastructure/storage/postgres/calendar_repo"
	"valora/internal/infrastructure/storage/postgres/catalog_repo"
	"valora/internal/infrastructure/storage/postgres/document_repo"
	"valora/internal/infrastructure/storage/postgres/ledger_repo"
	"valora/internal/infrastructure/storage/postgres/registration_repo"
	"valora/internal/infrastructure/storage/postgres/report_repo"
	"valora/internal/metadata"
	"valora/pkg/logger"
)

// RouterConfig holds router configuration for multi-tenant architecture.
type RouterConfig struct {
	// TenantManager manages database connections for all tenants
	TenantManager *tenant.Manager

	// MetaPool is connection to meta-database (for health checks)
	MetaPool *pgxpool.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Numerator for document number generation
	Numerator numerator.Generator

	// IdempotencyEnabled enables idempotency middleware
	IdempotencyEnabled bool

	// MetadataRegistry stores entity definitions
	MetadataRegistry *metadata.Registry

	// SchemaCache serves custom field schemas. Optional.
	SchemaCache *cache.SchemaCache

	// FeatureFlags gates optional behavior. Optional; nil enables everything.
	FeatureFlags security.FeatureFlagProvider
}

// domainDeps is the shared domain wiring used by document, ledger,
// calendar, and report routes. Repositories carry no connection state;
// the TxManager is obtained from the request context per tenant.
type domainDeps struct {
	companyRepo     company.Repository
	companyService  *company.Service
	calendarRepo    calendar.Repository
	calendarService *calendar.Service
	ledgerStore     ledger.Store
	ledgerEngine    *ledger.Engine
	postingEngine   *posting.Engine
	registration    *registration.Service
	enricher        *documents.LineEnricher
	costLookup      *ledger.CostLookup
	numerator       numerator.Generator
}

func newDomainDeps(cfg RouterConfig) (*domainDeps, error) {
	companyRepo := catalog_repo.NewCompanyRepo()
	companyService := company.NewService(companyRepo, cfg.Numerator)

	calendarRepo := calendar_repo.NewCalendarRepo()
	calendarService := calendar.NewService(calendarRepo)

	ledgerStore := ledger_repo.NewLedgerRepo()
	serialCosts := ledger_repo.NewSerialCostRepo()
	ledgerEngine := ledger.NewEngine(ledgerStore, calendarService, companyService, serialCosts, nil)

	auditService, err := postgres.NewAuditService(nil)
	if err != nil {
		return nil, err
	}
	auditFunc := func(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error {
		return auditService.LogChange(ctx, entityType, entityID, postgres.AuditAction(action), changes)
	}

	postingEngine := posting.NewEngine(ledgerEngine, nil, auditFunc)
	postingEngine.SetEventPublisher(postgres.NewPostingEventPublisher())
	postingEngine.SetPolicy(calendar.NewClosedPeriodPolicy(calendarRepo))

	registrationService := registration.NewService(registration_repo.NewFulfillmentRepo())
	postingEngine.RegisterConsumer(registrationService)

	enricher := documents.NewLineEnricher(catalog_repo.NewProductRepo(), catalog_repo.NewUnitRepo())

	return &domainDeps{
		companyRepo:     companyRepo,
		companyService:  companyService,
		calendarRepo:    calendarRepo,
		calendarService: calendarService,
		ledgerStore:     ledgerStore,
		ledgerEngine:    ledgerEngine,
		postingEngine:   postingEngine,
		registration:    registrationService,
		enricher:        enricher,
		costLookup:      ledger.NewCostLookup(ledgerStore),
		numerator:       cfg.Numerator,
	}, nil
}

// NewRouter creates and configures the Gin router for multi-tenant architecture.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth, no tenant required)
	healthHandler := handlers.NewHealthHandlerMultiTenant(cfg.MetaPool, cfg.TenantManager)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
		health.GET("/tenants", healthHandler.TenantsStats)
	}

	deps, err := newDomainDeps(cfg)
	if err != nil {
		return nil, err
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Auth routes - need TenantDB middleware BEFORE auth
		registerAuthRoutes(v1, cfg)

		// Protected endpoints. TenantDB resolves the tenant pool, Auth
		// validates the JWT against it, CompanyScope fixes the company
		// every document and ledger row belongs to.
		protected := v1.Group("")
		protected.Use(middleware.TenantDB(cfg.TenantManager))
		protected.Use(middleware.Auth(cfg.JWTValidator))
		protected.Use(middleware.UserContext())
		protected.Use(middleware.CompanyScope(deps.companyRepo))

		if cfg.IdempotencyEnabled {
			protected.Use(idempotencyMiddleware(10 * time.Minute))
		}

		registerCatalogRoutes(protected, cfg, deps)
		registerDocumentRoutes(protected, cfg, deps)
		registerLedgerRoutes(protected, deps)
		registerCalendarRoutes(protected, deps)
		registerReportRoutes(protected, cfg)
		registerMetaRoutes(protected, cfg)
	}

	return router, nil
}

// idempotencyMiddleware creates idempotency middleware that uses tenant pool + TxManager from context.
func idempotencyMiddleware(ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		pool := tenant.MustGetPool(ctx)
		txm := postgres.MustGetTxManager(ctx)
		store := postgres.NewIdempotencyStoreFromRawPool(pool, txm, ttl)
		middleware.Idempotency(store)(c)
	}
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required, but need tenant for DB access)
	publicAuth := rg.Group("/auth")
	publicAuth.Use(middleware.TenantDB(cfg.TenantManager))

	// Protected auth endpoints (JWT required)
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.TenantDB(cfg.TenantManager))
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig, deps *domainDeps) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// Repos and services are created once; the TxManager is obtained from
	// context per request.

	// --- COUNTERPARTIES ---
	{
		repo := catalog_repo.NewCounterpartyRepo()
		service := counterparty.NewService(repo, cfg.Numerator)
		handler := handlers.NewCounterpartyHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/counterparties"), handler, "catalog:counterparty")
	}

	// --- PRODUCTS ---
	{
		repo := catalog_repo.NewProductRepo()
		service := product.NewService(repo, cfg.Numerator)
		handler := handlers.NewProductHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/products"), handler, "catalog:product")
	}

	// --- WAREHOUSES ---
	{
		repo := catalog_repo.NewWarehouseRepo()
		service := warehouse.NewService(repo, cfg.Numerator)
		handler := handlers.NewWarehouseHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/warehouses"), handler, "catalog:warehouse")
	}

	// --- UNITS ---
	{
		repo := catalog_repo.NewUnitRepo()
		service := unit.NewService(repo, cfg.Numerator)
		handler := handlers.NewUnitHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/units"), handler, "catalog:unit")
	}

	// --- COMPANIES ---
	{
		handler := handlers.NewCompanyHandler(baseHandler, deps.companyService)
		RegisterCatalogRoutes(catalogs.Group("/companies"), handler, "catalog:company")
	}
}

// registerDocumentRoutes registers document endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig, deps *domainDeps) {
	docsGroup := rg.Group("/documents")
	baseHandler := handlers.NewBaseHandler()

	currencyResolver := documents.NewCurrencyResolver(deps.companyRepo)

	// --- GOODS RECEIPT ---
	{
		repo := document_repo.NewGoodsReceiptRepo()
		service := goods_receipt.NewService(repo, deps.postingEngine, cfg.Numerator, nil, deps.enricher)

		service.Hooks().On(domain.BeforeCreate, func(ctx context.Context, doc *goods_receipt.GoodsReceipt) error {
			audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)
			cur, err := currencyResolver.ResolveForDocument(ctx, doc.Scope, doc.Currency)
			if err != nil {
				return err
			}
			doc.Currency = cur
			return nil
		})
		service.Hooks().On(domain.BeforeUpdate, func(ctx context.Context, doc *goods_receipt.GoodsReceipt) error {
			audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)
			return nil
		})

		handler := handlers.NewGoodsReceiptHandler(baseHandler, service)
		RegisterDocumentRoutes(docsGroup.Group("/goods-receipts"), handler, "document:goods_receipt")
	}

	// --- GOODS ISSUE ---
	{
		repo := document_repo.NewGoodsIssueRepo()
		service := goods_issue.NewService(repo, deps.postingEngine, cfg.Numerator, nil, deps.enricher)
		handler := handlers.NewGoodsIssueHandler(baseHandler, service)
		RegisterDocumentRoutes(docsGroup.Group("/goods-issues"), handler, "document:goods_issue")
	}

	// --- DELIVERIES ---
	{
		repo := document_repo.NewDeliveryRepo()
		service := delivery.NewService(repo, deps.postingEngine, cfg.Numerator, nil, deps.enricher)
		handler := handlers.NewDeliveryHandler(baseHandler, service)
		RegisterDocumentRoutes(docsGroup.Group("/deliveries"), handler, "document:delivery")
	}

	// --- GOODS RETURNS ---
	{
		repo := document_repo.NewGoodsReturnRepo()
		service := goods_return.NewService(repo, deps.postingEngine, cfg.Numerator, nil, deps.enricher, deps.costLookup)
		handler := handlers.NewGoodsReturnHandler(baseHandler, service)
		RegisterDocumentRoutes(docsGroup.Group("/goods-returns"), handler, "document:goods_return")
	}

	// --- GOODS TRANSFERS ---
	{
		repo := document_repo.NewGoodsTransferRepo()
		service := goods_transfer.NewService(repo, deps.postingEngine, cfg.Numerator, nil, deps.enricher)
		handler := handlers.NewGoodsTransferHandler(baseHandler, service)
		RegisterDocumentRoutes(docsGroup.Group("/goods-transfers"), handler, "document:goods_transfer")
	}

	// --- BALANCE INIT ---
	{
		repo := document_repo.NewBalanceInitRepo()
		service := balance_init.NewService(repo, deps.postingEngine, cfg.Numerator, nil, deps.enricher)
		handler := handlers.NewBalanceInitHandler(baseHandler, service)
		RegisterDocumentRoutes(docsGroup.Group("/balance-inits"), handler, "document:balance_init")
	}
}

// registerLedgerRoutes registers read access to the stock ledger.
func registerLedgerRoutes(rg *gin.RouterGroup, deps *domainDeps) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewLedgerHandler(baseHandler, deps.ledgerStore, deps.registration)

	ledgerGroup := rg.Group("/ledger")
	ledgerGroup.GET("/logs", middleware.RequirePermission("ledger:read"), handler.ListLogs)
	ledgerGroup.GET("/entries", middleware.RequirePermission("ledger:read"), handler.ListEntries)
	ledgerGroup.GET("/fulfillment/:saleOrderId", middleware.RequirePermission("ledger:read"), handler.GetFulfillment)
}

// registerCalendarRoutes registers fiscal calendar endpoints.
func registerCalendarRoutes(rg *gin.RouterGroup, deps *domainDeps) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewCalendarHandler(baseHandler, deps.calendarService, deps.calendarRepo, deps.ledgerEngine)

	calendarGroup := rg.Group("/calendar")
	calendarGroup.POST("/periods", middleware.RequirePermission("calendar:manage"), handler.CreateFiscalYear)
	calendarGroup.GET("/periods/:year", middleware.RequirePermission("calendar:read"), handler.GetFiscalYear)
	calendarGroup.POST("/close", middleware.RequirePermission("calendar:close"), handler.CloseSubPeriod)
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	reportsGroup := rg.Group("/reports")
	baseHandler := handlers.NewBaseHandler()

	reportRepo := report_repo.NewReportRepo()
	reportService := reports.NewService(reportRepo)
	reportHandler := handlers.NewReportsHandler(baseHandler, reportService)

	reportsGroup.GET("/stock-card", middleware.RequirePermission("report:stock:read"), reportHandler.GetStockCard)
	reportsGroup.GET("/valuation", middleware.RequirePermission("report:valuation:read"), reportHandler.GetValuationSummary)
	reportsGroup.GET("/stock-turnover",
		middleware.RequirePermission("report:stock:read"),
		requireFeature(cfg.FeatureFlags, security.FlagAdvancedReports),
		reportHandler.GetStockTurnover)
	reportsGroup.GET("/document-journal", middleware.RequirePermission("report:documents:read"), reportHandler.GetDocumentJournal)
}

// requireFeature rejects the request when a configured flag provider says
// the feature is off. Without a provider every feature is on.
func requireFeature(flags security.FeatureFlagProvider, flag string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if flags != nil && !flags.IsEnabled(c.Request.Context(), flag) {
			_ = c.Error(apperror.NewForbidden("feature is not enabled").
				WithDetail("feature", flag))
			c.Abort()
			return
		}
		c.Next()
	}
}

// registerMetaRoutes registers metadata/schema endpoints.
func registerMetaRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.MetadataRegistry == nil {
		return
	}

	handler := handlers.NewMetadataHandler(cfg.MetadataRegistry, cfg.SchemaCache)
	meta := rg.Group("/meta")
	{
		meta.GET("", handler.ListEntities)
		meta.GET("/:name", handler.GetEntity)
	}
	schema := rg.Group("/schema")
	{
		schema.GET("/custom-fields/:entity", handler.CustomFields)
	}
}
