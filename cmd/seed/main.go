// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/domain/calendar"
	"valora/internal/domain/catalogs/company"
	"valora/internal/domain/catalogs/counterparty"
	"valora/internal/domain/catalogs/product"
	"valora/internal/domain/catalogs/unit"
	"valora/internal/domain/catalogs/warehouse"
	"valora/pkg/numerator"
	"valora/internal/infrastructure/storage/postgres"
	"valora/internal/infrastructure/storage/postgres/calendar_repo"
	"valora/internal/infrastructure/storage/postgres/catalog_repo"
	"valora/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to the tenant database
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	// Repositories resolve the TxManager from context, so the seeder wires
	// the same context the HTTP middleware would.
	ctx = tenant.WithPool(ctx, pool.Unwrap())
	ctx = tenant.WithTxManager(ctx, postgres.NewTxManager(pool))

	adminUserID, err := seedAdminUser(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		tenantID, err := seedTenantRegistry(ctx, dbURL, log)
		if err != nil {
			log.Warnw("failed to seed tenant registry", "error", err)
		}
		if id.IsNil(tenantID) {
			tenantID = id.New()
			log.Warnw("tenant registry unavailable, using generated tenant id", "tenant_id", tenantID)
		}
		if err := seedDemoData(ctx, log, tenantID, adminUserID); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, error) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@valora.io"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	// Check if admin already exists
	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1 AND NOT deletion_mark`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return existingID, nil
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check admin exists: %w", err)
	}

	// Hash password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return id.Nil(), fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	now := time.Now()

	// Create admin user
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name,
			is_active, is_admin, email_verified, email_verified_at, version
		)
		VALUES ($1, $2, $3, 'System', 'Admin', true, true, true, $4, 1)
	`, userID, adminEmail, string(passwordHash), now)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert admin user: %w", err)
	}

	// Assign admin role
	var adminRoleID id.ID
	err = pool.Pool.QueryRow(ctx,
		`SELECT id FROM roles WHERE code = 'admin'`,
	).Scan(&adminRoleID)
	if err != nil {
		log.Warnw("admin role not found, skipping role assignment", "error", err)
	} else {
		_, err = pool.Pool.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id, granted_by)
			VALUES ($1, $2, NULL)
			ON CONFLICT (user_id, role_id) DO NOTHING
		`, userID, adminRoleID)
		if err != nil {
			log.Warnw("failed to assign admin role", "error", err)
		}
	}

	log.Infow("admin user created",
		"email", adminEmail,
		"user_id", userID,
	)

	return userID, nil
}

func seedDemoData(ctx context.Context, log *logger.Logger, tenantID, adminUserID id.ID) error {
	log.Info("seeding demo data...")

	gen := numerator.NewFromContext()

	companies := company.NewService(catalog_repo.NewCompanyRepo(), gen)
	units := unit.NewService(catalog_repo.NewUnitRepo(), gen)
	warehouses := warehouse.NewService(catalog_repo.NewWarehouseRepo(), gen)
	counterparties := counterparty.NewService(catalog_repo.NewCounterpartyRepo(), gen)
	products := product.NewService(catalog_repo.NewProductRepo(), gen)
	fiscalCalendar := calendar.NewService(calendar_repo.NewCalendarRepo())

	// 1. Company. Everything else is scoped by (tenant, company).
	comp := company.NewCompany(tenantID, "CO-001", "Valora Trading")
	fullName := "Valora Trading Co., Ltd."
	taxCode := "0312345678"
	comp.FullName = &fullName
	comp.TaxCode = &taxCode
	comp.IsDefault = true
	if err := companies.Create(ctx, comp); err != nil {
		existing, getErr := companies.GetByCode(ctx, comp.Code)
		if getErr != nil {
			return fmt.Errorf("seed company: %w", err)
		}
		comp = existing
		log.Infow("company already exists", "code", comp.Code, "company_id", comp.ID)
	}
	scope := comp.Scope()

	if !id.IsNil(adminUserID) {
		if err := linkAdminToCompany(ctx, adminUserID, comp.ID); err != nil {
			log.Warnw("failed to link admin user to company", "error", err)
		}
	}

	// 2. Units of measure. Products reference units by ID.
	unitSeeds := []struct {
		code   string
		name   string
		symbol string
		uType  unit.UnitType
	}{
		{"pcs", "Piece", "pcs", unit.TypePiece},
		{"kg", "Kilogram", "kg", unit.TypeWeight},
		{"l", "Liter", "l", unit.TypeVolume},
		{"m", "Meter", "m", unit.TypeLength},
		{"box", "Box", "box", unit.TypePack},
	}

	unitIDs := make(map[string]id.ID)
	for _, u := range unitSeeds {
		entity := unit.NewUnit(u.code, u.name, u.symbol, u.uType)
		if err := units.Create(ctx, entity); err != nil {
			existing, getErr := units.GetByCode(ctx, u.code)
			if getErr != nil {
				log.Warnw("failed to seed unit", "code", u.code, "error", err)
				continue
			}
			entity = existing
		}
		unitIDs[u.code] = entity.ID
	}

	// 3. Warehouses
	warehouseSeeds := []struct {
		code      string
		name      string
		address   string
		wType     warehouse.WarehouseType
		isDefault bool
	}{
		{"WH-001", "Main warehouse", "12 Nguyen Trai, District 1, HCMC", warehouse.TypeMain, true},
		{"WH-002", "Retail store", "45 Le Loi, District 1, HCMC", warehouse.TypeRetail, false},
		{"WH-003", "Transit", "virtual", warehouse.TypeTransit, false},
	}

	for _, w := range warehouseSeeds {
		wh := warehouse.NewWarehouse(comp.ID, w.code, w.name, w.wType)
		address := w.address
		wh.Address = &address
		wh.IsDefault = w.isDefault
		if err := warehouses.Create(ctx, wh); err != nil {
			if _, getErr := warehouses.GetByCode(ctx, w.code); getErr != nil {
				log.Warnw("failed to seed warehouse", "code", w.code, "error", err)
			}
		}
	}

	// 4. Counterparties
	counterpartySeeds := []struct {
		code    string
		name    string
		cpType  counterparty.CounterpartyType
		taxCode string
	}{
		{"CP-001", "Saigon Paper Supply JSC", counterparty.TypeSupplier, "0301234567"},
		{"CP-002", "Mekong Retail Group", counterparty.TypeCustomer, "0309876543"},
		{"CP-003", "Hanoi Office Solutions", counterparty.TypeBoth, "0105554433"},
	}

	for _, cp := range counterpartySeeds {
		entity := counterparty.NewCounterparty(cp.code, cp.name, cp.cpType)
		taxCode := cp.taxCode
		entity.TaxCode = &taxCode
		if err := counterparties.Create(ctx, entity); err != nil {
			if _, getErr := counterparties.GetByCode(ctx, cp.code); getErr != nil {
				log.Warnw("failed to seed counterparty", "code", cp.code, "error", err)
			}
		}
	}

	// 5. Products
	productSeeds := []struct {
		code     string
		name     string
		sku      string
		pType    product.ProductType
		unitCode string
		minStock int64
	}{
		{"PRD-00001", "Office paper A4", "PAP-A4", product.TypeGoods, "box", 20},
		{"PRD-00002", "Ballpoint pen blue", "PEN-BLU", product.TypeGoods, "pcs", 100},
		{"PRD-00003", "Desktop stapler", "STP-001", product.TypeGoods, "pcs", 10},
		{"PRD-00004", "Paper clips 28mm", "CLP-028", product.TypeGoods, "box", 50},
		{"PRD-00005", "Lever arch folder", "FOL-REG", product.TypeGoods, "pcs", 30},
		{"PRD-00006", "Freight delivery", "DELIVERY", product.TypeService, "pcs", 0},
	}

	for _, p := range productSeeds {
		unitID, ok := unitIDs[p.unitCode]
		if !ok {
			unitID = unitIDs["pcs"]
		}

		entity := product.NewProduct(p.code, p.name, p.pType, unitID)
		sku := p.sku
		entity.SKU = &sku
		if p.minStock > 0 {
			entity.MinStock = decimal.NewFromInt(p.minStock)
		}
		if err := products.Create(ctx, entity); err != nil {
			if _, getErr := products.GetByCode(ctx, p.code); getErr != nil {
				log.Warnw("failed to seed product", "code", p.code, "error", err)
			}
		}
	}

	// 6. Fiscal calendar for the current year. Documents cannot post into a
	// year that has no period.
	year := time.Now().Year()
	if period, err := fiscalCalendar.ResolvePeriod(ctx, scope, time.Now()); err == nil && period != nil {
		log.Infow("fiscal year already exists", "year", year)
	} else if _, err := fiscalCalendar.CreateFiscalYear(ctx, scope, year); err != nil {
		log.Warnw("failed to seed fiscal year", "year", year, "error", err)
	}

	log.Infow("demo data seeded successfully",
		"tenant_id", scope.TenantID,
		"company_id", scope.CompanyID,
	)
	return nil
}

func linkAdminToCompany(ctx context.Context, userID, companyID id.ID) error {
	txm := postgres.MustGetTxManager(ctx)
	_, err := txm.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO user_companies (user_id, company_id, is_default)
		VALUES ($1, $2, true)
		ON CONFLICT (user_id, company_id) DO NOTHING
	`, userID, companyID)
	return err
}

func seedTenantRegistry(ctx context.Context, dbURL string, log *logger.Logger) (id.ID, error) {
	metaDSN := os.Getenv("META_DATABASE_URL")
	if metaDSN == "" {
		log.Warn("META_DATABASE_URL is not set; skipping tenant registry seed")
		return id.Nil(), nil
	}

	metaPool, err := pgxpool.New(ctx, metaDSN)
	if err != nil {
		return id.Nil(), fmt.Errorf("connect meta database: %w", err)
	}
	defer metaPool.Close()

	if err := metaPool.Ping(ctx); err != nil {
		return id.Nil(), fmt.Errorf("ping meta database: %w", err)
	}

	tenantSlug := os.Getenv("TENANT_SLUG")
	if tenantSlug == "" {
		tenantSlug = "demo"
	}

	tenantName := os.Getenv("TENANT_NAME")
	if tenantName == "" {
		tenantName = "Demo Tenant"
	}

	tenantPlan := os.Getenv("TENANT_PLAN")
	if tenantPlan == "" {
		tenantPlan = string(tenant.PlanStandard)
	}

	dbConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return id.Nil(), fmt.Errorf("parse tenant database url: %w", err)
	}

	dbHost := dbConfig.ConnConfig.Host
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := int(dbConfig.ConnConfig.Port)
	if dbPort == 0 {
		dbPort = 5432
	}

	dbName := dbConfig.ConnConfig.Database
	if dbName == "" {
		dbName = "valora"
	}

	var existingID string
	err = metaPool.QueryRow(ctx, `SELECT id FROM tenants WHERE slug = $1`, tenantSlug).Scan(&existingID)
	if err == nil {
		log.Infow("tenant already exists in registry", "slug", tenantSlug, "tenant_id", existingID)
		return id.Parse(existingID)
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check tenant exists: %w", err)
	}

	registry := tenant.NewPostgresRegistry(metaPool)
	newTenant := &tenant.Tenant{
		Slug:        tenantSlug,
		DisplayName: tenantName,
		DBName:      dbName,
		DBHost:      dbHost,
		DBPort:      dbPort,
		Status:      tenant.StatusActive,
		Plan:        tenant.Plan(tenantPlan),
		Settings:    map[string]any{},
	}

	if err := registry.Create(ctx, newTenant); err != nil {
		return id.Nil(), fmt.Errorf("create tenant: %w", err)
	}

	log.Infow("tenant seeded in registry", "slug", tenantSlug, "tenant_id", newTenant.ID)
	return id.Parse(newTenant.ID)
}
