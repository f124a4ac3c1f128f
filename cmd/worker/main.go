// The worker drains the transactional outbox and runs periodic
// cleanup for every active tenant. Each tenant gets its own goroutine
// against its own database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"valora/internal/core/tenant"
	"valora/internal/infrastructure/storage/postgres"
	"valora/pkg/logger"
)

const (
	tenantRefreshInterval = time.Minute
	outboxPollInterval    = 500 * time.Millisecond
	cleanupInterval       = time.Hour
	outboxBatchSize       = 100
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting valora multi-tenant worker")

	metaPool, err := pgxpool.New(ctx, mustEnv("META_DATABASE_URL"))
	if err != nil {
		log.Fatalw("failed to connect to meta database", "error", err)
	}
	defer metaPool.Close()

	registry := tenant.NewPostgresRegistry(metaPool)

	managerCfg := tenant.DefaultManagerConfig()
	managerCfg.DBUser = mustEnv("TENANT_DB_USER")
	managerCfg.DBPassword = mustEnv("TENANT_DB_PASSWORD")
	managerCfg.PoolIdleTimeout = 10 * time.Minute // worker touches tenants rarely

	manager := tenant.NewManager(managerCfg, registry, log)
	defer manager.Close()

	worker := NewMultiTenantWorker(manager, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// MultiTenantWorker keeps one worker goroutine per active tenant and
// reconciles the set against the registry once a minute.
type MultiTenantWorker struct {
	manager *tenant.Manager
	log     *logger.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc // tenant ID to goroutine cancel
	wg      sync.WaitGroup
}

func NewMultiTenantWorker(manager *tenant.Manager, log *logger.Logger) *MultiTenantWorker {
	return &MultiTenantWorker{
		manager: manager,
		log:     log.WithComponent("worker"),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Run blocks until ctx is cancelled, then waits for the per-tenant
// goroutines to drain.
func (w *MultiTenantWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(tenantRefreshInterval)
	defer ticker.Stop()

	w.refreshTenants(ctx)

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			for _, cancel := range w.cancels {
				cancel()
			}
			w.mu.Unlock()
			w.wg.Wait()
			return

		case <-ticker.C:
			w.refreshTenants(ctx)
		}
	}
}

// refreshTenants stops goroutines of tenants that went inactive and
// starts goroutines for new ones.
func (w *MultiTenantWorker) refreshTenants(ctx context.Context) {
	tenants, err := w.manager.GetActiveTenants(ctx)
	if err != nil {
		w.log.Errorw("failed to get active tenants", "error", err)
		return
	}

	active := make(map[string]struct{}, len(tenants))
	for _, t := range tenants {
		active[t.ID] = struct{}{}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for tenantID, cancel := range w.cancels {
		if _, ok := active[tenantID]; !ok {
			cancel()
			delete(w.cancels, tenantID)
			w.log.Infow("stopped worker for inactive tenant", "tenant_id", tenantID)
		}
	}

	for _, t := range tenants {
		if _, running := w.cancels[t.ID]; running {
			continue
		}
		tenantCtx, tenantCancel := context.WithCancel(ctx)
		w.cancels[t.ID] = tenantCancel

		w.wg.Add(1)
		go func(t *tenant.Tenant) {
			defer w.wg.Done()
			w.runTenantWorker(tenantCtx, t)
		}(t)

		w.log.Infow("started worker for tenant", "tenant_id", t.ID)
	}
}

func (w *MultiTenantWorker) runTenantWorker(ctx context.Context, t *tenant.Tenant) {
	mp, err := w.manager.GetPool(ctx, t.ID)
	if err != nil {
		w.log.Errorw("failed to get pool for tenant", "tenant_id", t.ID, "error", err)
		return
	}

	relay := postgres.NewOutboxRelay(mp.Pool(), outboxBatchSize, &loggingOutboxHandler{
		log:      w.log,
		tenantID: t.ID,
	})

	ticker := time.NewTicker(outboxPollInterval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(cleanupInterval)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Infow("stopping worker for tenant", "tenant_id", t.ID)
			return
		case <-ticker.C:
			w.processOutbox(ctx, relay, t.ID)
		case <-cleanupTicker.C:
			w.cleanupTokens(ctx, mp.Pool(), t.ID)
			w.cleanupIdempotency(ctx, mp.Pool(), t.ID)
			if moved, err := relay.MoveToDLQ(ctx); err == nil && moved > 0 {
				w.log.Warnw("moved failed outbox messages to DLQ", "tenant_id", t.ID, "count", moved)
			}
		}
	}
}

func (w *MultiTenantWorker) processOutbox(ctx context.Context, relay *postgres.OutboxRelay, tenantID string) {
	processed, err := relay.ProcessBatch(ctx)
	if err != nil {
		w.log.Debugw("outbox batch failed", "tenant_id", tenantID, "error", err)
		return
	}
	if processed > 0 {
		w.log.Debugw("processed outbox batch", "tenant_id", tenantID, "count", processed)
	}
}

// cleanupTokens drops refresh tokens that expired or were revoked more
// than a week ago.
func (w *MultiTenantWorker) cleanupTokens(ctx context.Context, pool *pgxpool.Pool, tenantID string) {
	result, err := pool.Exec(ctx, `
		DELETE FROM refresh_tokens
		WHERE expires_at < NOW() OR revoked_at < NOW() - INTERVAL '7 days'
	`)
	if err != nil {
		return
	}
	if result.RowsAffected() > 0 {
		w.log.Infow("cleaned up refresh tokens", "tenant_id", tenantID, "count", result.RowsAffected())
	}
}

func (w *MultiTenantWorker) cleanupIdempotency(ctx context.Context, pool *pgxpool.Pool, tenantID string) {
	result, err := pool.Exec(ctx, `
		DELETE FROM sys_idempotency WHERE expires_at < NOW()
	`)
	if err != nil {
		return
	}
	if result.RowsAffected() > 0 {
		w.log.Infow("cleaned up idempotency keys", "tenant_id", tenantID, "count", result.RowsAffected())
	}
}

// loggingOutboxHandler emits posting events to the structured log. A
// message broker can replace it without touching the relay.
type loggingOutboxHandler struct {
	log      *logger.Logger
	tenantID string
}

func (h *loggingOutboxHandler) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	h.log.Infow("posting event",
		"tenant_id", h.tenantID,
		"aggregate_type", msg.AggregateType,
		"aggregate_id", msg.AggregateID,
		"event_type", msg.EventType,
		"created_at", msg.CreatedAt,
	)
	return nil
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
