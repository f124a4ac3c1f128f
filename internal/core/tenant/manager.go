package tenant

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"valora/pkg/logger"
)

// healthProbeTimeout bounds a single ping sweep over all pools.
const healthProbeTimeout = 5 * time.Second

// ManagerConfig tunes per-tenant pool creation and lifecycle.
type ManagerConfig struct {
	// Credentials used for every tenant database.
	DBUser     string
	DBPassword string

	// Per-tenant pool sizing.
	MaxConnsPerTenant int32
	MinConnsPerTenant int32

	ConnectTimeout time.Duration

	MaxTotalPools     int           // cap on simultaneously open pools, 0 means unlimited
	PoolIdleTimeout   time.Duration // close a pool after this much inactivity, 0 means never
	HealthCheckPeriod time.Duration // interval between ping sweeps
}

// DefaultManagerConfig returns settings suitable for production use.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		MaxConnsPerTenant: 10,
		MinConnsPerTenant: 2,
		ConnectTimeout:    10 * time.Second,
		MaxTotalPools:     100,
		PoolIdleTimeout:   30 * time.Minute,
		HealthCheckPeriod: 1 * time.Minute,
	}
}

// ManagedPool is a pgx pool plus the bookkeeping the manager needs to
// decide when it may be evicted.
type ManagedPool struct {
	pool     *pgxpool.Pool
	tenant   *Tenant
	lastUsed atomic.Int64 // unix seconds of last checkout
	refCount atomic.Int32 // requests currently holding the pool
	// unhealthySince holds the unix time of the first failed ping,
	// zero while the pool looks healthy.
	unhealthySince atomic.Int64
}

// Touch records that the pool was just used.
func (p *ManagedPool) Touch() {
	p.lastUsed.Store(time.Now().Unix())
}

func (p *ManagedPool) Pool() *pgxpool.Pool {
	return p.pool
}

func (p *ManagedPool) Tenant() *Tenant {
	return p.tenant
}

// AcquireRef marks the pool as held by a request. A held pool is never
// evicted, no matter how it looks to the health checker.
func (p *ManagedPool) AcquireRef() {
	p.refCount.Add(1)
}

func (p *ManagedPool) ReleaseRef() {
	p.refCount.Add(-1)
}

// Manager owns one connection pool per active tenant, creating them
// lazily and retiring them when idle or unhealthy. Safe for concurrent
// use from request handlers.
type Manager struct {
	config   ManagerConfig
	registry Registry

	pools     sync.Map // tenant ID -> *ManagedPool
	poolCount atomic.Int32

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *logger.Logger
}

// NewManager builds a manager and starts its eviction and health check
// loops according to the config.
func NewManager(cfg ManagerConfig, registry Registry, log *logger.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		config:   cfg,
		registry: registry,
		ctx:      ctx,
		cancel:   cancel,
		log:      log.WithComponent("tenant-manager"),
	}

	if cfg.PoolIdleTimeout > 0 {
		m.wg.Add(1)
		go m.evictionLoop()
	}
	if cfg.HealthCheckPeriod > 0 {
		m.wg.Add(1)
		go m.healthCheckLoop()
	}

	m.log.Info("multi-tenant manager started",
		"max_pools", cfg.MaxTotalPools,
		"idle_timeout", cfg.PoolIdleTimeout,
		"health_check_period", cfg.HealthCheckPeriod,
	)

	return m
}

// GetPool returns the pool for a tenant, opening it on first use.
func (m *Manager) GetPool(ctx context.Context, tenantID string) (*ManagedPool, error) {
	if val, ok := m.pools.Load(tenantID); ok {
		p := val.(*ManagedPool)
		p.Touch()
		return p, nil
	}
	return m.openPool(ctx, tenantID)
}

func (m *Manager) openPool(ctx context.Context, tenantID string) (*ManagedPool, error) {
	if m.config.MaxTotalPools > 0 && int(m.poolCount.Load()) >= m.config.MaxTotalPools {
		return nil, fmt.Errorf("%w (%d)", ErrMaxPoolLimit, m.config.MaxTotalPools)
	}

	t, err := m.registry.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("tenant lookup failed: %w", err)
	}
	if !t.IsActive() {
		return nil, fmt.Errorf("%w: status=%s", ErrTenantNotActive, t.Status)
	}

	poolCfg, err := pgxpool.ParseConfig(t.DSN(m.config.DBUser, m.config.DBPassword))
	if err != nil {
		return nil, fmt.Errorf("parse dsn for tenant %s: %w", tenantID, err)
	}
	poolCfg.MaxConns = m.config.MaxConnsPerTenant
	poolCfg.MinConns = m.config.MinConnsPerTenant
	poolCfg.HealthCheckPeriod = m.config.HealthCheckPeriod
	poolCfg.ConnConfig.ConnectTimeout = m.config.ConnectTimeout

	connectCtx, cancel := context.WithTimeout(ctx, m.config.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool for tenant %s: %w", tenantID, err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping tenant %s: %w", tenantID, err)
	}

	p := &ManagedPool{
		pool:   pool,
		tenant: t,
	}
	p.Touch()

	// Two requests may race to open the same tenant. LoadOrStore keeps
	// exactly one pool and the loser closes its own.
	actual, loaded := m.pools.LoadOrStore(tenantID, p)
	if loaded {
		pool.Close()
		return actual.(*ManagedPool), nil
	}

	m.poolCount.Add(1)
	m.log.Info("created pool for tenant",
		"tenant_id", tenantID,
		"db_name", t.DBName,
		"total_pools", m.poolCount.Load(),
	)

	return p, nil
}

func (m *Manager) evictionLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.PoolIdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.evictIdlePools()
		}
	}
}

func (m *Manager) evictIdlePools() {
	threshold := time.Now().Add(-m.config.PoolIdleTimeout).Unix()

	m.pools.Range(func(key, value any) bool {
		tenantID := key.(string)
		p := value.(*ManagedPool)

		if p.refCount.Load() > 0 {
			return true
		}

		// An unhealthy pool with nobody on it goes immediately, no need
		// to wait out the idle window.
		if p.unhealthySince.Load() > 0 {
			m.closePool(tenantID, p, "unhealthy pool (no active refs)")
			return true
		}

		if p.lastUsed.Load() < threshold {
			m.closePool(tenantID, p, "idle timeout")
		}
		return true
	})
}

func (m *Manager) healthCheckLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.HealthCheckPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.checkPoolsHealth()
		}
	}
}

// checkPoolsHealth pings every pool. Pools that fail while unused are
// closed here; pools that fail while held are only flagged and the
// eviction loop closes them once the last ref drops.
func (m *Manager) checkPoolsHealth() {
	ctx, cancel := context.WithTimeout(m.ctx, healthProbeTimeout)
	defer cancel()

	m.pools.Range(func(key, value any) bool {
		tenantID := key.(string)
		p := value.(*ManagedPool)

		if err := p.pool.Ping(ctx); err != nil {
			if p.unhealthySince.Load() == 0 {
				p.unhealthySince.Store(time.Now().Unix())
			}
			m.log.Warn("pool health check failed",
				"tenant_id", tenantID,
				"error", err,
			)
			if p.refCount.Load() == 0 {
				m.closePool(tenantID, p, "health check failed")
			}
			return true
		}

		if p.unhealthySince.Load() != 0 {
			p.unhealthySince.Store(0)
		}
		return true
	})
}

func (m *Manager) closePool(tenantID string, p *ManagedPool, reason string) {
	m.pools.Delete(tenantID)
	p.pool.Close()
	m.poolCount.Add(-1)

	m.log.Info("closed pool",
		"tenant_id", tenantID,
		"reason", reason,
		"total_pools", m.poolCount.Load(),
	)
}

// Close stops the background loops and closes every open pool.
func (m *Manager) Close() {
	m.log.Info("shutting down multi-tenant manager...")

	m.cancel()
	m.wg.Wait()

	var closed int
	m.pools.Range(func(_, value any) bool {
		value.(*ManagedPool).pool.Close()
		closed++
		return true
	})

	m.log.Info("multi-tenant manager closed", "pools_closed", closed)
}

// Stats snapshots connection counts across all managed pools.
func (m *Manager) Stats() ManagerStats {
	var stats ManagerStats
	stats.TotalPools = int(m.poolCount.Load())

	m.pools.Range(func(key, value any) bool {
		p := value.(*ManagedPool)
		ps := p.pool.Stat()

		stats.TotalConns += int(ps.TotalConns())
		stats.IdleConns += int(ps.IdleConns())
		stats.AcquiredConns += int(ps.AcquiredConns())

		stats.Tenants = append(stats.Tenants, TenantPoolStats{
			TenantID:      key.(string),
			DBName:        p.tenant.DBName,
			TotalConns:    int(ps.TotalConns()),
			IdleConns:     int(ps.IdleConns()),
			AcquiredConns: int(ps.AcquiredConns()),
			ActiveRefs:    int(p.refCount.Load()),
			LastUsed:      time.Unix(p.lastUsed.Load(), 0),
		})
		return true
	})

	return stats
}

type ManagerStats struct {
	TotalPools    int
	TotalConns    int
	IdleConns     int
	AcquiredConns int
	Tenants       []TenantPoolStats
}

type TenantPoolStats struct {
	TenantID      string
	DBName        string
	TotalConns    int
	IdleConns     int
	AcquiredConns int
	ActiveRefs    int
	LastUsed      time.Time
}

// GetActiveTenants lists every active tenant known to the registry.
func (m *Manager) GetActiveTenants(ctx context.Context) ([]*Tenant, error) {
	return m.registry.ListActive(ctx)
}

func (m *Manager) GetRegistry() Registry {
	return m.registry
}

// PrewarmPools opens pools for all active tenants up front so the first
// request to each tenant does not pay the connect cost.
func (m *Manager) PrewarmPools(ctx context.Context) error {
	tenants, err := m.registry.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active tenants: %w", err)
	}

	m.log.Info("prewarming pools", "tenant_count", len(tenants))

	var wg sync.WaitGroup
	errCh := make(chan error, len(tenants))

	for _, t := range tenants {
		wg.Add(1)
		go func(t *Tenant) {
			defer wg.Done()
			if _, err := m.GetPool(ctx, t.ID); err != nil {
				errCh <- fmt.Errorf("prewarm %s: %w", t.ID, err)
			}
		}(t)
	}

	wg.Wait()
	close(errCh)

	var failures []error
	for err := range errCh {
		failures = append(failures, err)
	}
	if len(failures) > 0 {
		m.log.Warn("some pools failed to prewarm", "error_count", len(failures))
		return failures[0]
	}

	m.log.Info("all pools prewarmed successfully")
	return nil
}
