// Package cache keeps per-tenant metadata (custom field schemas, feature
// flags) in memory and invalidates it through PostgreSQL LISTEN/NOTIFY,
// so readers never poll and updates land within one notification round-trip.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"valora/pkg/logger"
)

const (
	schemaChannel = "schema_changed"
	flagsChannel  = "feature_flags_changed"

	// notifyWaitTimeout bounds WaitForNotification so shutdown is not
	// stuck behind a silent connection.
	notifyWaitTimeout = 30 * time.Second
)

// SchemaCache is a read-through cache of custom field schemas and feature
// flags. All accessors are safe for concurrent use.
type SchemaCache struct {
	pool         *pgxpool.Pool
	mu           sync.RWMutex
	customFields map[string][]CustomFieldSchema // keyed by entity type
	featureFlags map[string]FeatureFlag         // keyed by flag name

	listeners   []InvalidationListener
	listenersMu sync.RWMutex

	lifecycleMu sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

// CustomFieldSchema describes one user-defined field on an entity type.
type CustomFieldSchema struct {
	ID              string
	EntityType      string
	FieldName       string
	FieldType       string
	DisplayName     string
	Description     string
	IsRequired      bool
	IsIndexed       bool
	DefaultValue    any
	ValidationRules map[string]any
	ReferenceType   string
	EnumValues      []string
	SortOrder       int
	IsActive        bool
}

// FeatureFlag is a toggle with an optional validity window and variant.
type FeatureFlag struct {
	ID          string
	FlagName    string
	Description string
	IsEnabled   bool
	Variant     string
	Config      map[string]any
	ValidFrom   *time.Time
	ValidUntil  *time.Time
}

// InvalidationListener receives the NOTIFY channel and payload after the
// cache has refreshed itself.
type InvalidationListener func(channel string, payload string)

func NewSchemaCache(pool *pgxpool.Pool) *SchemaCache {
	return &SchemaCache{
		pool:         pool,
		customFields: make(map[string][]CustomFieldSchema),
		featureFlags: make(map[string]FeatureFlag),
	}
}

// Start loads the initial snapshot and spawns the notification listener.
// Calling Start on a running cache is a no-op.
func (c *SchemaCache) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.lifecycleMu.Lock()
	if c.started {
		c.lifecycleMu.Unlock()
		return nil
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.started = true
	c.lifecycleMu.Unlock()

	if err := c.loadCustomFields(c.ctx, ""); err != nil {
		c.Stop()
		return fmt.Errorf("load custom fields: %w", err)
	}
	if err := c.loadFeatureFlags(c.ctx); err != nil {
		c.Stop()
		return fmt.Errorf("load feature flags: %w", err)
	}

	c.wg.Add(1)
	go c.listenLoop()
	logger.Info(c.ctx, "schema cache started")
	return nil
}

// Stop cancels the listener and waits for it to exit.
func (c *SchemaCache) Stop() {
	c.lifecycleMu.Lock()
	if !c.started {
		c.lifecycleMu.Unlock()
		return
	}
	cancel := c.cancel
	c.started = false
	c.cancel = nil
	c.lifecycleMu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	logger.Info(context.Background(), "schema cache stopped")
}

// listenLoop holds a dedicated connection on LISTEN and re-acquires one
// after any failure. Backoff is a flat second; notification loss during
// the gap is tolerable because handlers reload from the database anyway.
func (c *SchemaCache) listenLoop() {
	defer c.wg.Done()

	for c.ctx.Err() == nil {
		conn, err := c.pool.Acquire(c.ctx)
		if err != nil {
			logger.Error(c.ctx, "failed to acquire connection for LISTEN", "error", err)
			time.Sleep(time.Second)
			continue
		}

		_, err = conn.Exec(c.ctx, fmt.Sprintf("LISTEN %s; LISTEN %s;", schemaChannel, flagsChannel))
		if err != nil {
			logger.Error(c.ctx, "failed to LISTEN", "error", err)
			conn.Release()
			time.Sleep(time.Second)
			continue
		}

		logger.Info(c.ctx, "listening for schema and feature flag notifications")
		c.waitForNotifications(conn)
		conn.Release()
	}
}

func (c *SchemaCache) waitForNotifications(conn *pgxpool.Conn) {
	for c.ctx.Err() == nil {
		ctx, cancel := context.WithTimeout(c.ctx, notifyWaitTimeout)
		notification, err := conn.Conn().WaitForNotification(ctx)
		cancel()

		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			// timeout, keep waiting on the same connection
			continue
		}

		logger.Debug(c.ctx, "received notification",
			"channel", notification.Channel,
			"payload", notification.Payload)

		c.handleNotification(notification.Channel, notification.Payload)
	}
}

func (c *SchemaCache) handleNotification(channel, payload string) {
	switch channel {
	case schemaChannel:
		// payload carries the entity type, empty means reload everything
		entityType := strings.TrimSpace(payload)
		if err := c.loadCustomFields(c.ctx, entityType); err != nil {
			logger.Error(c.ctx, "failed to reload custom fields",
				"entityType", entityType, "error", err)
		}
	case flagsChannel:
		if err := c.loadFeatureFlags(c.ctx); err != nil {
			logger.Error(c.ctx, "failed to reload feature flags", "error", err)
		}
	}

	// Listeners run inline with panic recovery. No goroutine fan-out, so
	// a burst of NOTIFY events cannot turn into a goroutine storm.
	c.listenersMu.RLock()
	for _, listener := range c.listeners {
		func(l InvalidationListener) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error(c.ctx, "listener panic recovered", "channel", channel, "panic", r)
				}
			}()
			l(channel, payload)
		}(listener)
	}
	c.listenersMu.RUnlock()
}

const customFieldColumns = `id, entity_type, field_name, field_type, display_name,
		   description, is_required, is_indexed, default_value,
		   validation_rules, reference_type, enum_values, sort_order,
		   is_active`

func scanCustomField(rows interface {
	Scan(dest ...any) error
}) (CustomFieldSchema, error) {
	var f CustomFieldSchema
	var defaultValue, validationRules []byte
	var enumValues []string

	err := rows.Scan(
		&f.ID, &f.EntityType, &f.FieldName, &f.FieldType, &f.DisplayName,
		&f.Description, &f.IsRequired, &f.IsIndexed, &defaultValue,
		&validationRules, &f.ReferenceType, &enumValues, &f.SortOrder,
		&f.IsActive,
	)
	if err != nil {
		return f, fmt.Errorf("scan custom field: %w", err)
	}

	f.EnumValues = enumValues
	if len(defaultValue) > 0 {
		var v any
		if err := json.Unmarshal(defaultValue, &v); err != nil {
			return f, fmt.Errorf("unmarshal custom field default_value (%s.%s): %w", f.EntityType, f.FieldName, err)
		}
		f.DefaultValue = v
	}
	if len(validationRules) > 0 {
		var m map[string]any
		if err := json.Unmarshal(validationRules, &m); err != nil {
			return f, fmt.Errorf("unmarshal custom field validation_rules (%s.%s): %w", f.EntityType, f.FieldName, err)
		}
		f.ValidationRules = m
	}
	return f, nil
}

// loadCustomFields refreshes field schemas. With an entityType it replaces
// that one entry; with an empty string it rebuilds the whole map.
func (c *SchemaCache) loadCustomFields(ctx context.Context, entityType string) error {
	query := `
		SELECT ` + customFieldColumns + `
		FROM sys_custom_field_schemas
		WHERE is_active = TRUE
		ORDER BY entity_type, sort_order
	`
	args := []any{}
	if entityType != "" {
		query = `
			SELECT ` + customFieldColumns + `
			FROM sys_custom_field_schemas
			WHERE entity_type = $1 AND is_active = TRUE
			ORDER BY sort_order
		`
		args = append(args, entityType)
	}

	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query custom fields: %w", err)
	}
	defer rows.Close()

	byEntity := make(map[string][]CustomFieldSchema)
	total := 0
	for rows.Next() {
		f, err := scanCustomField(rows)
		if err != nil {
			return err
		}
		byEntity[f.EntityType] = append(byEntity[f.EntityType], f)
		total++
	}

	c.mu.Lock()
	if entityType == "" {
		c.customFields = byEntity
	} else {
		c.customFields[entityType] = byEntity[entityType]
	}
	c.mu.Unlock()

	if entityType == "" {
		logger.Info(ctx, "loaded custom fields", "entities", len(byEntity), "fields", total)
	} else {
		logger.Debug(ctx, "reloaded custom fields", "entityType", entityType, "fields", total)
	}
	return nil
}

func (c *SchemaCache) loadFeatureFlags(ctx context.Context) error {
	rows, err := c.pool.Query(ctx, `
		SELECT id, flag_name, description, is_enabled, variant,
			   config, valid_from, valid_until
		FROM sys_feature_flags
	`)
	if err != nil {
		return fmt.Errorf("query feature flags: %w", err)
	}
	defer rows.Close()

	flags := make(map[string]FeatureFlag)
	now := time.Now()

	for rows.Next() {
		var f FeatureFlag
		var config []byte

		err := rows.Scan(
			&f.ID, &f.FlagName, &f.Description, &f.IsEnabled, &f.Variant,
			&config, &f.ValidFrom, &f.ValidUntil,
		)
		if err != nil {
			return fmt.Errorf("scan feature flag: %w", err)
		}

		if len(config) > 0 {
			var m map[string]any
			if err := json.Unmarshal(config, &m); err != nil {
				return fmt.Errorf("unmarshal feature flag config (%s): %w", f.FlagName, err)
			}
			f.Config = m
		}

		// a flag outside its validity window reads as disabled
		if f.ValidFrom != nil && now.Before(*f.ValidFrom) {
			f.IsEnabled = false
		}
		if f.ValidUntil != nil && now.After(*f.ValidUntil) {
			f.IsEnabled = false
		}

		flags[f.FlagName] = f
	}

	c.mu.Lock()
	c.featureFlags = flags
	c.mu.Unlock()

	logger.Info(ctx, "loaded feature flags", "count", len(flags))
	return nil
}

// GetCustomFields returns a copy of the cached fields for an entity type.
func (c *SchemaCache) GetCustomFields(entityType string) []CustomFieldSchema {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]CustomFieldSchema(nil), c.customFields[entityType]...)
}

// IsFeatureEnabled reports whether a flag exists and is on.
func (c *SchemaCache) IsFeatureEnabled(flagName string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	flag, ok := c.featureFlags[flagName]
	return ok && flag.IsEnabled
}

// GetFeatureVariant returns the flag's variant, empty when unknown.
func (c *SchemaCache) GetFeatureVariant(flagName string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if flag, ok := c.featureFlags[flagName]; ok {
		return flag.Variant
	}
	return ""
}

// GetFeatureConfig returns a shallow copy of the flag's config map, nil
// when the flag is missing or carries no config.
func (c *SchemaCache) GetFeatureConfig(flagName string) map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	flag, ok := c.featureFlags[flagName]
	if !ok || len(flag.Config) == 0 {
		return nil
	}
	cfg := make(map[string]any, len(flag.Config))
	for k, v := range flag.Config {
		cfg[k] = v
	}
	return cfg
}

// OnInvalidation registers a callback fired after each refresh.
func (c *SchemaCache) OnInvalidation(listener InvalidationListener) {
	c.listenersMu.Lock()
	c.listeners = append(c.listeners, listener)
	c.listenersMu.Unlock()
}

// CacheStats is a point-in-time summary for the health endpoint.
type CacheStats struct {
	EntitiesCount     int
	CustomFieldsCount int
	FeatureFlagsCount int
	EntitiesCached    []string
}

func (c *SchemaCache) GetStats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entities := make([]string, 0, len(c.customFields))
	totalFields := 0
	for entityType, list := range c.customFields {
		entities = append(entities, entityType)
		totalFields += len(list)
	}

	return CacheStats{
		EntitiesCount:     len(c.customFields),
		CustomFieldsCount: totalFields,
		FeatureFlagsCount: len(c.featureFlags),
		EntitiesCached:    entities,
	}
}
