package security

import (
	"context"
	"sync"
)

// FeatureFlagProvider evaluates feature flags. Backends vary: the
// in-memory provider below, or the schema-cache provider that reads
// sys_feature_flags with LISTEN/NOTIFY invalidation.
type FeatureFlagProvider interface {
	// IsEnabled reports whether a flag is on.
	IsEnabled(ctx context.Context, flag string) bool

	// GetVariant returns the variant name for A/B tests.
	GetVariant(ctx context.Context, flag string) string

	// GetValue returns a typed configuration value.
	GetValue(ctx context.Context, flag string) any
}

// Known flag names.
const (
	// FlagAdvancedReports gates the stock turnover report route.
	FlagAdvancedReports = "advanced_reports"

	// FlagAsyncPosting would move ledger writes out of the request
	// transaction. Reserved, not implemented.
	FlagAsyncPosting = "async_posting"
)

// InMemoryFlags is a process-local flag provider for tests and
// single-node deployments.
type InMemoryFlags struct {
	mu       sync.RWMutex
	flags    map[string]bool
	variants map[string]string
	values   map[string]any
}

// NewInMemoryFlags creates an in-memory flag provider.
func NewInMemoryFlags() *InMemoryFlags {
	return &InMemoryFlags{
		flags:    make(map[string]bool),
		variants: make(map[string]string),
		values:   make(map[string]any),
	}
}

func (f *InMemoryFlags) IsEnabled(ctx context.Context, flag string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.flags[flag]
}

func (f *InMemoryFlags) GetVariant(ctx context.Context, flag string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.variants[flag]
}

func (f *InMemoryFlags) GetValue(ctx context.Context, flag string) any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values[flag]
}

// SetFlag sets a boolean flag.
func (f *InMemoryFlags) SetFlag(flag string, enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flags[flag] = enabled
}

// SetVariant sets a variant.
func (f *InMemoryFlags) SetVariant(flag, variant string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.variants[flag] = variant
}

// SetValue sets a configuration value.
func (f *InMemoryFlags) SetValue(flag string, value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[flag] = value
}
