package cache

import (
	"context"

	"valora/internal/core/security"
)

// CacheBackedFlags adapts SchemaCache to security.FeatureFlagProvider.
// The cache already belongs to one tenant database, so the context is
// not consulted.
type CacheBackedFlags struct {
	cache *SchemaCache
}

func NewCacheBackedFlags(cache *SchemaCache) *CacheBackedFlags {
	return &CacheBackedFlags{cache: cache}
}

func (f *CacheBackedFlags) IsEnabled(ctx context.Context, flag string) bool {
	return f.cache.IsFeatureEnabled(flag)
}

func (f *CacheBackedFlags) GetVariant(ctx context.Context, flag string) string {
	return f.cache.GetFeatureVariant(flag)
}

// GetValue returns the flag's config map, copied so callers cannot
// mutate cache state.
func (f *CacheBackedFlags) GetValue(ctx context.Context, flag string) any {
	return f.cache.GetFeatureConfig(flag)
}

var _ security.FeatureFlagProvider = (*CacheBackedFlags)(nil)
