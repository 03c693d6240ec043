package config

import "time"

// CacheConfig controls the Redis copy of GET /api/products.  The catalog is
// compiled into the binary, so an entry only goes stale across deploys and
// the TTL can be generous.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Key          string // Redis key holding the cached listing
	MaxBodyBytes int    // listings larger than this are served but not stored
}

// LoadCacheConfig reads PRODUCT_CACHE_* variables.
func LoadCacheConfig() CacheConfig {
	c := CacheConfig{
		Enabled:      envBool("PRODUCT_CACHE_ENABLED", true),
		TTL:          envDur("PRODUCT_CACHE_TTL", 5*time.Minute),
		Key:          envStr("PRODUCT_CACHE_KEY", "cache:products"),
		MaxBodyBytes: envInt("PRODUCT_CACHE_MAX_BYTES", 256<<10),
	}
	if c.TTL <= 0 {
		c.TTL = 5 * time.Minute
	}
	return c
}
