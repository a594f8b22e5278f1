package config

import "time"

// CacheConfig defines settings for the response cache middleware.  Caching
// is applied per-route to cheap public reads (coach catalog, registration
// status), so the cache key is always route plus query string.  When Enabled
// is false or no Redis client is available, caching is disabled.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration // lifetime of a cached response
	Prefix       string        // Redis key prefix
	MaxBodyBytes int           // responses larger than this are not cached
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
