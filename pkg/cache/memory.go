package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/noah-isme/sma-odoo-sync/pkg/config"
)

// NewMemory returns an in-process TTL cache with a background janitor.
func NewMemory(cfg config.CacheConfig) *gocache.Cache {
	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	cleanup := cfg.CleanupInterval
	if cleanup <= 0 {
		cleanup = ttl * 2
	}
	return gocache.New(ttl, cleanup)
}
