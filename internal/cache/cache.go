// Package cache holds serialized query responses for a fixed TTL.
package cache

import (
	"fmt"
	"time"

	"rfpwatch/internal/config"
)

// Cache is safe for concurrent use. Get misses after the entry's TTL.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, val []byte)
	Purge() error
	Close() error
}

// New builds the backend named by cfg.Backend. It returns nil for "none".
func New(cfg config.CacheConfig) (Cache, error) {
	ttl := cfg.TTL()
	if ttl <= 0 {
		ttl = 300 * time.Second
	}
	switch cfg.Backend {
	case config.CacheNone:
		return nil, nil
	case "", config.CacheMemory:
		return NewMemory(cfg.Size, ttl), nil
	case config.CacheBadger:
		b, err := OpenBadger(cfg.Address, ttl)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
