// Package cache stores statistics-office responses so repeated dataset
// lookups do not hammer the office API. Claim resolution itself is
// never cached; only raw HTTP payloads are.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hradek/fiskal/internal/model"
)

// Cache is the storage interface for fetched payloads.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a stable cache key from a request URL. The version
// segment invalidates everything when the payload format changes.
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "fiskal:v1:" + hex.EncodeToString(hash[:])
}

// FromConfig builds the configured cache, or nil when caching is
// disabled. Callers treat a nil Cache as a no-op.
func FromConfig(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}
