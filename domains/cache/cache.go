package cache

import (
	"context"
	"time"
)

// Meta describes where a cached read was served from.
type Meta struct {
	Cached          bool   `json:"cached"`
	Stale           bool   `json:"stale"`
	CacheAgeSeconds int64  `json:"cache_age_seconds"`
	Source          string `json:"source"` // "cache", "database" or "api"
}

// Stats is the best-effort introspection result for the key-value cache.
type Stats struct {
	TotalKeys      int64          `json:"total_keys"`
	MemoryUsage    string         `json:"memory_usage"`
	KeysByCategory map[string]int `json:"keys_by_category"`
}

// Snapshot is a durable copy of the last successfully fetched payload for a
// cache key, with an expiry independent of the key-value cache TTL.
type Snapshot struct {
	CacheKey  string
	Payload   string // JSON of the structured data, always uncompressed
	SavedAt   time.Time
	ExpiresAt time.Time
}

// KVStore is the key-value cache contract. All values are strings; the
// caller owns serialization.
type KVStore interface {
	// Get returns the value and whether the key existed.
	Get(ctx context.Context, key string) (string, bool, error)
	SetWithExpiry(ctx context.Context, key string, ttl time.Duration, value string) error
	// Delete removes the given keys and returns how many existed.
	Delete(ctx context.Context, keys ...string) (int64, error)
	KeysMatching(ctx context.Context, pattern string) ([]string, error)
	// SetNX sets a marker key only if absent; used for refresh locks.
	SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error)
	DBSize(ctx context.Context) (int64, error)
	// MemoryInfo returns the server's used-memory figure; unsupported
	// backends may return an error, which callers treat as partial data.
	MemoryInfo(ctx context.Context) (usedBytes int64, err error)
}

// SnapshotStore is the durable fallback tier behind the key-value cache.
type SnapshotStore interface {
	// FindLatestUnexpired returns nil when no usable snapshot exists.
	FindLatestUnexpired(ctx context.Context, cacheKey string) (*Snapshot, error)
	Upsert(ctx context.Context, cacheKey string, payload string, ttl time.Duration) error
}

// ICacheUsecase exposes cache administration to the REST layer.
type ICacheUsecase interface {
	GetStats(ctx context.Context) (Stats, error)
	Invalidate(ctx context.Context, pattern string) (int64, error)
}
