// Package cachemanager implements the multi-tier read orchestration between
// the key-value cache, the durable snapshot store and the upstream fetcher:
// cache hit, stale-while-revalidate from snapshots, synchronous fetch on
// full miss, and snapshot fallback when the upstream fails.
package cachemanager

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	domainCache "github.com/souqtrack/souqtrack/domains/cache"
)

// Result sources.
const (
	SourceCache    = "cache"
	SourceDatabase = "database"
	SourceAPI      = "api"
)

const (
	// kvOpTimeout bounds every key-value operation on a request-serving
	// path; on timeout the operation resolves to a miss or no-op. Caching
	// is an optimization, never a dependency that can take down a response.
	kvOpTimeout = 2 * time.Second

	// staleWindowMultiplier fixes the stale-while-revalidate window at
	// 2*ttl; it is deliberately not configurable per call.
	staleWindowMultiplier = 2

	// refreshTimeout bounds a detached background refresh.
	refreshTimeout = 60 * time.Second

	// refreshLockTTL is the lifetime of the short-lived marker that keeps
	// concurrent stale reads from each spawning their own refresh.
	refreshLockTTL = 30 * time.Second

	refreshLockPrefix = "refresh_lock:"

	// DefaultSnapshotTTL is how long a durable snapshot stays usable as a
	// fallback, independent of the key-value cache TTL.
	DefaultSnapshotTTL = 7 * 24 * time.Hour
)

// Manager coordinates the cache tiers. Construct with New and share one
// instance across usecases.
type Manager struct {
	kv          domainCache.KVStore
	snapshots   domainCache.SnapshotStore
	snapshotTTL time.Duration
}

func New(kv domainCache.KVStore, snapshots domainCache.SnapshotStore) *Manager {
	return &Manager{
		kv:          kv,
		snapshots:   snapshots,
		snapshotTTL: DefaultSnapshotTTL,
	}
}

// Result pairs the decoded payload with where it came from.
type Result[T any] struct {
	Data T
	Meta domainCache.Meta
}

// GetCachedOrFetch resolves a read through the tiers in strict order:
//
//  1. Key-value cache. A hit returns immediately and never calls fetch.
//  2. Durable snapshot. A snapshot younger than 2*ttl is returned as stale
//     while a detached background refresh runs; older snapshots are kept
//     aside as a fallback.
//  3. Synchronous fetch. Success writes through to both tiers; failure
//     falls back to any snapshot found in step 2, and only when none
//     exists does the error propagate.
//
// snapshotKey selects the durable row; pass "" to reuse cacheKey. Passing a
// negative ttl is a programming error and treated as ttl 0.
func GetCachedOrFetch[T any](ctx context.Context, m *Manager, cacheKey string, ttlSeconds int, fetch func(context.Context) (T, error), snapshotKey string) (Result[T], error) {
	if ttlSeconds < 0 {
		ttlSeconds = 0
	}
	if snapshotKey == "" {
		snapshotKey = cacheKey
	}
	now := time.Now().UTC()

	// Step 1: key-value lookup. Corrupt entries count as misses.
	if stored, ok := m.safeGet(ctx, cacheKey); ok {
		env, err := decodeEnvelope(stored)
		if err == nil {
			var data T
			if err = json.Unmarshal(env.Data, &data); err == nil {
				age := now.UnixMilli() - env.Metadata.CachedAt
				if age < 0 {
					age = 0
				}
				return Result[T]{
					Data: data,
					Meta: domainCache.Meta{
						Cached:          true,
						Stale:           false,
						CacheAgeSeconds: age / 1000,
						Source:          SourceCache,
					},
				}, nil
			}
		}
		logrus.Warnf("[CACHE] Corrupt entry for %s, treating as miss: %v", cacheKey, err)
	}

	// Step 2: durable snapshot lookup.
	snap := m.lookupSnapshot(ctx, snapshotKey)
	if snap != nil {
		staleWindow := time.Duration(staleWindowMultiplier*ttlSeconds) * time.Second
		if now.Sub(snap.SavedAt) < staleWindow {
			if data, ok := decodeSnapshot[T](snap); ok {
				spawnRefresh(m, cacheKey, snapshotKey, ttlSeconds, fetch)
				return snapshotResult(data, snap, now), nil
			}
			// Unreadable snapshot payload: fall through to a fresh fetch
			// and stop considering it a fallback.
			logrus.Warnf("[CACHE] Corrupt snapshot for %s, ignoring", snapshotKey)
			snap = nil
		}
	}

	// Step 3: fresh fetch.
	data, err := fetch(ctx)
	if err != nil {
		if snap != nil {
			if fallback, ok := decodeSnapshot[T](snap); ok {
				logrus.Warnf("[CACHE] Upstream failed for %s, serving snapshot from %s: %v",
					cacheKey, snap.SavedAt.Format(time.RFC3339), err)
				return snapshotResult(fallback, snap, now), nil
			}
		}
		return Result[T]{}, err
	}

	m.writeThrough(ctx, cacheKey, snapshotKey, ttlSeconds, data)

	return Result[T]{
		Data: data,
		Meta: domainCache.Meta{
			Cached: false,
			Stale:  false,
			Source: SourceAPI,
		},
	}, nil
}

// InvalidateCache deletes every key matching the glob pattern and returns
// the number removed. Durable snapshots are untouched.
func (m *Manager) InvalidateCache(ctx context.Context, pattern string) (int64, error) {
	keys, err := m.kv.KeysMatching(ctx, pattern)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	return m.kv.Delete(ctx, keys...)
}

// GetCacheStats gathers best-effort introspection. Individual probe
// failures degrade to partial data rather than an error.
func (m *Manager) GetCacheStats(ctx context.Context) domainCache.Stats {
	stats := domainCache.Stats{
		MemoryUsage:    "unavailable",
		KeysByCategory: map[string]int{},
	}

	if size, err := m.kv.DBSize(ctx); err == nil {
		stats.TotalKeys = size
	} else {
		logrus.Debugf("[CACHE] dbsize unavailable: %v", err)
	}

	if used, err := m.kv.MemoryInfo(ctx); err == nil {
		stats.MemoryUsage = humanize.Bytes(uint64(used))
	} else {
		logrus.Debugf("[CACHE] memory info unavailable: %v", err)
	}

	if keys, err := m.kv.KeysMatching(ctx, "*"); err == nil {
		for _, k := range keys {
			category := k
			if idx := strings.Index(k, ":"); idx > 0 {
				category = k[:idx]
			}
			stats.KeysByCategory[category]++
		}
	} else {
		logrus.Debugf("[CACHE] key scan unavailable: %v", err)
	}

	return stats
}

// safeGet bounds the lookup and swallows every failure into a miss.
func (m *Manager) safeGet(ctx context.Context, key string) (string, bool) {
	opCtx, cancel := context.WithTimeout(ctx, kvOpTimeout)
	defer cancel()

	val, ok, err := m.kv.Get(opCtx, key)
	if err != nil {
		logrus.Warnf("[CACHE] Read failed for %s: %v", key, err)
		return "", false
	}
	return val, ok
}

// safeSet bounds the write and swallows every failure.
func (m *Manager) safeSet(ctx context.Context, key string, ttlSeconds int, value string) {
	opCtx, cancel := context.WithTimeout(ctx, kvOpTimeout)
	defer cancel()

	if err := m.kv.SetWithExpiry(opCtx, key, time.Duration(ttlSeconds)*time.Second, value); err != nil {
		logrus.Warnf("[CACHE] Write failed for %s: %v", key, err)
	}
}

func (m *Manager) lookupSnapshot(ctx context.Context, snapshotKey string) *domainCache.Snapshot {
	snap, err := m.snapshots.FindLatestUnexpired(ctx, snapshotKey)
	if err != nil {
		logrus.Warnf("[CACHE] Snapshot lookup failed for %s: %v", snapshotKey, err)
		return nil
	}
	return snap
}

// writeThrough persists a fresh payload to both tiers. Both writes are
// best-effort; a failed write never fails the read that triggered it.
func (m *Manager) writeThrough(ctx context.Context, cacheKey, snapshotKey string, ttlSeconds int, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		logrus.Errorf("[CACHE] Failed to serialize payload for %s: %v", cacheKey, err)
		return
	}

	stored, err := encodeEnvelope(payload, time.Now().UTC().UnixMilli(), ttlSeconds)
	if err != nil {
		logrus.Errorf("[CACHE] Failed to encode envelope for %s: %v", cacheKey, err)
	} else {
		m.safeSet(ctx, cacheKey, ttlSeconds, stored)
	}

	// Snapshots always store the uncompressed structured data, not the
	// wire envelope.
	if err := m.snapshots.Upsert(ctx, snapshotKey, string(payload), m.snapshotTTL); err != nil {
		logrus.Warnf("[CACHE] Snapshot upsert failed for %s: %v", snapshotKey, err)
	}
}

// spawnRefresh starts a detached revalidation of a stale key. The caller is
// never linked to its outcome; failures are only logged. A short-TTL lock
// key keeps concurrent stale reads from duplicating upstream calls.
func spawnRefresh[T any](m *Manager, cacheKey, snapshotKey string, ttlSeconds int, fetch func(context.Context) (T, error)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		acquired, err := m.kv.SetNX(ctx, refreshLockPrefix+cacheKey, refreshLockTTL)
		if err != nil {
			logrus.Debugf("[CACHE] Refresh lock probe failed for %s: %v", cacheKey, err)
			return
		}
		if !acquired {
			return
		}

		data, err := fetch(ctx)
		if err != nil {
			logrus.Warnf("[CACHE] Background refresh failed for %s: %v", cacheKey, err)
			return
		}
		m.writeThrough(ctx, cacheKey, snapshotKey, ttlSeconds, data)
		if _, err := m.kv.Delete(ctx, refreshLockPrefix+cacheKey); err != nil {
			logrus.Debugf("[CACHE] Refresh lock release failed for %s: %v", cacheKey, err)
		}
	}()
}

func snapshotResult[T any](data T, snap *domainCache.Snapshot, now time.Time) Result[T] {
	age := int64(now.Sub(snap.SavedAt).Seconds())
	if age < 0 {
		age = 0
	}
	return Result[T]{
		Data: data,
		Meta: domainCache.Meta{
			Cached:          true,
			Stale:           true,
			CacheAgeSeconds: age,
			Source:          SourceDatabase,
		},
	}
}

func decodeSnapshot[T any](snap *domainCache.Snapshot) (T, bool) {
	var data T
	if err := json.Unmarshal([]byte(snap.Payload), &data); err != nil {
		return data, false
	}
	return data, true
}
