package repository

import (
	"context"
	"fmt"
	"time"

	valkeylib "github.com/valkey-io/valkey-go"

	domainCache "github.com/souqtrack/souqtrack/domains/cache"
	"github.com/souqtrack/souqtrack/infrastructure/valkey"
)

// ValkeyKVStore implements domains/cache.KVStore using Valkey.
type ValkeyKVStore struct {
	client *valkey.Client
}

func NewValkeyKVStore(client *valkey.Client) *ValkeyKVStore {
	return &ValkeyKVStore{client: client}
}

var _ domainCache.KVStore = (*ValkeyKVStore)(nil)

func (s *ValkeyKVStore) inner() valkeylib.Client {
	return s.client.Inner()
}

func (s *ValkeyKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	cmd := s.inner().B().Get().Key(s.client.Key(key)).Build()

	val, err := s.inner().Do(ctx, cmd).ToString()
	if err != nil {
		if valkeylib.IsValkeyNil(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get cache key %s: %w", key, err)
	}
	return val, true, nil
}

func (s *ValkeyKVStore) SetWithExpiry(ctx context.Context, key string, ttl time.Duration, value string) error {
	cmd := s.inner().B().Set().
		Key(s.client.Key(key)).
		Value(value).
		Ex(ttl).
		Build()

	if err := s.inner().Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return nil
}

func (s *ValkeyKVStore) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = s.client.Key(k)
	}

	cmd := s.inner().B().Del().Key(prefixed...).Build()
	count, err := s.inner().Do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return count, nil
}

// KeysMatching scans the keyspace for keys matching the glob pattern.
// Returned keys have the client prefix stripped so callers see the same
// names they wrote.
func (s *ValkeyKVStore) KeysMatching(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	prefix := s.client.KeyPrefix()
	for {
		cmd := s.inner().B().Scan().Cursor(cursor).Match(prefix + pattern).Count(100).Build()
		result, err := s.inner().Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("failed to scan cache keys: %w", err)
		}

		for _, k := range result.Elements {
			keys = append(keys, k[len(prefix):])
		}
		cursor = result.Cursor
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

func (s *ValkeyKVStore) SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	cmd := s.inner().B().Set().
		Key(s.client.Key(key)).
		Value("1").
		Nx().
		Ex(ttl).
		Build()

	err := s.inner().Do(ctx, cmd).Error()
	if err != nil {
		if valkeylib.IsValkeyNil(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to acquire marker %s: %w", key, err)
	}
	return true, nil
}

func (s *ValkeyKVStore) DBSize(ctx context.Context) (int64, error) {
	cmd := s.inner().B().Dbsize().Build()
	size, err := s.inner().Do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("failed to read dbsize: %w", err)
	}
	return size, nil
}

func (s *ValkeyKVStore) MemoryInfo(ctx context.Context) (int64, error) {
	cmd := s.inner().B().Info().Section("memory").Build()
	raw, err := s.inner().Do(ctx, cmd).ToString()
	if err != nil {
		return 0, fmt.Errorf("failed to read memory info: %w", err)
	}
	return parseUsedMemory(raw)
}

// parseUsedMemory extracts used_memory from an INFO memory section.
func parseUsedMemory(info string) (int64, error) {
	const field = "used_memory:"
	for start := 0; start < len(info); {
		end := start
		for end < len(info) && info[end] != '\n' {
			end++
		}
		line := info[start:end]
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
		if len(line) > len(field) && line[:len(field)] == field {
			var n int64
			if _, err := fmt.Sscanf(line[len(field):], "%d", &n); err != nil {
				return 0, fmt.Errorf("malformed used_memory line %q: %w", line, err)
			}
			return n, nil
		}
		start = end + 1
	}
	return 0, fmt.Errorf("used_memory not present in info reply")
}
