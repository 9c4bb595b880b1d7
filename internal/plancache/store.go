package plancache

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Store.Get when the key is absent or expired.
var ErrMiss = errors.New("plancache: miss")

// Store is a byte-valued key/value store with TTLs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisStore keeps entries in Redis; works with single-node and cluster clients.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

type memItem struct {
	value   []byte
	expires time.Time
}

// MemoryStore is an in-process Store for single-instance deployments and
// tests. It holds at most size entries, evicting the least recently used, and
// sweeps entries older than maxTTL in the background. A Set with a shorter
// ttl expires on read.
type MemoryStore struct {
	lru *expirable.LRU[string, memItem]
	now func() time.Time
}

// NewMemoryStore returns a store bounded to size entries. maxTTL <= 0 turns
// off the background sweep.
func NewMemoryStore(size int, maxTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		lru: expirable.NewLRU[string, memItem](size, nil, maxTTL),
		now: time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	it, ok := s.lru.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	if !it.expires.IsZero() && s.now().After(it.expires) {
		s.lru.Remove(key)
		return nil, ErrMiss
	}
	return it.value, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	it := memItem{value: value}
	if ttl > 0 {
		it.expires = s.now().Add(ttl)
	}
	s.lru.Add(key, it)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.lru.Remove(key)
	return nil
}

// Len is the number of entries held, including any not yet swept.
func (s *MemoryStore) Len() int {
	return s.lru.Len()
}
