// Package xcache is a thin layer over gocache. It builds the typed cache a
// config asks for: in-process memory, redis, or a two-level chain of both.
// Without a mode it hands out a noop cache, so consumers never nil-check.
package xcache

import (
	"context"
	"fmt"
	"time"

	cachelib "github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	gocache_store "github.com/eko/gocache/store/go_cache/v4"
	gocache "github.com/patrickmn/go-cache"
	redis "github.com/redis/go-redis/v9"

	"github.com/looplj/adminhub/internal/log"
	redisstore "github.com/looplj/adminhub/internal/pkg/xcache/redis"
	"github.com/looplj/adminhub/internal/pkg/xredis"
)

// Cache is the surface consumers depend on: Get, Set, Delete, Invalidate,
// Clear and GetType.
type Cache[T any] = cachelib.CacheInterface[T]

// SetterCache additionally exposes GetWithTTL and the codec; the chain
// cache needs it for its levels.
type SetterCache[T any] = cachelib.SetterCacheInterface[T]

type Option = store.Option

// WithExpiration overrides the store TTL for a single Set.
func WithExpiration(expiration time.Duration) Option {
	return store.WithExpiration(expiration)
}

const (
	defaultMemoryExpiration = 5 * time.Minute
	defaultMemoryCleanup    = 10 * time.Minute

	// Redis defaults to a longer TTL, it is the level shared between
	// instances.
	defaultRedisExpiration = 30 * time.Minute
)

// NewMemory creates an in-process cache on top of a go-cache client.
func NewMemory[T any](client *gocache.Cache, options ...Option) SetterCache[T] {
	return cachelib.New[T](gocache_store.NewGoCache(client, options...))
}

// NewRedis creates a redis cache on top of a go-redis client.
func NewRedis[T any](client *redis.Client, options ...Option) SetterCache[T] {
	return cachelib.New[T](redisstore.New[T](client, options...))
}

// NewTwoLevel chains a memory cache in front of a redis cache. Reads that
// miss memory fall through to redis and refill the memory level.
func NewTwoLevel[T any](mem, rds SetterCache[T]) Cache[T] {
	return cachelib.NewChain[T](mem, rds)
}

// NewFromConfig builds the cache the config asks for. Empty and unknown
// modes disable caching. An unreachable or invalid redis endpoint is fatal,
// a silently degraded cache would hide the misconfiguration.
func NewFromConfig[T any](cfg Config) Cache[T] {
	ctx := context.Background()

	switch cfg.Mode {
	case ModeMemory:
		log.Info(ctx, "cache enabled", log.String("mode", ModeMemory))
		return newMemoryLevel[T](cfg.Memory)
	case ModeRedis:
		log.Info(ctx, "cache enabled", log.String("mode", ModeRedis))
		return mustRedisLevel[T](cfg.Redis)
	case ModeTwoLevel:
		mem := newMemoryLevel[T](cfg.Memory)

		if cfg.Redis.Addr == "" && cfg.Redis.URL == "" {
			// Two-level without a redis endpoint degrades to memory only.
			log.Info(ctx, "cache enabled", log.String("mode", ModeMemory))
			return mem
		}

		log.Info(ctx, "cache enabled", log.String("mode", ModeTwoLevel))

		return NewTwoLevel[T](mem, mustRedisLevel[T](cfg.Redis))
	default:
		log.Info(ctx, "cache disabled")
		return NewNoop[T]()
	}
}

func newMemoryLevel[T any](cfg MemoryConfig) SetterCache[T] {
	expiration := orDefault(cfg.Expiration, defaultMemoryExpiration)
	cleanup := orDefault(cfg.CleanupInterval, defaultMemoryCleanup)

	return NewMemory[T](gocache.New(expiration, cleanup), WithExpiration(expiration))
}

func mustRedisLevel[T any](cfg xredis.Config) SetterCache[T] {
	client, err := xredis.NewClient(cfg)
	if err != nil {
		panic(fmt.Errorf("xcache: redis unavailable: %w", err))
	}

	return NewRedis[T](client, WithExpiration(orDefault(cfg.Expiration, defaultRedisExpiration)))
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d == 0 {
		return fallback
	}

	return d
}
