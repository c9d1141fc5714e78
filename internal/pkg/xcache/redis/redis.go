// Package redis is a typed gocache store backed by go-redis. Values are
// stored as JSON so any instance can decode what another one wrote.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	lib_store "github.com/eko/gocache/lib/v4/store"
	redis "github.com/redis/go-redis/v9"
)

//go:generate mockgen -source=redis.go -destination=redis_mock.go -package=redis

// Commands is the slice of the go-redis client this store needs.
type Commands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Set(ctx context.Context, key string, values any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	FlushAll(ctx context.Context) *redis.StatusCmd
	SAdd(ctx context.Context, key string, members ...any) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

const (
	storeType = "redis"

	// tagKeyPattern matches the key layout the other gocache stores use for
	// tag sets, so mixed deployments invalidate each other's entries.
	tagKeyPattern = "gocache_tag_%s"

	defaultTagTTL = 720 * time.Hour
)

// Store decodes redis values into T.
type Store[T any] struct {
	client  Commands
	options *lib_store.Options
}

// New creates a typed redis store.
func New[T any](client Commands, options ...lib_store.Option) *Store[T] {
	return &Store[T]{
		client:  client,
		options: lib_store.ApplyOptions(options...),
	}
}

func keyString(key any) (string, error) {
	s, ok := key.(string)
	if !ok {
		return "", lib_store.NotFoundWithCause(fmt.Errorf("expected string key, got %T", key))
	}

	return s, nil
}

func (s *Store[T]) load(ctx context.Context, key string) (T, error) {
	var value T

	raw, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return value, lib_store.NotFoundWithCause(err)
	}

	if err != nil {
		return value, err
	}

	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		var zero T
		return zero, err
	}

	return value, nil
}

// Get returns the typed value stored under key.
func (s *Store[T]) Get(ctx context.Context, key any) (any, error) {
	k, err := keyString(key)
	if err != nil {
		var zero T
		return zero, err
	}

	return s.load(ctx, k)
}

// GetWithTTL returns the typed value stored under key and its remaining TTL.
func (s *Store[T]) GetWithTTL(ctx context.Context, key any) (any, time.Duration, error) {
	k, err := keyString(key)
	if err != nil {
		var zero T
		return zero, 0, err
	}

	value, err := s.load(ctx, k)
	if err != nil {
		return value, 0, err
	}

	ttl, err := s.client.TTL(ctx, k).Result()
	if err != nil {
		var zero T
		return zero, 0, err
	}

	return value, ttl, nil
}

// Set writes the value under key, JSON-encoded, honoring expiration and tag
// options.
func (s *Store[T]) Set(ctx context.Context, key any, value any, options ...lib_store.Option) error {
	k, err := keyString(key)
	if err != nil {
		return err
	}

	opts := lib_store.ApplyOptionsWithDefault(s.options, options...)

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, k, string(raw), opts.Expiration).Err(); err != nil {
		return err
	}

	if tags := opts.Tags; len(tags) > 0 {
		ttl := opts.TagsTTL
		if ttl == 0 {
			ttl = defaultTagTTL
		}

		s.tag(ctx, k, tags, ttl)
	}

	return nil
}

func (s *Store[T]) tag(ctx context.Context, key string, tags []string, ttl time.Duration) {
	for _, t := range tags {
		tagKey := fmt.Sprintf(tagKeyPattern, t)
		s.client.SAdd(ctx, tagKey, key)
		s.client.Expire(ctx, tagKey, ttl)
	}
}

// Delete removes the value stored under key.
func (s *Store[T]) Delete(ctx context.Context, key any) error {
	k, err := keyString(key)
	if err != nil {
		return err
	}

	return s.client.Del(ctx, k).Err()
}

// Invalidate removes every key carrying one of the given tags. Without
// tags it clears the whole store.
func (s *Store[T]) Invalidate(ctx context.Context, options ...lib_store.InvalidateOption) error {
	opts := lib_store.ApplyInvalidateOptions(options...)

	tags := opts.Tags
	if len(tags) == 0 {
		return s.Clear(ctx)
	}

	for _, t := range tags {
		tagKey := fmt.Sprintf(tagKeyPattern, t)

		keys, err := s.client.SMembers(ctx, tagKey).Result()
		if err != nil {
			continue
		}

		for _, k := range keys {
			s.client.Del(ctx, k)
		}

		s.client.Del(ctx, tagKey)
	}

	return nil
}

// Clear resets the whole store.
func (s *Store[T]) Clear(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

// GetType returns the store type.
func (s *Store[T]) GetType() string {
	return storeType
}
