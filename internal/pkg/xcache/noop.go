package xcache

import (
	"context"
	"errors"

	"github.com/eko/gocache/lib/v4/store"
)

// ErrCacheNotConfigured is the cause behind every read of the noop cache.
var ErrCacheNotConfigured = errors.New("cache not configured")

// noop stands in when no cache is configured. Reads always miss, writes
// and drops succeed without doing anything.
type noop[T any] struct{}

// NewNoop returns the do-nothing cache.
func NewNoop[T any]() Cache[T] {
	return noop[T]{}
}

func (noop[T]) Get(ctx context.Context, key any) (T, error) {
	var zero T
	return zero, store.NotFoundWithCause(ErrCacheNotConfigured)
}

func (noop[T]) Set(ctx context.Context, key any, object T, options ...Option) error {
	return nil
}

func (noop[T]) Delete(ctx context.Context, key any) error {
	return nil
}

func (noop[T]) Invalidate(ctx context.Context, options ...store.InvalidateOption) error {
	return nil
}

func (noop[T]) Clear(ctx context.Context) error {
	return nil
}

func (noop[T]) GetType() string {
	return "noop"
}
