package xcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop(t *testing.T) {
	ctx := context.Background()
	cache := NewNoop[string]()

	// Writes are swallowed, reads always miss.
	require.NoError(t, cache.Set(ctx, "greeting", "hello"))

	_, err := cache.Get(ctx, "greeting")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCacheNotConfigured)

	require.NoError(t, cache.Delete(ctx, "greeting"))
	require.NoError(t, cache.Invalidate(ctx))
	require.NoError(t, cache.Clear(ctx))

	assert.Equal(t, "noop", cache.GetType())
}

func TestNewFromConfig_DisabledModes(t *testing.T) {
	for _, mode := range []string{"", "unknown"} {
		cache := NewFromConfig[string](Config{Mode: mode})
		assert.Equal(t, "noop", cache.GetType())
	}
}
