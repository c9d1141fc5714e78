package redis

import (
	"context"
	"testing"
	"time"

	lib_store "github.com/eko/gocache/lib/v4/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	redis "github.com/redis/go-redis/v9"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestStore_SetAndGet(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	client := NewMockCommands(ctrl)
	client.EXPECT().
		Set(ctx, "my-key", `{"name":"test","count":3}`, time.Duration(0)).
		Return(&redis.StatusCmd{})
	client.EXPECT().
		Get(ctx, "my-key").
		Return(redis.NewStringResult(`{"name":"test","count":3}`, nil))

	store := New[payload](client)

	require.NoError(t, store.Set(ctx, "my-key", payload{Name: "test", Count: 3}))

	value, err := store.Get(ctx, "my-key")
	require.NoError(t, err)

	got, ok := value.(payload)
	require.True(t, ok)
	assert.Equal(t, payload{Name: "test", Count: 3}, got)
}

func TestStore_GetMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	client := NewMockCommands(ctrl)
	client.EXPECT().
		Get(ctx, "absent").
		Return(redis.NewStringResult("", redis.Nil))

	store := New[payload](client)

	_, err := store.Get(ctx, "absent")
	require.Error(t, err)
	assert.ErrorIs(t, err, redis.Nil)
}

func TestStore_GetWithTTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	client := NewMockCommands(ctrl)
	client.EXPECT().
		Get(ctx, "my-key").
		Return(redis.NewStringResult(`"hello"`, nil))
	client.EXPECT().
		TTL(ctx, "my-key").
		Return(redis.NewDurationResult(10*time.Second, nil))

	store := New[string](client)

	value, ttl, err := store.GetWithTTL(ctx, "my-key")
	require.NoError(t, err)
	assert.Equal(t, "hello", value)
	assert.Equal(t, 10*time.Second, ttl)
}

func TestStore_DefaultExpiration(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	client := NewMockCommands(ctrl)
	client.EXPECT().
		Set(ctx, "my-key", `"hello"`, 15*time.Second).
		Return(&redis.StatusCmd{})

	store := New[string](client, lib_store.WithExpiration(15*time.Second))

	require.NoError(t, store.Set(ctx, "my-key", "hello"))
}

func TestStore_SetWithTags(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	client := NewMockCommands(ctrl)
	client.EXPECT().
		Set(ctx, "user:1", `"ada"`, time.Duration(0)).
		Return(&redis.StatusCmd{})
	client.EXPECT().
		SAdd(ctx, "gocache_tag_users", "user:1").
		Return(redis.NewIntResult(1, nil))
	client.EXPECT().
		Expire(ctx, "gocache_tag_users", 720*time.Hour).
		Return(redis.NewBoolResult(true, nil))

	store := New[string](client)

	require.NoError(t, store.Set(ctx, "user:1", "ada", lib_store.WithTags([]string{"users"})))
}

func TestStore_InvalidateByTag(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	client := NewMockCommands(ctrl)
	client.EXPECT().
		SMembers(ctx, "gocache_tag_users").
		Return(redis.NewStringSliceResult([]string{"user:1", "user:2"}, nil))
	client.EXPECT().Del(ctx, "user:1").Return(redis.NewIntResult(1, nil))
	client.EXPECT().Del(ctx, "user:2").Return(redis.NewIntResult(1, nil))
	client.EXPECT().Del(ctx, "gocache_tag_users").Return(redis.NewIntResult(1, nil))

	store := New[string](client)

	require.NoError(t, store.Invalidate(ctx, lib_store.WithInvalidateTags([]string{"users"})))
}

func TestStore_InvalidateWithoutTagsClears(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	client := NewMockCommands(ctrl)
	client.EXPECT().FlushAll(ctx).Return(&redis.StatusCmd{})

	store := New[string](client)

	require.NoError(t, store.Invalidate(ctx))
}

func TestStore_RejectsNonStringKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	store := New[string](NewMockCommands(ctrl))

	_, err := store.Get(ctx, 42)
	require.Error(t, err)

	err = store.Set(ctx, 42, "hello")
	require.Error(t, err)
}
