package routine

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(setupTestRedis(t))
	ctx := context.Background()

	in := Routine{Wake: "06:30", Bedtime: "23:00", Breakfast: "07:15", Lunch: "12:00", Dinner: "19:00"}
	require.NoError(t, store.Put(ctx, "patient-1", in))

	got, err := store.Get(ctx, "patient-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, in, *got)
}

func TestStoreGetMissingReturnsNil(t *testing.T) {
	store := NewStore(setupTestRedis(t))

	got, err := store.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStoreGetOrDefault(t *testing.T) {
	store := NewStore(setupTestRedis(t))

	got, err := store.GetOrDefault(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
}

func TestStorePutRejectsInvalid(t *testing.T) {
	store := NewStore(setupTestRedis(t))

	err := store.Put(context.Background(), "patient-1", Routine{Wake: "25:00"})
	assert.Error(t, err)
}

func TestStoreDelete(t *testing.T) {
	store := NewStore(setupTestRedis(t))
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "patient-1", Default()))
	require.NoError(t, store.Delete(ctx, "patient-1"))

	got, err := store.Get(ctx, "patient-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
