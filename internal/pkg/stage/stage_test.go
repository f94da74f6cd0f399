package stage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dared22/mealplanner/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return client, mr
}

func TestStore_PutAndGet(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	store := NewStore(client)
	ctx := context.Background()

	req := &model.GenerationRequest{
		RequestID: "req-1",
		UserID:    42,
		Stage:     model.StageQueued,
		StartedAt: time.Now(),
	}

	require.NoError(t, store.Put(ctx, req))

	got, err := store.Get(ctx, "req-1")
	assert.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, req.RequestID, got.RequestID)
	assert.Equal(t, req.UserID, got.UserID)
	assert.Equal(t, req.Stage, got.Stage)
}

func TestStore_GetMissing(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	store := NewStore(client)
	ctx := context.Background()

	got, err := store.Get(ctx, "does-not-exist")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_Delete(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	store := NewStore(client)
	ctx := context.Background()

	req := &model.GenerationRequest{RequestID: "req-2", Stage: model.StageQueued}
	require.NoError(t, store.Put(ctx, req))

	require.NoError(t, store.Delete(ctx, "req-2"))

	got, err := store.Get(ctx, "req-2")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_PutOverwritesStage(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	store := NewStore(client)
	ctx := context.Background()

	req := &model.GenerationRequest{RequestID: "req-3", Stage: model.StageQueued}
	require.NoError(t, store.Put(ctx, req))

	req.Stage = model.StageComplete
	require.NoError(t, store.Put(ctx, req))

	got, err := store.Get(ctx, "req-3")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.StageComplete, got.Stage)
}

func TestStore_Expires(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	store := NewStore(client)
	ctx := context.Background()

	req := &model.GenerationRequest{RequestID: "req-4", Stage: model.StageQueued}
	require.NoError(t, store.Put(ctx, req))

	mr.FastForward(2 * time.Hour)

	got, err := store.Get(ctx, "req-4")
	assert.NoError(t, err)
	assert.Nil(t, got)
}
