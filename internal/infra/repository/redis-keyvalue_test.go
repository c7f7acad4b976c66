package repository

import (
	"context"
	"os"
	"testing"
	"time"

	domainrepo "call-sentinel/internal/domain/interfaces/repository"
	client "call-sentinel/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs only against a live server: REDIS_TEST_ADDR=localhost:6379 go test ./...
func TestRedisKeyValue(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	redisClient, err := client.RedisClient(addr, "", 0)
	require.NoError(t, err)
	defer redisClient.Close()

	store := NewRedisKeyValue(redisClient)
	ctx := context.Background()
	key := "session:test-" + time.Now().Format("150405.000000")

	require.NoError(t, store.Set(ctx, key, []byte("v"), time.Minute))
	value, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)

	require.NoError(t, store.Expire(ctx, key, time.Second))
	require.NoError(t, store.Delete(ctx, key))

	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, domainrepo.ErrNotFound)
	assert.ErrorIs(t, store.Expire(ctx, key, time.Second), domainrepo.ErrNotFound)
}
