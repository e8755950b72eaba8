package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, client.Ping(context.Background()).Err())

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestLoginAttemptRepository(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewLoginAttemptRepository(client, 3, 15*time.Minute)
	ctx := context.Background()

	t.Run("allows until the limit is reached", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			ok, err := repo.Allowed(ctx, "Ana@Example.com")
			require.NoError(t, err)
			assert.True(t, ok, "attempt %d", i+1)
			require.NoError(t, repo.RecordFailure(ctx, "ana@example.com"))
		}

		ok, err := repo.Allowed(ctx, "ana@example.com")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("counter expires after the window", func(t *testing.T) {
		assert.True(t, mr.Exists("auth:login_attempts:ana@example.com"))
		mr.FastForward(16 * time.Minute)

		ok, err := repo.Allowed(ctx, "ana@example.com")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("reset clears the counter", func(t *testing.T) {
		require.NoError(t, repo.RecordFailure(ctx, "bob@example.com"))
		require.NoError(t, repo.Reset(ctx, "bob@example.com"))
		assert.False(t, mr.Exists("auth:login_attempts:bob@example.com"))
	})
}
