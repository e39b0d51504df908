package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniassets/assetcart/internal/config"
	"github.com/uniassets/assetcart/pkg/errors"
)

// setupTestRedis creates a miniredis instance and a client pointed at it
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return mr, client
}

func TestCartStateRepository_RoundTrip(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := NewCartStateRepository(client, "test", 0, zap.NewNop())
	ctx := context.Background()

	_, err := repo.Get(ctx, "owner-1")
	var notFound *errors.ErrNotFound
	require.ErrorAs(t, err, &notFound)

	require.NoError(t, repo.Save(ctx, "owner-1", []byte(`{"purpose":"lab"}`)))
	assert.True(t, mr.Exists("test:cart:owner-1"))

	got, err := repo.Get(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, `{"purpose":"lab"}`, string(got))

	require.NoError(t, repo.Delete(ctx, "owner-1"))
	assert.False(t, mr.Exists("test:cart:owner-1"))
}

func TestCartStateRepository_TTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := NewCartStateRepository(client, "test", time.Hour, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "owner-2", []byte(`{}`)))
	assert.Equal(t, time.Hour, mr.TTL("test:cart:owner-2"))

	mr.FastForward(2 * time.Hour)

	_, err := repo.Get(ctx, "owner-2")
	var notFound *errors.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestNewClient(t *testing.T) {
	mr, _ := setupTestRedis(t)

	client, err := NewClient(config.RedisConfig{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	client.Close()

	_, err = NewClient(config.RedisConfig{})
	assert.Error(t, err)

	_, err = NewClient(config.RedisConfig{URL: "not a url"})
	assert.Error(t, err)
}
