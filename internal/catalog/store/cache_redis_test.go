package store

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "trouwen/pkg/domain"
	"trouwen/pkg/platform/circuit"
	"trouwen/pkg/platform/sentinel"
)

// unreachableClient points at a port nothing listens on.
func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestCachedFallsBackWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	backend := NewInMemory()
	client := unreachableClient()
	t.Cleanup(func() { _ = client.Close() })
	cached := NewCached(backend, client, time.Minute, WithCacheLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	mt := newType(t, "groot", "002220647")
	require.NoError(t, cached.Create(ctx, mt))

	got, err := cached.FindByID(ctx, mt.ID)
	require.NoError(t, err)
	assert.Equal(t, mt.Name, got.Name)

	mt.Name = "Klein huwelijk"
	require.NoError(t, cached.Update(ctx, mt))
	require.NoError(t, cached.Delete(ctx, mt.ID))

	_, err = cached.FindByID(ctx, id.NewMarriageTypeID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestCachedBypassesRedisOnceBreakerOpens(t *testing.T) {
	ctx := context.Background()
	backend := NewInMemory()
	client := unreachableClient()
	t.Cleanup(func() { _ = client.Close() })
	breaker := circuit.New("catalog-cache", circuit.WithFailureThreshold(1), circuit.WithCooldown(time.Hour))
	cached := NewCached(backend, client, time.Minute,
		WithCacheBreaker(breaker),
		WithCacheLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	mt := newType(t, "groot", "002220647")
	require.NoError(t, backend.Create(ctx, mt))

	_, err := cached.FindByID(ctx, mt.ID)
	require.NoError(t, err)
	assert.True(t, breaker.IsOpen())
	assert.False(t, breaker.Allow())

	got, err := cached.FindByID(ctx, mt.ID)
	require.NoError(t, err)
	assert.Equal(t, mt.ID, got.ID)
}
