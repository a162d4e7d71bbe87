package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyClaim(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewIdempotencyStore(client, "test")
	ctx := context.Background()

	require.NoError(t, store.Claim(ctx, "low_stock", "item-1", time.Hour))
	require.ErrorIs(t, store.Claim(ctx, "low_stock", "item-1", time.Hour), ErrIdempotencyConflict)
	require.NoError(t, store.Claim(ctx, "low_stock", "item-2", time.Hour))

	require.NoError(t, store.Release(ctx, "low_stock", "item-1"))
	require.NoError(t, store.Claim(ctx, "low_stock", "item-1", time.Hour))

	mr.FastForward(2 * time.Hour)
	require.NoError(t, store.Claim(ctx, "low_stock", "item-2", time.Hour))
}
