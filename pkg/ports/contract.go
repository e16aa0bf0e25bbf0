package ports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/agavesunset/agave/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunResultCacheContract runs a suite of tests to verify that a ResultCache
// implementation adheres to the defined interface contract.
func RunResultCacheContract(t *testing.T, cache ResultCache) {
	ctx := context.Background()
	key := "contract-" + time.Now().Format("20060102150405.000000000")

	t.Run("Set and Get", func(t *testing.T) {
		out := domain.Output{
			Result: []any{int64(7), 7.5, "seven", true, nil, &domain.Blocker{}},
			UI:     map[string]any{"text": []any{"seven"}},
		}
		require.NoError(t, cache.Set(ctx, key, out))

		got, err := cache.Get(ctx, key)
		require.NoError(t, err)
		require.Len(t, got.Result, 6)

		// Numbers come back untyped; the host coerces them.
		assert.Equal(t, json.Number("7"), got.Result[0])
		assert.Equal(t, json.Number("7.5"), got.Result[1])
		assert.Equal(t, "seven", got.Result[2])
		assert.Equal(t, true, got.Result[3])
		assert.Nil(t, got.Result[4])
		assert.True(t, got.Blocked(5))
		assert.Equal(t, []any{"seven"}, got.UI["text"])
	})

	t.Run("Isolation", func(t *testing.T) {
		out := domain.Output{Result: []any{"before"}}
		require.NoError(t, cache.Set(ctx, key+"-iso", out))
		out.Result[0] = "after"

		got, err := cache.Get(ctx, key+"-iso")
		require.NoError(t, err)
		assert.Equal(t, "before", got.Result[0])
	})

	t.Run("Get Missing", func(t *testing.T) {
		_, err := cache.Get(ctx, "missing-"+key)
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, key, domain.Output{Result: []any{1}}))
		require.NoError(t, cache.Delete(ctx, key))

		_, err := cache.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrCacheMiss, "Get after Delete should return ErrCacheMiss")
		assert.NoError(t, cache.Delete(ctx, key), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		k1, k2 := key+"-1", key+"-2"
		require.NoError(t, cache.Set(ctx, k1, domain.Output{Result: []any{1}}))
		require.NoError(t, cache.Set(ctx, k2, domain.Output{Result: []any{2}}))
		defer func() {
			_ = cache.Delete(ctx, k1)
			_ = cache.Delete(ctx, k2)
		}()

		keys, err := cache.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})
}

// RunLockerContract verifies mutual exclusion and release of a DistributedLocker.
func RunLockerContract(t *testing.T, locker DistributedLocker) {
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "resource", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)

	// A second acquisition must wait for the first.
	waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(waitCtx, "resource", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Other keys are independent.
	other, err := locker.Lock(ctx, "other", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, unlock(ctx))
	again, err := locker.Lock(ctx, "resource", 5*time.Second)
	require.NoError(t, err)
	assert.NoError(t, again(ctx))
}
