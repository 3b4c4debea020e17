package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextstock/backend/internal/domain/settings"
)

func TestInMemorySettingsCache(t *testing.T) {
	ctx := context.Background()

	t.Run("set then get round-trips", func(t *testing.T) {
		cache := NewInMemorySettingsCache(time.Hour)
		storeID := uuid.New()
		s, err := settings.NewStoreSettings(storeID)
		require.NoError(t, err)

		require.NoError(t, cache.Set(ctx, s))

		got, err := cache.Get(ctx, storeID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, storeID, got.StoreID)
	})

	t.Run("miss returns nil without error", func(t *testing.T) {
		cache := NewInMemorySettingsCache(time.Hour)

		got, err := cache.Get(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("invalidate drops the entry", func(t *testing.T) {
		cache := NewInMemorySettingsCache(time.Hour)
		s, err := settings.NewStoreSettings(uuid.New())
		require.NoError(t, err)
		require.NoError(t, cache.Set(ctx, s))

		require.NoError(t, cache.Invalidate(ctx, s.StoreID))

		got, err := cache.Get(ctx, s.StoreID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("entries expire", func(t *testing.T) {
		cache := NewInMemorySettingsCache(time.Nanosecond)
		s, err := settings.NewStoreSettings(uuid.New())
		require.NoError(t, err)
		require.NoError(t, cache.Set(ctx, s))

		time.Sleep(2 * time.Millisecond)

		got, err := cache.Get(ctx, s.StoreID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
