package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotCache_GetSet(t *testing.T) {
	sc := NewSlotCache()
	ctx := context.Background()

	_, found, err := sc.Get(ctx, "profile")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, sc.Set(ctx, "profile", `{"name":"Ada"}`))
	require.NoError(t, sc.Set(ctx, "profile", `{"name":"Grace"}`))

	value, found, err := sc.Get(ctx, "profile")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"name":"Grace"}`, value)
	assert.Equal(t, 1, sc.Len())
	assert.Equal(t, "memory", sc.Name())
}

func TestSlotCache_InvalidDataType(t *testing.T) {
	sc := NewSlotCache()
	sc.cache.Set("profile", 42, 0)

	_, found, err := sc.Get(context.Background(), "profile")

	assert.Error(t, err)
	assert.False(t, found)
	assert.Zero(t, sc.Len())
}

func TestSlotCache_CancelledContext(t *testing.T) {
	sc := NewSlotCache()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, sc.Set(ctx, "profile", "{}"), context.Canceled)
	_, _, err := sc.Get(ctx, "profile")
	assert.ErrorIs(t, err, context.Canceled)
}
