package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCommander struct {
	values map[string]string
	err    error
	ttls   []time.Duration
}

func (f *fakeCommander) Get(_ context.Context, key string) *goredis.StringCmd {
	if f.err != nil {
		return goredis.NewStringResult("", f.err)
	}
	value, ok := f.values[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(value, nil)
}

func (f *fakeCommander) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd {
	if f.err != nil {
		return goredis.NewStatusResult("", f.err)
	}
	f.values[key] = value.(string)
	f.ttls = append(f.ttls, expiration)
	return goredis.NewStatusResult("OK", nil)
}

func TestSlot_GetSet(t *testing.T) {
	fake := &fakeCommander{values: map[string]string{}}
	slot := NewSlot(fake)
	ctx := context.Background()

	_, found, err := slot.Get(ctx, "profile")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, slot.Set(ctx, "profile", `{"name":"Ada"}`))
	assert.Equal(t, `{"name":"Ada"}`, fake.values["profile-editor:slot:profile"])
	assert.Equal(t, []time.Duration{0}, fake.ttls)

	value, found, err := slot.Get(ctx, "profile")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"name":"Ada"}`, value)
	assert.Equal(t, "redis", slot.Name())
}

func TestSlot_Errors(t *testing.T) {
	boom := errors.New("i/o timeout")
	slot := NewSlot(&fakeCommander{values: map[string]string{}, err: boom})
	ctx := context.Background()

	_, found, err := slot.Get(ctx, "profile")
	assert.ErrorIs(t, err, boom)
	assert.False(t, found)

	assert.ErrorIs(t, slot.Set(ctx, "profile", "{}"), boom)
}
