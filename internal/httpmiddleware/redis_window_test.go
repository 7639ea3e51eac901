package httpmiddleware

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisWindow_LimitsPerMinute(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	now := time.Date(2025, 3, 1, 9, 30, 15, 0, time.UTC)
	l := NewRedisWindow(client, 2)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "request %d", i+1)
	}

	key := "classrecord:ratelimit:10.0.0.1:202503010930"
	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "3", got)
	assert.Equal(t, 2*time.Minute, mr.TTL(key))

	ok, err := l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "keys are counted separately")

	now = now.Add(time.Minute)
	ok, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok, "a new minute opens a new window")
}

func TestRedisWindow_ErrorWhenUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer client.Close()

	_, err := NewRedisWindow(client, 1).Allow(context.Background(), "10.0.0.1")
	assert.Error(t, err)
}
