package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis unavailable in this environment: %v", err)
	}
	cli := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	prev := client
	SetClient(cli)
	t.Cleanup(func() {
		_ = cli.Close()
		srv.Close()
		client = prev
	})
	return srv
}

func TestInitInvalidURL(t *testing.T) {
	err := Init("://invalid-url", "")
	assert.Error(t, err)
}

func TestInitAgainstMiniRedis(t *testing.T) {
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis unavailable: %v", err)
	}
	defer srv.Close()

	require.NoError(t, Init("redis://"+srv.Addr(), ""))
	require.NotNil(t, GetClient())
	require.NoError(t, Close())
}

func TestBasicOpsWithUnreachableRedis(t *testing.T) {
	cli := goredis.NewClient(&goredis.Options{
		Addr:         "127.0.0.1:0",
		DialTimeout:  50 * time.Millisecond,
		ReadTimeout:  50 * time.Millisecond,
		WriteTimeout: 50 * time.Millisecond,
	})
	prev := client
	SetClient(cli)
	t.Cleanup(func() { client = prev; _ = cli.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.Error(t, Set(ctx, "k", "v", time.Second))
	_, err := Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, IsNil(err))
	_, err = Del(ctx, "k")
	assert.Error(t, err)
	_, err = SetNX(ctx, "k", "v", time.Second)
	assert.Error(t, err)
}

func TestBasicOpsAgainstMiniRedis(t *testing.T) {
	srv := useMiniRedis(t)
	ctx := context.Background()

	_, err := Get(ctx, "missing")
	assert.True(t, IsNil(err))

	require.NoError(t, Set(ctx, "k", "v", time.Minute))
	v, err := Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	ok, err := SetNX(ctx, "k", "other", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	n, err := Del(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	type payload struct {
		Balance string `json:"balance"`
	}
	require.NoError(t, SetJSON(ctx, "wallet", payload{Balance: "10.00"}, time.Minute))
	var got payload
	require.NoError(t, GetJSON(ctx, "wallet", &got))
	assert.Equal(t, "10.00", got.Balance)

	srv.FastForward(2 * time.Minute)
	assert.True(t, IsNil(GetJSON(ctx, "wallet", &got)))
}
