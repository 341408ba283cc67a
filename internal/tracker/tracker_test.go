package tracker_test

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/wapuda/tg-grabber/internal/tracker"
)

// needs a live Redis: REDIS_TEST_ADDR=localhost:6379 go test ./internal/tracker
func testClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("skipped, REDIS_TEST_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())
	require.NoError(t, rdb.FlushDB(context.Background()).Err())
	return rdb
}

func TestRedisCounters(t *testing.T) {
	rdb := testClient(t)
	tr := tracker.NewRedis(rdb)
	ctx := context.Background()

	chat, total, err := tr.Active(ctx, 10)
	require.NoError(t, err)
	require.Zero(t, chat)
	require.Zero(t, total)

	done1 := tr.Begin(ctx, 10)
	done2 := tr.Begin(ctx, 10)
	done3 := tr.Begin(ctx, 20)

	chat, total, err = tr.Active(ctx, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, chat)
	require.EqualValues(t, 3, total)

	done1()
	done2()
	done3()
	chat, total, err = tr.Active(ctx, 10)
	require.NoError(t, err)
	require.Zero(t, chat)
	require.Zero(t, total)

	ttl, err := rdb.TTL(ctx, "active:all").Result()
	require.NoError(t, err)
	require.Positive(t, ttl)
}

func TestRedisNegativeClamped(t *testing.T) {
	rdb := testClient(t)
	ctx := context.Background()
	require.NoError(t, rdb.Set(ctx, "active:30", -2, 0).Err())

	chat, _, err := tracker.NewRedis(rdb).Active(ctx, 30)
	require.NoError(t, err)
	require.Zero(t, chat)
}
