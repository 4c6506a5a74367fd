package adapters

import (
	"testing"
	"time"

	"courier-dispatch/internal/core/clock"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb, mr
}

func newFakeClock() *clock.Fake {
	return clock.NewFake(epoch)
}
