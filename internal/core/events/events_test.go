package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisPublisher_PublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	pub := NewRedisPublisher(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := pub.Subscribe(ctx, "order.assigned")
	require.NoError(t, err)

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Publish(ctx, Event{Type: "order.assigned", Key: "o-1", At: at, Data: map[string]any{"courier_id": "c-1"}}))

	select {
	case evt := <-ch:
		assert.Equal(t, "o-1", evt.Key)
		assert.Equal(t, "c-1", evt.Data["courier_id"])
		assert.True(t, at.Equal(evt.At))
	case <-time.After(2 * time.Second):
		t.Fatal("event not received")
	}
}

func TestMemory_Events(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_ = m.Publish(ctx, Event{Type: "a", Key: "1"})
	_ = m.Publish(ctx, Event{Type: "b", Key: "2"})

	assert.Len(t, m.Events(""), 2)
	got := m.Events("b")
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].Key)
}
