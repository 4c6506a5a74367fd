package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"courier-dispatch/internal/features/dispatch/domain"

	"github.com/redis/go-redis/v9"
)

const manualQueueKey = "dispatch:manual"

// RedisManualQueue keeps escalated orders in a Redis list, newest first.
type RedisManualQueue struct {
	rdb *redis.Client
}

// NewRedisManualQueue creates a queue on an existing client.
func NewRedisManualQueue(rdb *redis.Client) *RedisManualQueue {
	return &RedisManualQueue{rdb: rdb}
}

// Push adds an entry to the head of the queue.
func (q *RedisManualQueue) Push(ctx context.Context, e domain.ManualEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal manual entry: %w", err)
	}
	if err := q.rdb.LPush(ctx, manualQueueKey, data).Err(); err != nil {
		return fmt.Errorf("failed to push manual entry: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first.
func (q *RedisManualQueue) List(ctx context.Context, limit int) ([]domain.ManualEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	raw, err := q.rdb.LRange(ctx, manualQueueKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list manual entries: %w", err)
	}

	out := make([]domain.ManualEntry, 0, len(raw))
	for _, r := range raw {
		var e domain.ManualEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
