// Package events carries domain events to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"courier-dispatch/internal/core/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Event is one domain notification.
type Event struct {
	Type string         `json:"type"`
	Key  string         `json:"key"`
	At   time.Time      `json:"at"`
	Data map[string]any `json:"data,omitempty"`
}

// Publisher fans events out. Publish is best effort; the error is for logging.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// RedisPublisher publishes events over Redis Pub/Sub, one channel per type.
type RedisPublisher struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisPublisher creates a publisher on an existing client.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, prefix: "events:"}
}

// Channel returns the Pub/Sub channel for an event type.
func (p *RedisPublisher) Channel(eventType string) string {
	return p.prefix + eventType
}

func (p *RedisPublisher) Publish(ctx context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p.rdb.Publish(ctx, p.Channel(evt.Type), data).Err(); err != nil {
		logger.Get().Warn("event publish failed", zap.String("type", evt.Type), zap.String("key", evt.Key), zap.Error(err))
		return err
	}
	return nil
}

// Subscribe listens on the channel for eventType until ctx ends.
func (p *RedisPublisher) Subscribe(ctx context.Context, eventType string) (<-chan Event, error) {
	ps := p.rdb.Subscribe(ctx, p.Channel(eventType))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	ch := make(chan Event, 16)
	go func() {
		defer close(ch)
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var evt Event
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					continue
				}
				select {
				case ch <- evt:
				default:
				}
			}
		}
	}()
	return ch, nil
}

// Memory keeps published events in process. Used by tests and single node runs.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

// NewMemory creates an empty in-process publisher.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Publish(_ context.Context, evt Event) error {
	m.mu.Lock()
	m.events = append(m.events, evt)
	m.mu.Unlock()
	return nil
}

// Events returns a copy of everything published so far, optionally filtered by type.
func (m *Memory) Events(eventType string) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, 0, len(m.events))
	for _, e := range m.events {
		if eventType == "" || e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
