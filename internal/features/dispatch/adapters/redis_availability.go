package adapters

import (
	"context"
	"fmt"
	"strconv"

	"courier-dispatch/internal/features/dispatch/domain"

	"github.com/redis/go-redis/v9"
)

// Courier state lives in one hash per courier so every script touches one key.
// Fields: shift (open|closed), status, active, capacity.
var reserveScript = redis.NewScript(`
local shift = redis.call('HGET', KEYS[1], 'shift')
if not shift then return -3 end
if shift ~= 'open' then return -1 end
local status = redis.call('HGET', KEYS[1], 'status')
local active = tonumber(redis.call('HGET', KEYS[1], 'active') or '0')
local capacity = tonumber(redis.call('HGET', KEYS[1], 'capacity') or '1')
if status ~= 'available' or active >= capacity then return -2 end
active = active + 1
if active >= capacity then status = 'busy' end
redis.call('HSET', KEYS[1], 'active', tostring(active), 'status', status)
return active
`)

var releaseScript = redis.NewScript(`
local shift = redis.call('HGET', KEYS[1], 'shift')
if not shift then return -3 end
local active = tonumber(redis.call('HGET', KEYS[1], 'active') or '0')
if active <= 0 then return -1 end
active = active - 1
local status = 'off_shift'
if shift == 'open' then status = 'available' end
redis.call('HSET', KEYS[1], 'active', tostring(active), 'status', status)
return active
`)

var openShiftScript = redis.NewScript(`
local active = tonumber(redis.call('HGET', KEYS[1], 'active') or '0')
local capacity = tonumber(ARGV[1])
local status = 'available'
if active >= capacity then status = 'busy' end
redis.call('HSET', KEYS[1], 'shift', 'open', 'capacity', tostring(capacity), 'active', tostring(active), 'status', status)
return active
`)

var closeShiftScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return -3 end
redis.call('HSET', KEYS[1], 'shift', 'closed', 'status', 'off_shift')
return 0
`)

// RedisAvailabilityTracker implements ports.AvailabilityTracker with Lua
// scripts, which Redis runs atomically per courier key.
type RedisAvailabilityTracker struct {
	rdb *redis.Client
}

// NewRedisAvailabilityTracker creates a tracker on an existing client.
func NewRedisAvailabilityTracker(rdb *redis.Client) *RedisAvailabilityTracker {
	return &RedisAvailabilityTracker{rdb: rdb}
}

func courierKey(id string) string {
	return "courier:" + id
}

// Reserve takes one slot. Full, busy or off shift couriers are ErrCourierUnavailable.
func (t *RedisAvailabilityTracker) Reserve(ctx context.Context, courierID string) error {
	res, err := reserveScript.Run(ctx, t.rdb, []string{courierKey(courierID)}).Int()
	if err != nil {
		return fmt.Errorf("reserve %s: %w", courierID, err)
	}
	switch res {
	case -3:
		return fmt.Errorf("%w: %s", domain.ErrCourierNotFound, courierID)
	case -1:
		return fmt.Errorf("%w: %s: %w", domain.ErrCourierUnavailable, courierID, domain.ErrShiftClosed)
	case -2:
		return fmt.Errorf("%w: %s", domain.ErrCourierUnavailable, courierID)
	}
	return nil
}

// Release returns one slot.
func (t *RedisAvailabilityTracker) Release(ctx context.Context, courierID string) error {
	res, err := releaseScript.Run(ctx, t.rdb, []string{courierKey(courierID)}).Int()
	if err != nil {
		return fmt.Errorf("release %s: %w", courierID, err)
	}
	switch res {
	case -3:
		return fmt.Errorf("%w: %s", domain.ErrCourierNotFound, courierID)
	case -1:
		return fmt.Errorf("%w: %s", domain.ErrNotReserved, courierID)
	}
	return nil
}

// OpenShift starts or resizes a shift. Existing reservations carry over.
func (t *RedisAvailabilityTracker) OpenShift(ctx context.Context, courierID string, capacity int) error {
	if capacity <= 0 {
		return domain.ErrInvalidCapacity
	}
	if err := openShiftScript.Run(ctx, t.rdb, []string{courierKey(courierID)}, capacity).Err(); err != nil {
		return fmt.Errorf("open shift %s: %w", courierID, err)
	}
	return nil
}

// CloseShift takes the courier off shift. Active orders still release normally.
func (t *RedisAvailabilityTracker) CloseShift(ctx context.Context, courierID string) error {
	res, err := closeShiftScript.Run(ctx, t.rdb, []string{courierKey(courierID)}).Int()
	if err != nil {
		return fmt.Errorf("close shift %s: %w", courierID, err)
	}
	if res == -3 {
		return fmt.Errorf("%w: %s", domain.ErrCourierNotFound, courierID)
	}
	return nil
}

// Get reads the courier availability hash.
func (t *RedisAvailabilityTracker) Get(ctx context.Context, courierID string) (*domain.Courier, error) {
	vals, err := t.rdb.HGetAll(ctx, courierKey(courierID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get courier %s: %w", courierID, err)
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrCourierNotFound, courierID)
	}

	active, _ := strconv.Atoi(vals["active"])
	capacity, _ := strconv.Atoi(vals["capacity"])
	return &domain.Courier{
		ID:          courierID,
		ShiftOpen:   vals["shift"] == "open",
		Status:      domain.CourierStatus(vals["status"]),
		ActiveCount: active,
		Capacity:    capacity,
	}, nil
}

// IsEligible reports whether the courier can take another order. Unknown
// couriers are not eligible.
func (t *RedisAvailabilityTracker) IsEligible(ctx context.Context, courierID string) (bool, error) {
	c, err := t.Get(ctx, courierID)
	if err != nil {
		if domain.IsDataError(err) {
			return false, nil
		}
		return false, err
	}
	return c.Eligible(), nil
}
