package adapters

import (
	"context"
	"fmt"
	"strconv"

	"courier-dispatch/internal/features/promotions/domain"

	"github.com/redis/go-redis/v9"
)

// KEYS come in pairs (global, per-user) per promotion; ARGV[1] says whether
// per-user counters apply, then a (global limit, user limit) pair per
// promotion with -1 for unlimited. Nothing is incremented unless every
// promotion has room. Returns 0, -i for the global limit of promotion i or
// -(n+i) for its per-user limit.
var redeemScript = redis.NewScript(`
local n = #KEYS / 2
local withUser = ARGV[1] == '1'
for i = 1, n do
  local glimit = tonumber(ARGV[2 * i])
  local ulimit = tonumber(ARGV[2 * i + 1])
  if glimit >= 0 and tonumber(redis.call('GET', KEYS[2 * i - 1]) or '0') >= glimit then
    return -i
  end
  if withUser and ulimit >= 0 and tonumber(redis.call('GET', KEYS[2 * i]) or '0') >= ulimit then
    return -(n + i)
  end
end
for i = 1, n do
  redis.call('INCR', KEYS[2 * i - 1])
  if withUser then redis.call('INCR', KEYS[2 * i]) end
end
return 0
`)

// RedisUsageLedger implements ports.UsageLedger with plain counters.
type RedisUsageLedger struct {
	rdb *redis.Client
}

// NewRedisUsageLedger creates a ledger on an existing client.
func NewRedisUsageLedger(rdb *redis.Client) *RedisUsageLedger {
	return &RedisUsageLedger{rdb: rdb}
}

func globalUsageKey(id string) string {
	return "promo:usage:" + id
}

func userUsageKey(id, userID string) string {
	return "promo:usage:" + id + ":user:" + userID
}

// Usage reads the global counters and, for a known user, the per-user ones.
func (l *RedisUsageLedger) Usage(ctx context.Context, ids []string, userID string) (map[string]int64, map[string]int64, error) {
	if len(ids) == 0 {
		return map[string]int64{}, map[string]int64{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = globalUsageKey(id)
	}
	global, err := l.counts(ctx, ids, keys)
	if err != nil {
		return nil, nil, err
	}

	perUser := map[string]int64{}
	if userID != "" {
		for i, id := range ids {
			keys[i] = userUsageKey(id, userID)
		}
		if perUser, err = l.counts(ctx, ids, keys); err != nil {
			return nil, nil, err
		}
	}
	return global, perUser, nil
}

func (l *RedisUsageLedger) counts(ctx context.Context, ids, keys []string) (map[string]int64, error) {
	vals, err := l.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("read promotion usage: %w", err)
	}
	out := make(map[string]int64, len(ids))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt usage counter %s: %w", keys[i], err)
		}
		out[ids[i]] = n
	}
	return out, nil
}

// Redeem increments every promotion's counters atomically. userID may be
// empty, in which case only global counters move.
func (l *RedisUsageLedger) Redeem(ctx context.Context, promos []domain.Promotion, userID string) error {
	if len(promos) == 0 {
		return nil
	}

	keys := make([]string, 0, 2*len(promos))
	args := make([]any, 0, 1+2*len(promos))
	if userID != "" {
		args = append(args, "1")
	} else {
		args = append(args, "0")
	}
	for _, p := range promos {
		keys = append(keys, globalUsageKey(p.ID), userUsageKey(p.ID, userID))
		args = append(args, limitArg(p.UsageLimit), limitArg(p.UsageLimitPerUser))
	}

	res, err := redeemScript.Run(ctx, l.rdb, keys, args...).Int()
	if err != nil {
		return fmt.Errorf("redeem promotions: %w", err)
	}
	n := len(promos)
	switch {
	case res == 0:
		return nil
	case -res <= n:
		return fmt.Errorf("%w: %s", domain.ErrUsageLimitReached, promos[-res-1].ID)
	default:
		return fmt.Errorf("%w: %s", domain.ErrUserLimitReached, promos[-res-n-1].ID)
	}
}

func limitArg(limit *int64) int64 {
	if limit == nil {
		return -1
	}
	return *limit
}
